package labelpress

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/labelpress/content"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

func ok(c echo.Context, v any) error {
	return c.JSON(http.StatusOK, dataEnvelope{Data: v})
}

func created(c echo.Context, v any) error {
	return c.JSON(http.StatusCreated, dataEnvelope{Data: v})
}

type postWithLabels struct {
	Post   *content.Post   `json:"post"`
	Labels []content.Label `json:"labels"`
}

// idRequest accepts the post id as "id" or, as the edit form sends it,
// "post_id".
type idRequest struct {
	ID     int64 `json:"id" form:"id" query:"id"`
	PostID int64 `json:"post_id" form:"post_id" query:"post_id"`
}

func (r idRequest) postID() int64 { return pickID(r.PostID, r.ID) }

func pickID(postID, id int64) int64 {
	if postID != 0 {
		return postID
	}
	return id
}

type listRequest struct {
	Page     int    `json:"page" form:"page" query:"page"`
	PageSize int    `json:"page_size" form:"page_size" query:"page_size"`
	Status   string `json:"status" form:"status" query:"status"`
}

type publishRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
	Labels  string `json:"labels" form:"labels"`
	Status  string `json:"status" form:"status"`
}

// Echo's binder cannot set fields of an unexported embedded struct from form
// or query values, so requests that carry more than an id repeat its fields.

type editRequest struct {
	ID      int64   `json:"id" form:"id" query:"id"`
	PostID  int64   `json:"post_id" form:"post_id" query:"post_id"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (r editRequest) postID() int64 { return pickID(r.PostID, r.ID) }

type statusRequest struct {
	ID     int64  `json:"id" form:"id" query:"id"`
	PostID int64  `json:"post_id" form:"post_id" query:"post_id"`
	Status string `json:"status" form:"status" query:"status"`
}

func (r statusRequest) postID() int64 { return pickID(r.PostID, r.ID) }

type labelRequest struct {
	ID   int64  `json:"id" form:"id" query:"id"`
	Text string `json:"text" form:"text" query:"text"`
}

type attachRequest struct {
	PostID  int64  `json:"post_id" form:"post_id" query:"post_id"`
	LabelID int64  `json:"label_id" form:"label_id" query:"label_id"`
	Label   string `json:"label" form:"label" query:"label"`
}

type userFlagsRequest struct {
	ID     int64 `json:"id" form:"id" query:"id"`
	Active *bool `json:"active"`
	Admin  *bool `json:"admin"`
}

// apiListPosts pages through every post regardless of status, optionally
// narrowed to one status.
func (a *App) apiListPosts(c echo.Context) error {
	req := listRequest{Page: 1, PageSize: a.Config.PageSize}
	if err := bind(c, &req); err != nil {
		return err
	}
	var status *content.Status
	if req.Status != "" {
		s, err := content.ParseStatus(req.Status)
		if err != nil {
			return err
		}
		status = &s
	}

	ctx := c.Request().Context()
	posts, err := a.Store.ListPosts(ctx, status, req.Page, req.PageSize)
	if err != nil {
		return err
	}
	total, err := a.Store.CountPosts(ctx, status)
	if err != nil {
		return err
	}
	return ok(c, content.Page[content.Post]{
		Items:      posts,
		Page:       req.Page,
		PageSize:   req.PageSize,
		Total:      total,
		TotalPages: content.TotalPages(total, req.PageSize),
	})
}

func (a *App) apiGetPost(c echo.Context) error {
	var req idRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id := req.postID()
	if err := requireID(id, "post"); err != nil {
		return err
	}
	ctx := c.Request().Context()
	post, err := a.Store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	labels, err := a.Store.LabelsOfPost(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, postWithLabels{Post: post, Labels: labels})
}

func (a *App) apiUpdatePost(c echo.Context) error {
	var req editRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id := req.postID()
	if err := requireID(id, "post"); err != nil {
		return err
	}
	if !isJSON(c) {
		var err error
		if req.Title, err = optionalString(c, "title"); err != nil {
			return err
		}
		if req.Content, err = optionalString(c, "content"); err != nil {
			return err
		}
	}

	post, err := a.Store.UpdatePost(c.Request().Context(), id, content.PostUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return ok(c, post)
}

// apiPublish creates a post by the default author and tags it with the
// existing labels named in the "_"-separated labels field, in one store call.
// Unknown label texts are skipped.
func (a *App) apiPublish(c echo.Context) error {
	var req publishRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	var status content.Status
	if req.Status != "" {
		var err error
		if status, err = content.ParseStatus(req.Status); err != nil {
			return err
		}
	}

	ctx := c.Request().Context()
	post, err := a.Store.CreatePost(ctx, content.NewPost{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: a.Author.ID,
		Status:   status,
		Labels:   SplitLabels(req.Labels),
	})
	if err != nil {
		return err
	}
	labels, err := a.Store.LabelsOfPost(ctx, post.ID)
	if err != nil {
		return err
	}
	if labels == nil {
		labels = []content.Label{}
	}
	return created(c, postWithLabels{Post: post, Labels: labels})
}

func (a *App) apiDeletePost(c echo.Context) error {
	var req idRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id := req.postID()
	if err := requireID(id, "post"); err != nil {
		return err
	}
	if err := a.Store.DeletePost(c.Request().Context(), id); err != nil {
		return err
	}
	return ok(c, map[string]int64{"deleted": id})
}

func (a *App) apiSetStatus(c echo.Context) error {
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id := req.postID()
	if err := requireID(id, "post"); err != nil {
		return err
	}
	status, err := content.ParseStatus(req.Status)
	if err != nil {
		return err
	}
	post, err := a.Store.SetPostStatus(c.Request().Context(), id, status)
	if err != nil {
		return err
	}
	return ok(c, post)
}

func (a *App) apiListLabels(c echo.Context) error {
	labels, err := a.Store.ListLabels(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, labels)
}

func (a *App) apiCreateLabel(c echo.Context) error {
	var req labelRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	label, err := a.Store.CreateLabel(c.Request().Context(), content.NewLabel{
		Text:     req.Text,
		AuthorID: a.Author.ID,
	})
	if err != nil {
		return err
	}
	return created(c, label)
}

// apiDeleteLabel deletes a label by id, or by text when no id is given.
func (a *App) apiDeleteLabel(c echo.Context) error {
	var req labelRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := req.ID
	if id == 0 && req.Text != "" {
		label, err := a.Store.GetLabelByText(ctx, req.Text)
		if err != nil {
			return err
		}
		id = label.ID
	}
	if err := requireID(id, "label"); err != nil {
		return err
	}
	if err := a.Store.DeleteLabel(ctx, id); err != nil {
		return err
	}
	return ok(c, map[string]int64{"deleted": id})
}

// resolveAttach validates an attach/detach request and resolves a label
// given by text.
func (a *App) resolveAttach(c echo.Context) (postID, labelID int64, err error) {
	var req attachRequest
	if err := bind(c, &req); err != nil {
		return 0, 0, err
	}
	if err := requireID(req.PostID, "post"); err != nil {
		return 0, 0, err
	}
	labelID = req.LabelID
	if labelID == 0 && req.Label != "" {
		label, err := a.Store.GetLabelByText(c.Request().Context(), req.Label)
		if err != nil {
			return 0, 0, err
		}
		labelID = label.ID
	}
	if err := requireID(labelID, "label"); err != nil {
		return 0, 0, err
	}
	return req.PostID, labelID, nil
}

func (a *App) apiAttachLabel(c echo.Context) error {
	postID, labelID, err := a.resolveAttach(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := a.Store.AttachLabel(ctx, postID, labelID); err != nil {
		return err
	}
	labels, err := a.Store.LabelsOfPost(ctx, postID)
	if err != nil {
		return err
	}
	return ok(c, labels)
}

func (a *App) apiDetachLabel(c echo.Context) error {
	postID, labelID, err := a.resolveAttach(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := a.Store.DetachLabel(ctx, postID, labelID); err != nil {
		return err
	}
	labels, err := a.Store.LabelsOfPost(ctx, postID)
	if err != nil {
		return err
	}
	return ok(c, labels)
}

// apiSetUserFlags changes a user's active and admin flags, the only user
// fields that are mutable.
func (a *App) apiSetUserFlags(c echo.Context) error {
	var req userFlagsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := requireID(req.ID, "user"); err != nil {
		return err
	}
	if !isJSON(c) {
		var err error
		if req.Active, err = optionalBool(c, "active"); err != nil {
			return err
		}
		if req.Admin, err = optionalBool(c, "admin"); err != nil {
			return err
		}
	}
	if req.Active == nil && req.Admin == nil {
		return content.InvalidArgumentf("nothing to change: set active or admin")
	}

	ctx := c.Request().Context()
	var (
		user *content.User
		err  error
	)
	if req.Active != nil {
		if user, err = a.Store.SetUserActive(ctx, req.ID, *req.Active); err != nil {
			return err
		}
	}
	if req.Admin != nil {
		if user, err = a.Store.SetUserAdmin(ctx, req.ID, *req.Admin); err != nil {
			return err
		}
	}
	a.Authors.Invalidate(req.ID)
	return ok(c, user)
}
