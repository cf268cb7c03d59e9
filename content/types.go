// Package content is the content relationship and query engine: users, posts,
// labels, the post-label relationship, and paginated queries over them.
//
// All state lives in SQLite. A Store is safe for concurrent use; every
// operation is a short transaction bounded by the store's timeout.
package content

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is the publication state of a post. The numeric values are the ones
// persisted in the posts.status column.
type Status int

const (
	StatusPublished Status = 0
	StatusHidden    Status = 1
	StatusTrashed   Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusPublished:
		return "published"
	case StatusHidden:
		return "hidden"
	case StatusTrashed:
		return "trashed"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	return s == StatusPublished || s == StatusHidden || s == StatusTrashed
}

// ParseStatus accepts a status name ("published", "hidden", "trashed", case
// insensitive) or its numeric code.
func ParseStatus(v string) (Status, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "published", "publish", "public":
		return StatusPublished, nil
	case "hidden", "hide":
		return StatusHidden, nil
	case "trashed", "trash":
		return StatusTrashed, nil
	}
	n, err := strconv.Atoi(v)
	if err == nil && Status(n).Valid() {
		return Status(n), nil
	}
	return 0, InvalidArgumentf("unknown status %q", v)
}

// User is an author identity. Only Active and Admin change after creation.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Fullname     string    `json:"fullname"`
	Admin        bool      `json:"admin"`
	Active       bool      `json:"active"`
	Avatar       string    `json:"avatar"`
	RegisteredAt time.Time `json:"reg_date"`
}

// Post is a blog entry written by a user.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
	UserID    int64     `json:"user"`
}

// Public reports whether readers may see the post.
func (p Post) Public() bool { return p.Status == StatusPublished }

const briefLength = 250

// Brief returns a plain-text teaser of the post: markdown markers are
// dropped and the result is cut to 250 runes.
func (p Post) Brief() string {
	brief := strings.NewReplacer("*", "", "#", "", "`", "", ">", "").Replace(p.Content)
	r := []rune(brief)
	if len(r) > briefLength {
		return string(r[:briefLength])
	}
	return brief
}

// Label is a tag that can be attached to any number of posts.
type Label struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user"`
}

// Relationship is one post-label attachment.
type Relationship struct {
	PostID  int64 `json:"post_id"`
	LabelID int64 `json:"label_id"`
}

// Page is one window of an ordered result set together with the totals a
// pager needs.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// NewPost holds the fields required to create a post. The zero Status is
// StatusPublished. Labels names existing labels to attach on creation.
type NewPost struct {
	Title    string   `json:"title" validate:"required,max=255"`
	Content  string   `json:"content"`
	AuthorID int64    `json:"user" validate:"required,gt=0"`
	Status   Status   `json:"status"`
	Labels   []string `json:"labels,omitempty"`
}

// PostUpdate is a partial update. Nil fields are left unchanged.
type PostUpdate struct {
	Title   *string `json:"title" validate:"omitnil,min=1,max=255"`
	Content *string `json:"content"`
}

// NewLabel holds the fields required to create a label.
type NewLabel struct {
	Text     string `json:"text" validate:"required,max=64"`
	AuthorID int64  `json:"user" validate:"required,gt=0"`
}

// NewUser holds the fields required to register a user.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Fullname string `json:"fullname" validate:"required,max=128"`
	Avatar   string `json:"avatar"`
	Admin    bool   `json:"admin"`
}

func (p Post) String() string {
	return fmt.Sprintf("post %d %q (%s)", p.ID, p.Title, p.Status)
}
