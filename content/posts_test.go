package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")

	p, err := s.CreatePost(ctx, NewPost{Title: "  Hello  ", Content: "# hi", AuthorID: u.ID})
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Equal(t, "Hello", p.Title)
	assert.Equal(t, "# hi", p.Content)
	assert.Equal(t, StatusPublished, p.Status)
	assert.Equal(t, u.ID, p.UserID)
	assert.False(t, p.Timestamp.IsZero())

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestCreatePost_DuplicateTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")

	mustPost(t, s, "Same", u.ID)
	_, err := s.CreatePost(ctx, NewPost{Title: "Same", AuthorID: u.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateTitle)
	assert.Equal(t, 409, err.(*Error).HTTPStatus())

	n, err := s.CountPosts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreatePost_ConcurrentDuplicateTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		dups    int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreatePost(ctx, NewPost{Title: "race", AuthorID: u.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrDuplicateTitle):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, workers-1, dups)
	n, err := s.CountPosts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreatePost_Invalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")

	_, err := s.CreatePost(ctx, NewPost{Title: "   ", AuthorID: u.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Contains(t, e.Details, "title")

	_, err = s.CreatePost(ctx, NewPost{Title: "no author"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.CreatePost(ctx, NewPost{Title: "ghost author", AuthorID: 999})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePost_StatusAndLabels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	mustLabel(t, s, "go", u.ID)
	mustLabel(t, s, "sql", u.ID)

	p, err := s.CreatePost(ctx, NewPost{
		Title:    "Draft",
		AuthorID: u.ID,
		Status:   StatusHidden,
		Labels:   []string{"go", "unknown", "sql", "go"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusHidden, p.Status)

	labels, err := s.LabelsOfPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "sql", labels[0].Text)

	n, err := s.CountPublicPosts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreatePost_FailureLeavesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	mustLabel(t, s, "go", u.ID)

	_, err := s.CreatePost(ctx, NewPost{Title: "bad", AuthorID: u.ID, Status: Status(9), Labels: []string{"go"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	mustPost(t, s, "taken", u.ID)
	_, err = s.CreatePost(ctx, NewPost{Title: "taken", AuthorID: u.ID, Labels: []string{"go"}})
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	n, err := s.CountPosts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, countRelationships(t, s, "1 = 1"))
}

func TestUpdatePost_Partial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	p := mustPost(t, s, "Original", u.ID)
	_, err := s.SetPostStatus(ctx, p.ID, StatusHidden)
	require.NoError(t, err)

	content := "new body"
	got, err := s.UpdatePost(ctx, p.ID, PostUpdate{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)
	assert.Equal(t, "new body", got.Content)
	assert.Equal(t, p.Timestamp, got.Timestamp)
	assert.Equal(t, StatusHidden, got.Status)

	title := "Renamed"
	got, err = s.UpdatePost(ctx, p.ID, PostUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "new body", got.Content)

	// Keeping one's own title is not a conflict.
	got, err = s.UpdatePost(ctx, p.ID, PostUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestUpdatePost_Errors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	mustPost(t, s, "Taken", u.ID)
	p := mustPost(t, s, "Mine", u.ID)

	title := "Taken"
	_, err := s.UpdatePost(ctx, p.ID, PostUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title, "failed update must leave the post unchanged")

	_, err = s.UpdatePost(ctx, 999, PostUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)

	empty := ""
	_, err = s.UpdatePost(ctx, p.ID, PostUpdate{Title: &empty})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSetPostStatus_AnyTransition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	p := mustPost(t, s, "Flip", u.ID)

	all := []Status{StatusPublished, StatusHidden, StatusTrashed}
	for _, from := range all {
		for _, to := range all {
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				_, err := s.SetPostStatus(ctx, p.ID, from)
				require.NoError(t, err)
				got, err := s.SetPostStatus(ctx, p.ID, to)
				require.NoError(t, err)
				assert.Equal(t, to, got.Status)
				assert.Equal(t, p.Timestamp, got.Timestamp)
			})
		}
	}
}

func TestSetPostStatus_Errors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SetPostStatus(ctx, 42, StatusHidden)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.SetPostStatus(ctx, 42, Status(7))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDeletePost_CascadesRelationships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	p := mustPost(t, s, "Doomed", u.ID)
	other := mustPost(t, s, "Survivor", u.ID)
	l1 := mustLabel(t, s, "go", u.ID)
	l2 := mustLabel(t, s, "sql", u.ID)
	require.NoError(t, s.AttachLabel(ctx, p.ID, l1.ID))
	require.NoError(t, s.AttachLabel(ctx, p.ID, l2.ID))
	require.NoError(t, s.AttachLabel(ctx, other.ID, l1.ID))

	require.NoError(t, s.DeletePost(ctx, p.ID))

	_, err := s.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, countRelationships(t, s, "post_id = ?", p.ID))
	assert.Equal(t, 1, countRelationships(t, s, "post_id = ?", other.ID))

	// Labels outlive the post.
	_, err = s.GetLabel(ctx, l2.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.DeletePost(ctx, p.ID), ErrNotFound)
}

func TestListPosts_AllStatuses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	a := mustPost(t, s, "A", u.ID)
	b := mustPost(t, s, "B", u.ID)
	c := mustPost(t, s, "C", u.ID)
	_, err := s.SetPostStatus(ctx, b.ID, StatusTrashed)
	require.NoError(t, err)

	all, err := s.ListPosts(ctx, nil, 1, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	trashed := StatusTrashed
	only, err := s.ListPosts(ctx, &trashed, 1, 10)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, b.ID, only[0].ID)

	n, err := s.CountPosts(ctx, &trashed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
