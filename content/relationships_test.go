package content

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachLabel_Twice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	p := mustPost(t, s, "Post", u.ID)
	l := mustLabel(t, s, "go", u.ID)

	require.NoError(t, s.AttachLabel(ctx, p.ID, l.ID))
	err := s.AttachLabel(ctx, p.ID, l.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyAttached)

	labels, err := s.LabelsOfPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, l.ID, labels[0].ID)
}

func TestAttachLabel_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	p := mustPost(t, s, "Post", u.ID)
	l := mustLabel(t, s, "go", u.ID)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		dups int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.AttachLabel(ctx, p.ID, l.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
			} else if CodeOf(err) == CodeAlreadyAttached {
				dups++
			} else {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
	assert.Equal(t, 5, dups)
	assert.Equal(t, 1, countRelationships(t, s, "post_id = ? AND label_id = ?", p.ID, l.ID))
}

func TestAttachLabel_MissingEndpoint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	p := mustPost(t, s, "Post", u.ID)
	l := mustLabel(t, s, "go", u.ID)

	err := s.AttachLabel(ctx, 999, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "post 999")

	err = s.AttachLabel(ctx, p.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "label 999")

	assert.Zero(t, countRelationships(t, s, "1 = 1"))
}

func TestDetachLabel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	p := mustPost(t, s, "Post", u.ID)
	l := mustLabel(t, s, "go", u.ID)
	require.NoError(t, s.AttachLabel(ctx, p.ID, l.ID))

	require.NoError(t, s.DetachLabel(ctx, p.ID, l.ID))
	labels, err := s.LabelsOfPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, labels)

	assert.ErrorIs(t, s.DetachLabel(ctx, p.ID, l.ID), ErrNotFound)

	// Re-attaching after a detach works.
	require.NoError(t, s.AttachLabel(ctx, p.ID, l.ID))
}

func TestLabelsOfPost_NewestLabelFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	p := mustPost(t, s, "Post", u.ID)
	older := mustLabel(t, s, "older", u.ID)
	newer := mustLabel(t, s, "newer", u.ID)
	mustLabel(t, s, "unused", u.ID)

	// Attachment order does not matter, label timestamps do.
	require.NoError(t, s.AttachLabel(ctx, p.ID, newer.ID))
	require.NoError(t, s.AttachLabel(ctx, p.ID, older.ID))

	labels, err := s.LabelsOfPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "newer", labels[0].Text)
	assert.Equal(t, "older", labels[1].Text)

	none, err := s.LabelsOfPost(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// Label "go" (id 1), posts "A" and "B" (ids 1, 2), both tagged.
func TestPostsOfLabel_Scenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	l := mustLabel(t, s, "go", u.ID)
	a := mustPost(t, s, "A", u.ID)
	b := mustPost(t, s, "B", u.ID)
	require.Equal(t, int64(1), l.ID)
	require.Equal(t, int64(1), a.ID)
	require.Equal(t, int64(2), b.ID)

	require.NoError(t, s.AttachLabel(ctx, a.ID, l.ID))
	require.NoError(t, s.AttachLabel(ctx, b.ID, l.ID))

	posts, err := s.PostsOfLabel(ctx, l.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "B", posts[0].Title)
	assert.Equal(t, "A", posts[1].Title)

	n, err := s.CountPostsOfLabel(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPostsOfLabel_Paging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	l := mustLabel(t, s, "go", u.ID)
	var ids []int64
	for i := 0; i < 5; i++ {
		p := mustPost(t, s, "p"+string(rune('0'+i)), u.ID)
		require.NoError(t, s.AttachLabel(ctx, p.ID, l.ID))
		ids = append(ids, p.ID)
	}
	// Hidden posts still belong to the label in the raw index.
	_, err := s.SetPostStatus(ctx, ids[0], StatusHidden)
	require.NoError(t, err)

	page1, err := s.PostsOfLabel(ctx, l.ID, 1, 2)
	require.NoError(t, err)
	page3, err := s.PostsOfLabel(ctx, l.ID, 3, 2)
	require.NoError(t, err)
	page4, err := s.PostsOfLabel(ctx, l.ID, 4, 2)
	require.NoError(t, err)

	require.Len(t, page1, 2)
	assert.Equal(t, ids[4], page1[0].ID)
	assert.Equal(t, ids[3], page1[1].ID)
	require.Len(t, page3, 1)
	assert.Equal(t, ids[0], page3[0].ID)
	assert.Empty(t, page4)

	_, err = s.PostsOfLabel(ctx, l.ID, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAttachLabelsByText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "author@example.com")
	p := mustPost(t, s, "Post", u.ID)
	goLabel := mustLabel(t, s, "go", u.ID)
	mustLabel(t, s, "sql", u.ID)
	require.NoError(t, s.AttachLabel(ctx, p.ID, goLabel.ID))

	labels, err := s.AttachLabelsByText(ctx, p.ID, []string{"go", "sql", "unknown", " ", "sql"})
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "sql", labels[0].Text)
	assert.Equal(t, "go", labels[1].Text)

	_, err = s.AttachLabelsByText(ctx, 404, []string{"go"})
	assert.ErrorIs(t, err, ErrNotFound)
}
