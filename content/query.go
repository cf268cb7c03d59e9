package content

import "context"

// TotalPages is ceil(count / pageSize). No rows means zero pages.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

func published() *Status {
	s := StatusPublished
	return &s
}

// ListPublicPosts returns one page of published posts, newest first.
func (s *Store) ListPublicPosts(ctx context.Context, page, pageSize int) ([]Post, error) {
	return s.ListPosts(ctx, published(), page, pageSize)
}

// CountPublicPosts counts published posts.
func (s *Store) CountPublicPosts(ctx context.Context) (int, error) {
	return s.CountPosts(ctx, published())
}

// ListPostsByLabel returns one page of the published posts tagged with the
// label whose text is labelText, newest first. Hidden and trashed posts are
// never listed here.
func (s *Store) ListPostsByLabel(ctx context.Context, labelText string, page, pageSize int) ([]Post, error) {
	if _, err := offset(page, pageSize); err != nil {
		return nil, err
	}
	l, err := s.GetLabelByText(ctx, labelText)
	if err != nil {
		return nil, err
	}
	return s.postsOfLabel(ctx, l.ID, published(), page, pageSize)
}

// CountPostsByLabel counts the published posts tagged with labelText.
func (s *Store) CountPostsByLabel(ctx context.Context, labelText string) (int, error) {
	l, err := s.GetLabelByText(ctx, labelText)
	if err != nil {
		return 0, err
	}
	return s.countPostsOfLabel(ctx, l.ID, published())
}

// PublicPage bundles ListPublicPosts with its totals.
func (s *Store) PublicPage(ctx context.Context, page, pageSize int) (Page[Post], error) {
	posts, err := s.ListPublicPosts(ctx, page, pageSize)
	if err != nil {
		return Page[Post]{}, err
	}
	total, err := s.CountPublicPosts(ctx)
	if err != nil {
		return Page[Post]{}, err
	}
	return newPage(posts, page, pageSize, total), nil
}

// LabelPage bundles ListPostsByLabel with its totals and the resolved label.
func (s *Store) LabelPage(ctx context.Context, labelText string, page, pageSize int) (*Label, Page[Post], error) {
	if _, err := offset(page, pageSize); err != nil {
		return nil, Page[Post]{}, err
	}
	l, err := s.GetLabelByText(ctx, labelText)
	if err != nil {
		return nil, Page[Post]{}, err
	}
	posts, err := s.postsOfLabel(ctx, l.ID, published(), page, pageSize)
	if err != nil {
		return nil, Page[Post]{}, err
	}
	total, err := s.countPostsOfLabel(ctx, l.ID, published())
	if err != nil {
		return nil, Page[Post]{}, err
	}
	return l, newPage(posts, page, pageSize, total), nil
}

func newPage[T any](items []T, page, pageSize, total int) Page[T] {
	return Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: TotalPages(total, pageSize),
	}
}
