package content

import (
	"context"
	"database/sql"
	"strings"
)

// postColumns must match the scan order in scanPost.
const postColumns = `p.id, p.title, p.content, p.timestamp, p.status, p.user_id`

func scanPost(sc scanner) (*Post, error) {
	var (
		p  Post
		ts int64
	)
	if err := sc.Scan(&p.ID, &p.Title, &p.Content, &ts, &p.Status, &p.UserID); err != nil {
		return nil, err
	}
	p.Timestamp = fromUnix(ts)
	return &p, nil
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	defer rows.Close()
	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func getPost(ctx context.Context, q querier, id int64) (*Post, error) {
	p, err := scanPost(q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = ?`, id))
	if err != nil {
		return nil, notFoundOr(err, "post %d not found", id)
	}
	return p, nil
}

// CreatePost stores a new post stamped with the current time, in status
// in.Status (published by default), and attaches the existing labels named
// in in.Labels in the same transaction. Unknown label texts are skipped.
// Returns ErrDuplicateTitle if another post already uses the title, and
// ErrNotFound if the author does not exist.
func (s *Store) CreatePost(ctx context.Context, in NewPost) (*Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.validate.check(in); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, InvalidArgumentf("unknown status %d", int(in.Status))
	}

	var p *Post
	err := s.inTx(ctx, "create post", func(ctx context.Context, tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO posts (title, content, timestamp, status, user_id)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`,
			in.Title, in.Content, toUnix(s.now()), in.Status, in.AuthorID,
		).Scan(&id)
		switch {
		case err == nil:
		case isUniqueViolation(err):
			return ErrDuplicateTitle.WithDetails(map[string]string{"title": in.Title}).WithCause(err)
		case isForeignKeyViolation(err):
			return NotFoundf("user %d not found", in.AuthorID)
		default:
			return err
		}
		if err := attachTexts(ctx, tx, id, in.Labels); err != nil {
			return err
		}
		p, err = getPost(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("post created", "post_id", p.ID, "title", p.Title, "status", p.Status, "user_id", p.UserID)
	return p, nil
}

// UpdatePost applies a partial update of title and/or content. Timestamp and
// status are never touched.
func (s *Store) UpdatePost(ctx context.Context, id int64, upd PostUpdate) (*Post, error) {
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		upd.Title = &t
	}
	if err := s.validate.check(upd); err != nil {
		return nil, err
	}

	var p *Post
	err := s.inTx(ctx, "update post", func(ctx context.Context, tx *sql.Tx) error {
		cur, err := getPost(ctx, tx, id)
		if err != nil {
			return err
		}
		if upd.Title != nil {
			cur.Title = *upd.Title
		}
		if upd.Content != nil {
			cur.Content = *upd.Content
		}
		_, err = tx.ExecContext(ctx, `UPDATE posts SET title = ?, content = ? WHERE id = ?`,
			cur.Title, cur.Content, id)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateTitle.WithDetails(map[string]string{"title": cur.Title}).WithCause(err)
			}
			return err
		}
		p = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("post updated", "post_id", id)
	return p, nil
}

// SetPostStatus moves a post to any of the three states. Every transition is
// allowed.
func (s *Store) SetPostStatus(ctx context.Context, id int64, status Status) (*Post, error) {
	if !status.Valid() {
		return nil, InvalidArgumentf("unknown status %d", int(status))
	}
	var p *Post
	err := s.inTx(ctx, "set post status", func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE posts SET status = ? WHERE id = ?`, status, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return NotFoundf("post %d not found", id)
		}
		p, err = getPost(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("post status changed", "post_id", id, "status", status.String())
	return p, nil
}

// DeletePost removes a post and every relationship row pointing at it in one
// transaction.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	err := s.inTx(ctx, "delete post", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM label_relationships WHERE post_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return NotFoundf("post %d not found", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("post deleted", "post_id", id)
	return nil
}

// GetPost returns a post regardless of status.
func (s *Store) GetPost(ctx context.Context, id int64) (*Post, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	p, err := getPost(ctx, s.db, id)
	if err != nil {
		return nil, storageError("get post", err)
	}
	return p, nil
}

// ListPosts returns one page of posts newest first. A nil status lists every
// post; otherwise only posts in that state.
func (s *Store) ListPosts(ctx context.Context, status *Status, page, pageSize int) ([]Post, error) {
	off, err := offset(page, pageSize)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var rows *sql.Rows
	if status == nil {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+postColumns+` FROM posts p
			ORDER BY p.timestamp DESC, p.id DESC
			LIMIT ? OFFSET ?`, pageSize, off)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+postColumns+` FROM posts p
			WHERE p.status = ?
			ORDER BY p.timestamp DESC, p.id DESC
			LIMIT ? OFFSET ?`, *status, pageSize, off)
	}
	if err != nil {
		return nil, storageError("list posts", err)
	}
	posts, err := scanPosts(rows)
	if err != nil {
		return nil, storageError("list posts", err)
	}
	return posts, nil
}

// CountPosts counts posts, optionally restricted to one status.
func (s *Store) CountPosts(ctx context.Context, status *Status) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var (
		n   int
		err error
	)
	if status == nil {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE status = ?`, *status).Scan(&n)
	}
	if err != nil {
		return 0, storageError("count posts", err)
	}
	return n, nil
}
