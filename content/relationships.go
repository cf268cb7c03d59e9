package content

import (
	"context"
	"database/sql"
	"strings"
)

// requireEndpoints checks that both ends of a relationship exist, naming the
// missing one in the error.
func requireEndpoints(ctx context.Context, q querier, postID, labelID int64) error {
	if _, err := getPost(ctx, q, postID); err != nil {
		return err
	}
	if _, err := getLabel(ctx, q, labelID); err != nil {
		return err
	}
	return nil
}

// AttachLabel tags a post with a label. Attaching the same pair twice fails
// with ErrAlreadyAttached; callers may treat that as success.
func (s *Store) AttachLabel(ctx context.Context, postID, labelID int64) error {
	err := s.inTx(ctx, "attach label", func(ctx context.Context, tx *sql.Tx) error {
		if err := requireEndpoints(ctx, tx, postID, labelID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO label_relationships (post_id, label_id) VALUES (?, ?)`, postID, labelID)
		switch {
		case err == nil:
			return nil
		case isUniqueViolation(err):
			return ErrAlreadyAttached.WithDetails(Relationship{PostID: postID, LabelID: labelID}).WithCause(err)
		case isForeignKeyViolation(err):
			return NotFoundf("post %d or label %d not found", postID, labelID)
		default:
			return err
		}
	})
	if err != nil {
		return err
	}
	s.logger.Debug("label attached", "post_id", postID, "label_id", labelID)
	return nil
}

// DetachLabel removes one post-label attachment.
func (s *Store) DetachLabel(ctx context.Context, postID, labelID int64) error {
	err := s.inTx(ctx, "detach label", func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM label_relationships WHERE post_id = ? AND label_id = ?`, postID, labelID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return NotFoundf("label %d is not attached to post %d", labelID, postID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("label detached", "post_id", postID, "label_id", labelID)
	return nil
}

// AttachLabelsByText tags a post with every existing label named in texts.
// Unknown texts and pairs that are already attached are skipped. It returns
// the labels of the post afterwards.
func (s *Store) AttachLabelsByText(ctx context.Context, postID int64, texts []string) ([]Label, error) {
	var labels []Label
	err := s.inTx(ctx, "attach labels", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := getPost(ctx, tx, postID); err != nil {
			return err
		}
		if err := attachTexts(ctx, tx, postID, texts); err != nil {
			return err
		}
		var err error
		labels, err = labelsOfPost(ctx, tx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// attachTexts attaches every existing label named in texts to postID inside
// tx, skipping unknown texts and pairs that are already attached.
func attachTexts(ctx context.Context, tx *sql.Tx, postID int64, texts []string) error {
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		l, err := labelByText(ctx, tx, text)
		if CodeOf(err) == CodeNotFound {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO label_relationships (post_id, label_id) VALUES (?, ?)
			ON CONFLICT (post_id, label_id) DO NOTHING`, postID, l.ID); err != nil {
			return err
		}
	}
	return nil
}

func labelsOfPost(ctx context.Context, q querier, postID int64) ([]Label, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+labelColumns+`
		FROM labels l
		JOIN label_relationships r ON r.label_id = l.id
		WHERE r.post_id = ?
		ORDER BY l.timestamp DESC, l.id DESC`, postID)
	if err != nil {
		return nil, err
	}
	return scanLabels(rows)
}

// LabelsOfPost returns the labels attached to a post, newest label first.
// An unknown post has no labels.
func (s *Store) LabelsOfPost(ctx context.Context, postID int64) ([]Label, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	labels, err := labelsOfPost(ctx, s.db, postID)
	if err != nil {
		return nil, storageError("labels of post", err)
	}
	return labels, nil
}

// PostsOfLabel returns one page of the posts carrying a label, newest first,
// whatever their status.
func (s *Store) PostsOfLabel(ctx context.Context, labelID int64, page, pageSize int) ([]Post, error) {
	return s.postsOfLabel(ctx, labelID, nil, page, pageSize)
}

// CountPostsOfLabel counts the posts carrying a label, whatever their status.
func (s *Store) CountPostsOfLabel(ctx context.Context, labelID int64) (int, error) {
	return s.countPostsOfLabel(ctx, labelID, nil)
}

func (s *Store) postsOfLabel(ctx context.Context, labelID int64, status *Status, page, pageSize int) ([]Post, error) {
	off, err := offset(page, pageSize)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN label_relationships r ON r.post_id = p.id
		WHERE r.label_id = ?`
	args := []any{labelID}
	if status != nil {
		query += ` AND p.status = ?`
		args = append(args, *status)
	}
	query += `
		ORDER BY p.timestamp DESC, p.id DESC
		LIMIT ? OFFSET ?`
	args = append(args, pageSize, off)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("posts of label", err)
	}
	posts, err := scanPosts(rows)
	if err != nil {
		return nil, storageError("posts of label", err)
	}
	return posts, nil
}

func (s *Store) countPostsOfLabel(ctx context.Context, labelID int64, status *Status) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := `
		SELECT COUNT(*)
		FROM label_relationships r
		JOIN posts p ON p.id = r.post_id
		WHERE r.label_id = ?`
	args := []any{labelID}
	if status != nil {
		query += ` AND p.status = ?`
		args = append(args, *status)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, storageError("count posts of label", err)
	}
	return n, nil
}
