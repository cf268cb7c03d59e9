package content

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

const labelColumns = `l.id, l.text, l.timestamp, l.user_id`

func scanLabel(sc scanner) (*Label, error) {
	var (
		l  Label
		ts int64
	)
	if err := sc.Scan(&l.ID, &l.Text, &ts, &l.UserID); err != nil {
		return nil, err
	}
	l.Timestamp = fromUnix(ts)
	return &l, nil
}

func scanLabels(rows *sql.Rows) ([]Label, error) {
	defer rows.Close()
	labels := []Label{}
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, *l)
	}
	return labels, rows.Err()
}

func getLabel(ctx context.Context, q querier, id int64) (*Label, error) {
	l, err := scanLabel(q.QueryRowContext(ctx, `SELECT `+labelColumns+` FROM labels l WHERE l.id = ?`, id))
	if err != nil {
		return nil, notFoundOr(err, "label %d not found", id)
	}
	return l, nil
}

// errLabelIntegrity marks a label text that resolves to more than one row.
var errLabelIntegrity = errors.New("label text is not unique")

// labelByText resolves text to exactly one label. Zero rows is NotFound; more
// than one row means the uniqueness invariant is broken and is reported as an
// internal fault instead of picking one.
func labelByText(ctx context.Context, q querier, text string) (*Label, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+labelColumns+` FROM labels l WHERE l.text = ? LIMIT 2`, text)
	if err != nil {
		return nil, err
	}
	labels, err := scanLabels(rows)
	if err != nil {
		return nil, err
	}
	switch len(labels) {
	case 0:
		return nil, NotFoundf("label %q not found", text)
	case 1:
		return &labels[0], nil
	default:
		return nil, Internalf("label text %q matches %d rows", text, len(labels)).WithCause(errLabelIntegrity)
	}
}

// CreateLabel stores a new label. Returns ErrDuplicateText if the text is
// already in use.
func (s *Store) CreateLabel(ctx context.Context, in NewLabel) (*Label, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	var l *Label
	err := s.inTx(ctx, "create label", func(ctx context.Context, tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO labels (text, timestamp, user_id)
			VALUES (?, ?, ?)
			RETURNING id`,
			in.Text, toUnix(s.now()), in.AuthorID,
		).Scan(&id)
		switch {
		case err == nil:
		case isUniqueViolation(err):
			return ErrDuplicateText.WithDetails(map[string]string{"text": in.Text}).WithCause(err)
		case isForeignKeyViolation(err):
			return NotFoundf("user %d not found", in.AuthorID)
		default:
			return err
		}
		l, err = getLabel(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("label created", "label_id", l.ID, "text", l.Text)
	return l, nil
}

// DeleteLabel removes a label and detaches it from every post, atomically.
func (s *Store) DeleteLabel(ctx context.Context, id int64) error {
	var detached int64
	err := s.inTx(ctx, "delete label", func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM label_relationships WHERE label_id = ?`, id)
		if err != nil {
			return err
		}
		detached, _ = res.RowsAffected()
		res, err = tx.ExecContext(ctx, `DELETE FROM labels WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return NotFoundf("label %d not found", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("label deleted", "label_id", id, "detached", detached)
	return nil
}

// GetLabel returns the label with the given id.
func (s *Store) GetLabel(ctx context.Context, id int64) (*Label, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	l, err := getLabel(ctx, s.db, id)
	if err != nil {
		return nil, storageError("get label", err)
	}
	return l, nil
}

// GetLabelByText returns the label whose text is exactly text.
func (s *Store) GetLabelByText(ctx context.Context, text string) (*Label, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	l, err := labelByText(ctx, s.db, strings.TrimSpace(text))
	if err != nil {
		if errors.Is(err, errLabelIntegrity) {
			s.logger.Error("label integrity fault", "text", text, "error", err)
		}
		return nil, storageError("get label by text", err)
	}
	return l, nil
}

// ListLabels returns every label, newest first.
func (s *Store) ListLabels(ctx context.Context) ([]Label, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT `+labelColumns+` FROM labels l ORDER BY l.timestamp DESC, l.id DESC`)
	if err != nil {
		return nil, storageError("list labels", err)
	}
	labels, err := scanLabels(rows)
	if err != nil {
		return nil, storageError("list labels", err)
	}
	return labels, nil
}
