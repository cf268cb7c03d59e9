package content

import (
	"context"
	"database/sql"
	"strings"
)

const userColumns = `id, email, fullname, admin, active, avatar, reg_date`

func scanUser(sc scanner) (*User, error) {
	var (
		u             User
		admin, active int
		regDate       int64
	)
	if err := sc.Scan(&u.ID, &u.Email, &u.Fullname, &admin, &active, &u.Avatar, &regDate); err != nil {
		return nil, err
	}
	u.Admin = admin == 1
	u.Active = active == 1
	u.RegisteredAt = fromUnix(regDate)
	return &u, nil
}

func getUser(ctx context.Context, q querier, id int64) (*User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, notFoundOr(err, "user %d not found", id)
	}
	return u, nil
}

// CreateUser registers a new, active user.
// Returns ErrDuplicateEmail if the email is taken.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Fullname = strings.TrimSpace(in.Fullname)
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	var u *User
	err := s.inTx(ctx, "create user", func(ctx context.Context, tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO users (email, fullname, admin, active, avatar, reg_date)
			VALUES (?, ?, ?, 1, ?, ?)
			RETURNING id`,
			in.Email, in.Fullname, boolInt(in.Admin), in.Avatar, toUnix(s.now()),
		).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEmail.WithCause(err)
			}
			return err
		}
		u, err = getUser(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("user created", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// EnsureUser returns the user registered under in.Email, creating it first if
// needed. A concurrent creator winning the race is not an error.
func (s *Store) EnsureUser(ctx context.Context, in NewUser) (*User, error) {
	u, err := s.GetUserByEmail(ctx, in.Email)
	if err == nil {
		return u, nil
	}
	if CodeOf(err) != CodeNotFound {
		return nil, err
	}
	u, err = s.CreateUser(ctx, in)
	if CodeOf(err) == CodeDuplicateEmail {
		return s.GetUserByEmail(ctx, in.Email)
	}
	return u, err
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	u, err := getUser(ctx, s.db, id)
	if err != nil {
		return nil, storageError("get user", err)
	}
	return u, nil
}

// GetUserByEmail returns the user registered under email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, storageError("get user by email", notFoundOr(err, "user %q not found", email))
	}
	return u, nil
}

// SetUserActive flips the active flag.
func (s *Store) SetUserActive(ctx context.Context, id int64, active bool) (*User, error) {
	return s.setUserFlag(ctx, id, "active", active)
}

// SetUserAdmin flips the admin flag.
func (s *Store) SetUserAdmin(ctx context.Context, id int64, admin bool) (*User, error) {
	return s.setUserFlag(ctx, id, "admin", admin)
}

// setUserFlag updates one of the two mutable user columns. column is never
// caller-supplied.
func (s *Store) setUserFlag(ctx context.Context, id int64, column string, v bool) (*User, error) {
	var u *User
	err := s.inTx(ctx, "set user "+column, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE users SET `+column+` = ? WHERE id = ?`, boolInt(v), id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return NotFoundf("user %d not found", id)
		}
		u, err = getUser(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetAuthor resolves the user who wrote p.
func (s *Store) GetAuthor(ctx context.Context, p *Post) (*User, error) {
	return s.GetUser(ctx, p.UserID)
}
