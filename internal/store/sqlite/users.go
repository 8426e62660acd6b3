package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, username, email, first_name, last_name, bio, role,
	is_superuser, is_staff, date_joined`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u           domain.User
		role        string
		isSuperuser int
		isStaff     int
		dateJoined  string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Bio,
		&role,
		&isSuperuser,
		&isStaff,
		&dateJoined,
	)
	if err != nil {
		return nil, err
	}

	u.Role = domain.Role(role)
	u.IsSuperuser = isSuperuser != 0
	u.IsStaff = isStaff != 0
	if u.DateJoined, err = parseTime(dateJoined); err != nil {
		return nil, fmt.Errorf("parse date_joined: %w", err)
	}
	return &u, nil
}

// CreateUser inserts u and sets its ID.
// Returns store.ErrAlreadyExists if the username or email is taken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, first_name, last_name, bio, role, is_superuser, is_staff, date_joined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username,
		u.Email,
		u.FirstName,
		u.LastName,
		u.Bio,
		string(u.Role),
		boolToInt(u.IsSuperuser),
		boolToInt(u.IsStaff),
		formatTime(u.DateJoined),
	)
	if err != nil {
		return mapError(err)
	}

	u.ID, err = res.LastInsertId()
	return err
}

// GetUser returns the user with the given ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	return u, mapError(err)
}

// GetUserByUsername returns the user with an exactly matching username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	return u, mapError(err)
}

// GetUserByEmail returns the user with an exactly matching email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	return u, mapError(err)
}

// ListUsers returns users whose username contains search, ordered by role then username.
func (s *Store) ListUsers(ctx context.Context, search string, p store.PageParams) (store.Page[domain.User], error) {
	where := ""
	var args []any
	if search != "" {
		where = " WHERE " + foldedLike("username")
		args = append(args, likePattern(search))
	}

	var page store.Page[domain.User]
	var err error
	if page.Count, err = s.count(ctx, `SELECT COUNT(*) FROM users`+where, args...); err != nil {
		return page, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users`+where+` ORDER BY role, username LIMIT ? OFFSET ?`,
		append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return page, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	page.Items = []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return page, fmt.Errorf("scan user: %w", err)
		}
		page.Items = append(page.Items, *u)
	}
	return page, rows.Err()
}

// UpdateUser writes every mutable column of u.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?, bio = ?, role = ?,
			is_superuser = ?, is_staff = ?
		WHERE id = ?`,
		u.Username,
		u.Email,
		u.FirstName,
		u.LastName,
		u.Bio,
		string(u.Role),
		boolToInt(u.IsSuperuser),
		boolToInt(u.IsStaff),
		u.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// DeleteUser removes a user; their reviews, comments and pending code cascade.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// SetConfirmationCode upserts the pending code for c.UserID.
func (s *Store) SetConfirmationCode(ctx context.Context, c *domain.ConfirmationCode) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO confirmation_codes (user_id, code_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			code_hash = excluded.code_hash,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at`,
		c.UserID,
		c.CodeHash,
		formatTime(c.ExpiresAt),
		formatTime(c.CreatedAt),
	)
	return mapError(err)
}

// GetConfirmationCode returns the pending code for a user.
func (s *Store) GetConfirmationCode(ctx context.Context, userID int64) (*domain.ConfirmationCode, error) {
	var (
		c         domain.ConfirmationCode
		expiresAt string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, code_hash, expires_at, created_at FROM confirmation_codes WHERE user_id = ?`, userID,
	).Scan(&c.UserID, &c.CodeHash, &expiresAt, &createdAt)
	if err != nil {
		return nil, mapError(err)
	}

	if c.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteConfirmationCode consumes the pending code for a user.
func (s *Store) DeleteConfirmationCode(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM confirmation_codes WHERE user_id = ?`, userID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

