package identity

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// SQLStore persists users via database/sql. The queries use $N
// placeholders, which both the pgx and modernc sqlite drivers accept.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const userColumns = `user_id, email, password_hash, full_name, phone, date_of_birth, gender, address, profile_picture, role, created_at`

func (s *SQLStore) Create(ctx context.Context, u *User) error {
	err := s.db.QueryRowContext(ctx, `
		insert into users (email, password_hash, full_name, phone, date_of_birth, gender, address, profile_picture, role, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		returning user_id`,
		u.Email, u.PasswordHash, u.FullName, nullString(u.Phone), u.DateOfBirth,
		nullString(u.Gender), nullString(u.Address), nullString(u.ProfilePicture),
		u.Role, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *SQLStore) ByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where user_id = $1`, id)
	return scanUser(row)
}

func (s *SQLStore) ByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email = $1`, email)
	return scanUser(row)
}

func (s *SQLStore) Update(ctx context.Context, u *User) error {
	res, err := s.db.ExecContext(ctx, `
		update users
		set full_name = $1, phone = $2, date_of_birth = $3, gender = $4, address = $5, profile_picture = $6
		where user_id = $7`,
		u.FullName, nullString(u.Phone), u.DateOfBirth, nullString(u.Gender),
		nullString(u.Address), nullString(u.ProfilePicture), u.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u                              User
		phone, gender, address, avatar sql.NullString
		dob                            sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &phone, &dob, &gender, &address, &avatar, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Phone = phone.String
	u.Gender = gender.String
	u.Address = address.String
	u.ProfilePicture = avatar.String
	if dob.Valid {
		t := dob.Time
		u.DateOfBirth = &t
	}
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Driver-neutral detection: both Postgres and SQLite mention the word
// in their unique-constraint error text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
