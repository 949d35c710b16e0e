package identity

import "context"

// UserStore persists principals for the identity service. This is the
// only place in the platform that ever sees a credential hash.
type UserStore interface {
	// Create inserts the user and assigns its ID. A duplicate email
	// yields ErrEmailTaken and leaves the existing row untouched.
	Create(ctx context.Context, u *User) error
	ByID(ctx context.Context, id int64) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
}
