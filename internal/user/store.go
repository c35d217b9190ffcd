package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("user: not found")
	ErrDuplicateEmail = errors.New("user: email already exists")
)

// Store persists user records. Email lookups are case-insensitive;
// implementations store emails lowercased and enforce uniqueness on create.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
	All(ctx context.Context) ([]User, error)
}
