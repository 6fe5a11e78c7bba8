package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name, lastName, passwordHash, salt string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		Name:         name,
		LastName:     lastName,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Role represents an application role (e.g. organizer, attendee)
type Role struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	AssignRole(ctx context.Context, userID, roleID string) error
}

// RoleRepository defines the interface for role storage
type RoleRepository interface {
	GetByCode(ctx context.Context, code string) (*Role, error)
	ListByUserID(ctx context.Context, userID string) ([]*Role, error)
}

// SignUpInput is the closed input schema for account creation.
type SignUpInput struct {
	Email    string
	Code     string
	Name     string
	LastName string
	Password string
}

// UserService defines the business logic for accounts and authentication.
type UserService interface {
	// RequestVerification issues an email verification code and sends it.
	RequestVerification(ctx context.Context, email string) error
	// SignUp verifies the code, creates the account, and consumes the code,
	// in that order, then returns a signed token.
	SignUp(ctx context.Context, input SignUpInput) (token string, user *User, err error)
	LogIn(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
}
