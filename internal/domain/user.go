package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	TenantID     string    `json:"tenant_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserRepository interface {
	// Create fails with ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// UpsertByEmail inserts the user or overwrites name, password, role and tenant of
	// the existing account with the same email. user.ID is set to the stored id.
	UpsertByEmail(ctx context.Context, user *User) error
	ListByTenant(ctx context.Context, tenantID string) ([]User, error)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// ClientMeta carries request details for audit logging.
type ClientMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"omitempty,max=120,valid_name"`
	Role     string `json:"role" validate:"required,valid_role"`
	TenantID string `json:"tenant_id" validate:"required,uuid"`
}

// LoginGuard throttles repeated failed logins for one email.
type LoginGuard interface {
	IsBlocked(ctx context.Context, email string) (bool, error)
	// RecordFailure reports true when this failure triggered a block.
	RecordFailure(ctx context.Context, email, ip, requestID string) (bool, error)
	Clear(ctx context.Context, email string) error
}

type AuthUsecase interface {
	Login(ctx context.Context, req LoginRequest, meta ClientMeta) (*LoginResult, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
}

type UserUsecase interface {
	CreateUser(ctx context.Context, principal *Principal, req CreateUserRequest) (*User, error)
	ListUsers(ctx context.Context, principal *Principal) ([]User, error)
}
