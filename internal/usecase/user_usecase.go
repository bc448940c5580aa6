package usecase

import (
	"context"
	"errors"
	"strings"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/apperror"
	"hirematrix-backend/pkg/credentials"
	"hirematrix-backend/pkg/security"

	"github.com/go-playground/validator/v10"
)

type userUsecase struct {
	userRepo domain.UserRepository
	validate *validator.Validate
}

func NewUserUsecase(userRepo domain.UserRepository, validate *validator.Validate) domain.UserUsecase {
	return &userUsecase{userRepo: userRepo, validate: validate}
}

// CreateUser lets an admin add an account to the tenant named in the request.
// A tenant id with no matching row is rejected by the store.
func (u *userUsecase) CreateUser(ctx context.Context, p *domain.Principal, req domain.CreateUserRequest) (*domain.User, error) {
	if err := requireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	req.TenantID = strings.TrimSpace(req.TenantID)
	if err := u.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	hash, err := credentials.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         domain.Role(req.Role),
		TenantID:     strings.ToLower(req.TenantID),
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			return nil, apperror.Conflict("Email already registered")
		case errors.Is(err, domain.ErrUnknownTenant):
			return nil, apperror.BadRequest("Tenant does not exist")
		}
		return nil, apperror.Internal(err)
	}

	security.DefaultLogger().Log(ctx, security.SecurityEvent{
		Event:        security.EventUserCreated,
		SubjectType:  "user_id",
		SubjectValue: user.ID,
		TenantID:     user.TenantID,
		Details:      map[string]interface{}{"role": user.Role, "created_by": p.UserID},
	})
	return user, nil
}

func (u *userUsecase) ListUsers(ctx context.Context, p *domain.Principal) ([]domain.User, error) {
	if err := requireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := u.userRepo.ListByTenant(ctx, p.TenantID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return users, nil
}
