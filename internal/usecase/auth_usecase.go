package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/apperror"
	"hirematrix-backend/pkg/auth"
	"hirematrix-backend/pkg/credentials"
	"hirematrix-backend/pkg/logger"
	"hirematrix-backend/pkg/security"
)

var (
	// Compared against when the email is unknown so both failure paths cost one bcrypt check.
	dummyHash     string
	dummyHashOnce sync.Once
)

type authUsecase struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenManager
	guard    domain.LoginGuard
}

// NewAuthUsecase builds the login flow. guard may be nil.
func NewAuthUsecase(userRepo domain.UserRepository, tokens *auth.TokenManager, guard domain.LoginGuard) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo, tokens: tokens, guard: guard}
}

func (u *authUsecase) Login(ctx context.Context, req domain.LoginRequest, meta domain.ClientMeta) (*domain.LoginResult, error) {
	audit := security.DefaultLogger()
	invalid := apperror.Unauthorized("Invalid email or password")
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if u.guard != nil {
		blocked, err := u.guard.IsBlocked(ctx, email)
		if err != nil {
			logger.Log.Warn("login guard unavailable", "error", err)
		} else if blocked {
			audit.LogLoginFailed(ctx, email, meta.IP, meta.UserAgent, meta.RequestID, "blocked")
			return nil, apperror.New(http.StatusTooManyRequests, "Too many failed login attempts. Please try again later.", nil)
		}
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Internal(err)
		}
		dummyHashOnce.Do(func() {
			dummyHash, _ = credentials.HashPassword("not-a-real-password")
		})
		credentials.CheckPassword(dummyHash, req.Password)
		audit.LogLoginFailed(ctx, email, meta.IP, meta.UserAgent, meta.RequestID, "unknown_email")
		u.recordFailure(ctx, email, meta)
		return nil, invalid
	}

	if !credentials.CheckPassword(user.PasswordHash, req.Password) {
		audit.LogLoginFailed(ctx, email, meta.IP, meta.UserAgent, meta.RequestID, "invalid_password")
		u.recordFailure(ctx, email, meta)
		return nil, invalid
	}

	token, expiresAt, err := u.tokens.Issue(user.ID, user.Email, string(user.Role), user.TenantID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if u.guard != nil {
		if err := u.guard.Clear(ctx, email); err != nil {
			logger.Log.Warn("failed to clear login failures", "error", err)
		}
	}

	audit.LogLoginSuccess(ctx, user.ID, user.TenantID, meta.IP, meta.UserAgent, meta.RequestID)
	return &domain.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (u *authUsecase) recordFailure(ctx context.Context, email string, meta domain.ClientMeta) {
	if u.guard == nil {
		return
	}
	if _, err := u.guard.RecordFailure(ctx, email, meta.IP, meta.RequestID); err != nil {
		logger.Log.Warn("failed to record login failure", "error", err)
	}
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.New(http.StatusNotFound, "User not found", err)
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
