package middleware

import (
	"errors"
	"net/http"
	"strings"

	"hirematrix-backend/internal/delivery/http/response"
	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/apperror"
	"hirematrix-backend/pkg/auth"
	"hirematrix-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token and stores the caller as a
// *domain.Principal. The role and tenant come from the database, not the token.
func AuthMiddleware(tokens *auth.TokenManager, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			denyUnauthorized(c, "", "missing_token")
			response.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			denyUnauthorized(c, "", "invalid_token")
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		user, err := authUC.GetCurrentUser(c.Request.Context(), claims.Subject)
		if err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Code == http.StatusNotFound {
				denyUnauthorized(c, claims.Subject, "user_not_found")
				response.Error(c, http.StatusUnauthorized, "User not found", nil)
				c.Abort()
				return
			}
			c.Error(err)
			c.Abort()
			return
		}

		principal := &domain.Principal{
			UserID:   user.ID,
			Email:    user.Email,
			Role:     user.Role,
			TenantID: user.TenantID,
		}
		c.Set(string(domain.KeyPrincipal), principal)
		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRole), string(user.Role))
		c.Set(string(domain.KeyTenantID), user.TenantID)

		c.Next()
	}
}

// GetPrincipal returns the caller stored by AuthMiddleware, or nil.
func GetPrincipal(c *gin.Context) *domain.Principal {
	v, ok := c.Get(string(domain.KeyPrincipal))
	if !ok {
		return nil
	}
	p, _ := v.(*domain.Principal)
	return p
}

// RequireRole returns the caller when it holds one of roles. With no roles any
// authenticated caller passes. Handlers call it before doing anything else.
func RequireRole(c *gin.Context, roles ...domain.Role) (*domain.Principal, error) {
	p := GetPrincipal(c)
	if p == nil {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if len(roles) > 0 && !p.HasRole(roles...) {
		security.DefaultLogger().LogAccessDenied(
			c.Request.Context(), security.EventForbiddenAccess, p.UserID, c.ClientIP(),
			GetRequestID(c), c.FullPath(), "role:"+string(p.Role),
		)
		return nil, apperror.Forbidden("You do not have permission to access this resource")
	}
	return p, nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func denyUnauthorized(c *gin.Context, userID, reason string) {
	security.DefaultLogger().LogAccessDenied(
		c.Request.Context(), security.EventUnauthorizedAccess, userID, c.ClientIP(),
		GetRequestID(c), c.FullPath(), reason,
	)
}
