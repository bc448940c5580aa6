package usecase

import (
	"errors"
	"net/http"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/apperror"
	"hirematrix-backend/pkg/validation"
)

var serviceNames = map[string]string{
	"interview-engine":     "Interview engine",
	"talent-search":        "Talent search service",
	"notification-webhook": "Notification service",
}

// requireRole rejects anonymous callers with 401 and callers lacking every role with 403.
func requireRole(p *domain.Principal, roles ...domain.Role) error {
	if p == nil || p.UserID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	if len(roles) > 0 && !p.HasRole(roles...) {
		return apperror.Forbidden("You do not have permission to perform this action")
	}
	return nil
}

func validationError(err error) error {
	return apperror.Validation("Validation failed", validation.FieldErrors(err))
}

// upstreamError keeps the upstream status when it is an HTTP error status and
// falls back to 502 otherwise.
func upstreamError(err error) error {
	var up *domain.UpstreamError
	if !errors.As(err, &up) {
		return apperror.BadGateway("Upstream service unavailable", err)
	}

	code := http.StatusBadGateway
	if up.StatusCode >= 400 && up.StatusCode <= 599 {
		code = up.StatusCode
	}

	name := serviceNames[up.Service]
	if name == "" {
		name = "Upstream service"
	}
	switch {
	case errors.Is(err, domain.ErrBadUpstreamResponse):
		return apperror.New(code, name+" returned an invalid response", err)
	case code < http.StatusInternalServerError:
		return apperror.New(code, name+" rejected the request", err)
	}
	return apperror.New(code, name+" is unavailable", err)
}
