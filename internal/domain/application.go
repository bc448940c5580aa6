package domain

import (
	"context"
	"time"
)

// Application links a forwarded candidate's contact identity to one interview.
type Application struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	InterviewID    string    `json:"interview_id"`
	CandidateEmail string    `json:"candidate_email"`
	CandidateName  string    `json:"candidate_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ApplicationRepository interface {
	// Upsert is keyed by interview id; re-forwarding overwrites email and name.
	Upsert(ctx context.Context, app *Application) error
	GetByInterviewID(ctx context.Context, tenantID, interviewID string) (*Application, error)
}
