package domain

import "context"

// ============================================================================
// Candidate forwarding
// ============================================================================

type ForwardCandidateRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	// Score accepts a 0-1 fraction or a 0-100 value.
	Score     float64  `json:"score"`
	Strengths []string `json:"strengths" validate:"max=20,dive,max=500"`
	Gaps      []string `json:"gaps" validate:"max=20,dive,max=500"`
	Email     string   `json:"email,omitempty" validate:"omitempty,email,max=254"`
}

type ForwardCandidateResult struct {
	InterviewID       string `json:"interview_id"`
	Question          string `json:"question"`
	CandidateEmail    string `json:"candidate_email"`
	Username          string `json:"username"`
	TemporaryPassword string `json:"temporary_password"`
	NotificationSent  bool   `json:"notification_sent"`
}

type OnboardingUsecase interface {
	ForwardCandidate(ctx context.Context, principal *Principal, req ForwardCandidateRequest) (*ForwardCandidateResult, error)
}

// ============================================================================
// Credential notification
// ============================================================================

type Notification struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type CredentialNotifier interface {
	// Enabled is false when no delivery channel is configured.
	Enabled() bool
	Notify(ctx context.Context, msg Notification) error
}
