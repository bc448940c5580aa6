package domain

import (
	"context"
	"time"
)

// SessionLocker serializes answer submissions per interview.
type SessionLocker interface {
	// TryLock fails immediately when the key is held; it never waits.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// TranscriptEntry is one question/answer exchange.
type TranscriptEntry struct {
	TenantID    string    `json:"tenant_id"`
	InterviewID string    `json:"interview_id"`
	Turn        int       `json:"turn"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Evaluation  string    `json:"evaluation"`
	Risk        string    `json:"risk"`
	Completed   bool      `json:"completed"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type TranscriptArchive interface {
	// Archive stores the entry and returns the transcript prefix for the interview.
	Archive(ctx context.Context, entry TranscriptEntry) (string, error)
}

const (
	EventInterviewForwarded = "interview.forwarded"
	EventInterviewCompleted = "interview.completed"
)

type InterviewEvent struct {
	Type               string    `json:"type"`
	InterviewID        string    `json:"interview_id"`
	TenantID           string    `json:"tenant_id"`
	CandidateName      string    `json:"candidate_name"`
	QuestionCount      int       `json:"question_count"`
	TechnicalScore     *int      `json:"technical_score,omitempty"`
	CommunicationScore *int      `json:"communication_score,omitempty"`
	ConfidenceScore    *int      `json:"confidence_score,omitempty"`
	RiskLevel          *string   `json:"risk_level,omitempty"`
	OccurredAt         time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event InterviewEvent) error
}

// HealthUsecase backs the liveness and db status probes.
type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
	DatabaseStatus(ctx context.Context) (map[string]interface{}, error)
}
