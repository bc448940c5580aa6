package domain

import (
	"context"
	"encoding/json"
	"time"
)

type InterviewStatus string

const (
	InterviewStatusOngoing   InterviewStatus = "ongoing"
	InterviewStatusCompleted InterviewStatus = "completed"
)

// Interview is the persisted record of one engine-driven interview session.
// The id is assigned by the interview engine.
type Interview struct {
	ID                 string          `json:"id"`
	TenantID           string          `json:"tenant_id"`
	CandidateName      string          `json:"candidate_name"`
	JDScore            int             `json:"jd_score"`
	Strengths          []string        `json:"strengths"`
	Gaps               []string        `json:"gaps"`
	CurrentQuestion    *string         `json:"current_question"`
	EvaluationSummary  *string         `json:"evaluation_summary"`
	TechnicalScore     *int            `json:"technical_score"`
	CommunicationScore *int            `json:"communication_score"`
	ConfidenceScore    *int            `json:"confidence_score"`
	RiskLevel          *string         `json:"risk_level"`
	Status             InterviewStatus `json:"status"`
	QuestionCount      int             `json:"question_count"`
	TranscriptRef      *string         `json:"transcript_ref,omitempty"`
	LastAnswerKey      *string         `json:"-"`
	LastAnswerResponse json.RawMessage `json:"-"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (i *Interview) IsCompleted() bool {
	return i.Status == InterviewStatusCompleted
}

// AnswerUpdate is the partial write applied after the engine accepted an answer.
// It only succeeds while the row is ongoing and still at ExpectedQuestionCount.
type AnswerUpdate struct {
	ID                    string
	TenantID              string
	ExpectedQuestionCount int
	CurrentQuestion       *string
	EvaluationSummary     string
	TechnicalScore        *int
	CommunicationScore    *int
	ConfidenceScore       *int
	RiskLevel             string
	Status                InterviewStatus
	IdempotencyKey        *string
	Response              json.RawMessage
}

type InterviewRepository interface {
	// Upsert fails with ErrConflict when the id already belongs to another tenant.
	Upsert(ctx context.Context, interview *Interview) error
	FindByID(ctx context.Context, id, tenantID string) (*Interview, error)
	ListByTenant(ctx context.Context, tenantID string) ([]Interview, error)
	// ApplyAnswer fails with ErrConflict when the guard does not match.
	ApplyAnswer(ctx context.Context, update AnswerUpdate) (*Interview, error)
	SetTranscriptRef(ctx context.Context, tenantID, id, ref string) error
}

// Interview engine contract

type StartInterviewRequest struct {
	Name      string   `json:"name"`
	Score     int      `json:"score"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
}

type StartInterviewResult struct {
	InterviewID string `json:"interview_id"`
	Question    string `json:"question"`
}

type EngineAnswer struct {
	InterviewComplete bool    `json:"interview_complete"`
	NextQuestion      *string `json:"next_question,omitempty"`
	Evaluation        string  `json:"evaluation"`
	Risk              string  `json:"risk"`
	// Raw is the response body exactly as the engine sent it.
	Raw json.RawMessage `json:"-"`
}

type InterviewEngine interface {
	Start(ctx context.Context, req StartInterviewRequest) (*StartInterviewResult, error)
	SubmitAnswer(ctx context.Context, interviewID, answer, idempotencyKey string) (*EngineAnswer, error)
}

// Session usecase

type SessionView struct {
	InterviewID   string          `json:"interview_id"`
	CandidateName string          `json:"candidate_name"`
	Question      string          `json:"question"`
	Status        InterviewStatus `json:"status"`
	QuestionCount int             `json:"question_count"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" validate:"required,max=10000"`
	// Question echoes the question the client answered; a mismatch means the client state is stale.
	Question       *string `json:"question,omitempty"`
	IdempotencyKey string  `json:"idempotency_key,omitempty" validate:"omitempty,max=128"`
}

type InterviewDashboardRow struct {
	ID                 string          `json:"id"`
	CandidateName      string          `json:"candidate_name"`
	JDScore            int             `json:"jd_score"`
	Strengths          []string        `json:"strengths"`
	Gaps               []string        `json:"gaps"`
	TechnicalScore     *int            `json:"technical_score"`
	CommunicationScore *int            `json:"communication_score"`
	ConfidenceScore    *int            `json:"confidence_score"`
	RiskLevel          *string         `json:"risk_level"`
	Status             InterviewStatus `json:"status"`
	QuestionCount      int             `json:"question_count"`
	EvaluationSummary  string          `json:"evaluation_summary"`
	InterviewCost      float64         `json:"interview_cost"`
	CreatedAt          time.Time       `json:"created_at"`
}

type InterviewUsecase interface {
	StartSession(ctx context.Context, principal *Principal, interviewID string) (*SessionView, error)
	// SubmitAnswer returns the engine response with interview_id added.
	SubmitAnswer(ctx context.Context, principal *Principal, interviewID string, req SubmitAnswerRequest) (json.RawMessage, error)
	ListInterviews(ctx context.Context, principal *Principal) ([]InterviewDashboardRow, error)
	// ExportInterviews returns an XLSX workbook and its file name.
	ExportInterviews(ctx context.Context, principal *Principal) ([]byte, string, error)
}
