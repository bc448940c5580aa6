package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/apperror"
	"hirematrix-backend/pkg/evaluation"
	"hirematrix-backend/pkg/export"
	"hirematrix-backend/pkg/lock"
	"hirematrix-backend/pkg/logger"
	"hirematrix-backend/pkg/security"

	"github.com/go-playground/validator/v10"
)

const sideEffectTimeout = 10 * time.Second

// InterviewConfig holds the tunables of the session reconciler.
type InterviewConfig struct {
	LockTTL         time.Duration
	CostPerQuestion float64
}

type interviewUsecase struct {
	repo     domain.InterviewRepository
	engine   domain.InterviewEngine
	locker   domain.SessionLocker
	archive  domain.TranscriptArchive
	events   domain.EventPublisher
	validate *validator.Validate
	cfg      InterviewConfig
	now      func() time.Time
}

// NewInterviewUsecase wires the session reconciler. archive and events may be nil.
func NewInterviewUsecase(
	repo domain.InterviewRepository,
	engine domain.InterviewEngine,
	locker domain.SessionLocker,
	archive domain.TranscriptArchive,
	events domain.EventPublisher,
	validate *validator.Validate,
	cfg InterviewConfig,
) domain.InterviewUsecase {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}
	return &interviewUsecase{
		repo:     repo,
		engine:   engine,
		locker:   locker,
		archive:  archive,
		events:   events,
		validate: validate,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ============================================================================
// Session
// ============================================================================

func (u *interviewUsecase) StartSession(ctx context.Context, p *domain.Principal, interviewID string) (*domain.SessionView, error) {
	if err := requireRole(p); err != nil {
		return nil, err
	}

	iv, err := u.load(ctx, p, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.IsCompleted() {
		return nil, alreadyCompleted()
	}

	return &domain.SessionView{
		InterviewID:   iv.ID,
		CandidateName: iv.CandidateName,
		Question:      deref(iv.CurrentQuestion),
		Status:        iv.Status,
		QuestionCount: iv.QuestionCount,
	}, nil
}

func (u *interviewUsecase) SubmitAnswer(ctx context.Context, p *domain.Principal, interviewID string, req domain.SubmitAnswerRequest) (json.RawMessage, error) {
	if err := requireRole(p); err != nil {
		return nil, err
	}

	req.Answer = strings.TrimSpace(req.Answer)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if err := u.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	release, err := u.locker.TryLock(ctx, "interview:"+interviewID, u.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			u.reject(ctx, p, interviewID, "submission_in_progress", req.IdempotencyKey)
			return nil, apperror.New(http.StatusConflict, "Another answer for this interview is being processed", domain.ErrSubmissionInProgress)
		}
		// The compare-and-swap below still prevents lost updates.
		logger.Log.Warn("session lock unavailable", "interview_id", interviewID, "error", err)
		release = func() {}
	}
	defer release()

	iv, err := u.load(ctx, p, interviewID)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" && iv.LastAnswerKey != nil && *iv.LastAnswerKey == req.IdempotencyKey && len(iv.LastAnswerResponse) > 0 {
		logger.Log.Info("answer replayed", "interview_id", iv.ID, "question_count", iv.QuestionCount)
		return iv.LastAnswerResponse, nil
	}

	if iv.IsCompleted() {
		u.reject(ctx, p, iv.ID, "interview_completed", req.IdempotencyKey)
		return nil, alreadyCompleted()
	}

	if req.Question != nil && strings.TrimSpace(*req.Question) != strings.TrimSpace(deref(iv.CurrentQuestion)) {
		u.reject(ctx, p, iv.ID, "stale_question", req.IdempotencyKey)
		return nil, apperror.New(http.StatusConflict, "The question has changed, reload the interview", domain.ErrStaleQuestion)
	}

	answer, err := u.engine.SubmitAnswer(ctx, iv.ID, req.Answer, req.IdempotencyKey)
	if err != nil {
		logger.Log.Error("interview engine answer failed", "interview_id", iv.ID, "error", err)
		return nil, upstreamError(err)
	}

	body, err := withInterviewID(answer, iv.ID)
	if err != nil {
		return nil, upstreamError(&domain.UpstreamError{
			Service: "interview-engine",
			Detail:  err.Error(),
			Err:     domain.ErrBadUpstreamResponse,
		})
	}

	status := domain.InterviewStatusOngoing
	next := answer.NextQuestion
	if answer.InterviewComplete {
		status = domain.InterviewStatusCompleted
		next = nil
	}

	scores := evaluation.ExtractScores(answer.Evaluation)
	update := domain.AnswerUpdate{
		ID:                    iv.ID,
		TenantID:              iv.TenantID,
		ExpectedQuestionCount: iv.QuestionCount,
		CurrentQuestion:       next,
		EvaluationSummary:     answer.Evaluation,
		TechnicalScore:        evaluation.Merge(iv.TechnicalScore, scores.Technical),
		CommunicationScore:    evaluation.Merge(iv.CommunicationScore, scores.Communication),
		ConfidenceScore:       evaluation.Merge(iv.ConfidenceScore, scores.Confidence),
		RiskLevel:             answer.Risk,
		Status:                status,
		Response:              body,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		update.IdempotencyKey = &key
	}

	updated, err := u.repo.ApplyAnswer(ctx, update)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			u.reject(ctx, p, iv.ID, "concurrent_update", req.IdempotencyKey)
			return nil, apperror.New(http.StatusConflict, "Interview was updated by another submission", err)
		}
		return nil, apperror.Internal(err)
	}

	logger.Log.Info("answer accepted",
		"interview_id", updated.ID,
		"tenant_id", updated.TenantID,
		"question_count", updated.QuestionCount,
		"status", updated.Status,
	)

	u.afterAnswer(ctx, iv, updated, req.Answer, answer)
	return body, nil
}

// afterAnswer runs the best-effort side effects of an accepted answer.
func (u *interviewUsecase) afterAnswer(ctx context.Context, before, after *domain.Interview, answerText string, answer *domain.EngineAnswer) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if u.archive != nil {
		ref, err := u.archive.Archive(ctx, domain.TranscriptEntry{
			TenantID:    after.TenantID,
			InterviewID: after.ID,
			Turn:        after.QuestionCount,
			Question:    deref(before.CurrentQuestion),
			Answer:      answerText,
			Evaluation:  answer.Evaluation,
			Risk:        answer.Risk,
			Completed:   after.IsCompleted(),
			RecordedAt:  u.now().UTC(),
		})
		switch {
		case err != nil:
			logger.Log.Warn("transcript archive failed", "interview_id", after.ID, "error", err)
		case deref(after.TranscriptRef) != ref:
			if err := u.repo.SetTranscriptRef(ctx, after.TenantID, after.ID, ref); err != nil {
				logger.Log.Warn("transcript ref update failed", "interview_id", after.ID, "error", err)
			}
		}
	}

	if u.events != nil && after.IsCompleted() {
		event := domain.InterviewEvent{
			Type:               domain.EventInterviewCompleted,
			InterviewID:        after.ID,
			TenantID:           after.TenantID,
			CandidateName:      after.CandidateName,
			QuestionCount:      after.QuestionCount,
			TechnicalScore:     after.TechnicalScore,
			CommunicationScore: after.CommunicationScore,
			ConfidenceScore:    after.ConfidenceScore,
			RiskLevel:          after.RiskLevel,
			OccurredAt:         u.now().UTC(),
		}
		if err := u.events.Publish(ctx, event); err != nil {
			logger.Log.Warn("completion event publish failed", "interview_id", after.ID, "error", err)
		}
	}
}

// ============================================================================
// Dashboard
// ============================================================================

func (u *interviewUsecase) ListInterviews(ctx context.Context, p *domain.Principal) ([]domain.InterviewDashboardRow, error) {
	if err := requireRole(p, domain.RoleDirector, domain.RoleAdmin); err != nil {
		return nil, err
	}

	interviews, err := u.repo.ListByTenant(ctx, p.TenantID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	rows := make([]domain.InterviewDashboardRow, 0, len(interviews))
	for _, iv := range interviews {
		rows = append(rows, domain.InterviewDashboardRow{
			ID:                 iv.ID,
			CandidateName:      iv.CandidateName,
			JDScore:            iv.JDScore,
			Strengths:          iv.Strengths,
			Gaps:               iv.Gaps,
			TechnicalScore:     iv.TechnicalScore,
			CommunicationScore: iv.CommunicationScore,
			ConfidenceScore:    iv.ConfidenceScore,
			RiskLevel:          iv.RiskLevel,
			Status:             iv.Status,
			QuestionCount:      iv.QuestionCount,
			EvaluationSummary:  evaluation.StripScoreLines(deref(iv.EvaluationSummary)),
			InterviewCost:      interviewCost(iv.QuestionCount, u.cfg.CostPerQuestion),
			CreatedAt:          iv.CreatedAt,
		})
	}
	return rows, nil
}

var exportHeaders = []string{
	"Interview ID", "Candidate", "JD Score", "Technical", "Communication", "Confidence",
	"Risk", "Status", "Questions", "Cost", "Evaluation", "Created At",
}

func (u *interviewUsecase) ExportInterviews(ctx context.Context, p *domain.Principal) ([]byte, string, error) {
	rows, err := u.ListInterviews(ctx, p)
	if err != nil {
		return nil, "", err
	}

	sheet := export.Sheet{
		Name:    "Interviews",
		Headers: exportHeaders,
		Widths:  []float64{24, 28, 10, 10, 14, 12, 10, 12, 10, 10, 60, 20},
	}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []interface{}{
			r.ID, r.CandidateName, r.JDScore, r.TechnicalScore, r.CommunicationScore, r.ConfidenceScore,
			r.RiskLevel, string(r.Status), r.QuestionCount, r.InterviewCost, r.EvaluationSummary,
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
		})
	}

	data, err := export.Workbook(sheet)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	security.DefaultLogger().Log(ctx, security.SecurityEvent{
		Event:        security.EventDataExport,
		SubjectType:  "user_id",
		SubjectValue: p.UserID,
		TenantID:     p.TenantID,
		Details:      map[string]interface{}{"rows": len(rows), "format": "xlsx"},
	})

	name := fmt.Sprintf("interviews-%s.xlsx", u.now().UTC().Format("20060102"))
	return data, name, nil
}

// ============================================================================
// Helpers
// ============================================================================

func (u *interviewUsecase) load(ctx context.Context, p *domain.Principal, interviewID string) (*domain.Interview, error) {
	iv, err := u.repo.FindByID(ctx, interviewID, p.TenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.New(http.StatusNotFound, "Interview not found", err)
		}
		return nil, apperror.Internal(err)
	}
	return iv, nil
}

func (u *interviewUsecase) reject(ctx context.Context, p *domain.Principal, interviewID, reason, idempotencyKey string) {
	security.DefaultLogger().LogAnswerRejected(ctx, p.UserID, p.TenantID, interviewID, reason, idempotencyKey)
}

func alreadyCompleted() error {
	return apperror.New(http.StatusBadRequest, "Interview already completed", domain.ErrInterviewCompleted)
}

// withInterviewID returns the engine payload with interview_id added. Numbers
// are kept in their original textual form.
func withInterviewID(answer *domain.EngineAnswer, interviewID string) (json.RawMessage, error) {
	raw := answer.Raw
	if len(raw) == 0 {
		var err error
		if raw, err = json.Marshal(answer); err != nil {
			return nil, err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("engine response is not an object")
	}
	body["interview_id"] = interviewID
	return json.Marshal(body)
}

func interviewCost(questions int, perQuestion float64) float64 {
	return math.Round(float64(questions)*perQuestion*100) / 100
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
