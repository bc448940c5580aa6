package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/apperror"
	"hirematrix-backend/pkg/credentials"
	"hirematrix-backend/pkg/evaluation"
	"hirematrix-backend/pkg/logger"
	"hirematrix-backend/pkg/security"

	"github.com/go-playground/validator/v10"
)

const temporaryPasswordLength = 12

// OnboardingConfig controls how candidate identities are derived.
type OnboardingConfig struct {
	EmailDomain string
	LoginURL    string
}

type onboardingUsecase struct {
	interviews   domain.InterviewRepository
	applications domain.ApplicationRepository
	users        domain.UserRepository
	engine       domain.InterviewEngine
	notifier     domain.CredentialNotifier
	events       domain.EventPublisher
	validate     *validator.Validate
	cfg          OnboardingConfig
}

// NewOnboardingUsecase wires the forwarding flow. notifier and events may be nil.
func NewOnboardingUsecase(
	interviews domain.InterviewRepository,
	applications domain.ApplicationRepository,
	users domain.UserRepository,
	engine domain.InterviewEngine,
	notifier domain.CredentialNotifier,
	events domain.EventPublisher,
	validate *validator.Validate,
	cfg OnboardingConfig,
) domain.OnboardingUsecase {
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = "candidate.hirematrix.local"
	}
	return &onboardingUsecase{
		interviews:   interviews,
		applications: applications,
		users:        users,
		engine:       engine,
		notifier:     notifier,
		events:       events,
		validate:     validate,
		cfg:          cfg,
	}
}

// ForwardCandidate starts an engine interview for a scored search hit and
// provisions the candidate account that will take it.
func (u *onboardingUsecase) ForwardCandidate(ctx context.Context, p *domain.Principal, req domain.ForwardCandidateRequest) (*domain.ForwardCandidateResult, error) {
	if err := requireRole(p, domain.RoleRecruiter, domain.RoleAdmin); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := u.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	score := evaluation.NormalizeScore(req.Score)
	if score < 0 || score > 100 {
		return nil, apperror.Validation("Validation failed", []map[string]string{
			{"field": "score", "message": "Score: must be between 0 and 100"},
		})
	}

	started, err := u.engine.Start(ctx, domain.StartInterviewRequest{
		Name:      req.Name,
		Score:     score,
		Strengths: req.Strengths,
		Gaps:      req.Gaps,
	})
	if err != nil {
		logger.Log.Error("interview engine start failed", "candidate", req.Name, "error", err)
		return nil, upstreamError(err)
	}

	question := started.Question
	iv := &domain.Interview{
		ID:              started.InterviewID,
		TenantID:        p.TenantID,
		CandidateName:   req.Name,
		JDScore:         score,
		Strengths:       req.Strengths,
		Gaps:            req.Gaps,
		CurrentQuestion: &question,
		Status:          domain.InterviewStatusOngoing,
	}
	if err := u.interviews.Upsert(ctx, iv); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			logger.Log.Error("engine returned an interview id owned by another tenant", "interview_id", iv.ID)
			return nil, apperror.BadGateway("Interview engine returned an invalid response", domain.ErrBadUpstreamResponse)
		}
		return nil, apperror.Internal(err)
	}

	email, username := req.Email, ""
	if email == "" {
		email, username = credentials.CandidateEmail(req.Name, iv.ID, u.cfg.EmailDomain)
	} else {
		username = credentials.UsernameFromEmail(email)
	}

	password, err := credentials.GeneratePassword(temporaryPasswordLength)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	hash, err := credentials.HashPassword(password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	app := &domain.Application{
		TenantID:       p.TenantID,
		InterviewID:    iv.ID,
		CandidateEmail: email,
		CandidateName:  req.Name,
	}
	if err := u.applications.Upsert(ctx, app); err != nil {
		logger.Log.Error("application upsert failed", "interview_id", iv.ID, "error", err)
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		Email:        email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         domain.RoleCandidate,
		TenantID:     p.TenantID,
	}
	if err := u.users.UpsertByEmail(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, apperror.New(http.StatusConflict, "Email already belongs to another account", err)
		}
		logger.Log.Error("candidate account upsert failed", "interview_id", iv.ID, "error", err)
		return nil, apperror.Internal(err)
	}

	sent := u.notify(ctx, req.Name, email, username, password)
	security.DefaultLogger().LogCredentialsIssued(ctx, p.UserID, p.TenantID, email, iv.ID, sent)

	if u.events != nil {
		event := domain.InterviewEvent{
			Type:          domain.EventInterviewForwarded,
			InterviewID:   iv.ID,
			TenantID:      iv.TenantID,
			CandidateName: iv.CandidateName,
			QuestionCount: iv.QuestionCount,
			OccurredAt:    time.Now().UTC(),
		}
		if err := u.events.Publish(ctx, event); err != nil {
			logger.Log.Warn("forward event publish failed", "interview_id", iv.ID, "error", err)
		}
	}

	logger.Log.Info("candidate forwarded",
		"interview_id", iv.ID,
		"tenant_id", p.TenantID,
		"recruiter_id", p.UserID,
		"notification_sent", sent,
	)

	return &domain.ForwardCandidateResult{
		InterviewID:       iv.ID,
		Question:          question,
		CandidateEmail:    email,
		Username:          username,
		TemporaryPassword: password,
		NotificationSent:  sent,
	}, nil
}

func (u *onboardingUsecase) notify(ctx context.Context, name, email, username, password string) bool {
	if u.notifier == nil || !u.notifier.Enabled() {
		return false
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hello %s,\n\n", name)
	text.WriteString("You have been invited to an interview.\n\n")
	fmt.Fprintf(&text, "Username: %s\nTemporary password: %s\n", username, password)
	if u.cfg.LoginURL != "" {
		fmt.Fprintf(&text, "\nSign in at %s\n", u.cfg.LoginURL)
	}

	err := u.notifier.Notify(ctx, domain.Notification{
		To:      email,
		Subject: "Your interview access",
		Text:    text.String(),
	})
	if err != nil {
		logger.Log.Warn("credential notification failed", "to", security.MaskEmail(email), "error", err)
		return false
	}
	return true
}
