package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/internal/usecase"
	"hirematrix-backend/pkg/credentials"
	"hirematrix-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type onboardingFixture struct {
	interviews   *MockInterviewRepo
	applications *MockApplicationRepo
	users        *MockUserRepo
	engine       *MockEngine
	notifier     *MockNotifier
	events       *MockPublisher
	uc           domain.OnboardingUsecase
}

func newOnboardingFixture(notifyEnabled bool) *onboardingFixture {
	f := &onboardingFixture{
		interviews:   new(MockInterviewRepo),
		applications: new(MockApplicationRepo),
		users:        new(MockUserRepo),
		engine:       new(MockEngine),
		notifier:     &MockNotifier{enabled: notifyEnabled},
		events:       new(MockPublisher),
	}
	f.uc = usecase.NewOnboardingUsecase(
		f.interviews, f.applications, f.users, f.engine, f.notifier, f.events, validation.New(),
		usecase.OnboardingConfig{EmailDomain: "candidate.hirematrix.local", LoginURL: "https://portal.example/login"},
	)
	return f
}

func TestForwardCandidate_DerivesCandidateIdentity(t *testing.T) {
	f := newOnboardingFixture(false)

	f.engine.On("Start", mock.Anything, domain.StartInterviewRequest{
		Name:      "Jane O'Brien",
		Score:     90,
		Strengths: []string{"Go"},
		Gaps:      []string{"Kubernetes"},
	}).Return(&domain.StartInterviewResult{InterviewID: "abc123xyz", Question: "Tell me about Go."}, nil)

	f.interviews.On("Upsert", mock.Anything, mock.MatchedBy(func(iv *domain.Interview) bool {
		return iv.ID == "abc123xyz" && iv.TenantID == "tenant-a" && iv.JDScore == 90 &&
			*iv.CurrentQuestion == "Tell me about Go." && iv.Status == domain.InterviewStatusOngoing
	})).Return(nil)
	f.applications.On("Upsert", mock.Anything, mock.MatchedBy(func(app *domain.Application) bool {
		return app.InterviewID == "abc123xyz" && app.CandidateEmail == "jane.o.brien.abc123@candidate.hirematrix.local"
	})).Return(nil)

	var stored *domain.User
	f.users.On("UpsertByEmail", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.User) }).
		Return(nil)
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.InterviewEvent) bool {
		return e.Type == domain.EventInterviewForwarded && e.InterviewID == "abc123xyz"
	})).Return(nil)

	res, err := f.uc.ForwardCandidate(context.Background(), principal(domain.RoleRecruiter), domain.ForwardCandidateRequest{
		Name:      " Jane O'Brien ",
		Score:     0.9,
		Strengths: []string{"Go"},
		Gaps:      []string{"Kubernetes"},
	})
	require.NoError(t, err)

	assert.Equal(t, "abc123xyz", res.InterviewID)
	assert.Equal(t, "Tell me about Go.", res.Question)
	assert.Equal(t, "jane.o.brien.abc123@candidate.hirematrix.local", res.CandidateEmail)
	assert.Equal(t, "jane.o.brien.abc123", res.Username)
	assert.Len(t, res.TemporaryPassword, 12)
	assert.False(t, res.NotificationSent)
	assert.False(t, strings.ContainsAny(res.TemporaryPassword, "0O1lI"))

	require.NotNil(t, stored)
	assert.Equal(t, domain.RoleCandidate, stored.Role)
	assert.Equal(t, "tenant-a", stored.TenantID)
	assert.NotEqual(t, res.TemporaryPassword, stored.PasswordHash)
	assert.True(t, credentials.CheckPassword(stored.PasswordHash, res.TemporaryPassword))

	f.engine.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestForwardCandidate_SuppliedEmailAndNotification(t *testing.T) {
	f := newOnboardingFixture(true)

	f.engine.On("Start", mock.Anything, mock.Anything).Return(&domain.StartInterviewResult{InterviewID: "iv-9", Question: "Q1"}, nil)
	f.interviews.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.applications.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.users.On("UpsertByEmail", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)

	var sent domain.Notification
	f.notifier.On("Notify", mock.Anything, mock.AnythingOfType("domain.Notification")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(domain.Notification) }).
		Return(nil)

	res, err := f.uc.ForwardCandidate(context.Background(), principal(domain.RoleAdmin), domain.ForwardCandidateRequest{
		Name:  "Sam Lee",
		Score: 72,
		Email: "Sam.Lee@Example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "sam.lee@example.com", res.CandidateEmail)
	assert.Equal(t, "sam.lee", res.Username)
	assert.True(t, res.NotificationSent)
	assert.Equal(t, "sam.lee@example.com", sent.To)
	assert.Contains(t, sent.Text, res.TemporaryPassword)
	assert.Contains(t, sent.Text, "https://portal.example/login")
}

func TestForwardCandidate_NotificationFailureIsReportedNotFatal(t *testing.T) {
	f := newOnboardingFixture(true)

	f.engine.On("Start", mock.Anything, mock.Anything).Return(&domain.StartInterviewResult{InterviewID: "iv-9", Question: "Q1"}, nil)
	f.interviews.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.applications.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.users.On("UpsertByEmail", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(assert.AnError)

	res, err := f.uc.ForwardCandidate(context.Background(), principal(domain.RoleRecruiter), domain.ForwardCandidateRequest{Name: "Sam Lee", Score: 50})
	require.NoError(t, err)
	assert.False(t, res.NotificationSent)
	assert.NotEmpty(t, res.TemporaryPassword)
}

func TestForwardCandidate_Failures(t *testing.T) {
	t.Run("candidate role is forbidden", func(t *testing.T) {
		f := newOnboardingFixture(false)
		_, err := f.uc.ForwardCandidate(context.Background(), principal(domain.RoleCandidate), domain.ForwardCandidateRequest{Name: "X"})
		requireAppError(t, err, http.StatusForbidden)
		f.engine.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	})

	t.Run("missing name", func(t *testing.T) {
		f := newOnboardingFixture(false)
		_, err := f.uc.ForwardCandidate(context.Background(), principal(domain.RoleRecruiter), domain.ForwardCandidateRequest{Name: "  ", Score: 50})
		requireAppError(t, err, http.StatusBadRequest)
		f.engine.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	})

	t.Run("negative score", func(t *testing.T) {
		f := newOnboardingFixture(false)
		_, err := f.uc.ForwardCandidate(context.Background(), principal(domain.RoleRecruiter), domain.ForwardCandidateRequest{Name: "Sam", Score: -0.5})
		requireAppError(t, err, http.StatusBadRequest)
	})

	t.Run("engine failure creates nothing", func(t *testing.T) {
		f := newOnboardingFixture(false)
		f.engine.On("Start", mock.Anything, mock.Anything).Return(nil, &domain.UpstreamError{
			Service: "interview-engine",
			Detail:  "missing interview_id",
			Err:     domain.ErrBadUpstreamResponse,
		})
		_, err := f.uc.ForwardCandidate(context.Background(), principal(domain.RoleRecruiter), domain.ForwardCandidateRequest{Name: "Sam", Score: 50})
		requireAppError(t, err, http.StatusBadGateway)
		assert.ErrorIs(t, err, domain.ErrBadUpstreamResponse)
		f.interviews.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		f.users.AssertNotCalled(t, "UpsertByEmail", mock.Anything, mock.Anything)
	})

	t.Run("interview id owned by another tenant", func(t *testing.T) {
		f := newOnboardingFixture(false)
		f.engine.On("Start", mock.Anything, mock.Anything).Return(&domain.StartInterviewResult{InterviewID: "iv-x", Question: "Q"}, nil)
		f.interviews.On("Upsert", mock.Anything, mock.Anything).Return(domain.ErrConflict)
		_, err := f.uc.ForwardCandidate(context.Background(), principal(domain.RoleRecruiter), domain.ForwardCandidateRequest{Name: "Sam", Score: 50})
		requireAppError(t, err, http.StatusBadGateway)
		f.applications.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("email taken by a staff account", func(t *testing.T) {
		f := newOnboardingFixture(false)
		f.engine.On("Start", mock.Anything, mock.Anything).Return(&domain.StartInterviewResult{InterviewID: "iv-9", Question: "Q"}, nil)
		f.interviews.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		f.applications.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		f.users.On("UpsertByEmail", mock.Anything, mock.Anything).Return(domain.ErrDuplicateEmail)
		_, err := f.uc.ForwardCandidate(context.Background(), principal(domain.RoleRecruiter), domain.ForwardCandidateRequest{
			Name: "Sam", Score: 50, Email: "recruiter@example.com",
		})
		requireAppError(t, err, http.StatusConflict)
	})

	t.Run("application store failure is internal", func(t *testing.T) {
		f := newOnboardingFixture(false)
		f.engine.On("Start", mock.Anything, mock.Anything).Return(&domain.StartInterviewResult{InterviewID: "iv-9", Question: "Q"}, nil)
		f.interviews.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		f.applications.On("Upsert", mock.Anything, mock.Anything).Return(assert.AnError)
		_, err := f.uc.ForwardCandidate(context.Background(), principal(domain.RoleRecruiter), domain.ForwardCandidateRequest{Name: "Sam", Score: 50})
		requireAppError(t, err, http.StatusInternalServerError)
		f.users.AssertNotCalled(t, "UpsertByEmail", mock.Anything, mock.Anything)
	})
}
