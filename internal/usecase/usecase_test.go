package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/apperror"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories

type MockInterviewRepo struct {
	mock.Mock
}

func (m *MockInterviewRepo) Upsert(ctx context.Context, iv *domain.Interview) error {
	return m.Called(ctx, iv).Error(0)
}

func (m *MockInterviewRepo) FindByID(ctx context.Context, id, tenantID string) (*domain.Interview, error) {
	args := m.Called(ctx, id, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Interview), args.Error(1)
}

func (m *MockInterviewRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.Interview, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Interview), args.Error(1)
}

func (m *MockInterviewRepo) ApplyAnswer(ctx context.Context, u domain.AnswerUpdate) (*domain.Interview, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Interview), args.Error(1)
}

func (m *MockInterviewRepo) SetTranscriptRef(ctx context.Context, tenantID, id, ref string) error {
	return m.Called(ctx, tenantID, id, ref).Error(0)
}

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Upsert(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockApplicationRepo) GetByInterviewID(ctx context.Context, tenantID, interviewID string) (*domain.Application, error) {
	args := m.Called(ctx, tenantID, interviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) UpsertByEmail(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.User, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// Mock external services

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Start(ctx context.Context, req domain.StartInterviewRequest) (*domain.StartInterviewResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StartInterviewResult), args.Error(1)
}

func (m *MockEngine) SubmitAnswer(ctx context.Context, interviewID, answer, idempotencyKey string) (*domain.EngineAnswer, error) {
	args := m.Called(ctx, interviewID, answer, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EngineAnswer), args.Error(1)
}

type MockTalentEngine struct {
	mock.Mock
}

func (m *MockTalentEngine) Search(ctx context.Context, req domain.TalentSearchRequest) (*domain.TalentSearchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TalentSearchResult), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
	enabled bool
}

func (m *MockNotifier) Enabled() bool { return m.enabled }

func (m *MockNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	return m.Called(ctx, msg).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.InterviewEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Archive(ctx context.Context, entry domain.TranscriptEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

// Helpers

func principal(role domain.Role) *domain.Principal {
	return &domain.Principal{
		UserID:   "user-1",
		Email:    "someone@example.com",
		Role:     role,
		TenantID: "tenant-a",
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func requireAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func decodeBody(t *testing.T, raw json.RawMessage) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
