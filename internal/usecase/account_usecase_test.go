package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/internal/usecase"
	"hirematrix-backend/pkg/auth"
	"hirematrix-backend/pkg/credentials"
	"hirematrix-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	hash, err := credentials.HashPassword("secret1")
	require.NoError(t, err)
	user := &domain.User{
		ID:           "user-1",
		Email:        "director@example.com",
		PasswordHash: hash,
		Role:         domain.RoleDirector,
		TenantID:     "tenant-a",
	}
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, "director@example.com").Return(user, nil)
		uc := usecase.NewAuthUsecase(repo, tokens, nil)

		res, err := uc.Login(context.Background(), domain.LoginRequest{Email: "director@example.com", Password: "secret1"}, domain.ClientMeta{IP: "10.0.0.1"})
		require.NoError(t, err)
		assert.Equal(t, user, res.User)

		claims, err := tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "tenant-a", claims.TenantID)
		assert.Equal(t, "director", claims.Role)
		assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, "director@example.com").Return(user, nil)
		uc := usecase.NewAuthUsecase(repo, tokens, nil)

		_, err := uc.Login(context.Background(), domain.LoginRequest{Email: "director@example.com", Password: "nope"}, domain.ClientMeta{})
		appErr := requireAppError(t, err, http.StatusUnauthorized)
		assert.Equal(t, "Invalid email or password", appErr.Message)
	})

	t.Run("unknown email gives the same answer", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)
		uc := usecase.NewAuthUsecase(repo, tokens, nil)

		_, err := uc.Login(context.Background(), domain.LoginRequest{Email: "ghost@example.com", Password: "secret1"}, domain.ClientMeta{})
		appErr := requireAppError(t, err, http.StatusUnauthorized)
		assert.Equal(t, "Invalid email or password", appErr.Message)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
		uc := usecase.NewAuthUsecase(repo, tokens, nil)

		_, err := uc.Login(context.Background(), domain.LoginRequest{Email: "a@b.co", Password: "x"}, domain.ClientMeta{})
		requireAppError(t, err, http.StatusInternalServerError)
	})
}

type MockLoginGuard struct {
	mock.Mock
}

func (m *MockLoginGuard) IsBlocked(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoginGuard) RecordFailure(ctx context.Context, email, ip, requestID string) (bool, error) {
	args := m.Called(ctx, email, ip, requestID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoginGuard) Clear(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func TestLogin_Guard(t *testing.T) {
	hash, err := credentials.HashPassword("secret1")
	require.NoError(t, err)
	user := &domain.User{ID: "user-1", Email: "rec@example.com", PasswordHash: hash, Role: domain.RoleRecruiter, TenantID: "tenant-a"}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	meta := domain.ClientMeta{IP: "10.0.0.1", RequestID: "req-1"}

	t.Run("blocked email is rejected before the lookup", func(t *testing.T) {
		repo := new(MockUserRepo)
		guard := new(MockLoginGuard)
		guard.On("IsBlocked", mock.Anything, "rec@example.com").Return(true, nil)
		uc := usecase.NewAuthUsecase(repo, tokens, guard)

		_, err := uc.Login(context.Background(), domain.LoginRequest{Email: " Rec@Example.com", Password: "secret1"}, meta)
		requireAppError(t, err, http.StatusTooManyRequests)
		repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("failures are recorded", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, "rec@example.com").Return(user, nil)
		guard := new(MockLoginGuard)
		guard.On("IsBlocked", mock.Anything, "rec@example.com").Return(false, nil)
		guard.On("RecordFailure", mock.Anything, "rec@example.com", "10.0.0.1", "req-1").Return(true, nil)
		uc := usecase.NewAuthUsecase(repo, tokens, guard)

		_, err := uc.Login(context.Background(), domain.LoginRequest{Email: "rec@example.com", Password: "wrong"}, meta)
		requireAppError(t, err, http.StatusUnauthorized)
		guard.AssertExpectations(t)
	})

	t.Run("success clears the counter and guard errors fail open", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, "rec@example.com").Return(user, nil)
		guard := new(MockLoginGuard)
		guard.On("IsBlocked", mock.Anything, "rec@example.com").Return(false, errors.New("redis down"))
		guard.On("Clear", mock.Anything, "rec@example.com").Return(nil)
		uc := usecase.NewAuthUsecase(repo, tokens, guard)

		res, err := uc.Login(context.Background(), domain.LoginRequest{Email: "rec@example.com", Password: "secret1"}, meta)
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		guard.AssertCalled(t, "Clear", mock.Anything, "rec@example.com")
	})
}

func TestGetCurrentUser(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
	uc := usecase.NewAuthUsecase(repo, auth.NewTokenManager("s", time.Hour), nil)

	_, err := uc.GetCurrentUser(context.Background(), "missing")
	requireAppError(t, err, http.StatusNotFound)
}

func TestCreateUser(t *testing.T) {
	const tenant = "8b0f3c5e-6f1a-4f55-9d7c-0c4a7f1e2b11"
	admin := &domain.Principal{UserID: "admin-1", Role: domain.RoleAdmin, TenantID: tenant}
	valid := domain.CreateUserRequest{
		Email:    " New.Recruiter@Example.com ",
		Password: "secret1",
		Name:     "New Recruiter",
		Role:     "recruiter",
		TenantID: tenant,
	}

	t.Run("creates an account with a hashed password", func(t *testing.T) {
		repo := new(MockUserRepo)
		var created *domain.User
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
			Return(nil)
		uc := usecase.NewUserUsecase(repo, validation.New())

		_, err := uc.CreateUser(context.Background(), admin, valid)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "new.recruiter@example.com", created.Email)
		assert.Equal(t, domain.RoleRecruiter, created.Role)
		assert.True(t, credentials.CheckPassword(created.PasswordHash, "secret1"))
	})

	t.Run("field level validation", func(t *testing.T) {
		uc := usecase.NewUserUsecase(new(MockUserRepo), validation.New())
		req := valid
		req.Password = "123"
		req.Role = "superuser"
		req.TenantID = "not-a-uuid"

		_, err := uc.CreateUser(context.Background(), admin, req)
		appErr := requireAppError(t, err, http.StatusBadRequest)
		details, ok := appErr.Details.([]validation.FieldError)
		require.True(t, ok)
		fields := map[string]bool{}
		for _, d := range details {
			fields[d.Field] = true
		}
		assert.True(t, fields["password"])
		assert.True(t, fields["role"])
		assert.True(t, fields["tenant_id"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateEmail)
		uc := usecase.NewUserUsecase(repo, validation.New())

		_, err := uc.CreateUser(context.Background(), admin, valid)
		requireAppError(t, err, http.StatusConflict)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrUnknownTenant)
		uc := usecase.NewUserUsecase(repo, validation.New())

		_, err := uc.CreateUser(context.Background(), admin, valid)
		requireAppError(t, err, http.StatusBadRequest)
	})

	t.Run("creates the account in the requested tenant", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.TenantID == "1c7d2f0a-3b4e-4c5d-8e9f-0a1b2c3d4e5f"
		})).Return(nil)
		uc := usecase.NewUserUsecase(repo, validation.New())
		req := valid
		req.TenantID = "1C7D2F0A-3B4E-4C5D-8E9F-0A1B2C3D4E5F"

		user, err := uc.CreateUser(context.Background(), admin, req)
		require.NoError(t, err)
		assert.Equal(t, "1c7d2f0a-3b4e-4c5d-8e9f-0a1b2c3d4e5f", user.TenantID)
		repo.AssertExpectations(t)
	})

	t.Run("non admin", func(t *testing.T) {
		uc := usecase.NewUserUsecase(new(MockUserRepo), validation.New())
		_, err := uc.CreateUser(context.Background(), principal(domain.RoleDirector), valid)
		requireAppError(t, err, http.StatusForbidden)
	})
}

func TestListUsers(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("ListByTenant", mock.Anything, "tenant-a").Return([]domain.User{{ID: "u1"}, {ID: "u2"}}, nil)
	uc := usecase.NewUserUsecase(repo, validation.New())

	users, err := uc.ListUsers(context.Background(), principal(domain.RoleAdmin))
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = uc.ListUsers(context.Background(), principal(domain.RoleRecruiter))
	requireAppError(t, err, http.StatusForbidden)
}

func TestTalentSearch(t *testing.T) {
	t.Run("defaults top_k and returns normalized candidates", func(t *testing.T) {
		engine := new(MockTalentEngine)
		engine.On("Search", mock.Anything, mock.MatchedBy(func(r domain.TalentSearchRequest) bool {
			return r.TopK == 10 && r.JobDescription == "Senior Go engineer with Postgres"
		})).Return(&domain.TalentSearchResult{
			Candidates: []domain.TalentCandidate{{Name: "A", Score: 90}},
			Format:     "json-string",
		}, nil)
		uc := usecase.NewTalentUsecase(engine, validation.New())

		res, err := uc.Search(context.Background(), principal(domain.RoleRecruiter), domain.TalentSearchRequest{
			JobDescription: "  Senior Go engineer with Postgres ",
		})
		require.NoError(t, err)
		assert.Equal(t, "A", res.Candidates[0].Name)
		engine.AssertExpectations(t)
	})

	t.Run("upstream status is propagated", func(t *testing.T) {
		engine := new(MockTalentEngine)
		engine.On("Search", mock.Anything, mock.Anything).Return(nil, &domain.UpstreamError{
			Service:    "talent-search",
			StatusCode: http.StatusTooManyRequests,
			Err:        domain.ErrEngineUnavailable,
		})
		uc := usecase.NewTalentUsecase(engine, validation.New())

		_, err := uc.Search(context.Background(), principal(domain.RoleAdmin), domain.TalentSearchRequest{JobDescription: "Backend developer role"})
		appErr := requireAppError(t, err, http.StatusTooManyRequests)
		assert.Equal(t, "Talent search service rejected the request", appErr.Message)
	})

	t.Run("short description", func(t *testing.T) {
		engine := new(MockTalentEngine)
		uc := usecase.NewTalentUsecase(engine, validation.New())

		_, err := uc.Search(context.Background(), principal(domain.RoleRecruiter), domain.TalentSearchRequest{JobDescription: "Go"})
		requireAppError(t, err, http.StatusBadRequest)
		engine.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("director is forbidden", func(t *testing.T) {
		uc := usecase.NewTalentUsecase(new(MockTalentEngine), validation.New())
		_, err := uc.Search(context.Background(), principal(domain.RoleDirector), domain.TalentSearchRequest{JobDescription: "Backend developer role"})
		requireAppError(t, err, http.StatusForbidden)
	})
}

func TestHealthUsecase(t *testing.T) {
	db := func(ctx context.Context) (map[string]interface{}, error) {
		return map[string]interface{}{"connected": true}, nil
	}

	uc := usecase.NewHealthUsecase(db, nil)
	assert.Equal(t, "ok", uc.Check(context.Background())["status"])

	status, err := uc.DatabaseStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "not_configured", status["redis"])

	uc = usecase.NewHealthUsecase(db, func(context.Context) error { return errors.New("down") })
	status, err = uc.DatabaseStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "unavailable", status["redis"])
}
