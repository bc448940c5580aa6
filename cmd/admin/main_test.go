package main

import (
	"bytes"
	"context"
	"testing"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/credentials"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTenantRepo struct {
	mock.Mock
}

func (m *mockTenantRepo) Create(ctx context.Context, tenant *domain.Tenant) error {
	args := m.Called(ctx, tenant)
	if args.Error(0) == nil {
		tenant.ID = "tenant-new"
	}
	return args.Error(0)
}

func (m *mockTenantRepo) GetByName(ctx context.Context, name string) (*domain.Tenant, error) {
	args := m.Called(ctx, name)
	if t := args.Get(0); t != nil {
		return t.(*domain.Tenant), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestEnsureTenant(t *testing.T) {
	t.Run("reuses an existing tenant", func(t *testing.T) {
		repo := new(mockTenantRepo)
		repo.On("GetByName", mock.Anything, "Acme").Return(&domain.Tenant{ID: "t-1", Name: "Acme"}, nil)

		tenant, created, err := ensureTenant(context.Background(), repo, " Acme ")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "t-1", tenant.ID)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates a missing tenant", func(t *testing.T) {
		repo := new(mockTenantRepo)
		repo.On("GetByName", mock.Anything, "Acme").Return(nil, domain.ErrNotFound)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		tenant, created, err := ensureTenant(context.Background(), repo, "Acme")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "tenant-new", tenant.ID)
	})

	t.Run("blank name", func(t *testing.T) {
		_, _, err := ensureTenant(context.Background(), new(mockTenantRepo), "  ")
		assert.Error(t, err)
	})
}

func TestHashPasswordCommand(t *testing.T) {
	cmd := newHashPasswordCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"secret1"})

	require.NoError(t, cmd.Execute())
	hash := bytes.TrimSpace(out.Bytes())
	assert.True(t, credentials.CheckPassword(string(hash), "secret1"))
}

func TestMigrateCommands(t *testing.T) {
	cmd := newMigrateCmd()
	down, _, err := cmd.Find([]string{"down"})
	require.NoError(t, err)
	assert.Equal(t, "down", down.Name())
	assert.Equal(t, "1", down.Flags().Lookup("steps").DefValue)
	assert.NotNil(t, down.Flags().Lookup("all"))
}

func TestDownSteps(t *testing.T) {
	n, err := downSteps(2, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = downSteps(1, true)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = downSteps(0, false)
	assert.Error(t, err)
}
