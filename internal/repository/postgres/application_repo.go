package postgres

import (
	"context"
	"errors"
	"time"

	"hirematrix-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

// Upsert inserts the application or refreshes the contact details for an
// interview that was forwarded again.
func (r *applicationRepo) Upsert(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (id, tenant_id, interview_id, candidate_email, candidate_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (interview_id) DO UPDATE SET
			candidate_email = EXCLUDED.candidate_email,
			candidate_name = EXCLUDED.candidate_name,
			updated_at = EXCLUDED.updated_at
		WHERE applications.tenant_id = EXCLUDED.tenant_id
		RETURNING id, created_at, updated_at`

	if app.ID == "" {
		app.ID = uuid.NewString()
	}

	err := r.db.QueryRow(ctx, query,
		app.ID,
		app.TenantID,
		app.InterviewID,
		app.CandidateEmail,
		app.CandidateName,
		time.Now(),
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *applicationRepo) GetByInterviewID(ctx context.Context, tenantID, interviewID string) (*domain.Application, error) {
	query := `
		SELECT id, tenant_id, interview_id, candidate_email, candidate_name, created_at, updated_at
		FROM applications WHERE interview_id = $1 AND tenant_id = $2`

	var app domain.Application
	err := r.db.QueryRow(ctx, query, interviewID, tenantID).Scan(
		&app.ID, &app.TenantID, &app.InterviewID, &app.CandidateEmail, &app.CandidateName,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}
