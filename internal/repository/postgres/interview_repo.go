package postgres

import (
	"context"
	"errors"
	"time"

	"hirematrix-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type interviewRepo struct {
	db *pgxpool.Pool
}

func NewInterviewRepository(db *pgxpool.Pool) domain.InterviewRepository {
	return &interviewRepo{db: db}
}

const interviewColumns = `
	id, tenant_id, candidate_name, jd_score, strengths, gaps,
	current_question, evaluation_summary,
	technical_score, communication_score, confidence_score, risk_level,
	status, question_count, transcript_ref,
	last_answer_key, last_answer_response::text,
	created_at, updated_at`

func scanInterview(row pgx.Row) (*domain.Interview, error) {
	var iv domain.Interview
	var strengths, gaps []string
	var lastResponse *string

	err := row.Scan(
		&iv.ID, &iv.TenantID, &iv.CandidateName, &iv.JDScore, pq.Array(&strengths), pq.Array(&gaps),
		&iv.CurrentQuestion, &iv.EvaluationSummary,
		&iv.TechnicalScore, &iv.CommunicationScore, &iv.ConfidenceScore, &iv.RiskLevel,
		&iv.Status, &iv.QuestionCount, &iv.TranscriptRef,
		&iv.LastAnswerKey, &lastResponse,
		&iv.CreatedAt, &iv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	iv.Strengths = nonNil(strengths)
	iv.Gaps = nonNil(gaps)
	if lastResponse != nil {
		iv.LastAnswerResponse = []byte(*lastResponse)
	}
	return &iv, nil
}

// Upsert creates the interview or resets its candidate fields. The row is left
// untouched when the id already belongs to another tenant.
func (r *interviewRepo) Upsert(ctx context.Context, iv *domain.Interview) error {
	query := `
		INSERT INTO interviews (
			id, tenant_id, candidate_name, jd_score, strengths, gaps,
			current_question, status, question_count, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $9)
		ON CONFLICT (id) DO UPDATE SET
			candidate_name = EXCLUDED.candidate_name,
			jd_score = EXCLUDED.jd_score,
			strengths = EXCLUDED.strengths,
			gaps = EXCLUDED.gaps,
			current_question = EXCLUDED.current_question,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		WHERE interviews.tenant_id = EXCLUDED.tenant_id
		RETURNING question_count, created_at, updated_at`

	if iv.Status == "" {
		iv.Status = domain.InterviewStatusOngoing
	}
	now := time.Now()

	err := r.db.QueryRow(ctx, query,
		iv.ID,
		iv.TenantID,
		iv.CandidateName,
		iv.JDScore,
		pq.Array(nonNil(iv.Strengths)),
		pq.Array(nonNil(iv.Gaps)),
		iv.CurrentQuestion,
		string(iv.Status),
		now,
	).Scan(&iv.QuestionCount, &iv.CreatedAt, &iv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *interviewRepo) FindByID(ctx context.Context, id, tenantID string) (*domain.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1 AND tenant_id = $2`

	iv, err := scanInterview(r.db.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return iv, nil
}

func (r *interviewRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE tenant_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interviews := []domain.Interview{}
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, *iv)
	}
	return interviews, rows.Err()
}

// ApplyAnswer is a compare-and-swap on (status, question_count). Scores are only
// overwritten when a new value is supplied.
func (r *interviewRepo) ApplyAnswer(ctx context.Context, u domain.AnswerUpdate) (*domain.Interview, error) {
	query := `
		UPDATE interviews SET
			current_question = $1,
			evaluation_summary = $2,
			technical_score = COALESCE($3::int, technical_score),
			communication_score = COALESCE($4::int, communication_score),
			confidence_score = COALESCE($5::int, confidence_score),
			risk_level = $6,
			status = $7,
			question_count = question_count + 1,
			last_answer_key = $8,
			last_answer_response = $9::jsonb,
			updated_at = NOW()
		WHERE id = $10 AND tenant_id = $11 AND status = 'ongoing' AND question_count = $12
		RETURNING ` + interviewColumns

	var response *string
	if len(u.Response) > 0 {
		s := string(u.Response)
		response = &s
	}

	iv, err := scanInterview(r.db.QueryRow(ctx, query,
		u.CurrentQuestion,
		u.EvaluationSummary,
		u.TechnicalScore,
		u.CommunicationScore,
		u.ConfidenceScore,
		u.RiskLevel,
		string(u.Status),
		u.IdempotencyKey,
		response,
		u.ID,
		u.TenantID,
		u.ExpectedQuestionCount,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return iv, nil
}

func (r *interviewRepo) SetTranscriptRef(ctx context.Context, tenantID, id, ref string) error {
	query := `UPDATE interviews SET transcript_ref = $3 WHERE id = $1 AND tenant_id = $2`
	result, err := r.db.Exec(ctx, query, id, tenantID, ref)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
