package usecase

import (
	"context"
	"strings"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

const defaultTopK = 10

type talentUsecase struct {
	engine   domain.TalentSearchEngine
	validate *validator.Validate
}

func NewTalentUsecase(engine domain.TalentSearchEngine, validate *validator.Validate) domain.TalentUsecase {
	return &talentUsecase{engine: engine, validate: validate}
}

func (u *talentUsecase) Search(ctx context.Context, p *domain.Principal, req domain.TalentSearchRequest) (*domain.TalentSearchResult, error) {
	if err := requireRole(p, domain.RoleRecruiter, domain.RoleAdmin); err != nil {
		return nil, err
	}

	req.JobDescription = strings.TrimSpace(req.JobDescription)
	req.Location = strings.TrimSpace(req.Location)
	if err := u.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if req.TopK == 0 {
		req.TopK = defaultTopK
	}

	result, err := u.engine.Search(ctx, req)
	if err != nil {
		logger.Log.Error("talent search failed", "tenant_id", p.TenantID, "error", err)
		return nil, upstreamError(err)
	}

	logger.Log.Info("talent search",
		"tenant_id", p.TenantID,
		"format", result.Format,
		"results", len(result.Candidates),
	)
	return result, nil
}
