package domain

import "context"

type TalentSearchRequest struct {
	JobDescription string `json:"job_description" validate:"required,min=10,max=20000"`
	MinExperience  *int   `json:"min_experience,omitempty" validate:"omitempty,gte=0,lte=60"`
	Location       string `json:"location,omitempty" validate:"omitempty,max=200"`
	TopK           int    `json:"top_k" validate:"omitempty,gte=1,lte=50"`
}

// TalentCandidate is one normalized search hit. Score is always 0-100.
type TalentCandidate struct {
	Name      string   `json:"name"`
	Score     int      `json:"score"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
	Email     string   `json:"email,omitempty"`
}

type TalentSearchResult struct {
	Candidates []TalentCandidate `json:"candidates"`
	// Format names the parser that recognised the engine payload.
	Format string `json:"format"`
}

type TalentSearchEngine interface {
	Search(ctx context.Context, req TalentSearchRequest) (*TalentSearchResult, error)
}

type TalentUsecase interface {
	Search(ctx context.Context, principal *Principal, req TalentSearchRequest) (*TalentSearchResult, error)
}
