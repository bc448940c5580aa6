package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/evaluation"

	"github.com/cenkalti/backoff/v5"
)

const (
	talentService    = "talent-search"
	defaultTopK      = 10
	searchMaxTries   = 3
	unknownCandidate = "Unknown candidate"
)

// TalentSearchClient queries the resume-scoring service. Search is idempotent,
// so network errors and 429/5xx responses are retried with exponential backoff.
type TalentSearchClient struct {
	baseURL         string
	httpClient      *http.Client
	initialInterval time.Duration
	maxInterval     time.Duration
}

func NewTalentSearchClient(baseURL string, timeout time.Duration) *TalentSearchClient {
	return &TalentSearchClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      newHTTPClient(timeout),
		initialInterval: 500 * time.Millisecond,
		maxInterval:     5 * time.Second,
	}
}

type searchPayload struct {
	JobDescription string `json:"job_description"`
	MinExperience  *int   `json:"min_experience,omitempty"`
	Location       string `json:"location,omitempty"`
	TopK           int    `json:"top_k"`
}

func (c *TalentSearchClient) Search(ctx context.Context, req domain.TalentSearchRequest) (*domain.TalentSearchResult, error) {
	payload := searchPayload{
		JobDescription: req.JobDescription,
		MinExperience:  req.MinExperience,
		Location:       req.Location,
		TopK:           req.TopK,
	}
	if payload.TopK <= 0 {
		payload.TopK = defaultTopK
	}

	operation := func() ([]byte, error) {
		status, body, err := postJSON(ctx, c.httpClient, c.baseURL+"/search", payload, nil)
		if err != nil {
			return nil, unavailable(talentService, status, err.Error())
		}
		if IsRetryableStatus(status) {
			return nil, unavailable(talentService, status, statusDetail(status, body))
		}
		if !isSuccess(status) {
			return nil, backoff.Permanent(unavailable(talentService, status, statusDetail(status, body)))
		}
		return body, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxInterval = c.maxInterval

	body, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(searchMaxTries))
	if err != nil {
		var upErr *domain.UpstreamError
		if errors.As(err, &upErr) {
			return nil, upErr
		}
		return nil, unavailable(talentService, 0, err.Error())
	}

	candidates, format, err := NormalizeResults(body)
	if err != nil {
		return nil, badResponse(talentService, http.StatusOK, err.Error())
	}
	return &domain.TalentSearchResult{Candidates: candidates, Format: format}, nil
}

// ============================================================================
// Result normalization
// ============================================================================

// resultParser recognises one known payload layout. ok=false means the layout
// did not match and the next parser should be tried.
type resultParser struct {
	name  string
	parse func(top map[string]json.RawMessage) (items []rawCandidate, ok bool)
}

// Ordered; the first structural match wins.
var resultParsers = []resultParser{
	{name: "array", parse: parseArray},
	{name: "json-string", parse: parseJSONString},
	{name: "embedded-json-string", parse: parseEmbeddedJSONString},
	{name: "legacy-candidates", parse: parseLegacyCandidates},
	{name: "empty", parse: parseEmpty},
}

type rawCandidate struct {
	Name          string      `json:"name"`
	CandidateName string      `json:"candidate_name"`
	Score         json.Number `json:"score"`
	Strengths     []string    `json:"strengths"`
	Gaps          []string    `json:"gaps"`
	Email         string      `json:"email"`
}

// NormalizeResults decodes a talent-search response body into candidates with
// 0-100 scores and reports which parser matched.
func NormalizeResults(body []byte) ([]domain.TalentCandidate, string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, "", fmt.Errorf("response is not a JSON object: %w", err)
	}

	for _, p := range resultParsers {
		items, ok := p.parse(top)
		if !ok {
			continue
		}
		out := make([]domain.TalentCandidate, 0, len(items))
		for _, it := range items {
			out = append(out, it.normalize())
		}
		return out, p.name, nil
	}
	return nil, "", errors.New("unrecognised scored_results format")
}

func (r rawCandidate) normalize() domain.TalentCandidate {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = strings.TrimSpace(r.CandidateName)
	}
	if name == "" {
		name = unknownCandidate
	}
	score, _ := r.Score.Float64()

	c := domain.TalentCandidate{
		Name:      name,
		Score:     evaluation.NormalizeScore(score),
		Strengths: r.Strengths,
		Gaps:      r.Gaps,
		Email:     strings.TrimSpace(r.Email),
	}
	if c.Strengths == nil {
		c.Strengths = []string{}
	}
	if c.Gaps == nil {
		c.Gaps = []string{}
	}
	return c
}

func decodeArray(raw []byte) ([]rawCandidate, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var items []rawCandidate
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func scoredResultsString(top map[string]json.RawMessage) (string, bool) {
	raw, ok := top["scored_results"]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func parseArray(top map[string]json.RawMessage) ([]rawCandidate, bool) {
	raw, ok := top["scored_results"]
	if !ok {
		return nil, false
	}
	return decodeArray(raw)
}

func parseJSONString(top map[string]json.RawMessage) ([]rawCandidate, bool) {
	s, ok := scoredResultsString(top)
	if !ok {
		return nil, false
	}
	return decodeArray([]byte(s))
}

// parseEmbeddedJSONString handles prose-wrapped payloads such as
// "Here are the results: [...]".
func parseEmbeddedJSONString(top map[string]json.RawMessage) ([]rawCandidate, bool) {
	s, ok := scoredResultsString(top)
	if !ok {
		return nil, false
	}
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	return decodeArray([]byte(s[start : end+1]))
}

type legacyCandidate struct {
	Score    json.Number  `json:"score"`
	Metadata rawCandidate `json:"metadata"`
}

func parseLegacyCandidates(top map[string]json.RawMessage) ([]rawCandidate, bool) {
	raw, ok := top["candidates"]
	if !ok {
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var legacy []legacyCandidate
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, false
	}
	items := make([]rawCandidate, 0, len(legacy))
	for _, l := range legacy {
		it := l.Metadata
		if it.Score == "" {
			it.Score = l.Score
		}
		items = append(items, it)
	}
	return items, true
}

// parseEmpty treats a missing, null or string scored_results that no earlier
// parser could read as "no matches". Prose such as "No matching candidates"
// lands here too.
func parseEmpty(top map[string]json.RawMessage) ([]rawCandidate, bool) {
	raw, ok := top["scored_results"]
	if !ok {
		return []rawCandidate{}, true
	}
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return []rawCandidate{}, true
	}
	if _, ok := scoredResultsString(top); ok {
		return []rawCandidate{}, true
	}
	return nil, false
}
