package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hirematrix-backend/internal/domain"
)

const interviewService = "interview-engine"

// InterviewEngineClient calls the interview-conduct service. Calls are never
// retried: re-sending an answer could advance the interview twice.
type InterviewEngineClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInterviewEngineClient(baseURL string, timeout time.Duration) *InterviewEngineClient {
	return &InterviewEngineClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

func (c *InterviewEngineClient) Start(ctx context.Context, req domain.StartInterviewRequest) (*domain.StartInterviewResult, error) {
	if req.Strengths == nil {
		req.Strengths = []string{}
	}
	if req.Gaps == nil {
		req.Gaps = []string{}
	}

	status, body, err := postJSON(ctx, c.httpClient, c.baseURL+"/interview/start", req, nil)
	if err != nil {
		return nil, unavailable(interviewService, status, err.Error())
	}
	if !isSuccess(status) {
		return nil, unavailable(interviewService, status, statusDetail(status, body))
	}

	var result domain.StartInterviewResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, badResponse(interviewService, status, "invalid JSON: "+err.Error())
	}
	if strings.TrimSpace(result.InterviewID) == "" {
		return nil, badResponse(interviewService, status, "response is missing interview_id")
	}
	return &result, nil
}

func (c *InterviewEngineClient) SubmitAnswer(ctx context.Context, interviewID, answer, idempotencyKey string) (*domain.EngineAnswer, error) {
	endpoint := c.baseURL + "/interview/" + url.PathEscape(interviewID) + "/answer"
	headers := map[string]string{"Idempotency-Key": idempotencyKey}

	status, body, err := postJSON(ctx, c.httpClient, endpoint, map[string]string{"answer": answer}, headers)
	if err != nil {
		return nil, unavailable(interviewService, status, err.Error())
	}
	if !isSuccess(status) {
		return nil, unavailable(interviewService, status, statusDetail(status, body))
	}

	var result domain.EngineAnswer
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, badResponse(interviewService, status, "invalid JSON: "+err.Error())
	}
	if !result.InterviewComplete && (result.NextQuestion == nil || strings.TrimSpace(*result.NextQuestion) == "") {
		return nil, badResponse(interviewService, status, "ongoing interview without next_question")
	}
	result.Raw = json.RawMessage(body)
	return &result, nil
}
