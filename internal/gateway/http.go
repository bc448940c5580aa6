// Package gateway holds the HTTP clients for the external AI services and the
// credential notification webhook.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hirematrix-backend/internal/domain"
)

const maxResponseBytes = 4 << 20

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// postJSON sends in as JSON and returns the status code and the (bounded) body.
func postJSON(ctx context.Context, client *http.Client, url string, in interface{}, headers map[string]string) (int, []byte, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func unavailable(service string, status int, detail string) *domain.UpstreamError {
	return &domain.UpstreamError{Service: service, StatusCode: status, Detail: detail, Err: domain.ErrEngineUnavailable}
}

func badResponse(service string, status int, detail string) *domain.UpstreamError {
	return &domain.UpstreamError{Service: service, StatusCode: status, Detail: detail, Err: domain.ErrBadUpstreamResponse}
}

// snippet keeps upstream error bodies short enough for logs.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return s
}

func statusDetail(status int, body []byte) string {
	if s := snippet(body); s != "" {
		return fmt.Sprintf("HTTP %d: %s", status, s)
	}
	return fmt.Sprintf("HTTP %d", status)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// IsRetryableStatus reports whether an idempotent request may be retried.
func IsRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
