package gateway

import (
	"context"
	"net/http"
	"time"

	"hirematrix-backend/internal/domain"
)

const notifyService = "notification-webhook"

// WebhookNotifier posts {to, subject, text} to the configured webhook.
// An empty URL disables delivery.
type WebhookNotifier struct {
	url        string
	token      string
	httpClient *http.Client
}

func NewWebhookNotifier(url, token string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{url: url, token: token, httpClient: newHTTPClient(timeout)}
}

func (n *WebhookNotifier) Enabled() bool {
	return n != nil && n.url != ""
}

func (n *WebhookNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	if !n.Enabled() {
		return unavailable(notifyService, 0, "webhook not configured")
	}
	headers := map[string]string{}
	if n.token != "" {
		headers["Authorization"] = "Bearer " + n.token
	}

	status, body, err := postJSON(ctx, n.httpClient, n.url, msg, headers)
	if err != nil {
		return unavailable(notifyService, status, err.Error())
	}
	if !isSuccess(status) {
		return unavailable(notifyService, status, statusDetail(status, body))
	}
	return nil
}
