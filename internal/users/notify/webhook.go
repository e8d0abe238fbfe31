package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"signup/internal/users/models"
)

// maxDrainBytes bounds how much of a webhook response body is read before the
// connection is returned to the pool.
const maxDrainBytes = 64 << 10

// webhookPayload is the body POSTed to <base>/notify.
type webhookPayload struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	CreatedAt string  `json:"createdAt"`
}

// Webhook announces registrations to an external notification service.
type Webhook struct {
	endpoint string
	client   *http.Client
}

// NewWebhook targets <baseURL>/notify. A trailing slash on baseURL is ignored.
// The client's Timeout bounds every call.
func NewWebhook(baseURL string, client *http.Client) *Webhook {
	return &Webhook{
		endpoint: strings.TrimRight(baseURL, "/") + "/notify",
		client:   client,
	}
}

// Endpoint returns the URL the webhook POSTs to.
func (w *Webhook) Endpoint() string {
	return w.endpoint
}

// Send POSTs the user as JSON and returns the reply status. Only transport
// errors and timeouts are errors; any HTTP reply counts as delivered.
func (w *Webhook) Send(ctx context.Context, user *models.User) (int, error) {
	body, err := json.Marshal(webhookPayload{
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post %s: %w", w.endpoint, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	return resp.StatusCode, nil
}
