package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

type logNotifier struct {
	logger *slog.Logger
}

// New creates a Notifier. With a webhook URL configured, events POST as JSON
// to that URL; otherwise events are logged only.
func New(webhookURL string, timeout time.Duration, logger *slog.Logger) Notifier {
	scoped := logger.With("system", "notify")

	if webhookURL == "" {
		return &logNotifier{logger: scoped}
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhook{
		url:    webhookURL,
		client: &http.Client{Timeout: timeout},
		logger: scoped,
	}
}

func (n *logNotifier) Notify(ctx context.Context, event Event) {
	n.logger.InfoContext(
		ctx, "notification",
		"request_id", event.RequestID,
		"tenant_id", event.TenantID,
		"status", event.Status,
		"risk_score", event.RiskScore,
	)
}

func (n *webhook) Notify(ctx context.Context, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.ErrorContext(ctx, "notification marshal failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.ErrorContext(ctx, "notification request failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.WarnContext(ctx, "notification delivery failed", "request_id", event.RequestID, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.logger.WarnContext(
			ctx, "notification rejected",
			"request_id", event.RequestID,
			"status_code", resp.StatusCode,
		)
	}
}
