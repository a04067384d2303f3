// Package notify delivers drive updates to the UI layer.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"driveplane/internal/drive"
	"driveplane/pkg/api"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	HeaderEvent     = "X-Driveplane-Event"
	HeaderSignature = "X-Driveplane-Signature"
)

// Config configures webhook delivery.
type Config struct {
	URL string
	// Secret signs the body with HMAC-SHA256 when set.
	Secret      string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// WebhookNotifier posts every update as JSON to a single URL.
type WebhookNotifier struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

var _ drive.Notifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier creates a notifier. Zero values get defaults.
func NewWebhookNotifier(config Config, logger *slog.Logger) *WebhookNotifier {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.Backoff <= 0 {
		config.Backoff = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &WebhookNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
		tracer: otel.Tracer("driveplane/notify"),
	}
}

// toAPIProgress converts engine progress to its wire form.
func toAPIProgress(p drive.Progress) api.Progress {
	return api.Progress{
		OriginalCompleted: p.OriginalCompleted,
		OriginalRequired:  p.OriginalRequired,
		ComboCompleted:    p.ComboCompleted,
		ComboTotal:        p.ComboTotal,
		AllCompleted:      p.AllCompleted,
		AllTotal:          p.AllTotal,
		Percent:           p.Percent,
	}
}

func payload(u drive.Update) api.DriveUpdate {
	out := api.DriveUpdate{
		Event:                  string(u.Event),
		SessionID:              u.SessionID.String(),
		UserID:                 u.UserID.String(),
		Version:                u.Version,
		Progress:               toAPIProgress(u.Progress),
		NewlyCompensatedAmount: u.NewlyCompensatedAmount,
	}
	if u.TaskID != uuid.Nil {
		out.TaskID = u.TaskID.String()
	}
	return out
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Notify delivers u, retrying network errors and 5xx responses.
// Delivery survives cancellation of the originating request; the mutation has already committed.
func (n *WebhookNotifier) Notify(ctx context.Context, u drive.Update) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.config.Timeout*time.Duration(n.config.MaxAttempts))
	defer cancel()

	ctx, span := n.tracer.Start(ctx, "notify.webhook",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("drive.event", string(u.Event)),
			attribute.String("session.id", u.SessionID.String()),
		),
	)
	defer span.End()

	body, err := json.Marshal(payload(u))
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= n.config.MaxAttempts; attempt++ {
		retry, err := n.send(ctx, u.Event, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == n.config.MaxAttempts {
			break
		}

		n.logger.DebugContext(ctx, "retrying webhook delivery", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.config.Backoff * time.Duration(attempt)):
		}
	}

	span.RecordError(lastErr)
	return fmt.Errorf("webhook delivery failed: %w", lastErr)
}

func (n *WebhookNotifier) send(ctx context.Context, event drive.Event, body []byte) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.URL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, string(event))
	if n.config.Secret != "" {
		req.Header.Set(HeaderSignature, "sha256="+Sign(n.config.Secret, body))
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("receiver returned status %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("receiver returned status %d", resp.StatusCode)
	}
}

// LogNotifier writes updates to the log. Used when no webhook is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, u drive.Update) error {
	n.Logger.DebugContext(ctx, "drive update",
		"event", u.Event, "session_id", u.SessionID, "version", u.Version,
		"percent", u.Progress.Percent, "compensated", u.NewlyCompensatedAmount)
	return nil
}
