package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"switchboard/internal/config"
)

const userAgent = "Switchboard/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyCallReceived(ctx context.Context, callID, businessID string) error
	NotifyCallProcessed(ctx context.Context, callID string, durationSeconds int, totalCost float64) error
	NotifyCallFailed(ctx context.Context, callID, reason string) error
	NotifyQueueStarted(ctx context.Context, count int) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint:   topic,
		client:     client,
		sendCalls:  cfg.Notifications.Calls,
		sendErrors: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	sendCalls  bool
	sendErrors bool
}

func (n *ntfyService) NotifyCallReceived(ctx context.Context, callID, businessID string) error {
	if !n.sendCalls {
		return nil
	}
	callID = strings.TrimSpace(callID)
	businessID = strings.TrimSpace(businessID)
	data := payload{
		title:   "Switchboard - Call Received",
		message: fmt.Sprintf("New call %s for business %s queued for analysis", callID, businessID),
		tags:    []string{"switchboard", "call", "received"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCallProcessed(ctx context.Context, callID string, durationSeconds int, totalCost float64) error {
	if !n.sendCalls {
		return nil
	}
	callID = strings.TrimSpace(callID)
	data := payload{
		title:    "Switchboard - Call Processed",
		message:  fmt.Sprintf("Call %s processed: %ds, estimated cost $%.4f", callID, durationSeconds, totalCost),
		tags:     []string{"switchboard", "call", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCallFailed(ctx context.Context, callID, reason string) error {
	if !n.sendErrors {
		return nil
	}
	callID = strings.TrimSpace(callID)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Switchboard - Call Failed",
		message:  fmt.Sprintf("Call %s failed: %s", callID, reason),
		tags:     []string{"switchboard", "call", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueStarted(ctx context.Context, count int) error {
	data := payload{
		title:   "Switchboard - Queue Started",
		message: fmt.Sprintf("Started processing queue with %d calls", count),
		tags:    []string{"switchboard", "queue", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.sendErrors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Switchboard - Error",
		message:  builder.String(),
		tags:     []string{"switchboard", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Switchboard - Test",
		message:  "Notification system test",
		tags:     []string{"switchboard", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyCallReceived(context.Context, string, string) error        { return nil }
func (noopService) NotifyCallProcessed(context.Context, string, int, float64) error { return nil }
func (noopService) NotifyCallFailed(context.Context, string, string) error          { return nil }
func (noopService) NotifyQueueStarted(context.Context, int) error                   { return nil }
func (noopService) NotifyError(context.Context, error, string) error                { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }
