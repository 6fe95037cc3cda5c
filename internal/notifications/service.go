package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"enasubmit/internal/config"
)

const userAgent = "enasubmit/0.1.0"

// Event identifies a notification-worthy milestone.
type Event string

const (
	EventChainCompleted Event = "chain_completed"
	EventChainAborted   Event = "chain_aborted"
	EventReleaseFailed  Event = "release_failed"
	EventTest           Event = "test"
)

// Payload carries event fields keyed by name.
type Payload map[string]any

// Service defines the notification surface exposed to the submission chain.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	sample := payload.text("sample")
	run := payload.text("run")
	switch event {
	case EventChainCompleted:
		return message{
			title: "enasubmit - Submitted",
			body: fmt.Sprintf("%s/%s registered in %s: sample %s, experiment %s, run %s",
				sample, run, payload.text("environment"),
				payload.text("sample_accession"), payload.text("experiment_accession"), payload.text("run_accession")),
			tags: []string{"enasubmit", "submission", "completed"},
		}, true
	case EventChainAborted:
		body := fmt.Sprintf("%s/%s aborted at %s", sample, run, payload.text("step"))
		if reason := payload.text("error"); reason != "" {
			body += ": " + reason
		}
		return message{
			title:    "enasubmit - Aborted",
			body:     body,
			tags:     []string{"enasubmit", "submission", "error"},
			priority: "high",
		}, true
	case EventReleaseFailed:
		return message{
			title: "enasubmit - Release Failed",
			body:  fmt.Sprintf("%s %s is still held: %s", payload.text("step"), payload.text("accession"), payload.text("error")),
			tags:  []string{"enasubmit", "release", "warning"},
		}, true
	case EventTest:
		return message{
			title:    "enasubmit - Test",
			body:     "Notification system test",
			tags:     []string{"enasubmit", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (p Payload) text(key string) string {
	if p == nil {
		return ""
	}
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
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

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
