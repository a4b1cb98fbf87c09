// Package notify delivers reminder webhooks for newly created events and
// tasks. Delivery is best effort and runs in the background: failures are
// logged, never propagated to the caller, and creation never waits on the
// webhook.
package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/haruplan/haruplan/internal/model"
)

// Message is the webhook payload.
type Message struct {
	Kind      string     `json:"kind"` // "event" or "task"
	UserID    string     `json:"userId"`
	Title     string     `json:"title"`
	StartTime *time.Time `json:"startTime,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	AllDay    bool       `json:"allDay"`
}

// Notifier posts reminder messages to a configured webhook.
type Notifier struct {
	client *resty.Client
	url    string
	log    zerolog.Logger
}

// New creates a Notifier. An empty webhook URL disables delivery.
func New(webhookURL string, log zerolog.Logger) *Notifier {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Notifier{client: client, url: webhookURL, log: log}
}

// Enabled reports whether a webhook is configured.
func (n *Notifier) Enabled() bool { return n != nil && n.url != "" }

// EventCreated announces a new event.
func (n *Notifier) EventCreated(ctx context.Context, ev *model.Event) {
	if !n.Enabled() {
		return
	}
	start := ev.StartTime
	n.dispatch(ctx, Message{Kind: "event", UserID: ev.UserID, Title: ev.Title, StartTime: &start, AllDay: ev.AllDay})
}

// TaskCreated announces a new task.
func (n *Notifier) TaskCreated(ctx context.Context, tk *model.Task) {
	if !n.Enabled() {
		return
	}
	n.dispatch(ctx, Message{Kind: "task", UserID: tk.UserID, Title: tk.Title, DueDate: tk.DueDate, AllDay: tk.DueAllDay})
}

// dispatch returns immediately; delivery runs in the background on a
// context detached from the request so a finished request does not
// cancel an in-flight post.
func (n *Notifier) dispatch(ctx context.Context, msg Message) {
	bg := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, 15*time.Second)
		defer cancel()
		n.post(ctx, msg)
	}()
}

func (n *Notifier) post(ctx context.Context, msg Message) {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		Post(n.url)
	if err != nil {
		n.log.Warn().Err(err).Str("kind", msg.Kind).Msg("webhook delivery failed")
		return
	}
	if resp.IsError() {
		n.log.Warn().Int("status", resp.StatusCode()).Str("kind", msg.Kind).Msg("webhook rejected notification")
	}
}
