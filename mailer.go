package auth

import (
	"context"
	"time"
)

// MailMessage is a template-keyed notification. Rendering and transport
// live with the email collaborator, not here.
type MailMessage struct {
	To          string
	Subject     string
	TemplateKey string
	Variables   map[string]any
}

// Mailer is the outbound email capability. Send should respect ctx
// deadlines; implementations own retries.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// DefaultMailTimeout bounds a single delivery attempt.
var DefaultMailTimeout = 10 * time.Second

// MailDispatcher sends fire-and-forget: the triggering flow never blocks on
// delivery, and a failed or timed-out send is logged, never returned.
type MailDispatcher struct {
	mailer  Mailer
	timeout time.Duration
	logger  Logger
}

func NewMailDispatcher(mailer Mailer, logger Logger) *MailDispatcher {
	if mailer == nil {
		mailer = noopMailer{}
	}
	if logger == nil {
		logger = defLogger{}
	}
	return &MailDispatcher{
		mailer:  mailer,
		timeout: DefaultMailTimeout,
		logger:  logger,
	}
}

// WithTimeout overrides the per-delivery timeout.
func (d *MailDispatcher) WithTimeout(timeout time.Duration) *MailDispatcher {
	if timeout > 0 {
		d.timeout = timeout
	}
	return d
}

// Dispatch hands the message to the mailer on a fresh goroutine. The
// delivery context is detached from the request context on purpose: the
// request finishing must not cancel the send.
func (d *MailDispatcher) Dispatch(msg MailMessage) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.mailer.Send(ctx, msg); err != nil {
			d.logger.Warn("mail delivery failed",
				"to", msg.To,
				"template", msg.TemplateKey,
				"error", err,
			)
		}
	}()
}

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, msg MailMessage) error {
	return nil
}
