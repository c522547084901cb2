// Package notifier delivers best-effort side effects of a login or
// registration: a webhook POST of the profile payload and a welcome e-mail.
// Work runs on the background worker pool and failures are only logged.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/siwic-api/shared/mailer"
	"github.com/vasapolrittideah/siwic-api/shared/worker"
)

const (
	defaultTimeout   = 10 * time.Second
	deliveryIDHeader = "X-Delivery-ID"
)

// Submitter schedules detached work. *worker.Pool implements it.
type Submitter interface {
	Submit(name string, task worker.Task, done func(error)) bool
}

// MailSender sends a single e-mail. *mailer.Mailer implements it.
type MailSender interface {
	Send(email mailer.Email) error
}

// Notifier posts payloads to the configured webhook and sends welcome mail.
type Notifier struct {
	logger      *zerolog.Logger
	pool        Submitter
	client      *http.Client
	postbackURL string
	mail        MailSender
}

// Options configures a Notifier. An empty PostbackURL disables the webhook
// and a nil Mail disables welcome e-mails.
type Options struct {
	PostbackURL string
	HTTPClient  *http.Client
	Mail        MailSender
}

func New(logger *zerolog.Logger, pool Submitter, opts Options) *Notifier {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &Notifier{
		logger:      logger,
		pool:        pool,
		client:      client,
		postbackURL: opts.PostbackURL,
		mail:        opts.Mail,
	}
}

// Notify submits a webhook delivery of payload. It never blocks and never
// reports failure to the caller.
func (n *Notifier) Notify(payload any) {
	if n.postbackURL == "" {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Debug().Err(err).Msg("failed to encode webhook payload")
		return
	}

	deliveryID := uuid.NewString()
	n.pool.Submit("webhook", func(ctx context.Context) error {
		return n.post(ctx, deliveryID, body)
	}, func(err error) {
		if err != nil {
			n.logger.Debug().Err(err).Str("delivery_id", deliveryID).Msg("webhook delivery failed")
		}
	})
}

func (n *Notifier) post(ctx context.Context, deliveryID string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.postbackURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(deliveryIDHeader, deliveryID)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}

	return nil
}

// Welcome submits a welcome e-mail to address. It is a no-op when mail is
// disabled or address is empty.
func (n *Notifier) Welcome(address, name string) {
	if n.mail == nil || address == "" {
		return
	}

	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}

	email := mailer.Email{
		To:       []string{address},
		Subject:  "Welcome to SIWIC",
		Body:     greeting + ",\n\nYour account has been created.",
		HTMLBody: "<p>" + html.EscapeString(greeting) + ",</p><p>Your account has been created.</p>",
	}

	n.pool.Submit("welcome-email", func(context.Context) error {
		return n.mail.Send(email)
	}, func(err error) {
		if err != nil {
			n.logger.Debug().Err(err).Msg("welcome email failed")
		}
	})
}
