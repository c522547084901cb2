package mailer

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// Config is the SMTP configuration. Mail is disabled when Host is empty.
type Config struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"     envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

func (c Config) Enabled() bool {
	return c.Host != ""
}

// Validate reports every missing setting of an enabled configuration.
func (c Config) Validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if c.Port <= 0 {
		missing = append(missing, "SMTP_PORT")
	}
	if c.Username == "" {
		missing = append(missing, "SMTP_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if c.From == "" {
		missing = append(missing, "SMTP_FROM")
	}

	if len(missing) > 0 {
		return fmt.Errorf("incomplete SMTP configuration, missing %s", strings.Join(missing, ", "))
	}
	return nil
}

var ErrNoRecipients = errors.New("no recipients specified")

// Email is a single outgoing message. When both bodies are set the HTML
// body is primary and Body is the plain-text alternative.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends e-mail over SMTP. A connection is opened per message.
type Mailer struct {
	from   string
	dialer dialer
}

func New(cfg Config) (*Mailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Mailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

func (m *Mailer) Send(email Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipients
	}

	if err := m.dialer.DialAndSend(m.message(email)); err != nil {
		return fmt.Errorf("failed to send %q: %w", email.Subject, err)
	}
	return nil
}

func (m *Mailer) message(email Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	switch {
	case email.HTMLBody != "" && email.Body != "":
		msg.SetBody("text/plain", email.Body)
		msg.AddAlternative("text/html", email.HTMLBody)
	case email.HTMLBody != "":
		msg.SetBody("text/html", email.HTMLBody)
	default:
		msg.SetBody("text/plain", email.Body)
	}

	return msg
}
