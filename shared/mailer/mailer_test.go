package mailer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestConfigValidate(t *testing.T) {
	full := Config{Host: "smtp.test", Port: 587, Username: "u", Password: "p", From: "noreply@test"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{name: "complete", mutate: func(*Config) {}},
		{name: "no port", mutate: func(c *Config) { c.Port = 0 }, wantErr: []string{"SMTP_PORT"}},
		{
			name:    "several missing",
			mutate:  func(c *Config) { c.Username, c.From = "", "" },
			wantErr: []string{"SMTP_USERNAME", "SMTP_FROM"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.mutate(&cfg)

			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate succeeded, want error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("err = %v, want mention of %q", err, want)
				}
			}
		})
	}

	if (Config{}).Enabled() {
		t.Error("empty config reports enabled")
	}
	if _, err := New(Config{Host: "smtp.test"}); err == nil {
		t.Error("New accepted a partial configuration")
	}
}

func TestSend(t *testing.T) {
	d := &recordingDialer{}
	m := &Mailer{from: "noreply@test", dialer: d}

	err := m.Send(Email{
		To:       []string{"alice@example.com"},
		Subject:  "Welcome",
		Body:     "plain",
		HTMLBody: "<p>html</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(d.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(d.sent))
	}

	var buf bytes.Buffer
	if _, err := d.sent[0].WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"From: noreply@test", "To: alice@example.com", "Subject: Welcome", "text/html", "text/plain"} {
		if !strings.Contains(out, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSendErrors(t *testing.T) {
	d := &recordingDialer{err: errors.New("connection refused")}
	m := &Mailer{from: "noreply@test", dialer: d}

	if err := m.Send(Email{Subject: "x"}); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("err = %v, want ErrNoRecipients", err)
	}
	if len(d.sent) != 0 {
		t.Error("dialed without recipients")
	}

	if err := m.Send(Email{To: []string{"a@test"}, Subject: "x"}); err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("err = %v, want dial error", err)
	}
}
