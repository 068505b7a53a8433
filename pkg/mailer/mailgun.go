package mailer

import (
	"context"
	"errors"

	mg "github.com/mailgun/mailgun-go/v4"
)

var ErrNotConfigured = errors.New("mailgun is not configured")

// Message is one rendered notification ready for delivery.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	// Tag groups deliveries in the Mailgun dashboard, usually the template name.
	Tag string
}

// Mailgun sends rendered notifications from a single sender address.
type Mailgun struct {
	Domain string
	Sender string
	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	m := &Mailgun{Domain: domain, Sender: sender}
	if domain != "" && apiKey != "" {
		m.client = mg.NewMailgun(domain, apiKey)
	}
	return m
}

// Configured reports whether every credential needed to send is present.
func (m *Mailgun) Configured() bool {
	return m != nil && m.client != nil && m.Sender != ""
}

// Send delivers msg. The caller bounds it through ctx.
func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	out := m.client.NewMessage(m.Sender, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		out.SetHtml(msg.HTML)
	}
	if msg.Tag != "" {
		if err := out.AddTag(msg.Tag); err != nil {
			return err
		}
	}
	_, _, err := m.client.Send(ctx, out)
	return err
}
