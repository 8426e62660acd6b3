// Package mail delivers outgoing email through a pluggable backend.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yamdb/yamdb-server/internal/metrics"
)

// Backend names accepted in configuration.
const (
	BackendSMTP    = "smtp"
	BackendConsole = "console"
	BackendMemory  = "memory"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers a message.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Mailer composes application emails and hands them to a Sender.
type Mailer struct {
	sender       Sender
	from         string
	failSilently bool
	logger       *slog.Logger
}

// NewMailer creates a mailer. With failSilently set, delivery errors are
// logged and swallowed instead of returned.
func NewMailer(sender Sender, from string, failSilently bool, logger *slog.Logger) *Mailer {
	return &Mailer{sender: sender, from: from, failSilently: failSilently, logger: logger}
}

// SendConfirmationCode emails a confirmation code to the account address.
func (m *Mailer) SendConfirmationCode(ctx context.Context, to, code string) error {
	return m.send(ctx, Message{
		From:    m.from,
		To:      to,
		Subject: "Confirmation code",
		Body:    "Your confirmation code: " + code,
	})
}

func (m *Mailer) send(ctx context.Context, msg Message) error {
	err := m.sender.Send(ctx, msg)
	metrics.RecordMailDelivery(m.sender.Name(), err)
	if err == nil {
		return nil
	}

	if m.failSilently {
		m.logger.Warn("email delivery failed", "to", msg.To, "backend", m.sender.Name(), "error", err)
		return nil
	}
	return fmt.Errorf("send email: %w", err)
}

// ConsoleSender writes messages to the log instead of delivering them.
type ConsoleSender struct {
	logger *slog.Logger
}

// NewConsoleSender creates a sender for development.
func NewConsoleSender(logger *slog.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

// Name implements Sender.
func (c *ConsoleSender) Name() string { return BackendConsole }

// Send implements Sender.
func (c *ConsoleSender) Send(_ context.Context, msg Message) error {
	c.logger.Info("email", "from", msg.From, "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

// Outbox keeps messages in memory. Safe for concurrent use.
type Outbox struct {
	mu       sync.Mutex
	messages []Message
	// Err, when set, is returned by Send instead of storing the message.
	Err error
}

// Name implements Sender.
func (o *Outbox) Name() string { return BackendMemory }

// Send implements Sender.
func (o *Outbox) Send(_ context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.messages = append(o.messages, msg)
	return nil
}

// Messages returns a copy of the stored messages.
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.messages...)
}

// Last returns the most recent message sent to addr.
func (o *Outbox) Last(addr string) (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].To == addr {
			return o.messages[i], true
		}
	}
	return Message{}, false
}
