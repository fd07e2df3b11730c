// Package notifier consumes membership events from the queue and
// delivers the matching e-mails over SMTP.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/replyflow/replyflow/internal/lib/sl"
	smtplib "github.com/replyflow/replyflow/internal/lib/smtp"
)

// Transport opens authenticated SMTP sessions.
type Transport interface {
	Connect() (smtplib.Client, error)
	GetSMTPUser() string
}

// Event is the envelope every membership notification shares.
type Event struct {
	UserUID        string `json:"user_uid"`
	Email          string `json:"email"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	Kind           string `json:"kind"`
}

// Service renders and sends notification e-mails.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// New creates the notifier.
func New(transport Transport, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// HandleMessage processes one queue message. Unknown kinds and events
// without an address are dropped with an ack; delivery failures bubble
// up so the message is requeued.
func (s *Service) HandleMessage(body []byte) error {
	const op = "notifier.HandleMessage"

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal notification event", sl.Err(err))
		return nil
	}
	if event.Email == "" {
		s.log.Warn("notification event without email, dropping",
			slog.String("kind", event.Kind))
		return nil
	}

	subject, text, ok := render(event)
	if !ok {
		s.log.Info("ignored notification kind", slog.String("kind", event.Kind))
		return nil
	}

	if err := s.send(event.Email, subject, text); err != nil {
		s.log.Error("failed to send notification email", sl.Err(err),
			slog.String("kind", event.Kind))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("notification email sent",
		slog.String("kind", event.Kind), slog.String("to", event.Email))
	return nil
}

func render(event Event) (subject, text string, ok bool) {
	switch event.Kind {
	case "trial_expired":
		return "Your trial has ended",
			"Your free trial is over and the account moved to the FREE plan. Upgrade to keep your automated replies running.",
			true
	case "subscription_canceled":
		return "Your subscription was canceled",
			"Your subscription has been canceled. Automated replies are disabled until you subscribe again.",
			true
	default:
		return "", "", false
	}
}

func (s *Service) send(to, subject, text string) error {
	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		if quitErr := client.Quit(); quitErr != nil {
			_ = client.Close()
		}
	}()

	from := s.transport.GetSMTPUser()
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(text + "\r\n")

	if _, err := w.Write([]byte(b.String())); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
