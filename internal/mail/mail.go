// Package mail sends the booking and meeting notification emails. Sender
// is the transport boundary; Notifier owns the message templates.
package mail

import (
	"fmt"
	"net"
	"net/smtp"

	"booking-api/internal/config"
	"booking-api/internal/model"
)

// Sender delivers a single message to one recipient.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: net.JoinHostPort(cfg.Host, cfg.Port),
		from: cfg.From,
		auth: auth,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

const timeLayout = "Mon, 02 Jan 2006 15:04 MST"

// Notifier renders the four notification templates and hands them to the
// Sender.
type Notifier struct {
	sender Sender
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

func (n *Notifier) BookingConfirmed(to string, m *model.Meeting) error {
	body := fmt.Sprintf("Your booking for %s from %s to %s has been confirmed.",
		m.Topic, m.StartTime.Format(timeLayout), m.EndTime.Format(timeLayout))
	return n.sender.Send(to, "Booking Confirmation", body)
}

func (n *Notifier) BookingCancelled(to string, m *model.Meeting) error {
	body := fmt.Sprintf("Your booking for %s from %s to %s has been cancelled.",
		m.Topic, m.StartTime.Format(timeLayout), m.EndTime.Format(timeLayout))
	return n.sender.Send(to, "Booking Cancellation", body)
}

func (n *Notifier) MeetingCreated(to string, m *model.Meeting) error {
	body := fmt.Sprintf("Your meeting %q has been created for %s.",
		m.Topic, m.StartTime.Format(timeLayout))
	return n.sender.Send(to, "Meeting Created", body)
}

func (n *Notifier) MeetingDeleted(to string, m *model.Meeting) error {
	body := fmt.Sprintf("Your meeting %q scheduled for %s has been deleted.",
		m.Topic, m.StartTime.Format(timeLayout))
	return n.sender.Send(to, "Meeting Deleted", body)
}
