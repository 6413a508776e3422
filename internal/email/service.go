package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/medagenda/scheduler-api/internal/model"
)

// Service sends appointment notices to patients. Delivery failures are
// the caller's to log; they never fail a booking.
type Service interface {
	SendBookingConfirmation(ctx context.Context, to string, apt *model.Appointment) error
	SendRescheduleNotice(ctx context.Context, to string, apt *model.Appointment, previousStart time.Time) error
	SendCancellation(ctx context.Context, to string, apt *model.Appointment, reason string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg Config) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *smtpService) SendBookingConfirmation(_ context.Context, to string, apt *model.Appointment) error {
	body := fmt.Sprintf(
		"Your appointment has been booked for %s.\nReason: %s\n",
		apt.StartTime.Format("Monday, 2 January 2006 at 15:04"),
		apt.Reason,
	)
	return s.send(to, "Appointment confirmed", body)
}

func (s *smtpService) SendRescheduleNotice(_ context.Context, to string, apt *model.Appointment, previousStart time.Time) error {
	body := fmt.Sprintf(
		"Your appointment on %s has been moved to %s.\n",
		previousStart.Format("Monday, 2 January 2006 at 15:04"),
		apt.StartTime.Format("Monday, 2 January 2006 at 15:04"),
	)
	return s.send(to, "Appointment rescheduled", body)
}

func (s *smtpService) SendCancellation(_ context.Context, to string, apt *model.Appointment, reason string) error {
	body := fmt.Sprintf(
		"Your appointment on %s has been cancelled.\nReason: %s\n",
		apt.StartTime.Format("Monday, 2 January 2006 at 15:04"),
		reason,
	)
	return s.send(to, "Appointment cancelled", body)
}

// NewNoop returns a Service that drops all mail. Used when SMTP is not
// configured.
func NewNoop() Service {
	return noopService{}
}

type noopService struct{}

func (noopService) SendBookingConfirmation(context.Context, string, *model.Appointment) error {
	return nil
}

func (noopService) SendRescheduleNotice(context.Context, string, *model.Appointment, time.Time) error {
	return nil
}

func (noopService) SendCancellation(context.Context, string, *model.Appointment, string) error {
	return nil
}
