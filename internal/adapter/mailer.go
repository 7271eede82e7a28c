package adapter

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email. Delivery is fire-and-forget from the
// caller's perspective; failures are logged, never surfaced to the user.
type Mailer interface {
	SendReservationConfirmation(to, productName, visitDate, surveyLink, receiptLink string) error
}

// SurveyLink builds the post-visit survey deep link for a reservation. The
// format is embedded in outbound emails and must remain stable.
func SurveyLink(origin, reservationID string) string {
	return fmt.Sprintf("%s/?page=survey&id=%s", origin, reservationID)
}

// ReceiptLink builds the account/receipt page link for a reservation.
func ReceiptLink(origin, reservationID string) string {
	return fmt.Sprintf("%s/?page=account&reservation=%s", origin, reservationID)
}

// SMTPMailer sends email over SMTP using gomail.
type SMTPMailer struct {
	host   string
	port   int
	user   string
	pass   string
	from   string
	logger *zap.Logger
}

// NewSMTPMailer creates an SMTP-backed mailer.
func NewSMTPMailer(host string, port int, user, pass, from string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from, logger: logger}
}

// SendReservationConfirmation sends the booking confirmation carrying the
// survey and receipt links.
func (s *SMTPMailer) SendReservationConfirmation(to, productName, visitDate, surveyLink, receiptLink string) error {
	if to == "" {
		s.logger.Debug("no recipient email on reservation, skipping confirmation")
		return nil
	}

	body := fmt.Sprintf(
		"Your reservation for %s on %s is confirmed.<br><br>"+
			"View your receipt: <a href=%q>%s</a><br>"+
			"After your visit, we would love your feedback: <a href=%q>%s</a>",
		productName, visitDate, receiptLink, receiptLink, surveyLink, surveyLink,
	)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Reservation confirmed: %s", productName))
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	s.logger.Info("confirmation email sent", zap.String("to", to))
	return nil
}

// NoopMailer logs instead of sending. Used when SMTP is not configured.
type NoopMailer struct {
	logger *zap.Logger
}

// NewNoopMailer creates a mailer that only logs.
func NewNoopMailer(logger *zap.Logger) *NoopMailer {
	return &NoopMailer{logger: logger}
}

// SendReservationConfirmation logs the would-be email.
func (n *NoopMailer) SendReservationConfirmation(to, productName, visitDate, surveyLink, receiptLink string) error {
	n.logger.Info("[NOOP MAIL] reservation confirmation",
		zap.String("to", to),
		zap.String("product", productName),
		zap.String("survey_link", surveyLink),
	)
	return nil
}
