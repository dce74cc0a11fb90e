// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/devmarket/devmarket-backend/internal/config"
	"github.com/devmarket/devmarket-backend/internal/models"
)

// Mailer delivers one-time codes. Abstracted so the auth flow can be tested
// without an SMTP transport.
type Mailer interface {
	SendOTPEmail(email, code string, purpose models.OTPPurpose) error
}

type NotificationService struct {
	config *config.Config
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{config: config}
}

var otpEmailTemplate = template.Must(template.New("otp").Parse(`
<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto;">
	<h2>{{.Heading}}</h2>
	<p>{{.Description}}</p>
	<div style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">{{.Code}}</div>
	<p>This code expires in <strong>5 minutes</strong>.</p>
	<p>If you didn't request this, you can safely ignore this email.</p>
</div>
`))

func (s *NotificationService) SendOTPEmail(email, code string, purpose models.OTPPurpose) error {
	var subject, heading, description string
	switch purpose {
	case models.OTPPurposeRegister:
		subject = "Verify Your Email — DevMarket"
		heading = "Complete Your Registration"
		description = "Use the code below to verify your email and complete your registration."
	case models.OTPPurposeResetPassword:
		subject = "Reset Your Password — DevMarket"
		heading = "Reset Your Password"
		description = "Use the code below to verify your identity and reset your password."
	default:
		subject = "Login Verification — DevMarket"
		heading = "Login Verification"
		description = "Use the code below to verify your login."
	}

	var body bytes.Buffer
	err := otpEmailTemplate.Execute(&body, map[string]string{
		"Heading":     heading,
		"Description": description,
		"Code":        code,
	})
	if err != nil {
		return fmt.Errorf("failed to render OTP email: %w", err)
	}

	return s.sendEmail(email, subject, body.String())
}

func (s *NotificationService) sendEmail(to, subject, htmlBody string) error {
	cfg := s.config.Email

	// Without SMTP credentials (local development) log instead of sending.
	if cfg.SMTPUsername == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, skipping email delivery")
		return nil
	}

	msg := fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		cfg.FromName, cfg.FromEmail, to, subject, htmlBody,
	)

	auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	addr := cfg.SMTPHost + ":" + cfg.SMTPPort

	if err := smtp.SendMail(addr, auth, cfg.FromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
