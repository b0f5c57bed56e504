// Package notification delivers recovery codes over SMTP.
package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/domodwyer/mailyak/v3"
)

// EmailConfig holds SMTP settings.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// EmailService sends transactional mail through an SMTP relay.
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service.
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

// SendOTP delivers a recovery code. The send runs in its own goroutine so a
// stalled relay respects the caller's context deadline.
func (s *EmailService) SendOTP(ctx context.Context, to, code string) error {
	mail := mailyak.New(fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host))

	from := s.config.From
	mail.From(from)
	if s.config.FromName != "" {
		mail.FromName(s.config.FromName)
	}
	mail.To(to)
	mail.Subject("Your AiReap verification code")
	mail.HTML().Set(otpBody(code, time.Now().Year()))
	mail.Plain().Set(fmt.Sprintf("Your AiReap code is: %s (valid for 5 minutes)", code))

	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send otp email: %w", err)
		}
	}
	return nil
}

func otpBody(code string, year int) string {
	return fmt.Sprintf(`<html><body>
		<h1>OTP Verification Code</h1>
		<p>Hello,</p>
		<p>Use the OTP below to verify your account:</p>
		<p style="font-size:28px;font-weight:bold;letter-spacing:4px;">%s</p>
		<p>Valid for 5 minutes. If you didn't request this, ignore this email.</p>
		<p>&copy; %d AiReap. All rights reserved.</p>
	</body></html>`, code, year)
}
