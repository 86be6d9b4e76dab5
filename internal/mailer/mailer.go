package mailer

import (
	"fmt"
	"log"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends transactional mail. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendPasswordReset(to, name, resetURL string) error
	SendWelcome(to, name, tempPassword string) error
}

type smtpMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewFromEnv builds a Mailer from SMTP_* environment variables. When
// SMTP_HOST is unset it returns a mailer that only logs, so development
// setups work without a mail server.
func NewFromEnv() Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Println("SMTP_HOST not set, outgoing mail will be logged only")
		return &logMailer{}
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USERNAME")
	}
	return &smtpMailer{
		host:     host,
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     from,
	}
}

func (m *smtpMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (m *smtpMailer) SendPasswordReset(to, name, resetURL string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>A password reset was requested for your account. Click the link below to choose a new password. The link expires in one hour.</p>
		<p><a href="%s">Reset your password</a></p>
		<p>If you did not request this, you can ignore this email.</p>
	`, name, resetURL)
	return m.send(to, "Password reset", body)
}

func (m *smtpMailer) SendWelcome(to, name, tempPassword string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>An account was created for you. Sign in with this email address and the temporary password below, then change it right away.</p>
		<p><b>%s</b></p>
	`, name, tempPassword)
	return m.send(to, "Your new account", body)
}

// logMailer is the development fallback when SMTP is not configured.
type logMailer struct{}

func (l *logMailer) SendPasswordReset(to, _, resetURL string) error {
	log.Printf("mail (password reset) to %s: %s", to, resetURL)
	return nil
}

func (l *logMailer) SendWelcome(to, _, _ string) error {
	log.Printf("mail (welcome) to %s", to)
	return nil
}
