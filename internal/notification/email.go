package notification

import (
	"fmt"
	"net/smtp"
	"time"
)

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type EmailService struct {
	config EmailConfig
}

func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

func (s *EmailService) SendArchiveExpiryWarning(to, orgName string, expiresAt time.Time) error {
	subject := fmt.Sprintf("Archived data for %s will be deleted soon", orgName)
	body := fmt.Sprintf(`<html><body>
		<h2>Archived data deletion notice</h2>
		<p>The archived data for your closed organization <b>%s</b> is scheduled
		for permanent deletion on %s.</p>
		<p>If you need a copy, export it before that date. After deletion the
		data cannot be recovered.</p>
	</body></html>`, orgName, expiresAt.Format("January 2, 2006"))
	return s.sendEmail(to, subject, body)
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	return smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg))
}
