package mail

import (
	"fmt"

	"water-service/internal/config"

	"gopkg.in/gomail.v2"
)

type EmailService struct {
	from string
	send func(messages ...*gomail.Message) error
}

func NewEmailService(cfg config.MailConfig) *EmailService {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &EmailService{from: from, send: d.DialAndSend}
}

func (e *EmailService) newMessage(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}

func (e *EmailService) SendConfirmation(to string, data ConfirmationData) error {
	m := e.newMessage(to, "Your water service request "+data.RequestID, ConfirmationTemplate(data))
	if err := e.send(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

func (e *EmailService) SendStatusChanged(to, applicantName, requestID, status string) error {
	m := e.newMessage(to, "Update on water service request "+requestID, StatusChangedTemplate(applicantName, requestID, status))
	if err := e.send(m); err != nil {
		return fmt.Errorf("failed to send status email: %w", err)
	}
	return nil
}
