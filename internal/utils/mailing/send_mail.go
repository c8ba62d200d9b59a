package mailing

import (
	"fmt"
	"io"
	"strconv"

	"kalorikollen/internal/utils"

	"gopkg.in/gomail.v2"
)

type MailConfig struct {
	AppURL       string
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPEmail    string
	SMTPPassword string
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

// Attachment is an in-memory file sent along with a mail.
type Attachment struct {
	Filename string
	Data     []byte
}

func NewMessage(cfg MailConfig, toEmail, subject, body string, attachments ...Attachment) *gomail.Message {
	mailer := gomail.NewMessage()
	if cfg.SMTPSender != "" {
		mailer.SetAddressHeader("From", cfg.SMTPEmail, cfg.SMTPSender)
	} else {
		mailer.SetHeader("From", cfg.SMTPEmail)
	}
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)

	for _, a := range attachments {
		data := a.Data
		mailer.Attach(a.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	return mailer
}

func SendMail(toEmail string, subject string, body string, attachments ...Attachment) error {
	emailConfig := LoadMailConfig()
	if emailConfig.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is not configured")
	}

	mailer := NewMessage(emailConfig, toEmail, subject, body, attachments...)
	port, err := strconv.Atoi(emailConfig.SMTPPort)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(
		emailConfig.SMTPHost,
		port,
		emailConfig.SMTPEmail,
		emailConfig.SMTPPassword,
	)

	return dialer.DialAndSend(mailer)
}
