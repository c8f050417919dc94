package main

import (
	"errors"
	"io"

	"github.com/go-gomail/gomail"
)

// ---------------------------------------------------------------------------
// Email
// ---------------------------------------------------------------------------

// Attachment is an in-memory file sent with the mail.
type Attachment struct {
	Filename string
	Data     []byte
}

// mailSender is satisfied by *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// newMessage builds the mail carrying the generated notices.
func newMessage(cfg *Config, subject string, attachments ...Attachment) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", cfg.Email.From)
	msg.SetHeader("To", cfg.Email.To)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", "Notice of filing attached. Please post it at the worksite.<br>")

	for _, a := range attachments {
		data := a.Data
		msg.Attach(a.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	return msg
}

// sendEmail sends the generated PDFs via SMTP.
func sendEmail(cfg *Config, subject string, attachments ...Attachment) error {
	if cfg.SMTP.Host == "" || cfg.Email.To == "" {
		return errors.New("smtp host and email recipient must be configured")
	}
	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	return deliver(dialer, newMessage(cfg, subject, attachments...))
}

func deliver(s mailSender, msg *gomail.Message) error {
	return s.DialAndSend(msg)
}
