package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Mailer delivers one-time verification codes.
type Mailer interface {
	SendVerificationCode(to, name, code string) error
}

// NewMailer picks the SMTP mailer when a host is configured and the log-only
// mailer otherwise (local development).
func NewMailer(host, port, user, pass, from string, devMode bool) Mailer {
	if host == "" {
		return &LogMailer{DevMode: devMode}
	}
	return &SMTPMailer{Host: host, Port: port, User: user, Pass: pass, From: from}
}

// SMTPMailer sends codes over plain SMTP with optional auth.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// SendVerificationCode emails the code to the recipient.
func (m *SMTPMailer) SendVerificationCode(to, name, code string) error {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", m.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString("Subject: Your verification code\r\n")
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(fmt.Sprintf("%s,\r\n\r\nYour verification code is: %s\r\n\r\nThe code expires in 30 minutes. If you did not request it, ignore this message.\r\n", greeting, code))

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}

	addr := m.Host + ":" + m.Port
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg.String())); err != nil {
		log.Printf("[Mailer] send to %s failed: %v", to, err)
		return err
	}

	return nil
}

// LogMailer stands in for SMTP in development. It logs the code itself only
// in dev mode; otherwise only the fact that a send happened.
type LogMailer struct {
	DevMode bool
}

// SendVerificationCode logs the delivery instead of sending it.
func (m *LogMailer) SendVerificationCode(to, name, code string) error {
	if m.DevMode {
		log.Printf("[Mailer] dev mode: code %s for %s", code, to)
	} else {
		log.Printf("[Mailer] SMTP not configured, dropping code email for %s", to)
	}
	return nil
}
