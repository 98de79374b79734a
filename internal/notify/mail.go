package notify

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	smtpHost = "smtp.gmail.com"
	smtpAddr = "smtp.gmail.com:587"
)

type MailService struct {
	gmailUser    string
	gmailAppPass string
	mailFrom     string
	mailFromName string
}

func NewMailService(gmailUser, gmailAppPass, mailFrom, mailFromName string) *MailService {
	if mailFrom == "" {
		mailFrom = gmailUser
	}
	return &MailService{
		gmailUser:    gmailUser,
		gmailAppPass: gmailAppPass,
		mailFrom:     mailFrom,
		mailFromName: mailFromName,
	}
}

func (s *MailService) Send(to, subject, htmlBody string) error {
	if s.gmailUser == "" || s.gmailAppPass == "" {
		return errors.New("smtp credentials are not configured")
	}

	log.Printf("[MAIL] smtp sending to=%s via=%s", to, smtpAddr)
	if err := s.sendSMTPWithTimeout(to, BuildMessage(s.mailFromName, s.mailFrom, to, subject, htmlBody)); err != nil {
		return err
	}
	log.Printf("[MAIL] sent to=%s", to)
	return nil
}

// BuildMessage assembles an RFC 5322 HTML message.
func BuildMessage(fromName, from, to, subject, htmlBody string) []byte {
	return []byte(strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", fromName, from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n"))
}

func (s *MailService) sendSMTPWithTimeout(to string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", smtpAddr, 8*time.Second)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, smtpHost)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Quit(); err != nil {
			_ = c.Close()
		}
	}()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: smtpHost}); err != nil {
			return err
		}
	}
	if err := c.Auth(smtp.PlainAuth("", s.gmailUser, s.gmailAppPass, smtpHost)); err != nil {
		return err
	}

	if err := c.Mail(s.mailFrom); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
