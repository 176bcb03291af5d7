// Package mail implements the Mailer port over plain SMTP: PLAIN auth,
// STARTTLS on submission ports, implicit TLS on 465.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const defaultSendTimeout = 15 * time.Second

// Config holds the sender credentials supplied at startup.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
	// Disabled short-circuits delivery and logs the message instead.
	// Local development only.
	Disabled bool
}

// SMTPMailer delivers messages synchronously. Failures are reported to the
// caller; there is no retry queue.
type SMTPMailer struct {
	cfg Config
	log zerolog.Logger
}

func NewSMTPMailer(cfg Config, log zerolog.Logger) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSendTimeout
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg, log: log}
}

// Send delivers one message to one recipient. The dial is bounded by the
// configured timeout so a dead relay fails the request instead of hanging it.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if m.cfg.Disabled {
		m.log.Info().Str("to", to).Str("subject", subject).Msg("mail disabled, skipping delivery")
		return nil
	}
	if m.cfg.Host == "" || m.cfg.Username == "" || m.cfg.Password == "" {
		return errors.New("smtp not configured")
	}

	fromAddr := m.cfg.From
	if fromAddr == "" {
		fromAddr = m.cfg.Username
	}
	fromHeader := fromAddr
	if m.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", m.cfg.FromName, fromAddr)
	}

	msg := buildMessage(fromHeader, fromAddr, to, subject, textBody, htmlBody)
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	timeout := m.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}

	if m.cfg.Port == 465 {
		return m.sendImplicitTLS(addr, auth, fromAddr, to, msg, timeout)
	}
	return m.sendStartTLS(addr, auth, fromAddr, to, msg, timeout)
}

func (m *SMTPMailer) sendStartTLS(addr string, auth smtp.Auth, from, to, msg string, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	return m.submit(c, auth, from, to, msg)
}

func (m *SMTPMailer) sendImplicitTLS(addr string, auth smtp.Auth, from, to, msg string, timeout time.Duration) error {
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return fmt.Errorf("smtp tls dial: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	return m.submit(c, auth, from, to, msg)
}

func (m *SMTPMailer) submit(c *smtp.Client, auth smtp.Auth, from, to, msg string) error {
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return c.Quit()
}
