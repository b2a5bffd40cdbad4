package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/port"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/config"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/logger"
)

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPSettings
	log *zap.Logger
}

// NewSMTPMailer constructs a mailer from SMTP settings.
func NewSMTPMailer(cfg config.SMTPSettings, log *zap.Logger) *SMTPMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SMTPMailer{cfg: cfg, log: log}
}

// Send delivers a single plain-text message. The context deadline bounds
// the connection; SMTP itself offers no cancellation mid-transaction.
func (m *SMTPMailer) Send(ctx context.Context, mail port.Mail) error {
	to := strings.TrimSpace(mail.To)
	if to == "" {
		return fmt.Errorf("recipient is required")
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + mail.Subject,
		"",
		mail.Body,
	}, "\r\n")

	done := make(chan error, 1)
	go func() {
		done <- m.send(ctx, addr, auth, to, []byte(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			m.log.Warn("mail dispatch failed",
				zap.String("to", logger.MaskEmail(to)),
				zap.Error(err),
			)
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SMTPMailer) send(ctx context.Context, addr string, auth smtp.Auth, to string, msg []byte) error {
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(nil); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

var _ port.Mailer = (*SMTPMailer)(nil)

// LoggingMailer records outbound mail via structured logging without
// delivering it. Used in development environments.
type LoggingMailer struct {
	log *zap.Logger
}

// NewLoggingMailer constructs a mailer backed by structured logging.
func NewLoggingMailer(log *zap.Logger) *LoggingMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingMailer{log: log}
}

func (m *LoggingMailer) Send(_ context.Context, mail port.Mail) error {
	m.log.Info("dispatch mail",
		zap.String("to", logger.MaskEmail(mail.To)),
		zap.String("subject", mail.Subject),
		zap.String("body", mail.Body),
	)
	return nil
}

var _ port.Mailer = (*LoggingMailer)(nil)
