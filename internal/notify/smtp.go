package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

var (
	// ErrStartTLSUnsupported indicates an SMTP server that cannot encrypt the
	// session. Messages are never sent in clear text.
	ErrStartTLSUnsupported = errors.New("notify: smtp server does not support STARTTLS")
	// ErrNoCredentials indicates an SMTPTransport without username or password.
	ErrNoCredentials = errors.New("notify: smtp username and password are required")
)

// SMTPTransport sends messages over SMTP upgraded with STARTTLS and
// authenticated with PLAIN.
type SMTPTransport struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLSConfig overrides the STARTTLS configuration. ServerName defaults
	// to Host.
	TLSConfig *tls.Config
	// Timeout bounds the whole session when ctx has no earlier deadline.
	Timeout time.Duration
}

func (t *SMTPTransport) tlsConfig() *tls.Config {
	if t.TLSConfig != nil {
		cfg := t.TLSConfig.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = t.Host
		}
		return cfg
	}
	return &tls.Config{ServerName: t.Host, MinVersion: tls.VersionTLS12}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if t.Username == "" || t.Password == "" {
		return ErrNoCredentials
	}
	raw, err := msg.Bytes()
	if err != nil {
		return fmt.Errorf("building message: %w", err)
	}

	addr := net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	deadline, ok := ctx.Deadline()
	if t.Timeout > 0 && (!ok || time.Until(deadline) > t.Timeout) {
		deadline, ok = time.Now().Add(t.Timeout), true
	}
	if ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to greet SMTP server: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return ErrStartTLSUnsupported
	}
	if err = client.StartTLS(t.tlsConfig()); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", t.Username, t.Password, t.Host)
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err = client.Mail(msg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range msg.To {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write(raw); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return client.Quit()
}
