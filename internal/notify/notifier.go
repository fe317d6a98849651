package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pricedigest/internal/logger"
)

const (
	DefaultSubjectPrefix = "Melhores preços Amazon BR"
	DefaultTimeLayout    = "02/01/2006 15:04"
	DefaultBody          = "Olá,\n\n" +
		"Segue em anexo o arquivo CSV com os melhores preços encontrados na Amazon Brasil " +
		"para as palavras-chave configuradas.\n\n" +
		"Gerado automaticamente pelo agente de preços.\n"

	reportContentType = "text/csv"
)

// Transport hands a finished message to a mail system.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Subject returns "<prefix> - <t formatted with layout>".
func Subject(prefix, layout string, t time.Time) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if layout == "" {
		layout = DefaultTimeLayout
	}
	return prefix + " - " + t.Format(layout)
}

// Notifier mails a report file as an attachment.
type Notifier struct {
	Transport Transport
	From      string
	Logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

func (n *Notifier) clock() time.Time {
	if n.now != nil {
		return n.now()
	}
	return time.Now()
}

func (n *Notifier) messageID() string {
	if n.newID != nil {
		return n.newID()
	}
	return uuid.NewString() + "@pricedigest"
}

// Deliver reads reportPath and sends it to recipient. The report file is
// only read; it stays in place whatever the outcome.
func (n *Notifier) Deliver(ctx context.Context, reportPath, subject, body, recipient string) error {
	if n.Transport == nil {
		return ErrNoTransport
	}
	if n.From == "" {
		return ErrNoSender
	}
	if recipient == "" {
		return ErrNoRecipient
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}

	msg := Message{
		ID:      n.messageID(),
		From:    n.From,
		To:      []string{recipient},
		Subject: subject,
		Body:    body,
		Date:    n.clock(),
		Attachments: []Attachment{{
			Filename:    filepath.Base(reportPath),
			ContentType: reportContentType,
			Data:        data,
		}},
	}
	if err := n.Transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending report to %s: %w", recipient, err)
	}

	logger.OrNop(n.Logger).Info("report delivered",
		zap.String("recipient", recipient),
		zap.String("message_id", msg.ID),
		zap.Int("bytes", len(data)),
	)
	return nil
}
