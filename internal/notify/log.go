package notify

import (
	"context"

	"go.uber.org/zap"

	"pricedigest/internal/logger"
)

// LogTransport logs messages instead of sending them.
type LogTransport struct {
	Logger *zap.Logger
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	logger.OrNop(t.Logger).Info("message not sent (dry run)",
		zap.String("message_id", msg.ID),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Strings("attachments", names),
	)
	return nil
}
