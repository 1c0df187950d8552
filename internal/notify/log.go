package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log.WithFields(zap.String("component", "notify-log"))}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(ctx context.Context, n Notification) {
	fields := []zap.Field{
		zap.String("severity", string(n.Severity)),
		zap.String("message", n.Message),
	}
	if n.BoardID != 0 {
		fields = append(fields, zap.Int64("board_id", n.BoardID))
	}
	log := l.logger.WithContext(ctx)
	if n.Severity == SeverityError {
		log.Warn("user notification", fields...)
		return
	}
	log.Info("user notification", fields...)
}
