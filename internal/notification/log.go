package notification

import (
	"context"
	"log/slog"

	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/nathanyu/account-ledger/internal/telemetry"
)

// LogNotifier writes each notification as a structured log line.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier logging through logger, or slog.Default when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, account domain.Account, message string) error {
	n.logger.InfoContext(ctx, "account notification",
		"account_id", account.ID,
		"message", message,
	)
	telemetry.NotificationsTotal.WithLabelValues("log", "sent").Inc()
	return nil
}
