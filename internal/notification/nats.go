package notification

import (
	"context"
	"fmt"

	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/nathanyu/account-ledger/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultSubject is the NATS subject notifications are published on.
const DefaultSubject = "ledger.notifications"

// Publisher publishes a JSON-encoded value on a subject. *queue.NATSClient satisfies it.
type Publisher interface {
	PublishJSON(subject string, v any) error
}

// NATSNotifier publishes domain.Notification messages to NATS.
type NATSNotifier struct {
	publisher Publisher
	subject   string
}

func NewNATSNotifier(publisher Publisher, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{publisher: publisher, subject: subject}
}

func (n *NATSNotifier) Notify(ctx context.Context, account domain.Account, message string) error {
	_, span := telemetry.StartSpan(ctx, "notification.nats",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "nats"),
			attribute.String("messaging.destination", n.subject),
			attribute.String("account_id", account.ID),
		),
	)
	defer span.End()

	if err := n.publisher.PublishJSON(n.subject, domain.NewNotification(account, message)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish notification")
		telemetry.NotificationsTotal.WithLabelValues("nats", "failed").Inc()
		return fmt.Errorf("failed to notify account %s: %w", account.ID, err)
	}

	span.SetStatus(codes.Ok, "")
	telemetry.NotificationsTotal.WithLabelValues("nats", "sent").Inc()
	return nil
}
