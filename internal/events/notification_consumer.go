package events

import (
	"context"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/k-experience/service-reservation/internal/adapter"
	"github.com/k-experience/service-reservation/internal/platform/kafka"
)

// NotificationConsumer listens to reservation events and sends confirmation
// email carrying the post-visit survey link. Delivery is fire-and-forget:
// failures are logged and the reservation remains valid regardless.
type NotificationConsumer struct {
	consumer *kafka.Consumer
	mailer   adapter.Mailer
	origin   string
	logger   *zap.Logger
}

// NewNotificationConsumer creates a consumer for reservation events.
// origin is the storefront origin embedded in outbound links.
func NewNotificationConsumer(brokers []string, groupID string, mailer adapter.Mailer, origin string, logger *zap.Logger) *NotificationConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicReservationEvents, logger)
	return &NotificationConsumer{
		consumer: consumer,
		mailer:   mailer,
		origin:   origin,
		logger:   logger,
	}
}

// Start begins consuming. It blocks until the context is cancelled.
func (c *NotificationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming messages. Unknown types are ignored.
func (c *NotificationConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from reservation topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return err
	}

	switch {
	case strings.EqualFold(ce.Type, ReservationConfirmed):
		return c.handleConfirmed(ce)
	default:
		return nil
	}
}

func (c *NotificationConsumer) handleConfirmed(ce kafka.CloudEvent) error {
	var event ReservationConfirmedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse ReservationConfirmedEvent data", zap.Error(err))
		return err
	}

	id := event.ReservationID.String()
	err := c.mailer.SendReservationConfirmation(
		event.NotifyEmail,
		event.ProductName,
		event.VisitDate,
		adapter.SurveyLink(c.origin, id),
		adapter.ReceiptLink(c.origin, id),
	)
	if err != nil {
		// Swallowed: notification failure never surfaces to the user.
		c.logger.Warn("confirmation email delivery failed",
			zap.String("reservation_id", id),
			zap.Error(err),
		)
	}
	return nil
}

// Close closes the underlying Kafka consumer.
func (c *NotificationConsumer) Close() error {
	return c.consumer.Close()
}
