package delivery

import (
	"context"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"

	"rally/config"
	"rally/infras/kafka"
	"rally/infras/mailer"
	"rally/infras/otel"
	"rally/internal/events"
	"rally/shared/constant"
)

// Worker drains the notification delivery topic and hands each message to
// the mailer. Delivery is best effort: a failed send is logged and the
// message is not retried, so a broken mail provider never blocks bookings.
type Worker struct {
	kafka  kafka.Client
	mailer mailer.Mailer
	cfg    *config.Config
	otel   otel.Otel
}

func New(kafkaClient kafka.Client, mailer mailer.Mailer, cfg *config.Config, otel otel.Otel) *Worker {
	return &Worker{
		kafka:  kafkaClient,
		mailer: mailer,
		cfg:    cfg,
		otel:   otel,
	}
}

// Run blocks consuming the delivery topic until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	log.Info().Str("topic", events.TopicNotificationDelivery).Msg("Starting notification delivery worker.")

	w.kafka.Consume(ctx, w.cfg.Kafka.ConsumerGroup, events.TopicNotificationDelivery, func(message kafkaGo.Message) {
		w.handle(ctx, message)
	})
}

func (w *Worker) handle(ctx context.Context, message kafkaGo.Message) {
	ctx, scope := w.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".handle")
	defer scope.End()

	decoded, err := kafka.DecodeKafkaMessage[events.DeliveryMessage](message)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decode delivery message")

		return
	}

	delivery, ok := decoded.Value.(events.DeliveryMessage)
	if !ok {
		log.Error().Str("key", decoded.Key).Msg("unexpected delivery message payload")

		return
	}

	if delivery.To == "" {
		log.Warn().Str("notification_id", delivery.NotificationID).Msg("delivery message has no recipient address")

		return
	}

	if err := w.mailer.Send(ctx, delivery.To, delivery.ToName, delivery.Subject, delivery.Body); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).
			Str("notification_id", delivery.NotificationID).
			Msg("failed to send notification email")

		return
	}

	scope.AddEvent("Notification email sent for " + delivery.NotificationID)
}
