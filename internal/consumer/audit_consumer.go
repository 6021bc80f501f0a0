package consumer

import (
	"encoding/json"

	"github.com/courtside/booking-service/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AuditConsumer writes one structured audit line per booking event.
type AuditConsumer struct {
	log zerolog.Logger
}

func NewAuditConsumer(log zerolog.Logger) *AuditConsumer {
	return &AuditConsumer{log: log}
}

// Start handles messages in a goroutine until msgs is closed. The returned
// channel closes once the last message has been handled.
func (ac *AuditConsumer) Start(msgs <-chan amqp.Delivery) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			ac.handleMessage(msg)
		}
		ac.log.Info().Msg("delivery channel closed, stopping consumer")
	}()
	return done
}

func (ac *AuditConsumer) handleMessage(msg amqp.Delivery) {
	switch msg.RoutingKey {
	case events.RoutingBookingConfirmed:
		var evt events.BookingConfirmed
		if err := json.Unmarshal(msg.Body, &evt); err != nil || evt.BookingID == 0 {
			ac.log.Warn().Err(err).Str("message_id", msg.MessageId).Msg("malformed booking event")
			_ = msg.Nack(false, false)
			return
		}
		ac.log.Info().
			Str("event", msg.RoutingKey).
			Str("event_id", evt.EventID).
			Uint("booking_id", evt.BookingID).
			Uint("court_id", evt.CourtID).
			Str("customer_email", evt.CustomerEmail).
			Time("start_time", evt.StartTime).
			Time("end_time", evt.EndTime).
			Float64("total_price", evt.TotalPrice).
			Int("adjustments", len(evt.Breakdown.Adjustments)).
			Msg("booking audit")
	default:
		if !json.Valid(msg.Body) {
			ac.log.Warn().Str("event", msg.RoutingKey).Msg("malformed booking event")
			_ = msg.Nack(false, false)
			return
		}
		ac.log.Info().Str("event", msg.RoutingKey).RawJSON("payload", msg.Body).Msg("booking audit")
	}
	_ = msg.Ack(false)
}
