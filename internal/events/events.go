package events

import (
	"time"

	"github.com/courtside/booking-service/internal/pricing"
)

const RoutingBookingConfirmed = "booking.confirmed"

type BookingConfirmed struct {
	EventID       string            `json:"event_id"`
	BookingID     uint              `json:"booking_id"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	CourtID       uint              `json:"court_id"`
	CoachID       *uint             `json:"coach_id,omitempty"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	TotalPrice    float64           `json:"total_price"`
	Breakdown     pricing.Breakdown `json:"price_breakdown"`
	OccurredAt    time.Time         `json:"occurred_at"`
}
