package dto

import (
	"time"

	"github.com/courtside/booking-service/internal/models"
	"github.com/courtside/booking-service/internal/pricing"
	"github.com/courtside/booking-service/internal/service"
)

type BookingEquipmentResponse struct {
	EquipmentTypeID uint    `json:"equipment_type_id"`
	Quantity        int     `json:"quantity"`
	PricePerUnit    float64 `json:"price_per_unit"`
}

type BookingCoachResponse struct {
	CoachID uint    `json:"coach_id"`
	Price   float64 `json:"price"`
}

type BookingResponse struct {
	ID            uint                       `json:"id"`
	CustomerName  string                     `json:"customer_name"`
	CustomerEmail string                     `json:"customer_email"`
	StartTime     time.Time                  `json:"start_time"`
	EndTime       time.Time                  `json:"end_time"`
	CourtID       uint                       `json:"court_id"`
	TotalPrice    float64                    `json:"total_price"`
	Status        models.BookingStatus       `json:"status"`
	Equipment     []BookingEquipmentResponse `json:"equipment"`
	Coach         *BookingCoachResponse      `json:"coach,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
}

type CreateBookingResponse struct {
	BookingID      uint              `json:"booking_id"`
	TotalPrice     float64           `json:"total_price"`
	PriceBreakdown pricing.Breakdown `json:"price_breakdown"`
	Booking        BookingResponse   `json:"booking"`
}

type SlotResponse struct {
	ID        uint `json:"id"`
	DayOfWeek int  `json:"day_of_week"`
	StartHour int  `json:"start_hour"`
	EndHour   int  `json:"end_hour"`
}

type CoachAvailabilityResponse struct {
	CoachID uint           `json:"coach_id"`
	Slots   []SlotResponse `json:"slots"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		CourtID:       b.CourtID,
		TotalPrice:    b.TotalPrice,
		Status:        b.Status,
		Equipment:     make([]BookingEquipmentResponse, len(b.Equipment)),
		CreatedAt:     b.CreatedAt,
	}
	for i, line := range b.Equipment {
		resp.Equipment[i] = BookingEquipmentResponse{
			EquipmentTypeID: line.EquipmentTypeID,
			Quantity:        line.Quantity,
			PricePerUnit:    line.PricePerUnit,
		}
	}
	if b.Coach != nil {
		resp.Coach = &BookingCoachResponse{CoachID: b.Coach.CoachID, Price: b.Coach.Price}
	}
	return resp
}

func ToCreateBookingResponse(r *service.BookingResult) CreateBookingResponse {
	return CreateBookingResponse{
		BookingID:      r.Booking.ID,
		TotalPrice:     r.Booking.TotalPrice,
		PriceBreakdown: r.Breakdown,
		Booking:        ToBookingResponse(r.Booking),
	}
}

func ToCoachAvailabilityResponse(coachID uint, slots []models.CoachAvailability) CoachAvailabilityResponse {
	resp := CoachAvailabilityResponse{CoachID: coachID, Slots: make([]SlotResponse, len(slots))}
	for i, s := range slots {
		resp.Slots[i] = SlotResponse{ID: s.ID, DayOfWeek: s.DayOfWeek, StartHour: s.StartHour, EndHour: s.EndHour}
	}
	return resp
}
