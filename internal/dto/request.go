package dto

import (
	"github.com/courtside/booking-service/internal/models"
	"github.com/courtside/booking-service/internal/pricing"
	"github.com/courtside/booking-service/internal/service"
)

type EquipmentLineRequest struct {
	EquipmentTypeID uint `json:"equipment_type_id"`
	Quantity        int  `json:"quantity"`
}

// CreateBookingRequest keeps the timestamps as strings so that a malformed
// value is reported as INVALID_RANGE rather than a generic bind error.
type CreateBookingRequest struct {
	CustomerName  string                 `json:"customer_name"`
	CustomerEmail string                 `json:"customer_email"`
	StartTime     string                 `json:"start_time"`
	EndTime       string                 `json:"end_time"`
	CourtID       uint                   `json:"court_id"`
	Equipment     []EquipmentLineRequest `json:"equipment"`
	CoachID       *uint                  `json:"coach_id"`
}

func (r CreateBookingRequest) ToInput(w service.Window) service.CreateBookingInput {
	in := service.CreateBookingInput{
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Start:         w.Start,
		End:           w.End,
		CourtID:       r.CourtID,
		CoachID:       r.CoachID,
	}
	for _, line := range r.Equipment {
		in.Equipment = append(in.Equipment, service.EquipmentRequest{
			EquipmentTypeID: line.EquipmentTypeID,
			Quantity:        line.Quantity,
		})
	}
	return in
}

type SlotRequest struct {
	DayOfWeek *int `json:"day_of_week"`
	StartHour *int `json:"start_hour"`
	EndHour   *int `json:"end_hour"`
}

type SetCoachAvailabilityRequest struct {
	Slots []SlotRequest `json:"slots"`
}

func (r SetCoachAvailabilityRequest) ToInput() []service.SlotInput {
	out := make([]service.SlotInput, len(r.Slots))
	for i, s := range r.Slots {
		out[i] = service.SlotInput{DayOfWeek: s.DayOfWeek, StartHour: s.StartHour, EndHour: s.EndHour}
	}
	return out
}

// IsActive defaults to true on every create request.
func activeOrDefault(v *bool) bool {
	return v == nil || *v
}

type CreateCourtRequest struct {
	Name           string  `json:"name"`
	IsIndoor       bool    `json:"is_indoor"`
	BaseHourlyRate float64 `json:"base_hourly_rate"`
	IsActive       *bool   `json:"is_active"`
}

func (r CreateCourtRequest) ToModel() *models.Court {
	return &models.Court{
		Name:           r.Name,
		IsIndoor:       r.IsIndoor,
		BaseHourlyRate: r.BaseHourlyRate,
		IsActive:       activeOrDefault(r.IsActive),
	}
}

type CreateEquipmentRequest struct {
	Name          string  `json:"name"`
	TotalQuantity int     `json:"total_quantity"`
	PricePerUnit  float64 `json:"price_per_unit"`
	IsActive      *bool   `json:"is_active"`
}

func (r CreateEquipmentRequest) ToModel() *models.EquipmentType {
	return &models.EquipmentType{
		Name:          r.Name,
		TotalQuantity: r.TotalQuantity,
		PricePerUnit:  r.PricePerUnit,
		IsActive:      activeOrDefault(r.IsActive),
	}
}

type CreateCoachRequest struct {
	Name       string  `json:"name"`
	Bio        string  `json:"bio"`
	HourlyRate float64 `json:"hourly_rate"`
	IsActive   *bool   `json:"is_active"`
}

func (r CreateCoachRequest) ToModel() *models.Coach {
	return &models.Coach{
		Name:       r.Name,
		Bio:        r.Bio,
		HourlyRate: r.HourlyRate,
		IsActive:   activeOrDefault(r.IsActive),
	}
}

type CreatePricingRuleRequest struct {
	Name       string            `json:"name"`
	AppliesTo  pricing.AppliesTo `json:"applies_to"`
	IsWeekend  *bool             `json:"is_weekend"`
	StartHour  *int              `json:"start_hour"`
	EndHour    *int              `json:"end_hour"`
	IndoorOnly *bool             `json:"indoor_only"`
	RuleType   pricing.RuleType  `json:"rule_type"`
	Value      float64           `json:"value"`
	IsActive   *bool             `json:"is_active"`
}

func (r CreatePricingRuleRequest) ToModel() *models.PricingRule {
	return &models.PricingRule{
		Name:       r.Name,
		AppliesTo:  r.AppliesTo,
		IsWeekend:  r.IsWeekend,
		StartHour:  r.StartHour,
		EndHour:    r.EndHour,
		IndoorOnly: r.IndoorOnly,
		RuleType:   r.RuleType,
		Value:      r.Value,
		IsActive:   activeOrDefault(r.IsActive),
	}
}
