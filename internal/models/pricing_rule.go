package models

import (
	"time"

	"github.com/courtside/booking-service/internal/pricing"
)

type PricingRule struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Name       string            `gorm:"not null" json:"name"`
	AppliesTo  pricing.AppliesTo `gorm:"type:varchar(20);not null" json:"applies_to"`
	IsWeekend  *bool             `json:"is_weekend"`
	StartHour  *int              `json:"start_hour"`
	EndHour    *int              `json:"end_hour"`
	IndoorOnly *bool             `json:"indoor_only"`
	RuleType   pricing.RuleType  `gorm:"type:varchar(20);not null" json:"rule_type"`
	Value      float64           `gorm:"type:numeric(10,4);not null" json:"value"`
	IsActive   bool              `gorm:"not null;index" json:"is_active"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (r PricingRule) ToRule() pricing.Rule {
	return pricing.Rule{
		ID:         r.ID,
		Name:       r.Name,
		AppliesTo:  r.AppliesTo,
		IsWeekend:  r.IsWeekend,
		StartHour:  r.StartHour,
		EndHour:    r.EndHour,
		IndoorOnly: r.IndoorOnly,
		Type:       r.RuleType,
		Value:      r.Value,
	}
}
