package models

import "time"

type Court struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	IsIndoor       bool      `gorm:"not null;default:false" json:"is_indoor"`
	BaseHourlyRate float64   `gorm:"type:numeric(10,2);not null" json:"base_hourly_rate"`
	IsActive       bool      `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
