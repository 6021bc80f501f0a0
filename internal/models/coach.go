package models

import "time"

type Coach struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Bio        string    `json:"bio"`
	HourlyRate float64   `gorm:"type:numeric(10,2);not null" json:"hourly_rate"`
	IsActive   bool      `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CoachAvailability is one recurring weekly slot. DayOfWeek counts from
// Monday=0 to Sunday=6; the slot covers the hours [StartHour, EndHour).
type CoachAvailability struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CoachID   uint `gorm:"not null;index:idx_coach_availability_lookup" json:"coach_id"`
	DayOfWeek int  `gorm:"not null;index:idx_coach_availability_lookup;check:day_of_week BETWEEN 0 AND 6" json:"day_of_week"`
	StartHour int  `gorm:"not null;check:start_hour BETWEEN 0 AND 23" json:"start_hour"`
	EndHour   int  `gorm:"not null;check:end_hour BETWEEN 1 AND 24" json:"end_hour"`

	Coach *Coach `gorm:"foreignKey:CoachID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CoachAvailability) TableName() string { return "coach_availabilities" }
