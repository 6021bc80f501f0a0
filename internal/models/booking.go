package models

import "time"

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	CustomerName  string        `gorm:"not null" json:"customer_name"`
	CustomerEmail string        `gorm:"not null" json:"customer_email"`
	StartTime     time.Time     `gorm:"not null;index:idx_booking_window" json:"start_time"`
	EndTime       time.Time     `gorm:"not null;index:idx_booking_window" json:"end_time"`
	CourtID       uint          `gorm:"not null;index" json:"court_id"`
	TotalPrice    float64       `gorm:"type:numeric(10,2);not null" json:"total_price"`
	Status        BookingStatus `gorm:"type:varchar(20);not null;default:'CONFIRMED';index" json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Court     *Court             `gorm:"foreignKey:CourtID" json:"-"`
	Equipment []BookingEquipment `gorm:"foreignKey:BookingID" json:"equipment"`
	Coach     *BookingCoach      `gorm:"foreignKey:BookingID" json:"coach,omitempty"`
}

// BookingEquipment stores the unit price charged when the booking was made.
type BookingEquipment struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	BookingID       uint    `gorm:"not null;index" json:"booking_id"`
	EquipmentTypeID uint    `gorm:"not null" json:"equipment_type_id"`
	Quantity        int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	PricePerUnit    float64 `gorm:"type:numeric(10,2);not null" json:"price_per_unit"`

	EquipmentType *EquipmentType `gorm:"foreignKey:EquipmentTypeID" json:"-"`
}

func (BookingEquipment) TableName() string { return "booking_equipments" }

// BookingCoach stores the coach's base price for the booked duration.
type BookingCoach struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	BookingID uint    `gorm:"not null;uniqueIndex" json:"booking_id"`
	CoachID   uint    `gorm:"not null;index" json:"coach_id"`
	Price     float64 `gorm:"type:numeric(10,2);not null" json:"price"`

	Coach *Coach `gorm:"foreignKey:CoachID" json:"-"`
}

func (BookingCoach) TableName() string { return "booking_coaches" }

// EquipmentQuantity returns the quantity booked for an equipment type.
func (b *Booking) EquipmentQuantity(equipmentTypeID uint) int {
	qty := 0
	for _, line := range b.Equipment {
		if line.EquipmentTypeID == equipmentTypeID {
			qty += line.Quantity
		}
	}
	return qty
}
