package models

import "time"

// EquipmentType is a pool of interchangeable units such as rackets or shuttle tubes.
type EquipmentType struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	TotalQuantity int       `gorm:"not null;check:total_quantity >= 0" json:"total_quantity"`
	PricePerUnit  float64   `gorm:"type:numeric(10,2);not null" json:"price_per_unit"`
	IsActive      bool      `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (EquipmentType) TableName() string { return "equipment_types" }
