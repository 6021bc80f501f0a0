package service

import (
	"context"

	"github.com/courtside/booking-service/internal/models"
	"github.com/courtside/booking-service/internal/repository"
	"gorm.io/gorm"
)

// BusySet is what confirmed bookings already hold during a window.
type BusySet struct {
	Courts    map[uint]bool
	Equipment map[uint]int
	Coaches   map[uint]bool
}

// EquipmentFree is the remaining quantity of an equipment type, never negative.
func (b BusySet) EquipmentFree(equipmentTypeID uint, total int) int {
	free := total - b.Equipment[equipmentTypeID]
	if free < 0 {
		return 0
	}
	return free
}

// BuildBusySet folds the CONFIRMED bookings that overlap w into a BusySet.
// Bookings in any other status or outside w are ignored.
func BuildBusySet(bookings []models.Booking, w Window) BusySet {
	busy := BusySet{
		Courts:    make(map[uint]bool),
		Equipment: make(map[uint]int),
		Coaches:   make(map[uint]bool),
	}
	for _, b := range bookings {
		if b.Status != models.StatusConfirmed || !w.Overlaps(b.StartTime, b.EndTime) {
			continue
		}
		busy.Courts[b.CourtID] = true
		counted := make(map[uint]bool, len(b.Equipment))
		for _, line := range b.Equipment {
			id := line.EquipmentTypeID
			if counted[id] {
				continue
			}
			counted[id] = true
			busy.Equipment[id] += b.EquipmentQuantity(id)
		}
		if b.Coach != nil {
			busy.Coaches[b.Coach.CoachID] = true
		}
	}
	return busy
}

// ConflictDetector answers which resources are committed during a window.
// The booking and availability paths share it so both apply the same rules.
type ConflictDetector struct {
	bookings repository.BookingRepository
}

func NewConflictDetector(bookings repository.BookingRepository) *ConflictDetector {
	return &ConflictDetector{bookings: bookings}
}

func (d *ConflictDetector) Detect(ctx context.Context, tx *gorm.DB, w Window) (BusySet, error) {
	bookings, err := d.bookings.FindConfirmedOverlapping(ctx, tx, w.Start, w.End)
	if err != nil {
		return BusySet{}, err
	}
	return BuildBusySet(bookings, w), nil
}
