package service

import (
	"context"

	"github.com/courtside/booking-service/internal/models"
	"github.com/courtside/booking-service/internal/repository"
	"gorm.io/gorm"
)

// SlotCovers reports whether slot covers the whole clock hour [hour, hour+1) on day.
func SlotCovers(slot models.CoachAvailability, day, hour int) bool {
	return slot.DayOfWeek == day && slot.StartHour <= hour && slot.EndHour >= hour+1
}

// ScheduleMatcher checks coaches' weekly slots. Only the booking start hour
// is checked, not every hour of the booking.
type ScheduleMatcher struct {
	coaches repository.CoachRepository
}

func NewScheduleMatcher(coaches repository.CoachRepository) *ScheduleMatcher {
	return &ScheduleMatcher{coaches: coaches}
}

func (m *ScheduleMatcher) IsWorking(ctx context.Context, tx *gorm.DB, coachID uint, day, hour int) (bool, error) {
	slots, err := m.coaches.FindSlotsByDay(ctx, tx, day, coachID)
	if err != nil {
		return false, err
	}
	for _, s := range slots {
		if s.CoachID == coachID && SlotCovers(s, day, hour) {
			return true, nil
		}
	}
	return false, nil
}

// WorkingCoaches returns the ids of every coach with a slot covering day/hour.
func (m *ScheduleMatcher) WorkingCoaches(ctx context.Context, tx *gorm.DB, day, hour int) (map[uint]bool, error) {
	slots, err := m.coaches.FindSlotsByDay(ctx, tx, day)
	if err != nil {
		return nil, err
	}
	working := make(map[uint]bool)
	for _, s := range slots {
		if SlotCovers(s, day, hour) {
			working[s.CoachID] = true
		}
	}
	return working, nil
}
