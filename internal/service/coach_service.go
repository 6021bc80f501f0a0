package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/booking-service/internal/models"
	"github.com/courtside/booking-service/pkg/logger"
	"gorm.io/gorm"
)

// SlotInput is one submitted weekly slot. Nil fields are rejected.
type SlotInput struct {
	DayOfWeek *int
	StartHour *int
	EndHour   *int
}

type CoachService interface {
	SetAvailability(ctx context.Context, coachID uint, slots []SlotInput) ([]models.CoachAvailability, error)
	GetAvailability(ctx context.Context, coachID uint) ([]models.CoachAvailability, error)
}

type coachService struct {
	stores Stores
	cache  SnapshotCache
}

func NewCoachService(stores Stores, cache SnapshotCache) CoachService {
	return &coachService{stores: stores, cache: orNoopCache(cache)}
}

// SetAvailability replaces the coach's whole weekly schedule. The coach row
// is locked for the delete and insert so concurrent replacements serialize.
func (s *coachService) SetAvailability(ctx context.Context, coachID uint, slots []SlotInput) ([]models.CoachAvailability, error) {
	ctx, span := tracer.Start(ctx, "CoachService.SetAvailability")
	defer span.End()

	rows, err := ValidateSlots(slots)
	if err != nil {
		return nil, err
	}

	err = s.stores.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.stores.Coaches.FindActiveByID(ctx, tx, coachID, true); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindCoachNotFound, "Coach not found or inactive")
			}
			return fmt.Errorf("load coach: %w", err)
		}
		return s.stores.Coaches.ReplaceAvailability(ctx, tx, coachID, rows)
	})
	if err != nil {
		if KindOf(err) == "" {
			span.RecordError(err)
		}
		return nil, err
	}

	log := logger.Component("coach")
	log.Info().Uint("coach_id", coachID).Int("slots", len(rows)).Msg("coach availability replaced")
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("availability cache invalidation failed")
	}
	return rows, nil
}

func (s *coachService) GetAvailability(ctx context.Context, coachID uint) ([]models.CoachAvailability, error) {
	if _, err := s.stores.Coaches.FindActiveByID(ctx, nil, coachID, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindCoachNotFound, "Coach not found or inactive")
		}
		return nil, err
	}
	return s.stores.Coaches.ListAvailability(ctx, coachID)
}

// ValidateSlots checks every slot before any write and converts them to rows.
func ValidateSlots(slots []SlotInput) ([]models.CoachAvailability, error) {
	if len(slots) == 0 {
		return nil, newError(KindInvalidSlot, "slots must be a non-empty array")
	}
	rows := make([]models.CoachAvailability, 0, len(slots))
	for _, slot := range slots {
		if slot.DayOfWeek == nil || slot.StartHour == nil || slot.EndHour == nil {
			return nil, newError(KindInvalidSlot, "each slot must have numeric day_of_week, start_hour and end_hour")
		}
		day, start, end := *slot.DayOfWeek, *slot.StartHour, *slot.EndHour
		switch {
		case start < 0 || start > 23:
			return nil, newError(KindInvalidSlot, "start_hour must be between 0 and 23")
		case end < 1 || end > 24:
			return nil, newError(KindInvalidSlot, "end_hour must be between 1 and 24")
		case start >= end:
			return nil, newError(KindInvalidSlot, "start_hour must be less than end_hour for each slot")
		case day < 0 || day > 6:
			return nil, newError(KindInvalidSlot, "day_of_week must be between 0 and 6")
		}
		rows = append(rows, models.CoachAvailability{DayOfWeek: day, StartHour: start, EndHour: end})
	}
	return rows, nil
}
