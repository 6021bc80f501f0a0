package service

import (
	"context"
	"fmt"
	"time"

	"github.com/courtside/booking-service/internal/repository"
	"github.com/courtside/booking-service/pkg/logger"
	"github.com/courtside/booking-service/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type CourtAvailability struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	IsIndoor       bool    `json:"is_indoor"`
	BaseHourlyRate float64 `json:"base_hourly_rate"`
	IsAvailable    bool    `json:"is_available"`
}

type EquipmentAvailability struct {
	ID                uint    `json:"id"`
	Name              string  `json:"name"`
	TotalQuantity     int     `json:"total_quantity"`
	AvailableQuantity int     `json:"available_quantity"`
	PricePerUnit      float64 `json:"price_per_unit"`
}

type CoachAvailability struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Bio         string  `json:"bio"`
	HourlyRate  float64 `json:"hourly_rate"`
	IsAvailable bool    `json:"is_available"`
}

// Availability is a point-in-time snapshot, not a reservation.
type Availability struct {
	StartTime time.Time               `json:"start_time"`
	EndTime   time.Time               `json:"end_time"`
	Courts    []CourtAvailability     `json:"courts"`
	Equipment []EquipmentAvailability `json:"equipment"`
	Coaches   []CoachAvailability     `json:"coaches"`
}

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, w Window) (*Availability, error)
}

type availabilityService struct {
	stores   Stores
	detector *ConflictDetector
	matcher  *ScheduleMatcher
	cache    SnapshotCache
	loc      *time.Location
}

func NewAvailabilityService(stores Stores, cache SnapshotCache, loc *time.Location) AvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	return &availabilityService{
		stores:   stores,
		detector: NewConflictDetector(stores.Bookings),
		matcher:  NewScheduleMatcher(stores.Coaches),
		cache:    orNoopCache(cache),
		loc:      loc,
	}
}

// CheckAvailability reports every active resource for w. All reads come from
// one read-only snapshot.
func (s *availabilityService) CheckAvailability(ctx context.Context, w Window) (*Availability, error) {
	ctx, span := tracer.Start(ctx, "AvailabilityService.CheckAvailability")
	defer span.End()

	log := logger.Component("availability")

	var cached Availability
	version, hit, err := s.cache.Get(ctx, w.Start, w.End, &cached)
	cacheable := err == nil
	if err != nil {
		log.Warn().Err(err).Msg("availability cache read failed")
	}
	metrics.RecordCacheLookup(hit)
	span.SetAttributes(attribute.Bool("cache_hit", hit))
	if hit {
		return &cached, nil
	}

	var result *Availability
	err = s.stores.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		courts, err := s.stores.Courts.ListActive(ctx, tx)
		if err != nil {
			return fmt.Errorf("list courts: %w", err)
		}
		equipment, err := s.stores.Equipment.ListActive(ctx, tx)
		if err != nil {
			return fmt.Errorf("list equipment: %w", err)
		}
		coaches, err := s.stores.Coaches.ListActive(ctx, tx)
		if err != nil {
			return fmt.Errorf("list coaches: %w", err)
		}

		busy, err := s.detector.Detect(ctx, tx, w)
		if err != nil {
			return fmt.Errorf("detect conflicts: %w", err)
		}
		day, hour := w.DayHour(s.loc)
		working, err := s.matcher.WorkingCoaches(ctx, tx, day, hour)
		if err != nil {
			return fmt.Errorf("match coach schedules: %w", err)
		}

		result = &Availability{
			StartTime: w.Start,
			EndTime:   w.End,
			Courts:    make([]CourtAvailability, 0, len(courts)),
			Equipment: make([]EquipmentAvailability, 0, len(equipment)),
			Coaches:   make([]CoachAvailability, 0, len(coaches)),
		}
		for _, c := range courts {
			result.Courts = append(result.Courts, CourtAvailability{
				ID:             c.ID,
				Name:           c.Name,
				IsIndoor:       c.IsIndoor,
				BaseHourlyRate: c.BaseHourlyRate,
				IsAvailable:    !busy.Courts[c.ID],
			})
		}
		for _, e := range equipment {
			result.Equipment = append(result.Equipment, EquipmentAvailability{
				ID:                e.ID,
				Name:              e.Name,
				TotalQuantity:     e.TotalQuantity,
				AvailableQuantity: busy.EquipmentFree(e.ID, e.TotalQuantity),
				PricePerUnit:      e.PricePerUnit,
			})
		}
		for _, c := range coaches {
			result.Coaches = append(result.Coaches, CoachAvailability{
				ID:          c.ID,
				Name:        c.Name,
				Bio:         c.Bio,
				HourlyRate:  c.HourlyRate,
				IsAvailable: working[c.ID] && !busy.Coaches[c.ID],
			})
		}
		return nil
	}, repository.ReadSnapshot())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, version, w.Start, w.End, result); err != nil {
			log.Warn().Err(err).Msg("availability cache write failed")
		}
	}
	return result, nil
}
