package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/courtside/booking-service/internal/events"
	"github.com/courtside/booking-service/internal/models"
	"github.com/courtside/booking-service/internal/pricing"
	"github.com/courtside/booking-service/pkg/logger"
	"github.com/courtside/booking-service/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type EquipmentRequest struct {
	EquipmentTypeID uint
	Quantity        int
}

type CreateBookingInput struct {
	CustomerName  string
	CustomerEmail string
	Start         time.Time
	End           time.Time
	CourtID       uint
	Equipment     []EquipmentRequest
	CoachID       *uint
}

type BookingResult struct {
	Booking   *models.Booking
	Breakdown pricing.Breakdown
}

// AttemptState tracks how far a booking attempt got before it committed or aborted.
type AttemptState string

const (
	StateStart            AttemptState = "START"
	StateResourcesLoaded  AttemptState = "RESOURCES_LOADED"
	StateConflictsChecked AttemptState = "CONFLICTS_CHECKED"
	StatePriced           AttemptState = "PRICED"
	StateCommitted        AttemptState = "COMMITTED"
	StateAborted          AttemptState = "ABORTED"
)

const publishTimeout = 5 * time.Second

type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*BookingResult, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
}

type bookingService struct {
	stores    Stores
	detector  *ConflictDetector
	matcher   *ScheduleMatcher
	publisher EventPublisher
	cache     SnapshotCache
	loc       *time.Location
}

// NewBookingService wires the orchestrator. publisher may be nil when
// messaging is disabled; loc is the facility time zone.
func NewBookingService(stores Stores, publisher EventPublisher, cache SnapshotCache, loc *time.Location) BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &bookingService{
		stores:    stores,
		detector:  NewConflictDetector(stores.Bookings),
		matcher:   NewScheduleMatcher(stores.Coaches),
		publisher: publisher,
		cache:     orNoopCache(cache),
		loc:       loc,
	}
}

// CreateBooking validates, prices and stores a booking in one transaction.
// Rows are locked court first, then equipment types by ascending id, then
// the coach, and only then is the conflict check run.
func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*BookingResult, error) {
	ctx, span := tracer.Start(ctx, "BookingService.CreateBooking")
	defer span.End()
	span.SetAttributes(attribute.Int64("court_id", int64(in.CourtID)))

	log := logger.Component("booking")
	state := StateStart

	w, lines, err := validateBookingInput(in)
	if err != nil {
		return nil, s.reject(span, state, err)
	}

	var result *BookingResult
	err = s.stores.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		court, err := s.stores.Courts.FindActiveByIDForUpdate(ctx, tx, in.CourtID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, fmt.Sprintf("court %d not found", in.CourtID))
		}
		if err != nil {
			return fmt.Errorf("load court: %w", err)
		}

		equipment, err := s.loadEquipment(ctx, tx, lines)
		if err != nil {
			return err
		}

		var coach *models.Coach
		if in.CoachID != nil {
			coach, err = s.stores.Coaches.FindActiveByID(ctx, tx, *in.CoachID, true)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, fmt.Sprintf("coach %d not found", *in.CoachID))
			}
			if err != nil {
				return fmt.Errorf("load coach: %w", err)
			}
		}
		state = StateResourcesLoaded

		busy, err := s.detector.Detect(ctx, tx, w)
		if err != nil {
			return fmt.Errorf("detect conflicts: %w", err)
		}
		if busy.Courts[court.ID] {
			return newError(KindCourtUnavailable, "court is already booked for this time")
		}
		for _, line := range lines {
			eq := equipment[line.EquipmentTypeID]
			if line.Quantity > busy.EquipmentFree(eq.ID, eq.TotalQuantity) {
				return newError(KindEquipmentUnavailable, fmt.Sprintf("not enough %s available", eq.Name))
			}
		}
		if coach != nil {
			if busy.Coaches[coach.ID] {
				return newError(KindCoachUnavailable, "coach is already booked for this time")
			}
			day, hour := w.DayHour(s.loc)
			working, err := s.matcher.IsWorking(ctx, tx, coach.ID, day, hour)
			if err != nil {
				return fmt.Errorf("match coach schedule: %w", err)
			}
			if !working {
				return newError(KindCoachUnavailable, "coach is not available at this time")
			}
		}
		state = StateConflictsChecked

		rules, err := s.stores.Rules.ListActive(ctx, tx)
		if err != nil {
			return fmt.Errorf("load pricing rules: %w", err)
		}
		breakdown := pricing.Calculate(buildPricingInput(w, court, lines, equipment, coach, rules, s.loc))
		state = StatePriced

		booking := &models.Booking{
			CustomerName:  in.CustomerName,
			CustomerEmail: in.CustomerEmail,
			StartTime:     w.Start,
			EndTime:       w.End,
			CourtID:       court.ID,
			TotalPrice:    breakdown.Total,
			Status:        models.StatusConfirmed,
		}
		for _, line := range lines {
			booking.Equipment = append(booking.Equipment, models.BookingEquipment{
				EquipmentTypeID: line.EquipmentTypeID,
				Quantity:        line.Quantity,
				PricePerUnit:    equipment[line.EquipmentTypeID].PricePerUnit,
			})
		}
		if coach != nil {
			booking.Coach = &models.BookingCoach{CoachID: coach.ID, Price: breakdown.BaseCoach}
		}
		if err := s.stores.Bookings.Create(ctx, tx, booking); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		result = &BookingResult{Booking: booking, Breakdown: breakdown}
		return nil
	})
	if err != nil {
		return nil, s.reject(span, state, err)
	}

	state = StateCommitted
	span.SetAttributes(attribute.Int64("booking_id", int64(result.Booking.ID)))
	metrics.RecordBookingAttempt("confirmed")
	for _, adj := range result.Breakdown.Adjustments {
		metrics.RecordPriceAdjustment(string(adj.AppliesTo))
	}
	log.Info().
		Uint("booking_id", result.Booking.ID).
		Uint("court_id", result.Booking.CourtID).
		Float64("total_price", result.Booking.TotalPrice).
		Str("state", string(state)).
		Msg("booking confirmed")

	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("availability cache invalidation failed")
	}
	s.publishConfirmed(ctx, result)
	return result, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.stores.Bookings.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, fmt.Sprintf("booking %d not found", id))
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// loadEquipment locks the requested equipment types and fails NOT_FOUND when
// any of them does not exist.
func (s *bookingService) loadEquipment(ctx context.Context, tx *gorm.DB, lines []EquipmentRequest) (map[uint]models.EquipmentType, error) {
	byID := make(map[uint]models.EquipmentType, len(lines))
	if len(lines) == 0 {
		return byID, nil
	}
	ids := make([]uint, len(lines))
	for i, line := range lines {
		ids[i] = line.EquipmentTypeID
	}
	items, err := s.stores.Equipment.FindByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("load equipment: %w", err)
	}
	for _, item := range items {
		byID[item.ID] = item
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, newError(KindNotFound, fmt.Sprintf("equipment type %d not found", id))
		}
	}
	return byID, nil
}

func (s *bookingService) reject(span trace.Span, state AttemptState, err error) error {
	log := logger.Component("booking")
	kind := KindOf(err)
	if kind == "" {
		metrics.RecordBookingAttempt("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking failed")
		log.Error().Err(err).Str("state", string(StateAborted)).Str("reached", string(state)).Msg("booking aborted")
		return err
	}
	metrics.RecordBookingAttempt(string(kind))
	span.SetStatus(codes.Error, string(kind))
	log.Info().Str("kind", string(kind)).Str("reached", string(state)).Msg("booking rejected")
	return err
}

func (s *bookingService) publishConfirmed(ctx context.Context, result *BookingResult) {
	if s.publisher == nil {
		return
	}
	b := result.Booking
	evt := events.BookingConfirmed{
		EventID:       uuid.NewString(),
		BookingID:     b.ID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CourtID:       b.CourtID,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		TotalPrice:    b.TotalPrice,
		Breakdown:     result.Breakdown,
		OccurredAt:    time.Now().UTC(),
	}
	if b.Coach != nil {
		coachID := b.Coach.CoachID
		evt.CoachID = &coachID
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, events.RoutingBookingConfirmed, evt); err != nil {
		log := logger.Component("booking")
		log.Error().Err(err).Uint("booking_id", b.ID).Msg("failed to publish booking.confirmed")
	}
}

// validateBookingInput runs the checks that need no data access and merges
// duplicate equipment lines, returning them in ascending id order.
func validateBookingInput(in CreateBookingInput) (Window, []EquipmentRequest, error) {
	w, err := NewWindow(in.Start, in.End)
	if err != nil {
		return Window{}, nil, err
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return Window{}, nil, newError(KindInvalidInput, "customer_name is required")
	}
	if _, err := mail.ParseAddress(in.CustomerEmail); err != nil {
		return Window{}, nil, newError(KindInvalidInput, "customer_email must be a valid email address")
	}
	if in.CourtID == 0 {
		return Window{}, nil, newError(KindInvalidInput, "court_id is required")
	}

	merged := make(map[uint]int)
	for _, line := range in.Equipment {
		if line.EquipmentTypeID == 0 {
			return Window{}, nil, newError(KindInvalidInput, "equipment_type_id is required")
		}
		if line.Quantity <= 0 {
			return Window{}, nil, newError(KindInvalidInput, "equipment quantity must be greater than 0")
		}
		merged[line.EquipmentTypeID] += line.Quantity
	}
	lines := make([]EquipmentRequest, 0, len(merged))
	for id, qty := range merged {
		lines = append(lines, EquipmentRequest{EquipmentTypeID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].EquipmentTypeID < lines[j].EquipmentTypeID })
	return w, lines, nil
}

func buildPricingInput(
	w Window,
	court *models.Court,
	lines []EquipmentRequest,
	equipment map[uint]models.EquipmentType,
	coach *models.Coach,
	rules []models.PricingRule,
	loc *time.Location,
) pricing.Input {
	in := pricing.Input{
		Start:    w.Start,
		End:      w.End,
		Court:    pricing.Court{HourlyRate: court.BaseHourlyRate, Indoor: court.IsIndoor},
		Location: loc,
	}
	for _, line := range lines {
		in.Equipment = append(in.Equipment, pricing.EquipmentLine{
			EquipmentTypeID: line.EquipmentTypeID,
			Quantity:        line.Quantity,
			UnitPrice:       equipment[line.EquipmentTypeID].PricePerUnit,
		})
	}
	if coach != nil {
		rate := coach.HourlyRate
		in.CoachHourlyRate = &rate
	}
	for _, r := range rules {
		in.Rules = append(in.Rules, r.ToRule())
	}
	return in
}
