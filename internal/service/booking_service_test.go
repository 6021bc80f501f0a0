package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/courtside/booking-service/internal/events"
	"github.com/courtside/booking-service/internal/models"
	"github.com/courtside/booking-service/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tuesday 2026-03-10 10:00 UTC and Saturday 2026-03-07 10:00 UTC.
var (
	tue10 = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	sat10 = time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
)

type bookingFixture struct {
	store     *memStore
	court     models.Court
	rackets   models.EquipmentType
	coach     models.Coach
	publisher *fakePublisher
	cache     *fakeCache
	svc       BookingService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	store := newMemStore()
	f := &bookingFixture{
		store:     store,
		court:     store.addCourt(models.Court{Name: "Court A", IsIndoor: true, BaseHourlyRate: 400, IsActive: true}),
		rackets:   store.addEquipment(models.EquipmentType{Name: "Racket", TotalQuantity: 5, PricePerUnit: 50, IsActive: true}),
		coach:     store.addCoach(models.Coach{Name: "Somchai", HourlyRate: 300, IsActive: true}, models.CoachAvailability{DayOfWeek: 1, StartHour: 9, EndHour: 17}),
		publisher: &fakePublisher{},
		cache:     newFakeCache(),
	}
	f.svc = NewBookingService(store.stores(), f.publisher, f.cache, time.UTC)
	return f
}

func (f *bookingFixture) input(start time.Time, hours int) CreateBookingInput {
	return CreateBookingInput{
		CustomerName:  "Nok",
		CustomerEmail: "nok@example.com",
		Start:         start,
		End:           start.Add(time.Duration(hours) * time.Hour),
		CourtID:       f.court.ID,
	}
}

func uintPtr(v uint) *uint { return &v }

func TestCreateBooking_Success(t *testing.T) {
	f := newBookingFixture(t)
	in := f.input(tue10, 2)
	in.Equipment = []EquipmentRequest{{EquipmentTypeID: f.rackets.ID, Quantity: 2}}
	in.CoachID = uintPtr(f.coach.ID)

	res, err := f.svc.CreateBooking(t.Context(), in)
	require.NoError(t, err)

	assert.Equal(t, 800.0, res.Breakdown.BaseCourt)
	assert.Equal(t, 100.0, res.Breakdown.BaseEquipment)
	assert.Equal(t, 600.0, res.Breakdown.BaseCoach)
	assert.Equal(t, 1500.0, res.Breakdown.Total)

	b := res.Booking
	assert.NotZero(t, b.ID)
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.Equal(t, 1500.0, b.TotalPrice)
	require.Len(t, b.Equipment, 1)
	assert.Equal(t, 50.0, b.Equipment[0].PricePerUnit)
	assert.Equal(t, 2, b.Equipment[0].Quantity)
	require.NotNil(t, b.Coach)
	assert.Equal(t, f.coach.ID, b.Coach.CoachID)
	assert.Equal(t, 600.0, b.Coach.Price)

	stored, err := f.svc.GetBooking(t.Context(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.TotalPrice, stored.TotalPrice)

	require.Len(t, f.publisher.keys, 1)
	assert.Equal(t, events.RoutingBookingConfirmed, f.publisher.keys[0])
	evt, ok := f.publisher.events[0].(events.BookingConfirmed)
	require.True(t, ok)
	assert.Equal(t, b.ID, evt.BookingID)
	assert.NotEmpty(t, evt.EventID)
	require.NotNil(t, evt.CoachID)
	assert.Equal(t, f.coach.ID, *evt.CoachID)
	assert.Equal(t, 1, f.cache.invalidated)
}

func TestCreateBooking_WeekendRuleFromStore(t *testing.T) {
	f := newBookingFixture(t)
	weekend := true
	f.store.addRule(models.PricingRule{Name: "Weekend peak", AppliesTo: pricing.AppliesToCourt, IsWeekend: &weekend, RuleType: pricing.RuleMultiplier, Value: 1.5, IsActive: true})
	f.store.addRule(models.PricingRule{Name: "Retired", AppliesTo: pricing.AppliesToOverall, RuleType: pricing.RuleFlat, Value: 999, IsActive: false})

	sat, err := f.svc.CreateBooking(t.Context(), f.input(sat10, 2))
	require.NoError(t, err)
	require.Len(t, sat.Breakdown.Adjustments, 1)
	assert.Equal(t, 400.0, sat.Breakdown.Adjustments[0].Amount)
	assert.Equal(t, 1200.0, sat.Booking.TotalPrice)

	tue, err := f.svc.CreateBooking(t.Context(), f.input(tue10, 2))
	require.NoError(t, err)
	assert.Empty(t, tue.Breakdown.Adjustments)
	assert.Equal(t, 800.0, tue.Booking.TotalPrice)
}

func TestCreateBooking_NotFound(t *testing.T) {
	f := newBookingFixture(t)
	inactiveCourt := f.store.addCourt(models.Court{Name: "Closed", BaseHourlyRate: 100})
	inactiveCoach := f.store.addCoach(models.Coach{Name: "Away", HourlyRate: 100})

	tests := []struct {
		name   string
		mutate func(in *CreateBookingInput)
	}{
		{"missing court", func(in *CreateBookingInput) { in.CourtID = 9999 }},
		{"inactive court", func(in *CreateBookingInput) { in.CourtID = inactiveCourt.ID }},
		{"missing equipment", func(in *CreateBookingInput) {
			in.Equipment = []EquipmentRequest{{EquipmentTypeID: f.rackets.ID, Quantity: 1}, {EquipmentTypeID: 9999, Quantity: 1}}
		}},
		{"missing coach", func(in *CreateBookingInput) { in.CoachID = uintPtr(9999) }},
		{"inactive coach", func(in *CreateBookingInput) { in.CoachID = uintPtr(inactiveCoach.ID) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input(tue10, 1)
			tt.mutate(&in)

			res, err := f.svc.CreateBooking(t.Context(), in)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Zero(t, f.store.bookingCount())
		})
	}
	assert.Empty(t, f.publisher.keys)
}

func TestCreateBooking_CourtUnavailable(t *testing.T) {
	f := newBookingFixture(t)
	f.store.addBooking(models.Booking{CourtID: f.court.ID, StartTime: tue10, EndTime: tue10.Add(2 * time.Hour)})

	_, err := f.svc.CreateBooking(t.Context(), f.input(tue10.Add(time.Hour), 2))
	assert.ErrorIs(t, err, ErrCourtUnavailable)
	assert.Equal(t, KindCourtUnavailable, KindOf(err))

	// Half-open windows: a booking starting when the other ends does not overlap.
	_, err = f.svc.CreateBooking(t.Context(), f.input(tue10.Add(2*time.Hour), 1))
	assert.NoError(t, err)
	_, err = f.svc.CreateBooking(t.Context(), f.input(tue10.Add(-time.Hour), 1))
	assert.NoError(t, err)
}

func TestCreateBooking_CancelledBookingDoesNotBlock(t *testing.T) {
	f := newBookingFixture(t)
	f.store.addBooking(models.Booking{CourtID: f.court.ID, StartTime: tue10, EndTime: tue10.Add(2 * time.Hour), Status: models.StatusCancelled})

	_, err := f.svc.CreateBooking(t.Context(), f.input(tue10, 2))
	assert.NoError(t, err)
}

func TestCreateBooking_EquipmentUnavailable(t *testing.T) {
	f := newBookingFixture(t)

	in := f.input(tue10, 1)
	in.Equipment = []EquipmentRequest{{EquipmentTypeID: f.rackets.ID, Quantity: 6}}
	_, err := f.svc.CreateBooking(t.Context(), in)
	assert.ErrorIs(t, err, ErrEquipmentUnavailable)

	other := f.store.addCourt(models.Court{Name: "Court B", BaseHourlyRate: 300, IsActive: true})
	f.store.addBooking(models.Booking{
		CourtID:   other.ID,
		StartTime: tue10,
		EndTime:   tue10.Add(time.Hour),
		Equipment: []models.BookingEquipment{{EquipmentTypeID: f.rackets.ID, Quantity: 3}},
	})

	in.Equipment = []EquipmentRequest{{EquipmentTypeID: f.rackets.ID, Quantity: 3}}
	_, err = f.svc.CreateBooking(t.Context(), in)
	assert.ErrorIs(t, err, ErrEquipmentUnavailable)

	in.Equipment = []EquipmentRequest{{EquipmentTypeID: f.rackets.ID, Quantity: 2}}
	_, err = f.svc.CreateBooking(t.Context(), in)
	assert.NoError(t, err)
}

func TestCreateBooking_DuplicateEquipmentLinesAreMerged(t *testing.T) {
	f := newBookingFixture(t)

	in := f.input(tue10, 1)
	in.Equipment = []EquipmentRequest{
		{EquipmentTypeID: f.rackets.ID, Quantity: 3},
		{EquipmentTypeID: f.rackets.ID, Quantity: 3},
	}
	_, err := f.svc.CreateBooking(t.Context(), in)
	assert.ErrorIs(t, err, ErrEquipmentUnavailable)

	in.Equipment = []EquipmentRequest{
		{EquipmentTypeID: f.rackets.ID, Quantity: 1},
		{EquipmentTypeID: f.rackets.ID, Quantity: 2},
	}
	res, err := f.svc.CreateBooking(t.Context(), in)
	require.NoError(t, err)
	require.Len(t, res.Booking.Equipment, 1)
	assert.Equal(t, 3, res.Booking.Equipment[0].Quantity)
	assert.Equal(t, 150.0, res.Breakdown.BaseEquipment)
}

func TestCreateBooking_CoachBusy(t *testing.T) {
	f := newBookingFixture(t)
	other := f.store.addCourt(models.Court{Name: "Court B", BaseHourlyRate: 300, IsActive: true})
	f.store.addBooking(models.Booking{
		CourtID:   other.ID,
		StartTime: tue10,
		EndTime:   tue10.Add(time.Hour),
		Coach:     &models.BookingCoach{CoachID: f.coach.ID, Price: 300},
	})

	in := f.input(tue10, 1)
	in.CoachID = uintPtr(f.coach.ID)
	_, err := f.svc.CreateBooking(t.Context(), in)
	assert.ErrorIs(t, err, ErrCoachUnavailable)
}

func TestCreateBooking_CoachSchedule(t *testing.T) {
	f := newBookingFixture(t)

	in := f.input(tue10, 1)
	in.CoachID = uintPtr(f.coach.ID)
	_, err := f.svc.CreateBooking(t.Context(), in)
	assert.NoError(t, err)

	tue20 := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	in = f.input(tue20, 1)
	in.CoachID = uintPtr(f.coach.ID)
	_, err = f.svc.CreateBooking(t.Context(), in)
	assert.ErrorIs(t, err, ErrCoachUnavailable)

	// Monday has no slot.
	in = f.input(tue10.AddDate(0, 0, -1), 1)
	in.CoachID = uintPtr(f.coach.ID)
	_, err = f.svc.CreateBooking(t.Context(), in)
	assert.ErrorIs(t, err, ErrCoachUnavailable)
}

func TestCreateBooking_CoachScheduleChecksStartHourOnly(t *testing.T) {
	f := newBookingFixture(t)

	tue16 := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	in := f.input(tue16, 3)
	in.CoachID = uintPtr(f.coach.ID)

	_, err := f.svc.CreateBooking(t.Context(), in)
	assert.NoError(t, err)
}

func TestCreateBooking_CoachScheduleUsesFacilityTimezone(t *testing.T) {
	store := newMemStore()
	court := store.addCourt(models.Court{Name: "Court A", BaseHourlyRate: 400, IsActive: true})
	coach := store.addCoach(models.Coach{Name: "Ploy", HourlyRate: 300, IsActive: true}, models.CoachAvailability{DayOfWeek: 1, StartHour: 9, EndHour: 17})
	bangkok := time.FixedZone("ICT", 7*3600)
	svc := NewBookingService(store.stores(), nil, nil, bangkok)

	// 03:00 UTC is 10:00 in Bangkok.
	start := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	_, err := svc.CreateBooking(t.Context(), CreateBookingInput{
		CustomerName: "Nok", CustomerEmail: "nok@example.com",
		Start: start, End: start.Add(time.Hour), CourtID: court.ID, CoachID: uintPtr(coach.ID),
	})
	assert.NoError(t, err)
}

func TestCreateBooking_InputValidation(t *testing.T) {
	f := newBookingFixture(t)

	tests := []struct {
		name   string
		mutate func(in *CreateBookingInput)
		want   error
	}{
		{"end before start", func(in *CreateBookingInput) { in.End = in.Start.Add(-time.Hour) }, ErrInvalidRange},
		{"empty window", func(in *CreateBookingInput) { in.End = in.Start }, ErrInvalidRange},
		{"zero start", func(in *CreateBookingInput) { in.Start = time.Time{} }, ErrInvalidRange},
		{"missing name", func(in *CreateBookingInput) { in.CustomerName = "  " }, ErrInvalidInput},
		{"bad email", func(in *CreateBookingInput) { in.CustomerEmail = "nok" }, ErrInvalidInput},
		{"zero quantity", func(in *CreateBookingInput) {
			in.Equipment = []EquipmentRequest{{EquipmentTypeID: f.rackets.ID, Quantity: 0}}
		}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input(tue10, 1)
			tt.mutate(&in)

			_, err := f.svc.CreateBooking(t.Context(), in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, f.store.txCount, "validation failures must not open a transaction")
}

func TestCreateBooking_RollsBackOnInsertFailure(t *testing.T) {
	f := newBookingFixture(t)
	f.store.failBookingInsert = errors.New("connection reset")

	in := f.input(tue10, 1)
	in.Equipment = []EquipmentRequest{{EquipmentTypeID: f.rackets.ID, Quantity: 1}}
	res, err := f.svc.CreateBooking(t.Context(), in)

	assert.Nil(t, res)
	require.Error(t, err)
	assert.Empty(t, KindOf(err))
	assert.Zero(t, f.store.bookingCount())
	assert.Empty(t, f.publisher.keys)
	assert.Zero(t, f.cache.invalidated)
}

func TestCreateBooking_PublishFailureKeepsBooking(t *testing.T) {
	f := newBookingFixture(t)
	f.publisher.err = errors.New("broker down")

	res, err := f.svc.CreateBooking(t.Context(), f.input(tue10, 1))
	require.NoError(t, err)
	assert.NotZero(t, res.Booking.ID)
	assert.Equal(t, 1, f.store.bookingCount())
}

func TestCreateBooking_ConcurrentAttemptsOnSameCourt(t *testing.T) {
	f := newBookingFixture(t)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateBooking(t.Context(), f.input(tue10, 2))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, rejected := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrCourtUnavailable):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)
	assert.Equal(t, 1, f.store.bookingCount())
}

func TestGetBooking_NotFound(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.GetBooking(t.Context(), 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}
