package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/courtside/booking-service/internal/models"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the postgres repositories. Each
// Transaction runs exclusively and restores the previous state when fn fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	courts    map[uint]models.Court
	equipment map[uint]models.EquipmentType
	coaches   map[uint]models.Coach
	slots     []models.CoachAvailability
	bookings  []models.Booking
	rules     []models.PricingRule
	nextID    uint

	failBookingInsert error
	failSlotInsert    error
	txCount           int
	txOpts            []*sql.TxOptions
}

func newMemStore() *memStore {
	return &memStore{
		courts:    make(map[uint]models.Court),
		equipment: make(map[uint]models.EquipmentType),
		coaches:   make(map[uint]models.Coach),
		nextID:    100,
	}
}

func (s *memStore) stores() Stores {
	return Stores{
		Tx:        s,
		Courts:    memCourts{s},
		Equipment: memEquipment{s},
		Coaches:   memCoaches{s},
		Bookings:  memBookings{s},
		Rules:     memRules{s},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

type memSnapshot struct {
	courts    map[uint]models.Court
	equipment map[uint]models.EquipmentType
	coaches   map[uint]models.Coach
	slots     []models.CoachAvailability
	bookings  []models.Booking
	rules     []models.PricingRule
	nextID    uint
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		courts:    make(map[uint]models.Court, len(s.courts)),
		equipment: make(map[uint]models.EquipmentType, len(s.equipment)),
		coaches:   make(map[uint]models.Coach, len(s.coaches)),
		slots:     append([]models.CoachAvailability(nil), s.slots...),
		rules:     append([]models.PricingRule(nil), s.rules...),
		nextID:    s.nextID,
	}
	for k, v := range s.courts {
		snap.courts[k] = v
	}
	for k, v := range s.equipment {
		snap.equipment[k] = v
	}
	for k, v := range s.coaches {
		snap.coaches[k] = v
	}
	for _, b := range s.bookings {
		snap.bookings = append(snap.bookings, cloneBooking(b))
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courts = snap.courts
	s.equipment = snap.equipment
	s.coaches = snap.coaches
	s.slots = snap.slots
	s.bookings = snap.bookings
	s.rules = snap.rules
	s.nextID = snap.nextID
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.txCount++
	s.txOpts = append(s.txOpts, opts...)
	s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if r := recover(); r != nil {
			s.restore(snap)
			panic(r)
		}
		if err != nil {
			s.restore(snap)
		}
	}()
	return fn(nil)
}

func cloneBooking(b models.Booking) models.Booking {
	out := b
	out.Equipment = append([]models.BookingEquipment(nil), b.Equipment...)
	if b.Coach != nil {
		c := *b.Coach
		out.Coach = &c
	}
	return out
}

// seeding helpers

func (s *memStore) addCourt(c models.Court) models.Court {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.courts[c.ID] = c
	return c
}

func (s *memStore) addEquipment(e models.EquipmentType) models.EquipmentType {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.id()
	}
	s.equipment[e.ID] = e
	return e
}

func (s *memStore) addCoach(c models.Coach, slots ...models.CoachAvailability) models.Coach {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.coaches[c.ID] = c
	for _, slot := range slots {
		slot.ID = s.id()
		slot.CoachID = c.ID
		s.slots = append(s.slots, slot)
	}
	return c
}

func (s *memStore) addRule(r models.PricingRule) models.PricingRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.id()
	}
	s.rules = append(s.rules, r)
	return r
}

func (s *memStore) addBooking(b models.Booking) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.id()
	}
	if b.Status == "" {
		b.Status = models.StatusConfirmed
	}
	s.bookings = append(s.bookings, cloneBooking(b))
	return b
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *memStore) coachSlots(coachID uint) []models.CoachAvailability {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CoachAvailability
	for _, slot := range s.slots {
		if slot.CoachID == coachID {
			out = append(out, slot)
		}
	}
	return out
}

type memCourts struct{ s *memStore }

func (r memCourts) Create(ctx context.Context, court *models.Court) error {
	*court = r.s.addCourt(*court)
	return nil
}

func (r memCourts) List(ctx context.Context) ([]models.Court, error) {
	return r.filter(func(models.Court) bool { return true }), nil
}

func (r memCourts) FindByID(ctx context.Context, id uint) (*models.Court, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r memCourts) ListActive(ctx context.Context, tx *gorm.DB) ([]models.Court, error) {
	return r.filter(func(c models.Court) bool { return c.IsActive }), nil
}

func (r memCourts) FindActiveByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Court, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil || !c.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r memCourts) filter(keep func(models.Court) bool) []models.Court {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Court
	for _, c := range r.s.courts {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memEquipment struct{ s *memStore }

func (r memEquipment) Create(ctx context.Context, e *models.EquipmentType) error {
	*e = r.s.addEquipment(*e)
	return nil
}

func (r memEquipment) List(ctx context.Context) ([]models.EquipmentType, error) {
	return r.filter(func(models.EquipmentType) bool { return true }), nil
}

func (r memEquipment) ListActive(ctx context.Context, tx *gorm.DB) ([]models.EquipmentType, error) {
	return r.filter(func(e models.EquipmentType) bool { return e.IsActive }), nil
}

func (r memEquipment) FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.EquipmentType, error) {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.filter(func(e models.EquipmentType) bool { return want[e.ID] }), nil
}

func (r memEquipment) filter(keep func(models.EquipmentType) bool) []models.EquipmentType {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.EquipmentType
	for _, e := range r.s.equipment {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memCoaches struct{ s *memStore }

func (r memCoaches) Create(ctx context.Context, c *models.Coach) error {
	*c = r.s.addCoach(*c)
	return nil
}

func (r memCoaches) List(ctx context.Context) ([]models.Coach, error) {
	return r.filter(func(models.Coach) bool { return true }), nil
}

func (r memCoaches) ListActive(ctx context.Context, tx *gorm.DB) ([]models.Coach, error) {
	return r.filter(func(c models.Coach) bool { return c.IsActive }), nil
}

func (r memCoaches) FindActiveByID(ctx context.Context, tx *gorm.DB, id uint, forUpdate bool) (*models.Coach, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.coaches[id]
	if !ok || !c.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r memCoaches) ListAvailability(ctx context.Context, coachID uint) ([]models.CoachAvailability, error) {
	return r.s.coachSlots(coachID), nil
}

func (r memCoaches) ReplaceAvailability(ctx context.Context, tx *gorm.DB, coachID uint, slots []models.CoachAvailability) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.slots[:0:0]
	for _, slot := range r.s.slots {
		if slot.CoachID != coachID {
			kept = append(kept, slot)
		}
	}
	r.s.slots = kept
	if r.s.failSlotInsert != nil {
		return r.s.failSlotInsert
	}
	for i := range slots {
		slots[i].ID = r.s.id()
		slots[i].CoachID = coachID
		r.s.slots = append(r.s.slots, slots[i])
	}
	return nil
}

func (r memCoaches) FindSlotsByDay(ctx context.Context, tx *gorm.DB, day int, coachIDs ...uint) ([]models.CoachAvailability, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[uint]bool, len(coachIDs))
	for _, id := range coachIDs {
		want[id] = true
	}
	var out []models.CoachAvailability
	for _, slot := range r.s.slots {
		if slot.DayOfWeek != day {
			continue
		}
		if len(want) > 0 && !want[slot.CoachID] {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

func (r memCoaches) filter(keep func(models.Coach) bool) []models.Coach {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Coach
	for _, c := range r.s.coaches {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memBookings struct{ s *memStore }

func (r memBookings) Create(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.ID = r.s.id()
	for i := range b.Equipment {
		b.Equipment[i].ID = r.s.id()
		b.Equipment[i].BookingID = b.ID
	}
	if b.Coach != nil {
		b.Coach.ID = r.s.id()
		b.Coach.BookingID = b.ID
	}
	// The row is written before the failure so the rollback path has something to undo.
	r.s.bookings = append(r.s.bookings, cloneBooking(*b))
	if r.s.failBookingInsert != nil {
		return r.s.failBookingInsert
	}
	return nil
}

func (r memBookings) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.ID == id {
			out := cloneBooking(b)
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memBookings) FindConfirmedOverlapping(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Booking
	for _, b := range r.s.bookings {
		if b.Status == models.StatusConfirmed && b.StartTime.Before(end) && b.EndTime.After(start) {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

type memRules struct{ s *memStore }

func (r memRules) Create(ctx context.Context, rule *models.PricingRule) error {
	*rule = r.s.addRule(*rule)
	return nil
}

func (r memRules) List(ctx context.Context) ([]models.PricingRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.PricingRule(nil), r.s.rules...), nil
}

func (r memRules) ListActive(ctx context.Context, tx *gorm.DB) ([]models.PricingRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.PricingRule
	for _, rule := range r.s.rules {
		if rule.IsActive {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	keys   []string
	events []any
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, payload)
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	version     int64
	entries     map[string]any
	invalidated int

	// beforeSet runs at the start of Set, outside the lock.
	beforeSet func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]any)}
}

func cacheKey(version int64, start, end time.Time) string {
	return fmt.Sprintf("v%d:%d:%d", version, start.Unix(), end.Unix())
}

func (c *fakeCache) Get(ctx context.Context, start, end time.Time, dst any) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[cacheKey(c.version, start, end)]
	if !ok {
		return c.version, false, nil
	}
	*dst.(*Availability) = *v.(*Availability)
	return c.version, true, nil
}

func (c *fakeCache) Set(ctx context.Context, version int64, start, end time.Time, v any) error {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(version, start, end)] = v
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.version++
	return nil
}
