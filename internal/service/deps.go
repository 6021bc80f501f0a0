package service

import (
	"context"
	"time"

	"github.com/courtside/booking-service/internal/repository"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/courtside/booking-service/internal/service")

// Stores bundles the data-store collaborators the services run against.
type Stores struct {
	Tx        repository.TxManager
	Courts    repository.CourtRepository
	Equipment repository.EquipmentRepository
	Coaches   repository.CoachRepository
	Bookings  repository.BookingRepository
	Rules     repository.PricingRuleRepository
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// SnapshotCache holds availability snapshots between writes. Get returns the
// cache version it read; Set must be given that version so a snapshot built
// across an Invalidate is never served.
type SnapshotCache interface {
	Get(ctx context.Context, start, end time.Time, dst any) (version int64, hit bool, err error)
	Set(ctx context.Context, version int64, start, end time.Time, v any) error
	Invalidate(ctx context.Context) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, time.Time, time.Time, any) (int64, bool, error) {
	return 0, false, nil
}
func (noopCache) Set(context.Context, int64, time.Time, time.Time, any) error { return nil }
func (noopCache) Invalidate(context.Context) error { return nil }

func orNoopCache(c SnapshotCache) SnapshotCache {
	if c == nil {
		return noopCache{}
	}
	return c
}
