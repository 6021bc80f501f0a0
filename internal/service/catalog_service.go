package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/courtside/booking-service/internal/models"
	"github.com/courtside/booking-service/internal/pricing"
	"github.com/courtside/booking-service/pkg/logger"
	"gorm.io/gorm"
)

// CatalogService manages courts, equipment, coaches and pricing rules.
type CatalogService interface {
	CreateCourt(ctx context.Context, court *models.Court) error
	ListCourts(ctx context.Context) ([]models.Court, error)
	GetCourt(ctx context.Context, id uint) (*models.Court, error)
	CreateEquipment(ctx context.Context, equipment *models.EquipmentType) error
	ListEquipment(ctx context.Context) ([]models.EquipmentType, error)
	CreateCoach(ctx context.Context, coach *models.Coach) error
	ListCoaches(ctx context.Context) ([]models.Coach, error)
	CreatePricingRule(ctx context.Context, rule *models.PricingRule) error
	ListPricingRules(ctx context.Context) ([]models.PricingRule, error)
}

type catalogService struct {
	stores Stores
	cache  SnapshotCache
}

func NewCatalogService(stores Stores, cache SnapshotCache) CatalogService {
	return &catalogService{stores: stores, cache: orNoopCache(cache)}
}

func (s *catalogService) CreateCourt(ctx context.Context, court *models.Court) error {
	court.Name = strings.TrimSpace(court.Name)
	if court.Name == "" {
		return newError(KindInvalidInput, "name is required")
	}
	if court.BaseHourlyRate < 0 {
		return newError(KindInvalidInput, "base_hourly_rate must not be negative")
	}
	if err := s.stores.Courts.Create(ctx, court); err != nil {
		return fmt.Errorf("create court: %w", err)
	}
	s.created("court", court.ID)
	s.invalidate(ctx)
	return nil
}

func (s *catalogService) ListCourts(ctx context.Context) ([]models.Court, error) {
	return s.stores.Courts.List(ctx)
}

func (s *catalogService) GetCourt(ctx context.Context, id uint) (*models.Court, error) {
	court, err := s.stores.Courts.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, fmt.Sprintf("court %d not found", id))
	}
	if err != nil {
		return nil, err
	}
	return court, nil
}

func (s *catalogService) CreateEquipment(ctx context.Context, equipment *models.EquipmentType) error {
	equipment.Name = strings.TrimSpace(equipment.Name)
	if equipment.Name == "" {
		return newError(KindInvalidInput, "name is required")
	}
	if equipment.TotalQuantity < 0 {
		return newError(KindInvalidInput, "total_quantity must not be negative")
	}
	if equipment.PricePerUnit < 0 {
		return newError(KindInvalidInput, "price_per_unit must not be negative")
	}
	if err := s.stores.Equipment.Create(ctx, equipment); err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}
	s.created("equipment", equipment.ID)
	s.invalidate(ctx)
	return nil
}

func (s *catalogService) ListEquipment(ctx context.Context) ([]models.EquipmentType, error) {
	return s.stores.Equipment.List(ctx)
}

func (s *catalogService) CreateCoach(ctx context.Context, coach *models.Coach) error {
	coach.Name = strings.TrimSpace(coach.Name)
	if coach.Name == "" {
		return newError(KindInvalidInput, "name is required")
	}
	if coach.HourlyRate < 0 {
		return newError(KindInvalidInput, "hourly_rate must not be negative")
	}
	if err := s.stores.Coaches.Create(ctx, coach); err != nil {
		return fmt.Errorf("create coach: %w", err)
	}
	s.created("coach", coach.ID)
	s.invalidate(ctx)
	return nil
}

func (s *catalogService) ListCoaches(ctx context.Context) ([]models.Coach, error) {
	return s.stores.Coaches.List(ctx)
}

func (s *catalogService) CreatePricingRule(ctx context.Context, rule *models.PricingRule) error {
	if err := ValidatePricingRule(rule); err != nil {
		return err
	}
	if err := s.stores.Rules.Create(ctx, rule); err != nil {
		return fmt.Errorf("create pricing rule: %w", err)
	}
	s.created("pricing_rule", rule.ID)
	return nil
}

func (s *catalogService) ListPricingRules(ctx context.Context) ([]models.PricingRule, error) {
	return s.stores.Rules.List(ctx)
}

func ValidatePricingRule(rule *models.PricingRule) error {
	rule.Name = strings.TrimSpace(rule.Name)
	if rule.Name == "" {
		return newError(KindInvalidInput, "name is required")
	}
	if !rule.AppliesTo.Valid() {
		return newError(KindInvalidInput, "applies_to must be one of COURT, EQUIPMENT, COACH, OVERALL")
	}
	if !rule.RuleType.Valid() {
		return newError(KindInvalidInput, "rule_type must be MULTIPLIER or FLAT")
	}
	if (rule.StartHour == nil) != (rule.EndHour == nil) {
		return newError(KindInvalidInput, "start_hour and end_hour must be set together")
	}
	if rule.StartHour != nil {
		start, end := *rule.StartHour, *rule.EndHour
		if start < 0 || end > 24 || start >= end {
			return newError(KindInvalidInput, "hour window must satisfy 0 <= start_hour < end_hour <= 24")
		}
	}
	if rule.RuleType == pricing.RuleMultiplier && rule.Value <= 0 {
		return newError(KindInvalidInput, "multiplier value must be greater than 0")
	}
	return nil
}

func (s *catalogService) created(kind string, id uint) {
	log := logger.Component("catalog")
	log.Info().Str("kind", kind).Uint("id", id).Msg("created")
}

func (s *catalogService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log := logger.Component("catalog")
		log.Warn().Err(err).Msg("availability cache invalidation failed")
	}
}
