package repository

import (
	"context"

	"github.com/courtside/booking-service/internal/models"
	"gorm.io/gorm"
)

type PricingRuleRepository interface {
	Create(ctx context.Context, rule *models.PricingRule) error
	List(ctx context.Context) ([]models.PricingRule, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]models.PricingRule, error)
}

type pricingRuleRepository struct {
	db *gorm.DB
}

func NewPricingRuleRepository(db *gorm.DB) PricingRuleRepository {
	return &pricingRuleRepository{db: db}
}

func (r *pricingRuleRepository) Create(ctx context.Context, rule *models.PricingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *pricingRuleRepository) List(ctx context.Context) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// ListActive returns the active rules in ascending id order, which is the
// order the pricing engine applies them in.
func (r *pricingRuleRepository) ListActive(ctx context.Context, tx *gorm.DB) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	err := conn(ctx, r.db, tx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
