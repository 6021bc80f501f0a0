package repository

import (
	"context"

	"github.com/courtside/booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourtRepository interface {
	Create(ctx context.Context, court *models.Court) error
	List(ctx context.Context) ([]models.Court, error)
	FindByID(ctx context.Context, id uint) (*models.Court, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]models.Court, error)
	FindActiveByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Court, error)
}

type courtRepository struct {
	db *gorm.DB
}

func NewCourtRepository(db *gorm.DB) CourtRepository {
	return &courtRepository{db: db}
}

func (r *courtRepository) Create(ctx context.Context, court *models.Court) error {
	return r.db.WithContext(ctx).Create(court).Error
}

func (r *courtRepository) List(ctx context.Context) ([]models.Court, error) {
	var courts []models.Court
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&courts).Error; err != nil {
		return nil, err
	}
	return courts, nil
}

func (r *courtRepository) FindByID(ctx context.Context, id uint) (*models.Court, error) {
	var court models.Court
	if err := r.db.WithContext(ctx).First(&court, id).Error; err != nil {
		return nil, err
	}
	return &court, nil
}

func (r *courtRepository) ListActive(ctx context.Context, tx *gorm.DB) ([]models.Court, error) {
	var courts []models.Court
	err := conn(ctx, r.db, tx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&courts).Error
	if err != nil {
		return nil, err
	}
	return courts, nil
}

// FindActiveByIDForUpdate locks the court row until the transaction ends.
// Returns gorm.ErrRecordNotFound for missing and inactive courts alike.
func (r *courtRepository) FindActiveByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Court, error) {
	var court models.Court
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", id, true).
		First(&court).Error
	if err != nil {
		return nil, err
	}
	return &court, nil
}
