package repository

import (
	"context"

	"github.com/courtside/booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EquipmentRepository interface {
	Create(ctx context.Context, equipment *models.EquipmentType) error
	List(ctx context.Context) ([]models.EquipmentType, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]models.EquipmentType, error)
	FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.EquipmentType, error)
}

type equipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) Create(ctx context.Context, equipment *models.EquipmentType) error {
	return r.db.WithContext(ctx).Create(equipment).Error
}

func (r *equipmentRepository) List(ctx context.Context) ([]models.EquipmentType, error) {
	var items []models.EquipmentType
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *equipmentRepository) ListActive(ctx context.Context, tx *gorm.DB) ([]models.EquipmentType, error) {
	var items []models.EquipmentType
	err := conn(ctx, r.db, tx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindByIDsForUpdate locks the requested rows in ascending id order. Missing
// ids are simply absent from the result.
func (r *equipmentRepository) FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.EquipmentType, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.EquipmentType
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
