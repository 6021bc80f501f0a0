package repository

import (
	"context"

	"github.com/courtside/booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CoachRepository interface {
	Create(ctx context.Context, coach *models.Coach) error
	List(ctx context.Context) ([]models.Coach, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]models.Coach, error)
	FindActiveByID(ctx context.Context, tx *gorm.DB, id uint, forUpdate bool) (*models.Coach, error)
	ListAvailability(ctx context.Context, coachID uint) ([]models.CoachAvailability, error)
	ReplaceAvailability(ctx context.Context, tx *gorm.DB, coachID uint, slots []models.CoachAvailability) error
	FindSlotsByDay(ctx context.Context, tx *gorm.DB, day int, coachIDs ...uint) ([]models.CoachAvailability, error)
}

type coachRepository struct {
	db *gorm.DB
}

func NewCoachRepository(db *gorm.DB) CoachRepository {
	return &coachRepository{db: db}
}

func (r *coachRepository) Create(ctx context.Context, coach *models.Coach) error {
	return r.db.WithContext(ctx).Create(coach).Error
}

func (r *coachRepository) List(ctx context.Context) ([]models.Coach, error) {
	var coaches []models.Coach
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&coaches).Error; err != nil {
		return nil, err
	}
	return coaches, nil
}

func (r *coachRepository) ListActive(ctx context.Context, tx *gorm.DB) ([]models.Coach, error) {
	var coaches []models.Coach
	err := conn(ctx, r.db, tx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&coaches).Error
	if err != nil {
		return nil, err
	}
	return coaches, nil
}

func (r *coachRepository) FindActiveByID(ctx context.Context, tx *gorm.DB, id uint, forUpdate bool) (*models.Coach, error) {
	q := conn(ctx, r.db, tx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var coach models.Coach
	if err := q.Where("id = ? AND is_active = ?", id, true).First(&coach).Error; err != nil {
		return nil, err
	}
	return &coach, nil
}

func (r *coachRepository) ListAvailability(ctx context.Context, coachID uint) ([]models.CoachAvailability, error) {
	var slots []models.CoachAvailability
	err := r.db.WithContext(ctx).
		Where("coach_id = ?", coachID).
		Order("day_of_week ASC, start_hour ASC, id ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// ReplaceAvailability deletes every slot of the coach and inserts the new set.
// Callers run it inside a transaction so the swap is all-or-nothing.
func (r *coachRepository) ReplaceAvailability(ctx context.Context, tx *gorm.DB, coachID uint, slots []models.CoachAvailability) error {
	db := conn(ctx, r.db, tx)
	if err := db.Where("coach_id = ?", coachID).Delete(&models.CoachAvailability{}).Error; err != nil {
		return err
	}
	if len(slots) == 0 {
		return nil
	}
	for i := range slots {
		slots[i].ID = 0
		slots[i].CoachID = coachID
	}
	return db.Create(&slots).Error
}

// FindSlotsByDay returns the slots declared for a weekday, optionally
// narrowed to specific coaches.
func (r *coachRepository) FindSlotsByDay(ctx context.Context, tx *gorm.DB, day int, coachIDs ...uint) ([]models.CoachAvailability, error) {
	q := conn(ctx, r.db, tx).Where("day_of_week = ?", day)
	if len(coachIDs) > 0 {
		q = q.Where("coach_id IN ?", coachIDs)
	}
	var slots []models.CoachAvailability
	if err := q.Order("coach_id ASC, start_hour ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}
