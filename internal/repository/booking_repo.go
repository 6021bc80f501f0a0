package repository

import (
	"context"
	"time"

	"github.com/courtside/booking-service/internal/models"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindConfirmedOverlapping(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]models.Booking, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// Create inserts the booking together with its equipment and coach lines.
func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return conn(ctx, r.db, tx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Equipment", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Coach").
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindConfirmedOverlapping returns CONFIRMED bookings whose window intersects
// [start, end), with their line items.
func (r *bookingRepository) FindConfirmedOverlapping(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := conn(ctx, r.db, tx).
		Preload("Equipment").
		Preload("Coach").
		Where("status = ?", models.StatusConfirmed).
		Where("start_time < ? AND end_time > ?", end, start).
		Order("id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
