package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrReviewExists   = errors.New("review already exists for this event")
)

type Review struct {
	ID uint `gorm:"primaryKey"`

	UserID uint `gorm:"not null;uniqueIndex:idx_reviews_user_event"`
	User   User `gorm:"foreignKey:UserID"`

	HostID uint `gorm:"not null;index"`

	EventID uint  `gorm:"not null;uniqueIndex:idx_reviews_user_event"`
	Event   Event `gorm:"foreignKey:EventID"`

	Rating  int    `gorm:"not null"`
	Comment string `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ReviewDAO struct {
	db *gorm.DB
}

func NewReviewDAO(db *gorm.DB) *ReviewDAO {
	return &ReviewDAO{
		db: db,
	}
}

func (d *ReviewDAO) Insert(ctx context.Context, review Review) (Review, error) {
	result := d.db.WithContext(ctx).Create(&review)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return Review{}, ErrReviewExists
		}

		return Review{}, result.Error
	}

	return review, nil
}

func (d *ReviewDAO) FindByID(ctx context.Context, id uint) (Review, error) {
	var review Review

	result := d.db.WithContext(ctx).First(&review, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Review{}, ErrReviewNotFound
		}

		return Review{}, result.Error
	}

	return review, nil
}

func (d *ReviewDAO) FindByUserAndEvent(ctx context.Context, userID, eventID uint) (Review, error) {
	var review Review

	result := d.db.WithContext(ctx).
		First(&review, "user_id = ? AND event_id = ?", userID, eventID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Review{}, ErrReviewNotFound
		}

		return Review{}, result.Error
	}

	return review, nil
}

func (d *ReviewDAO) FindByEvent(ctx context.Context, eventID uint, offset, limit int) ([]Review, int64, error) {
	var (
		reviews []Review
		total   int64
	)

	if err := d.db.WithContext(ctx).Model(&Review{}).
		Where("event_id = ?", eventID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := d.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return reviews, total, nil
}

func (d *ReviewDAO) FindByHost(ctx context.Context, hostID uint, offset, limit int) ([]Review, int64, error) {
	var (
		reviews []Review
		total   int64
	)

	if err := d.db.WithContext(ctx).Model(&Review{}).
		Where("host_id = ?", hostID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := d.db.WithContext(ctx).
		Preload("User").
		Preload("Event").
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return reviews, total, nil
}

// RatingsByHost returns only the rating values, which is everything the
// aggregate recompute needs.
func (d *ReviewDAO) RatingsByHost(ctx context.Context, hostID uint) ([]int, error) {
	var ratings []int

	result := d.db.WithContext(ctx).Model(&Review{}).
		Where("host_id = ?", hostID).
		Pluck("rating", &ratings)
	if result.Error != nil {
		return nil, result.Error
	}

	return ratings, nil
}

func (d *ReviewDAO) Update(ctx context.Context, review Review) (Review, error) {
	result := d.db.WithContext(ctx).
		Omit("User", "Event").
		Save(&review)
	if result.Error != nil {
		return Review{}, result.Error
	}

	return review, nil
}

func (d *ReviewDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}
