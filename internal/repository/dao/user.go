package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Name     string `gorm:"not null"`
	Email    string `gorm:"unique;not null"`
	Password string

	GoogleID     *string `gorm:"uniqueIndex"`
	IsGoogleUser bool    `gorm:"default:false"`

	Role       string `gorm:"not null;default:user;index"`
	Avatar     string
	Bio        string
	Location   string   `gorm:"index"`
	Interests  []string `gorm:"serializer:json"`
	IsVerified bool     `gorm:"default:false"`

	AverageRating float64 `gorm:"default:0;index"`
	TotalReviews  int     `gorm:"default:0"`
	EventsHosted  int     `gorm:"default:0"`

	HostRequest HostRequest `gorm:"embedded;embeddedPrefix:host_request_"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type HostRequest struct {
	Requested       bool `gorm:"default:false;index"`
	Status          string
	Reason          string
	RequestedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      uint
	RejectedAt      *time.Time
	RejectedBy      uint
	RejectionReason string
}

type UserStats struct {
	TotalUsers    int64
	TotalHosts    int64
	TotalAdmins   int64
	VerifiedUsers int64
	NewUsers      int64
}

type HostRequestStats struct {
	Total    int64
	Pending  int64
	Approved int64
	Rejected int64
	Recent   int64
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_users_email"`) {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByGoogleID(ctx context.Context, googleID string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "google_id = ?", googleID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) Update(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Save(&user)
	if result.Error != nil {
		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (d *UserDAO) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	var users []User
	var total int64

	if err := d.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := d.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return users, total, nil
}

func (d *UserDAO) Search(ctx context.Context, query, role, location string, offset, limit int) ([]User, int64, error) {
	tx := d.db.WithContext(ctx).Model(&User{})

	if query != "" {
		pattern := "%" + query + "%"
		tx = tx.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if role != "" {
		tx = tx.Where("role = ?", role)
	}
	if location != "" {
		tx = tx.Where("location ILIKE ?", "%"+location+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	result := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return users, total, nil
}

func (d *UserDAO) Stats(ctx context.Context) (UserStats, error) {
	var stats UserStats
	users := func() *gorm.DB { return d.db.WithContext(ctx).Model(&User{}) }

	if err := users().Count(&stats.TotalUsers).Error; err != nil {
		return UserStats{}, err
	}
	if err := users().Where("role = ?", "host").Count(&stats.TotalHosts).Error; err != nil {
		return UserStats{}, err
	}
	if err := users().Where("role = ?", "admin").Count(&stats.TotalAdmins).Error; err != nil {
		return UserStats{}, err
	}
	if err := users().Where("is_verified = ?", true).Count(&stats.VerifiedUsers).Error; err != nil {
		return UserStats{}, err
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := users().Where("created_at >= ?", weekAgo).Count(&stats.NewUsers).Error; err != nil {
		return UserStats{}, err
	}

	return stats, nil
}

// AdjustEventsHosted moves the hosted-event counter by delta, clamping at
// zero. Called explicitly by the event service on create and delete.
func (d *UserDAO) AdjustEventsHosted(ctx context.Context, userID uint, delta int) error {
	return d.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		UpdateColumn("events_hosted", gorm.Expr("GREATEST(events_hosted + ?, 0)", delta)).
		Error
}

// UpdateRatingAggregate overwrites the derived rating fields. Only the
// review repository's recompute path is expected to call this.
func (d *UserDAO) UpdateRatingAggregate(ctx context.Context, userID uint, average float64, total int) error {
	return d.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"average_rating": average,
			"total_reviews":  total,
		}).Error
}

func (d *UserDAO) FindHostRequests(ctx context.Context, status, search string) ([]User, error) {
	tx := d.db.WithContext(ctx).Where("host_request_requested = ?", true)

	if status != "" && status != "all" {
		tx = tx.Where("host_request_status = ?", status)
	}
	if search != "" {
		pattern := "%" + search + "%"
		tx = tx.Where(
			"name ILIKE ? OR email ILIKE ? OR location ILIKE ? OR host_request_reason ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var users []User
	result := tx.Order("host_request_requested_at DESC").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (d *UserDAO) HostRequestStats(ctx context.Context) (HostRequestStats, error) {
	var stats HostRequestStats
	requests := func() *gorm.DB {
		return d.db.WithContext(ctx).Model(&User{}).Where("host_request_requested = ?", true)
	}

	if err := requests().Count(&stats.Total).Error; err != nil {
		return HostRequestStats{}, err
	}
	if err := requests().Where("host_request_status = ?", "pending").Count(&stats.Pending).Error; err != nil {
		return HostRequestStats{}, err
	}
	if err := requests().Where("host_request_status = ?", "approved").Count(&stats.Approved).Error; err != nil {
		return HostRequestStats{}, err
	}
	if err := requests().Where("host_request_status = ?", "rejected").Count(&stats.Rejected).Error; err != nil {
		return HostRequestStats{}, err
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := requests().Where("host_request_requested_at >= ?", weekAgo).Count(&stats.Recent).Error; err != nil {
		return HostRequestStats{}, err
	}

	return stats, nil
}

func (d *UserDAO) CountEventsByHost(ctx context.Context, hostID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Event{}).Where("host_id = ?", hostID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
