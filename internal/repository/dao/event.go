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
	ErrEventNotFound  = errors.New("event not found")
	ErrEventFull      = errors.New("event is full")
	ErrAlreadyJoined  = errors.New("already joined this event")
	ErrNotParticipant = errors.New("user is not a participant of this event")
)

type Event struct {
	ID uint `gorm:"primaryKey"`

	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`
	EventType   string `gorm:"not null;index"`

	Date     time.Time `gorm:"not null;index"`
	Time     string    `gorm:"not null"`
	Location string    `gorm:"not null;index"`
	Address  string    `gorm:"not null"`

	HostID    uint `gorm:"not null;index"`
	Host      User `gorm:"foreignKey:HostID"`
	HostName  string
	HostEmail string

	Participants []User `gorm:"many2many:event_participants;"`

	MaxParticipants     int `gorm:"not null"`
	CurrentParticipants int `gorm:"not null;default:0"`

	JoiningFee float64 `gorm:"not null;default:0"`
	Image      string
	Status     string `gorm:"not null;default:open;index"`

	Category string   `gorm:"not null;index"`
	Tags     []string `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventFilter captures the list/search query surface. Zero values mean
// "no constraint".
type EventFilter struct {
	Keyword         string
	Category        string
	EventType       string
	Location        string
	Status          string
	HostID          uint
	ParticipantID   uint
	DateFrom        *time.Time
	DateTo          *time.Time
	MinFee          *float64
	MaxFee          *float64
	MinParticipants *int
	MaxParticipants *int

	SortBy    string
	SortOrder string

	Offset int
	Limit  int
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).
		Preload("Host").
		Preload("Participants").
		First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).
		Omit("Participants", "Host").
		Save(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM event_participants WHERE event_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&Event{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}

		return nil
	})
}

func (d *EventDAO) Find(ctx context.Context, filter EventFilter) ([]Event, int64, error) {
	tx := d.db.WithContext(ctx).Model(&Event{})

	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		tx = tx.Where("title ILIKE ? OR description ILIKE ? OR tags::text ILIKE ?", pattern, pattern, pattern)
	}
	if filter.Category != "" {
		tx = tx.Where("category = ?", filter.Category)
	}
	if filter.EventType != "" {
		tx = tx.Where("event_type = ?", filter.EventType)
	}
	if filter.Location != "" {
		tx = tx.Where("location ILIKE ?", "%"+filter.Location+"%")
	}
	if filter.Status != "" && filter.Status != "all" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.HostID != 0 {
		tx = tx.Where("host_id = ?", filter.HostID)
	}
	if filter.ParticipantID != 0 {
		tx = tx.Where(
			"id IN (SELECT event_id FROM event_participants WHERE user_id = ?)",
			filter.ParticipantID,
		)
	}
	if filter.DateFrom != nil {
		tx = tx.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		tx = tx.Where("date <= ?", *filter.DateTo)
	}
	if filter.MinFee != nil {
		tx = tx.Where("joining_fee >= ?", *filter.MinFee)
	}
	if filter.MaxFee != nil {
		tx = tx.Where("joining_fee <= ?", *filter.MaxFee)
	}
	if filter.MinParticipants != nil {
		tx = tx.Where("current_participants >= ?", *filter.MinParticipants)
	}
	if filter.MaxParticipants != nil {
		tx = tx.Where("current_participants <= ?", *filter.MaxParticipants)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx = tx.Order(orderClause(filter.SortBy, filter.SortOrder))
	if filter.Offset > 0 {
		tx = tx.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var events []Event
	result := tx.Preload("Host").Find(&events)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return events, total, nil
}

func orderClause(sortBy, sortOrder string) string {
	dir := "ASC"
	if sortOrder == "desc" {
		dir = "DESC"
	}

	switch sortBy {
	case "date":
		return "date " + dir
	case "fee":
		return "joining_fee " + dir
	case "participants":
		return "current_participants " + dir
	case "rating":
		return "created_at DESC" // re-sorted by host rating at the service level
	case "created", "created_at":
		return "created_at " + dir
	default:
		return "created_at DESC"
	}
}

// AddParticipant appends a user to an event inside a single transaction.
// The join table's composite primary key rejects duplicates and the
// guarded counter update rejects joins past capacity, so two concurrent
// joins for the last slot cannot both commit.
func (d *EventDAO) AddParticipant(ctx context.Context, eventID, userID uint) (Event, error) {
	var updated Event

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(
			"INSERT INTO event_participants (event_id, user_id) VALUES (?, ?)",
			eventID, userID,
		)
		if result.Error != nil {
			var pgErr *pgconn.PgError
			if errors.As(result.Error, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return ErrAlreadyJoined
			}

			return result.Error
		}

		guarded := tx.Model(&Event{}).
			Where("id = ? AND current_participants < max_participants", eventID).
			UpdateColumn("current_participants", gorm.Expr("current_participants + 1"))
		if guarded.Error != nil {
			return guarded.Error
		}
		if guarded.RowsAffected == 0 {
			return ErrEventFull
		}

		return d.refreshStatus(tx, eventID, &updated)
	})
	if err != nil {
		return Event{}, err
	}

	return updated, nil
}

// RemoveParticipant is the inverse of AddParticipant. The caller has
// already checked any leave policy (the 24h cutoff does not apply to
// host-initiated removals).
func (d *EventDAO) RemoveParticipant(ctx context.Context, eventID, userID uint) (Event, error) {
	var updated Event

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(
			"DELETE FROM event_participants WHERE event_id = ? AND user_id = ?",
			eventID, userID,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotParticipant
		}

		guarded := tx.Model(&Event{}).
			Where("id = ? AND current_participants > 0", eventID).
			UpdateColumn("current_participants", gorm.Expr("current_participants - 1"))
		if guarded.Error != nil {
			return guarded.Error
		}
		if guarded.RowsAffected == 0 {
			return ErrEventNotFound
		}

		return d.refreshStatus(tx, eventID, &updated)
	})
	if err != nil {
		return Event{}, err
	}

	return updated, nil
}

// refreshStatus re-derives the event status from the row as it stands
// inside the transaction: capacity transitions first, then date-based
// completion, with cancelled left untouched.
func (d *EventDAO) refreshStatus(tx *gorm.DB, eventID uint, out *Event) error {
	var event Event
	if err := tx.First(&event, eventID).Error; err != nil {
		return err
	}

	status := event.Status
	if status != "cancelled" {
		if event.CurrentParticipants >= event.MaxParticipants {
			status = "full"
		} else if status == "full" {
			status = "open"
		}
		if event.Date.Before(time.Now()) && (status == "open" || status == "full") {
			status = "completed"
		}
	}

	if status != event.Status {
		if err := tx.Model(&Event{}).Where("id = ?", eventID).
			UpdateColumn("status", status).Error; err != nil {
			return err
		}
		event.Status = status
	}

	*out = event

	return nil
}

func (d *EventDAO) IsParticipant(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Table("event_participants").
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}
