package repository

import (
	"context"
	"time"

	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/repository/dao"
)

var (
	ErrEventNotFound  = dao.ErrEventNotFound
	ErrEventFull      = dao.ErrEventFull
	ErrAlreadyJoined  = dao.ErrAlreadyJoined
	ErrNotParticipant = dao.ErrNotParticipant
)

// EventFilter mirrors dao.EventFilter at the domain boundary.
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

type EventRepository struct {
	dao   *dao.EventDAO
	uRepo *UserRepository
}

func NewEventRepository(d *dao.EventDAO, uRepo *UserRepository) *EventRepository {
	return &EventRepository{
		dao:   d,
		uRepo: uRepo,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	event := domain.Event{
		ID:                  e.ID,
		Title:               e.Title,
		Description:         e.Description,
		EventType:           e.EventType,
		Date:                e.Date,
		Time:                e.Time,
		Location:            e.Location,
		Address:             e.Address,
		HostID:              e.HostID,
		HostName:            e.HostName,
		HostEmail:           e.HostEmail,
		MaxParticipants:     e.MaxParticipants,
		CurrentParticipants: e.CurrentParticipants,
		JoiningFee:          e.JoiningFee,
		Image:               e.Image,
		Status:              e.Status,
		Category:            e.Category,
		Tags:                e.Tags,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}

	if e.Host.ID != 0 {
		event.HostRating = e.Host.AverageRating
	}
	if len(e.Participants) > 0 {
		event.Participants = r.uRepo.daosToDomain(e.Participants)
	}

	return event
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:                  e.ID,
		Title:               e.Title,
		Description:         e.Description,
		EventType:           e.EventType,
		Date:                e.Date,
		Time:                e.Time,
		Location:            e.Location,
		Address:             e.Address,
		HostID:              e.HostID,
		HostName:            e.HostName,
		HostEmail:           e.HostEmail,
		MaxParticipants:     e.MaxParticipants,
		CurrentParticipants: e.CurrentParticipants,
		JoiningFee:          e.JoiningFee,
		Image:               e.Image,
		Status:              e.Status,
		Category:            e.Category,
		Tags:                e.Tags,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func (r *EventRepository) daosToDomain(events []dao.Event) []domain.Event {
	result := make([]domain.Event, len(events))
	for i, e := range events {
		result[i] = r.daoToDomain(e)
	}

	return result
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, err
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	event, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}

	return r.daoToDomain(event), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, err
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	return r.dao.Delete(ctx, id)
}

func (r *EventRepository) Find(ctx context.Context, filter EventFilter) ([]domain.Event, int64, error) {
	events, total, err := r.dao.Find(ctx, dao.EventFilter{
		Keyword:         filter.Keyword,
		Category:        filter.Category,
		EventType:       filter.EventType,
		Location:        filter.Location,
		Status:          filter.Status,
		HostID:          filter.HostID,
		ParticipantID:   filter.ParticipantID,
		DateFrom:        filter.DateFrom,
		DateTo:          filter.DateTo,
		MinFee:          filter.MinFee,
		MaxFee:          filter.MaxFee,
		MinParticipants: filter.MinParticipants,
		MaxParticipants: filter.MaxParticipants,
		SortBy:          filter.SortBy,
		SortOrder:       filter.SortOrder,
		Offset:          filter.Offset,
		Limit:           filter.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	return r.daosToDomain(events), total, nil
}

func (r *EventRepository) AddParticipant(ctx context.Context, eventID, userID uint) (domain.Event, error) {
	event, err := r.dao.AddParticipant(ctx, eventID, userID)
	if err != nil {
		return domain.Event{}, err
	}

	return r.daoToDomain(event), nil
}

func (r *EventRepository) RemoveParticipant(ctx context.Context, eventID, userID uint) (domain.Event, error) {
	event, err := r.dao.RemoveParticipant(ctx, eventID, userID)
	if err != nil {
		return domain.Event{}, err
	}

	return r.daoToDomain(event), nil
}

func (r *EventRepository) IsParticipant(ctx context.Context, eventID, userID uint) (bool, error) {
	return r.dao.IsParticipant(ctx, eventID, userID)
}
