package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/repository"
)

var (
	ErrEventNotFound   = repository.ErrEventNotFound
	ErrEventFull       = repository.ErrEventFull
	ErrAlreadyJoined   = repository.ErrAlreadyJoined
	ErrNotParticipant  = repository.ErrNotParticipant
	ErrEventNotOpen    = errors.New("event is not open for joining")
	ErrHostCannotJoin  = errors.New("host cannot join their own event")
	ErrEventInPast     = errors.New("cannot join past events")
	ErrPaymentRequired = errors.New("this event requires payment")
	ErrLeaveCutoff     = errors.New("cannot leave event within 24 hours of start time")
	ErrNotEventHost    = errors.New("not authorized for this event")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id uint) error
	Find(ctx context.Context, filter repository.EventFilter) ([]domain.Event, int64, error)
	AddParticipant(ctx context.Context, eventID, userID uint) (domain.Event, error)
	RemoveParticipant(ctx context.Context, eventID, userID uint) (domain.Event, error)
	IsParticipant(ctx context.Context, eventID, userID uint) (bool, error)
}

type EventUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	AdjustEventsHosted(ctx context.Context, userID uint, delta int) error
}

// EventUpdate carries the host-editable fields; nil means "leave as is".
// Cancel is the only way a client can influence the status directly.
type EventUpdate struct {
	Title           *string
	Description     *string
	EventType       *string
	Date            *time.Time
	Time            *string
	Location        *string
	Address         *string
	MaxParticipants *int
	JoiningFee      *float64
	Image           *string
	Category        *string
	Tags            []string
	Cancel          bool
}

type JoinCheck struct {
	CanJoin bool     `json:"can_join"`
	Reasons []string `json:"reasons"`
}

type EventService struct {
	repo     EventRepository
	userRepo EventUserRepository
	now      func() time.Time

	// RemoveUpload deletes a locally stored event image. Optional; left
	// nil when uploads live elsewhere.
	RemoveUpload func(image string)
}

func NewEventService(repo EventRepository, userRepo EventUserRepository) *EventService {
	return &EventService{
		repo:     repo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// CreateEvent persists a new event for the given host and bumps the
// host's hosted-event counter in the same operation, rather than hiding
// the side effect in a storage hook.
func (s *EventService) CreateEvent(ctx context.Context, event domain.Event, hostID uint) (domain.Event, error) {
	host, err := s.userRepo.FindByID(ctx, hostID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	event.HostID = host.ID
	event.HostName = host.Name
	event.HostEmail = host.Email
	event.CurrentParticipants = 0
	event.Status = domain.EventStatusOpen
	event.NormalizeTags()
	event.DeriveStatus(s.now())

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	if err := s.userRepo.AdjustEventsHosted(ctx, host.ID, 1); err != nil {
		return domain.Event{}, fmt.Errorf("s.userRepo.AdjustEventsHosted -> %w", err)
	}

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}

	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context, filter repository.EventFilter) ([]domain.Event, int64, error) {
	events, total, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.Find -> %w", err)
	}

	// Host rating lives on the user record, so the rating sort is applied
	// after the page is loaded.
	if filter.SortBy == "rating" {
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].HostRating > events[j].HostRating
		})
	}

	return events, total, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, eventID, actorID uint, actorRole string, upd EventUpdate) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}

	if event.HostID != actorID && actorRole != domain.RoleAdmin {
		return domain.Event{}, ErrNotEventHost
	}

	if upd.Title != nil {
		event.Title = *upd.Title
	}
	if upd.Description != nil {
		event.Description = *upd.Description
	}
	if upd.EventType != nil {
		event.EventType = *upd.EventType
	}
	if upd.Date != nil {
		event.Date = *upd.Date
	}
	if upd.Time != nil {
		event.Time = *upd.Time
	}
	if upd.Location != nil {
		event.Location = *upd.Location
	}
	if upd.Address != nil {
		event.Address = *upd.Address
	}
	if upd.MaxParticipants != nil {
		event.MaxParticipants = *upd.MaxParticipants
	}
	if upd.JoiningFee != nil {
		event.JoiningFee = *upd.JoiningFee
	}
	if upd.Image != nil {
		event.Image = *upd.Image
	}
	if upd.Category != nil {
		event.Category = *upd.Category
	}
	if upd.Tags != nil {
		event.Tags = upd.Tags
	}
	if upd.Cancel {
		event.Status = domain.EventStatusCancelled
	}

	event.NormalizeTags()
	event.DeriveStatus(s.now())

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// DeleteEvent removes the event and decrements the host's hosted-event
// counter. Payments referencing the event are kept as history.
func (s *EventService) DeleteEvent(ctx context.Context, eventID, actorID uint, actorRole string) error {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}

	if event.HostID != actorID && actorRole != domain.RoleAdmin {
		return ErrNotEventHost
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	if err := s.userRepo.AdjustEventsHosted(ctx, event.HostID, -1); err != nil {
		return fmt.Errorf("s.userRepo.AdjustEventsHosted -> %w", err)
	}

	if s.RemoveUpload != nil && strings.HasPrefix(event.Image, "/uploads/") {
		s.RemoveUpload(event.Image)
	}

	return nil
}

// Join is the free-join path. A fee-bearing event is rejected here; those
// joins only happen through payment confirmation.
func (s *EventService) Join(ctx context.Context, eventID, userID uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}

	if err := s.checkJoin(&event, userID); err != nil {
		return domain.Event{}, err
	}
	if event.JoiningFee > 0 {
		return domain.Event{}, ErrPaymentRequired
	}

	joined, err := s.repo.AddParticipant(ctx, eventID, userID)
	if err != nil {
		return domain.Event{}, err
	}

	return joined, nil
}

// CheckJoin runs the join preconditions for the user without applying
// the join. The payment flow uses it before creating an intent.
func (s *EventService) CheckJoin(ctx context.Context, eventID, userID uint) error {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}

	return s.checkJoin(&event, userID)
}

// CompletePaidJoin applies the join effect after a successful payment.
// It is idempotent: a user who already made it onto the participant list
// (through the confirm call or the webhook, whichever won) is reported as
// joined, not as a conflict.
func (s *EventService) CompletePaidJoin(ctx context.Context, eventID, userID uint) (domain.Event, error) {
	already, err := s.repo.IsParticipant(ctx, eventID, userID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.IsParticipant -> %w", err)
	}
	if already {
		return s.repo.FindByID(ctx, eventID)
	}

	joined, err := s.repo.AddParticipant(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, ErrAlreadyJoined) {
			return s.repo.FindByID(ctx, eventID)
		}

		return domain.Event{}, err
	}

	return joined, nil
}

func (s *EventService) Leave(ctx context.Context, eventID, userID uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}

	if !event.HasParticipant(userID) {
		return domain.Event{}, ErrNotParticipant
	}
	if !event.CanLeave(s.now()) {
		return domain.Event{}, ErrLeaveCutoff
	}

	left, err := s.repo.RemoveParticipant(ctx, eventID, userID)
	if err != nil {
		return domain.Event{}, err
	}

	return left, nil
}

// RemoveParticipant is the host-initiated removal. The 24 hour leave
// cutoff does not apply.
func (s *EventService) RemoveParticipant(ctx context.Context, eventID, actorID uint, actorRole string, targetID uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}

	if event.HostID != actorID && actorRole != domain.RoleAdmin {
		return domain.Event{}, ErrNotEventHost
	}
	if !event.HasParticipant(targetID) {
		return domain.Event{}, ErrNotParticipant
	}

	updated, err := s.repo.RemoveParticipant(ctx, eventID, targetID)
	if err != nil {
		return domain.Event{}, err
	}

	return updated, nil
}

// CanJoin is the stateless check: it collects every failing precondition
// instead of short-circuiting.
func (s *EventService) CanJoin(ctx context.Context, eventID, userID uint) (JoinCheck, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return JoinCheck{}, err
	}

	reasons := event.JoinBlockers(userID, s.now())

	return JoinCheck{
		CanJoin: len(reasons) == 0,
		Reasons: reasons,
	}, nil
}

// Participants is restricted to the event's host and its participants.
func (s *EventService) Participants(ctx context.Context, eventID, actorID uint) ([]domain.User, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.HostID != actorID && !event.HasParticipant(actorID) {
		return nil, ErrNotEventHost
	}

	return event.Participants, nil
}

// checkJoin runs the join preconditions in order, reporting the first
// failure as its own error.
func (s *EventService) checkJoin(event *domain.Event, userID uint) error {
	switch {
	case event.Status != domain.EventStatusOpen:
		return ErrEventNotOpen
	case event.IsFull():
		return ErrEventFull
	case event.HasParticipant(userID):
		return ErrAlreadyJoined
	case event.HostID == userID:
		return ErrHostCannotJoin
	case event.IsPast(s.now()):
		return ErrEventInPast
	}

	return nil
}
