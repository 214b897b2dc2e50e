package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buddyshare/buddyshare-api/internal/api/handler/v1/request"
	"github.com/buddyshare/buddyshare-api/internal/api/handler/v1/response"
	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/repository"
	"github.com/buddyshare/buddyshare-api/internal/service"
)

type EventService interface {
	CreateEvent(ctx context.Context, event domain.Event, hostID uint) (domain.Event, error)
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	ListEvents(ctx context.Context, filter repository.EventFilter) ([]domain.Event, int64, error)
	UpdateEvent(ctx context.Context, eventID, actorID uint, actorRole string, upd service.EventUpdate) (domain.Event, error)
	DeleteEvent(ctx context.Context, eventID, actorID uint, actorRole string) error
	Join(ctx context.Context, eventID, userID uint) (domain.Event, error)
	Leave(ctx context.Context, eventID, userID uint) (domain.Event, error)
	RemoveParticipant(ctx context.Context, eventID, actorID uint, actorRole string, targetID uint) (domain.Event, error)
	CanJoin(ctx context.Context, eventID, userID uint) (service.JoinCheck, error)
	Participants(ctx context.Context, eventID, actorID uint) ([]domain.User, error)
}

type EventHandler struct {
	svc EventService
}

func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{
		svc: svc,
	}
}

// Dates are accepted as RFC 3339 or plain YYYY-MM-DD.
func parseEventDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format (%v)", value)
	}

	return t, nil
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest true "request body"
// @Success      201      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events [post]
// @Security BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), domain.Event{
		Title:           req.Title,
		Description:     req.Description,
		EventType:       req.EventType,
		Date:            date,
		Time:            req.Time,
		Location:        req.Location,
		Address:         req.Address,
		MaxParticipants: req.MaxParticipants,
		JoiningFee:      req.JoiningFee,
		Image:           req.Image,
		Category:        req.Category,
		Tags:            req.Tags,
	}, userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Created(ctx, event)
}

// HandleGetEvent godoc
// @Summary      Get an event by ID
// @Tags         events
// @Produce      json
// @Param        eventID  path      int true "event ID"
// @Success      200      {object}  domain.Event
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, event)
}

// HandleListEvents godoc
// @Summary      List and search events
// @Tags         events
// @Produce      json
// @Param        q           query  string  false "keyword over title, description and tags"
// @Param        category    query  string  false "category filter"
// @Param        event_type  query  string  false "event type filter"
// @Param        location    query  string  false "location filter"
// @Param        status      query  string  false "status filter, defaults to open, use all to disable"
// @Param        host_id     query  int     false "host filter"
// @Param        date_from   query  string  false "earliest date"
// @Param        date_to     query  string  false "latest date"
// @Param        min_fee     query  number  false "minimum joining fee"
// @Param        max_fee     query  number  false "maximum joining fee"
// @Param        min_participants  query  int  false "minimum participant count"
// @Param        max_participants  query  int  false "maximum participant count"
// @Param        sort_by     query  string  false "date, fee, participants, created_at or rating"
// @Param        sort_order  query  string  false "asc or desc"
// @Success      200 {object}  response.Page
// @Failure      400 {object}  response.Err
// @Failure      500 {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	filter, respErr := h.buildFilter(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, total, err := h.svc.ListEvents(ctx.Request.Context(), filter)
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, response.NewPage(events, total, filter.Offset, filter.Limit))
}

// HandleMyEvents godoc
// @Summary      List events hosted by the caller
// @Tags         events
// @Produce      json
// @Success      200 {object}  response.Page
// @Failure      500 {object}  response.Err
// @Router       /events/mine [get]
// @Security BearerAuth
func (h *EventHandler) HandleMyEvents(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	offset, limit := parsePagination(ctx)

	events, total, err := h.svc.ListEvents(ctx.Request.Context(), repository.EventFilter{
		HostID: userID,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleMyEvents -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, response.NewPage(events, total, offset, limit))
}

// HandleJoinedEvents godoc
// @Summary      List events the caller participates in
// @Tags         events
// @Produce      json
// @Success      200 {object}  response.Page
// @Failure      500 {object}  response.Err
// @Router       /events/joined [get]
// @Security BearerAuth
func (h *EventHandler) HandleJoinedEvents(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	offset, limit := parsePagination(ctx)

	events, total, err := h.svc.ListEvents(ctx.Request.Context(), repository.EventFilter{
		ParticipantID: userID,
		Offset:        offset,
		Limit:         limit,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleJoinedEvents -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, response.NewPage(events, total, offset, limit))
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int true "event ID"
// @Param        request  body      request.UpdateEventRequest true "request body"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [put]
// @Security BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	upd := service.EventUpdate{
		Title:           req.Title,
		Description:     req.Description,
		EventType:       req.EventType,
		Time:            req.Time,
		Location:        req.Location,
		Address:         req.Address,
		MaxParticipants: req.MaxParticipants,
		JoiningFee:      req.JoiningFee,
		Image:           req.Image,
		Category:        req.Category,
		Tags:            req.Tags,
		Cancel:          req.Status != nil && *req.Status == domain.EventStatusCancelled,
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		upd.Date = &date
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), eventID, userID, currentRole(ctx), upd)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotEventHost):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotEventHost))
		default:
			err = fmt.Errorf("v1.HandleUpdateEvent -> h.svc.UpdateEvent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OK(ctx, event)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int true "event ID"
// @Success      200      {object}  response.Body
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [delete]
// @Security BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteEvent(ctx.Request.Context(), eventID, userID, currentRole(ctx)); err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotEventHost):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotEventHost))
		default:
			err = fmt.Errorf("v1.HandleDeleteEvent -> h.svc.DeleteEvent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OKWithMessage(ctx, "event deleted", nil)
}

// HandleJoinEvent godoc
// @Summary      Join a free event
// @Description  Fee-bearing events must be joined through the payment flow.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int true "event ID"
// @Success      200      {object}  domain.Event
// @Failure      402      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/join [post]
// @Security BearerAuth
func (h *EventHandler) HandleJoinEvent(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := h.svc.Join(ctx.Request.Context(), eventID, userID)
	if err != nil {
		renderJoinErr(ctx, "v1.HandleJoinEvent", eventID, err)
		return
	}

	response.OKWithMessage(ctx, "joined event", event)
}

// HandleLeaveEvent godoc
// @Summary      Leave an event
// @Description  Leaving is blocked within 24 hours of the start time.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int true "event ID"
// @Success      200      {object}  domain.Event
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/leave [post]
// @Security BearerAuth
func (h *EventHandler) HandleLeaveEvent(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := h.svc.Leave(ctx.Request.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotParticipant):
			response.RenderErr(ctx, response.ErrInvalidState(service.ErrNotParticipant))
		case errors.Is(err, service.ErrLeaveCutoff):
			response.RenderErr(ctx, response.ErrInvalidState(service.ErrLeaveCutoff))
		default:
			err = fmt.Errorf("v1.HandleLeaveEvent -> h.svc.Leave -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OKWithMessage(ctx, "left event", event)
}

// HandleCanJoin godoc
// @Summary      Check whether the caller can join an event
// @Description  Returns every failing precondition instead of the first.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int true "event ID"
// @Success      200      {object}  service.JoinCheck
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/can-join [get]
// @Security BearerAuth
func (h *EventHandler) HandleCanJoin(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	check, err := h.svc.CanJoin(ctx.Request.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleCanJoin -> h.svc.CanJoin -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, check)
}

// HandleGetParticipants godoc
// @Summary      List an event's participants
// @Description  Visible to the event's host and its participants.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int true "event ID"
// @Success      200      {array}   domain.User
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/participants [get]
// @Security BearerAuth
func (h *EventHandler) HandleGetParticipants(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	participants, err := h.svc.Participants(ctx.Request.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotEventHost):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotEventHost))
		default:
			err = fmt.Errorf("v1.HandleGetParticipants -> h.svc.Participants -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OK(ctx, participants)
}

// HandleRemoveParticipant godoc
// @Summary      Remove a participant from an event
// @Description  Host-initiated removal. The 24 hour leave cutoff does not apply.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int true "event ID"
// @Param        request  body      request.RemoveParticipantRequest true "request body"
// @Success      200      {object}  domain.Event
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/participants/remove [post]
// @Security BearerAuth
func (h *EventHandler) HandleRemoveParticipant(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RemoveParticipantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.RemoveParticipant(ctx.Request.Context(), eventID, userID, currentRole(ctx), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotEventHost):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotEventHost))
		case errors.Is(err, service.ErrNotParticipant):
			response.RenderErr(ctx, response.ErrInvalidState(service.ErrNotParticipant))
		default:
			err = fmt.Errorf("v1.HandleRemoveParticipant -> h.svc.RemoveParticipant -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OKWithMessage(ctx, "participant removed", event)
}

func (h *EventHandler) buildFilter(ctx *gin.Context) (repository.EventFilter, *response.Err) {
	offset, limit := parsePagination(ctx)

	filter := repository.EventFilter{
		Keyword:   ctx.Query("q"),
		Category:  ctx.Query("category"),
		EventType: ctx.Query("event_type"),
		Location:  ctx.Query("location"),
		Status:    ctx.Query("status"),
		SortBy:    ctx.Query("sort_by"),
		SortOrder: ctx.Query("sort_order"),
		Offset:    offset,
		Limit:     limit,
	}

	if raw := ctx.Query("host_id"); raw != "" {
		hostID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid host_id (%v)", raw))
		}
		filter.HostID = uint(hostID)
	}

	if raw := ctx.Query("date_from"); raw != "" {
		from, err := parseEventDate(raw)
		if err != nil {
			return filter, response.ErrBadRequest(err)
		}
		filter.DateFrom = &from
	}

	if raw := ctx.Query("date_to"); raw != "" {
		to, err := parseEventDate(raw)
		if err != nil {
			return filter, response.ErrBadRequest(err)
		}
		filter.DateTo = &to
	}

	if raw := ctx.Query("min_fee"); raw != "" {
		fee, err := strconv.ParseFloat(raw, 64)
		if err != nil || fee < 0 {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid min_fee (%v)", raw))
		}
		filter.MinFee = &fee
	}

	if raw := ctx.Query("max_fee"); raw != "" {
		fee, err := strconv.ParseFloat(raw, 64)
		if err != nil || fee < 0 {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid max_fee (%v)", raw))
		}
		filter.MaxFee = &fee
	}

	if raw := ctx.Query("min_participants"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid min_participants (%v)", raw))
		}
		filter.MinParticipants = &n
	}

	if raw := ctx.Query("max_participants"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid max_participants (%v)", raw))
		}
		filter.MaxParticipants = &n
	}

	// Browsing defaults to open events. status=all lifts the filter.
	switch filter.Status {
	case "":
		filter.Status = domain.EventStatusOpen
	case "all":
		filter.Status = ""
	}

	return filter, nil
}

// renderJoinErr maps each join precondition failure onto its status.
// Payment requirement uses 402, state conflicts 409/422.
func renderJoinErr(ctx *gin.Context, op string, eventID uint, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
	case errors.Is(err, service.ErrAlreadyJoined):
		response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyJoined))
	case errors.Is(err, service.ErrPaymentRequired):
		response.RenderErr(ctx, response.NewErr(http.StatusPaymentRequired, service.ErrPaymentRequired))
	case errors.Is(err, service.ErrEventNotOpen):
		response.RenderErr(ctx, response.ErrInvalidState(service.ErrEventNotOpen))
	case errors.Is(err, service.ErrEventFull):
		response.RenderErr(ctx, response.ErrInvalidState(service.ErrEventFull))
	case errors.Is(err, service.ErrHostCannotJoin):
		response.RenderErr(ctx, response.ErrInvalidState(service.ErrHostCannotJoin))
	case errors.Is(err, service.ErrEventInPast):
		response.RenderErr(ctx, response.ErrInvalidState(service.ErrEventInPast))
	default:
		err = fmt.Errorf("%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
