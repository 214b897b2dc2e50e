package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/buddyshare/buddyshare-api/internal/api/handler/v1/request"
	"github.com/buddyshare/buddyshare-api/internal/api/handler/v1/response"
	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/service"
)

type ReviewService interface {
	CreateReview(ctx context.Context, userID, eventID, rating uint, comment string) (domain.Review, error)
	UpdateReview(ctx context.Context, reviewID, actorID uint, actorRole string, rating uint, comment string) (domain.Review, error)
	DeleteReview(ctx context.Context, reviewID, actorID uint, actorRole string) error
	EventReviews(ctx context.Context, eventID uint, offset, limit int) ([]domain.Review, int64, error)
	HostReviews(ctx context.Context, hostID uint, offset, limit int) ([]domain.Review, int64, error)
	MyReview(ctx context.Context, userID, eventID uint) (domain.Review, error)
}

type ReviewHandler struct {
	svc ReviewService
}

func NewReviewHandler(svc ReviewService) *ReviewHandler {
	return &ReviewHandler{
		svc: svc,
	}
}

// HandleCreateReview godoc
// @Summary      Review an attended event
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateReviewRequest true "request body"
// @Success      201      {object}  domain.Review
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /reviews [post]
// @Security BearerAuth
func (h *ReviewHandler) HandleCreateReview(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	review, err := h.svc.CreateReview(ctx.Request.Context(), userID, req.EventID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", req.EventID))
		case errors.Is(err, service.ErrReviewExists):
			response.RenderErr(ctx, response.ErrConflict(service.ErrReviewExists))
		case errors.Is(err, service.ErrReviewNotAttended):
			response.RenderErr(ctx, response.ErrInvalidState(service.ErrReviewNotAttended))
		case errors.Is(err, service.ErrReviewOwnEvent):
			response.RenderErr(ctx, response.ErrInvalidState(service.ErrReviewOwnEvent))
		default:
			err = fmt.Errorf("v1.HandleCreateReview -> h.svc.CreateReview -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.Created(ctx, review)
}

// HandleUpdateReview godoc
// @Summary      Edit a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        reviewID  path      int true "review ID"
// @Param        request   body      request.UpdateReviewRequest true "request body"
// @Success      200       {object}  domain.Review
// @Failure      400       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /reviews/{reviewID} [put]
// @Security BearerAuth
func (h *ReviewHandler) HandleUpdateReview(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	reviewID, respErr := parseIDParam(ctx, "reviewID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	review, err := h.svc.UpdateReview(ctx.Request.Context(), reviewID, userID, currentRole(ctx), req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			response.RenderErr(ctx, response.ErrNotFound("review", "ID", reviewID))
		case errors.Is(err, service.ErrNotReviewAuthor):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotReviewAuthor))
		default:
			err = fmt.Errorf("v1.HandleUpdateReview -> h.svc.UpdateReview -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OK(ctx, review)
}

// HandleDeleteReview godoc
// @Summary      Delete a review
// @Tags         reviews
// @Produce      json
// @Param        reviewID  path      int true "review ID"
// @Success      200       {object}  response.Body
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /reviews/{reviewID} [delete]
// @Security BearerAuth
func (h *ReviewHandler) HandleDeleteReview(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	reviewID, respErr := parseIDParam(ctx, "reviewID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteReview(ctx.Request.Context(), reviewID, userID, currentRole(ctx)); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			response.RenderErr(ctx, response.ErrNotFound("review", "ID", reviewID))
		case errors.Is(err, service.ErrNotReviewAuthor):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotReviewAuthor))
		default:
			err = fmt.Errorf("v1.HandleDeleteReview -> h.svc.DeleteReview -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OKWithMessage(ctx, "review deleted", nil)
}

// HandleEventReviews godoc
// @Summary      List reviews of an event
// @Tags         reviews
// @Produce      json
// @Param        eventID  path      int true "event ID"
// @Success      200      {object}  response.Page
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/reviews [get]
func (h *ReviewHandler) HandleEventReviews(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	offset, limit := parsePagination(ctx)

	reviews, total, err := h.svc.EventReviews(ctx.Request.Context(), eventID, offset, limit)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleEventReviews -> h.svc.EventReviews -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, response.NewPage(reviews, total, offset, limit))
}

// HandleHostReviews godoc
// @Summary      List reviews received by a host
// @Tags         reviews
// @Produce      json
// @Param        hostID  path      int true "host ID"
// @Success      200     {object}  response.Page
// @Failure      500     {object}  response.Err
// @Router       /hosts/{hostID}/reviews [get]
func (h *ReviewHandler) HandleHostReviews(ctx *gin.Context) {
	hostID, respErr := parseIDParam(ctx, "hostID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	offset, limit := parsePagination(ctx)

	reviews, total, err := h.svc.HostReviews(ctx.Request.Context(), hostID, offset, limit)
	if err != nil {
		err = fmt.Errorf("v1.HandleHostReviews -> h.svc.HostReviews -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, response.NewPage(reviews, total, offset, limit))
}

// HandleMyReview godoc
// @Summary      Get the caller's review of an event
// @Tags         reviews
// @Produce      json
// @Param        eventID  path      int true "event ID"
// @Success      200      {object}  domain.Review
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/reviews/mine [get]
// @Security BearerAuth
func (h *ReviewHandler) HandleMyReview(ctx *gin.Context) {
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

	review, err := h.svc.MyReview(ctx.Request.Context(), userID, eventID)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("review", "eventID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleMyReview -> h.svc.MyReview -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, review)
}
