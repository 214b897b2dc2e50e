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

type HostService interface {
	RequestHost(ctx context.Context, userID uint, reason string) (domain.User, error)
	ApproveRequest(ctx context.Context, userID, adminID uint) (domain.User, error)
	RejectRequest(ctx context.Context, userID, adminID uint, reason string) (domain.User, error)
	HostStatus(ctx context.Context, userID uint) (domain.User, error)
	ListRequests(ctx context.Context, status, search string) ([]domain.User, error)
	RequestDetails(ctx context.Context, userID uint) (domain.User, error)
	RequestStats(ctx context.Context) (domain.HostRequestStats, error)
}

type HostHandler struct {
	svc HostService
}

func NewHostHandler(svc HostService) *HostHandler {
	return &HostHandler{
		svc: svc,
	}
}

// HandleRequestHost godoc
// @Summary      Apply to become a host
// @Tags         hosts
// @Accept       json
// @Produce      json
// @Param        request  body      request.BecomeHostRequest true "request body"
// @Success      201      {object}  domain.User
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /hosts/request [post]
// @Security BearerAuth
func (h *HostHandler) HandleRequestHost(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.BecomeHostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.RequestHost(ctx.Request.Context(), userID, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyHost) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyHost))
			return
		}

		err = fmt.Errorf("v1.HandleRequestHost -> h.svc.RequestHost -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Created(ctx, user)
}

// HandleHostStatus godoc
// @Summary      Get the caller's host request status
// @Tags         hosts
// @Produce      json
// @Success      200 {object}  domain.User
// @Failure      500 {object}  response.Err
// @Router       /hosts/status [get]
// @Security BearerAuth
func (h *HostHandler) HandleHostStatus(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.svc.HostStatus(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleHostStatus -> h.svc.HostStatus -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, user)
}

// HandleListHostRequests godoc
// @Summary      List host requests
// @Tags         admin
// @Produce      json
// @Param        status  query     string false "request status filter"
// @Param        q       query     string false "search keyword"
// @Success      200 {array}   domain.User
// @Failure      500 {object}  response.Err
// @Router       /admin/host-requests [get]
// @Security BearerAuth
func (h *HostHandler) HandleListHostRequests(ctx *gin.Context) {
	users, err := h.svc.ListRequests(ctx.Request.Context(), ctx.Query("status"), ctx.Query("q"))
	if err != nil {
		err = fmt.Errorf("v1.HandleListHostRequests -> h.svc.ListRequests -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, users)
}

// HandleHostRequestDetails godoc
// @Summary      Get one host request
// @Tags         admin
// @Produce      json
// @Param        userID   path      int true "user ID"
// @Success      200 {object}  domain.User
// @Failure      404 {object}  response.Err
// @Failure      500 {object}  response.Err
// @Router       /admin/host-requests/{userID} [get]
// @Security BearerAuth
func (h *HostHandler) HandleHostRequestDetails(ctx *gin.Context) {
	userID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.svc.RequestDetails(ctx.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
		case errors.Is(err, service.ErrNoHostRequest):
			response.RenderErr(ctx, response.ErrNotFound("host request", "userID", userID))
		default:
			err = fmt.Errorf("v1.HandleHostRequestDetails -> h.svc.RequestDetails -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OK(ctx, user)
}

// HandleApproveHostRequest godoc
// @Summary      Approve a host request
// @Tags         admin
// @Produce      json
// @Param        userID   path      int true "user ID"
// @Success      200 {object}  domain.User
// @Failure      404 {object}  response.Err
// @Failure      422 {object}  response.Err
// @Failure      500 {object}  response.Err
// @Router       /admin/host-requests/{userID}/approve [post]
// @Security BearerAuth
func (h *HostHandler) HandleApproveHostRequest(ctx *gin.Context) {
	adminID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	userID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.svc.ApproveRequest(ctx.Request.Context(), userID, adminID)
	if err != nil {
		h.renderDecisionErr(ctx, "v1.HandleApproveHostRequest", userID, err)
		return
	}

	response.OKWithMessage(ctx, "host request approved", user)
}

// HandleRejectHostRequest godoc
// @Summary      Reject a host request
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        userID   path      int true "user ID"
// @Param        request  body      request.HostRequestDecision true "request body"
// @Success      200 {object}  domain.User
// @Failure      404 {object}  response.Err
// @Failure      422 {object}  response.Err
// @Failure      500 {object}  response.Err
// @Router       /admin/host-requests/{userID}/reject [post]
// @Security BearerAuth
func (h *HostHandler) HandleRejectHostRequest(ctx *gin.Context) {
	adminID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	userID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.HostRequestDecision
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.RejectRequest(ctx.Request.Context(), userID, adminID, req.Reason)
	if err != nil {
		h.renderDecisionErr(ctx, "v1.HandleRejectHostRequest", userID, err)
		return
	}

	response.OKWithMessage(ctx, "host request rejected", user)
}

// HandleHostRequestStats godoc
// @Summary      Host request counts by status
// @Tags         admin
// @Produce      json
// @Success      200 {object}  domain.HostRequestStats
// @Failure      500 {object}  response.Err
// @Router       /admin/host-requests/stats [get]
// @Security BearerAuth
func (h *HostHandler) HandleHostRequestStats(ctx *gin.Context) {
	stats, err := h.svc.RequestStats(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleHostRequestStats -> h.svc.RequestStats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, stats)
}

func (h *HostHandler) renderDecisionErr(ctx *gin.Context, op string, userID uint, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
	case errors.Is(err, service.ErrNoHostRequest):
		response.RenderErr(ctx, response.ErrNotFound("host request", "userID", userID))
	case errors.Is(err, service.ErrHostRequestResolved):
		response.RenderErr(ctx, response.ErrInvalidState(service.ErrHostRequestResolved))
	default:
		err = fmt.Errorf("%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
