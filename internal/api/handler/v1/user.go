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

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]domain.User, int64, error)
	SearchUsers(ctx context.Context, query, role, location string, offset, limit int) ([]domain.User, int64, error)
	UpdateProfile(ctx context.Context, userID uint, name, bio, location, avatar string, interests []string) (domain.User, error)
	UpdateRole(ctx context.Context, userID uint, role string) (domain.User, error)
	DeleteUser(ctx context.Context, userID uint) error
	UserStats(ctx context.Context) (domain.UserStats, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetUser godoc
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        userID   path      int  true  "user ID"
// @Success      200      {object}  domain.User
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users/{userID} [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	userID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
			return
		}

		err = fmt.Errorf("v1.HandleGetUser -> h.svc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, user)
}

// HandleListUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200 {object}  response.Page
// @Failure      403 {object}  response.Err
// @Failure      500 {object}  response.Err
// @Router       /admin/users [get]
// @Security BearerAuth
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	offset, limit := parsePagination(ctx)

	users, total, err := h.svc.ListUsers(ctx.Request.Context(), offset, limit)
	if err != nil {
		err = fmt.Errorf("v1.HandleListUsers -> h.svc.ListUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, response.NewPage(users, total, offset, limit))
}

// HandleSearchUsers godoc
// @Summary      Search users by name, email, role or location
// @Tags         users
// @Produce      json
// @Param        q         query     string false "search keyword"
// @Param        role      query     string false "role filter"
// @Param        location  query     string false "location filter"
// @Success      200 {object}  response.Page
// @Failure      500 {object}  response.Err
// @Router       /users/search [get]
// @Security BearerAuth
func (h *UserHandler) HandleSearchUsers(ctx *gin.Context) {
	offset, limit := parsePagination(ctx)

	users, total, err := h.svc.SearchUsers(
		ctx.Request.Context(),
		ctx.Query("q"),
		ctx.Query("role"),
		ctx.Query("location"),
		offset, limit,
	)
	if err != nil {
		err = fmt.Errorf("v1.HandleSearchUsers -> h.svc.SearchUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, response.NewPage(users, total, offset, limit))
}

// HandleUpdateProfile godoc
// @Summary      Update the authenticated user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      request.UpdateProfileRequest true "request body"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users/profile [put]
// @Security BearerAuth
func (h *UserHandler) HandleUpdateProfile(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.UpdateProfile(ctx.Request.Context(), userID, req.Name, req.Bio, req.Location, req.Avatar, req.Interests)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateProfile -> h.svc.UpdateProfile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, user)
}

// HandleUpdateRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        userID   path      int true "user ID"
// @Param        request  body      request.UpdateRoleRequest true "request body"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/users/{userID}/role [put]
// @Security BearerAuth
func (h *UserHandler) HandleUpdateRole(ctx *gin.Context) {
	userID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.UpdateRole(ctx.Request.Context(), userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
		case errors.Is(err, service.ErrInvalidRole):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidRole))
		default:
			err = fmt.Errorf("v1.HandleUpdateRole -> h.svc.UpdateRole -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OK(ctx, user)
}

// HandleDeleteUser godoc
// @Summary      Delete a user
// @Description  A user who still hosts events cannot be deleted.
// @Tags         admin
// @Produce      json
// @Param        userID   path      int true "user ID"
// @Success      200      {object}  response.Body
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/users/{userID} [delete]
// @Security BearerAuth
func (h *UserHandler) HandleDeleteUser(ctx *gin.Context) {
	userID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteUser(ctx.Request.Context(), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
		case errors.Is(err, service.ErrUserHostsEvents):
			response.RenderErr(ctx, response.ErrInvalidState(service.ErrUserHostsEvents))
		default:
			err = fmt.Errorf("v1.HandleDeleteUser -> h.svc.DeleteUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OKWithMessage(ctx, "user deleted", nil)
}

// HandleUserStats godoc
// @Summary      Aggregate user counts
// @Tags         admin
// @Produce      json
// @Success      200 {object}  domain.UserStats
// @Failure      500 {object}  response.Err
// @Router       /admin/users/stats [get]
// @Security BearerAuth
func (h *UserHandler) HandleUserStats(ctx *gin.Context) {
	stats, err := h.svc.UserStats(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleUserStats -> h.svc.UserStats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, stats)
}
