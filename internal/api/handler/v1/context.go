package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/buddyshare/buddyshare-api/internal/api/handler/v1/response"
	"github.com/buddyshare/buddyshare-api/internal/api/middleware"
)

var errNotAuthenticated = errors.New("not authenticated")

func currentUserID(ctx *gin.Context) (uint, *response.Err) {
	userID := ctx.GetUint(middleware.CtxKeyUserID)
	if userID == 0 {
		return 0, response.ErrUnauthorized(errNotAuthenticated)
	}

	return userID, nil
}

func currentRole(ctx *gin.Context) string {
	return ctx.GetString(middleware.CtxKeyRole)
}

func parseIDParam(ctx *gin.Context, name string) (uint, *response.Err) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %v (%v)", name, raw))
	}

	return uint(id), nil
}

func parsePagination(ctx *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	return offset, limit
}
