package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the error half of the response envelope. StatusCode drives the
// HTTP status and is not serialized.
type Err struct {
	StatusCode int    `json:"-"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
}

func (e *Err) Error() string {
	return e.Message
}

func NewErr(statusCode int, err error) *Err {
	return &Err{
		StatusCode: statusCode,
		Success:    false,
		Message:    err.Error(),
	}
}

func ErrBadRequest(err error) *Err {
	return NewErr(http.StatusBadRequest, err)
}

func ErrWrongCredentials(err error) *Err {
	return NewErr(http.StatusUnauthorized, err)
}

func ErrUnauthorized(err error) *Err {
	return NewErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return NewErr(http.StatusForbidden, err)
}

func ErrNotFound(resource, key string, value interface{}) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		Success:    false,
		Message:    fmt.Sprintf("%v with %v (%v) not found", resource, key, value),
	}
}

func ErrConflict(err error) *Err {
	return NewErr(http.StatusConflict, err)
}

// ErrInvalidState is for requests that are well formed but rejected by
// the current state of the resource, like joining a full event.
func ErrInvalidState(err error) *Err {
	return NewErr(http.StatusUnprocessableEntity, err)
}

// ErrUpstream is for failures reported by an external provider.
func ErrUpstream(err error) *Err {
	return NewErr(http.StatusBadGateway, err)
}

// ErrInternalServerError logs the wrapped cause and hides it from the
// client outside of debug mode.
func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	msg := "internal server error"
	if gin.Mode() != gin.ReleaseMode {
		msg = err.Error()
	}

	return &Err{
		StatusCode: http.StatusInternalServerError,
		Success:    false,
		Message:    msg,
	}
}

func RenderErr(ctx *gin.Context, err *Err) {
	ctx.JSON(err.StatusCode, err)
}
