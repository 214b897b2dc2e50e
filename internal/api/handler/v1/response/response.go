package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buddyshare/buddyshare-api/internal/domain"
)

// Body is the success half of the response envelope.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Body{Success: true, Data: data})
}

func Created(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

func OKWithMessage(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, Body{Success: true, Message: message, Data: data})
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Page wraps list results with the paging totals clients need.
type Page struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Pages int         `json:"pages"`
}

// NewPage derives the 1-based page counters from the offset window.
func NewPage(items interface{}, total int64, offset, limit int) Page {
	page := Page{Items: items, Total: total, Limit: limit, Page: 1}
	if limit > 0 {
		page.Page = offset/limit + 1
		page.Pages = int((total + int64(limit) - 1) / int64(limit))
	}

	return page
}

type UploadResponse struct {
	URL string `json:"url"`
}
