package v1

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buddyshare/buddyshare-api/internal/api/handler/v1/response"
)

const maxUploadBytes = 5 << 20

var (
	errMissingFile  = errors.New("image file is required")
	errFileTooLarge = errors.New("image must be 5MB or smaller")
	errNotAnImage   = errors.New("only image files are accepted")
)

type UploadHandler struct {
	dir string
}

func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{
		dir: dir,
	}
}

// HandleUploadEventImage godoc
// @Summary      Upload an event image
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file true "image file, max 5MB"
// @Success      201    {object}  response.UploadResponse
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /uploads/events [post]
// @Security BearerAuth
func (h *UploadHandler) HandleUploadEventImage(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errMissingFile))
		return
	}

	if file.Size > maxUploadBytes {
		response.RenderErr(ctx, response.ErrBadRequest(errFileTooLarge))
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.RenderErr(ctx, response.ErrBadRequest(errNotAnImage))
		return
	}

	name := fmt.Sprintf("%d-%d%s", userID, time.Now().UnixNano(), filepath.Ext(file.Filename))
	dst := filepath.Join(h.dir, "events", name)

	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		err = fmt.Errorf("v1.HandleUploadEventImage -> ctx.SaveUploadedFile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Created(ctx, response.UploadResponse{
		URL: "/uploads/events/" + name,
	})
}
