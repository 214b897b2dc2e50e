package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buddyshare/buddyshare-api/internal/api/handler/v1/request"
	"github.com/buddyshare/buddyshare-api/internal/api/handler/v1/response"
	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/service"
)

type PaymentService interface {
	FreeJoin(ctx context.Context, eventID, userID uint) (domain.Payment, domain.Event, error)
	CreateIntent(ctx context.Context, eventID, userID uint) (service.IntentResponse, error)
	Confirm(ctx context.Context, intentID string, userID uint) (domain.Payment, domain.Event, error)
	History(ctx context.Context, userID uint, offset, limit int) ([]domain.Payment, int64, error)
	Details(ctx context.Context, paymentID, actorID uint, actorRole string) (domain.Payment, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type PaymentHandler struct {
	svc PaymentService
}

func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{
		svc: svc,
	}
}

// HandleCreateIntent godoc
// @Summary      Open a card payment for a fee-bearing event
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateIntentRequest true "request body"
// @Success      200      {object}  service.IntentResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Router       /payments/intent [post]
// @Security BearerAuth
func (h *PaymentHandler) HandleCreateIntent(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateIntentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	intent, err := h.svc.CreateIntent(ctx.Request.Context(), req.EventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventFree):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrEventFree))
		case errors.Is(err, service.ErrPaymentProcessed):
			response.RenderErr(ctx, response.ErrConflict(service.ErrPaymentProcessed))
		default:
			renderJoinErr(ctx, "v1.HandleCreateIntent", req.EventID, err)
		}
		return
	}

	response.OK(ctx, intent)
}

// HandleConfirmPayment godoc
// @Summary      Confirm a card payment and join the event
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      request.ConfirmPaymentRequest true "request body"
// @Success      200      {object}  domain.Payment
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /payments/confirm [post]
// @Security BearerAuth
func (h *PaymentHandler) HandleConfirmPayment(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ConfirmPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	payment, event, err := h.svc.Confirm(ctx.Request.Context(), req.PaymentIntentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			response.RenderErr(ctx, response.ErrNotFound("payment", "intent", req.PaymentIntentID))
		case errors.Is(err, service.ErrNotPaymentOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotPaymentOwner))
		case errors.Is(err, service.ErrPaymentProcessed):
			response.RenderErr(ctx, response.ErrConflict(service.ErrPaymentProcessed))
		case errors.Is(err, service.ErrPaymentNotCompleted):
			response.RenderErr(ctx, response.ErrInvalidState(service.ErrPaymentNotCompleted))
		default:
			err = fmt.Errorf("v1.HandleConfirmPayment -> h.svc.Confirm -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OKWithMessage(ctx, "payment confirmed", gin.H{
		"payment": payment,
		"event":   event,
	})
}

// HandleFreeJoin godoc
// @Summary      Join a free event and record a zero-amount payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      request.FreeJoinRequest true "request body"
// @Success      200      {object}  domain.Payment
// @Failure      402      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /payments/free-join [post]
// @Security BearerAuth
func (h *PaymentHandler) HandleFreeJoin(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.FreeJoinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	payment, event, err := h.svc.FreeJoin(ctx.Request.Context(), req.EventID, userID)
	if err != nil {
		renderJoinErr(ctx, "v1.HandleFreeJoin", req.EventID, err)
		return
	}

	response.OKWithMessage(ctx, "joined event", gin.H{
		"payment": payment,
		"event":   event,
	})
}

// HandlePaymentHistory godoc
// @Summary      List the caller's payments
// @Tags         payments
// @Produce      json
// @Success      200 {object}  response.Page
// @Failure      500 {object}  response.Err
// @Router       /payments/history [get]
// @Security BearerAuth
func (h *PaymentHandler) HandlePaymentHistory(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	offset, limit := parsePagination(ctx)

	payments, total, err := h.svc.History(ctx.Request.Context(), userID, offset, limit)
	if err != nil {
		err = fmt.Errorf("v1.HandlePaymentHistory -> h.svc.History -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.OK(ctx, response.NewPage(payments, total, offset, limit))
}

// HandlePaymentDetails godoc
// @Summary      Get a payment by ID
// @Tags         payments
// @Produce      json
// @Param        paymentID  path      int true "payment ID"
// @Success      200 {object}  domain.Payment
// @Failure      403 {object}  response.Err
// @Failure      404 {object}  response.Err
// @Failure      500 {object}  response.Err
// @Router       /payments/{paymentID} [get]
// @Security BearerAuth
func (h *PaymentHandler) HandlePaymentDetails(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	paymentID, respErr := parseIDParam(ctx, "paymentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	payment, err := h.svc.Details(ctx.Request.Context(), paymentID, userID, currentRole(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			response.RenderErr(ctx, response.ErrNotFound("payment", "ID", paymentID))
		case errors.Is(err, service.ErrNotPaymentOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotPaymentOwner))
		default:
			err = fmt.Errorf("v1.HandlePaymentDetails -> h.svc.Details -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.OK(ctx, payment)
}

// HandleWebhook godoc
// @Summary      Stripe webhook receiver
// @Description  Verifies the delivery signature, then always acknowledges.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Success      200 {object}  response.Body
// @Failure      400 {object}  response.Err
// @Router       /payments/webhook [post]
func (h *PaymentHandler) HandleWebhook(ctx *gin.Context) {
	payload, err := ctx.GetRawData()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("reading webhook payload: %w", err)))
		return
	}

	signature := ctx.GetHeader("Stripe-Signature")

	if err := h.svc.HandleWebhook(ctx.Request.Context(), payload, signature); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrWebhookSignature))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"received": true})
}
