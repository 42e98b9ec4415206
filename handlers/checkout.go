package handlers

import (
	"errors"
	"net/http"

	"traceaq/models"
	"traceaq/services/checkout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	Service checkout.CheckoutService
	Logger  *zap.Logger
}

func NewCheckoutHandler(svc checkout.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{Service: svc, Logger: logger}
}

// StartSession opens a new checkout session.
func (h *CheckoutHandler) StartSession(c *gin.Context) {
	view, err := h.Service.StartSession(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("Checkout session started", zap.String("sessionID", view.SessionID))
	c.JSON(http.StatusCreated, view)
}

func (h *CheckoutHandler) GetSession(c *gin.Context) {
	view, err := h.Service.GetSession(c.Request.Context(), c.Param("id"))
	respondView(c, view, err)
}

// UpdateFields applies edits and blurs to the open step.
func (h *CheckoutHandler) UpdateFields(c *gin.Context) {
	var req checkout.FieldUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &models.ValidationError{Fields: map[string]string{"body": "invalid JSON"}})
		return
	}
	view, err := h.Service.UpdateFields(c.Request.Context(), c.Param("id"), req)
	respondView(c, view, err)
}

// Advance saves the open step. The body may carry final field values, which is
// how passwords reach the server.
func (h *CheckoutHandler) Advance(c *gin.Context) {
	var req checkout.FieldUpdate
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, &models.ValidationError{Fields: map[string]string{"body": "invalid JSON"}})
			return
		}
	}
	view, err := h.Service.Advance(c.Request.Context(), c.Param("id"), req)
	respondView(c, view, err)
}

func (h *CheckoutHandler) Navigate(c *gin.Context) {
	var req struct {
		Step models.Step `json:"step" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &models.ValidationError{Fields: map[string]string{"step": "is required"}})
		return
	}
	view, err := h.Service.Navigate(c.Request.Context(), c.Param("id"), req.Step)
	respondView(c, view, err)
}

func (h *CheckoutHandler) CancelEdit(c *gin.Context) {
	view, err := h.Service.CancelEdit(c.Request.Context(), c.Param("id"))
	respondView(c, view, err)
}

func (h *CheckoutHandler) ApplyDiscount(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &models.ValidationError{Fields: map[string]string{"code": "is required"}})
		return
	}
	view, err := h.Service.ApplyDiscount(c.Request.Context(), c.Param("id"), req.Code)
	respondView(c, view, err)
}

func (h *CheckoutHandler) RemoveDiscount(c *gin.Context) {
	view, err := h.Service.RemoveDiscount(c.Request.Context(), c.Param("id"))
	respondView(c, view, err)
}

func (h *CheckoutHandler) SetSeats(c *gin.Context) {
	var req struct {
		Seats int `json:"seats" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &models.ValidationError{Fields: map[string]string{"seats": "is required"}})
		return
	}
	if !checkout.ValidSeats(req.Seats) {
		respondError(c, checkout.ErrInvalidSeats)
		return
	}
	view, err := h.Service.SetSeats(c.Request.Context(), c.Param("id"), req.Seats)
	respondView(c, view, err)
}

// Purchase hands the saved checkout to the processor. A confirmation that needs
// an extra customer step answers 402 with the client secret to finish it with.
func (h *CheckoutHandler) Purchase(c *gin.Context) {
	logger := getLogger(c)
	receipt, err := h.Service.Purchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		var perr *models.PaymentError
		if errors.As(err, &perr) {
			logger.Info("Purchase not completed", zap.String("status", string(perr.Status)))
			status, msg := statusFor(err)
			c.AbortWithStatusJSON(status, gin.H{
				"message":      msg,
				"status":       perr.Status,
				"clientSecret": perr.ClientSecret,
			})
			return
		}
		respondError(c, err)
		return
	}
	logger.Info("Purchase completed", zap.String("orderID", receipt.OrderID))
	c.JSON(http.StatusOK, receipt)
}

func (h *CheckoutHandler) EndSession(c *gin.Context) {
	if err := h.Service.EndSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
