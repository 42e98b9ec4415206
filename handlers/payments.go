package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"traceaq/models"
	"traceaq/services/checkout"
	"traceaq/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	Service payment.PaymentService
	// DefaultPriceID is used when a request names no price.
	DefaultPriceID string
	Logger         *zap.Logger
}

func NewPaymentHandler(svc payment.PaymentService, defaultPriceID string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Service: svc, DefaultPriceID: defaultPriceID, Logger: logger}
}

// CreatePaymentIntent opens a charge attempt for the signed in user.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		PriceID    string `json:"priceId"`
		CouponCode string `json:"couponCode"`
		Seats      int    `json:"seats"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &models.ValidationError{Fields: map[string]string{"body": "invalid JSON"}})
		return
	}
	if req.PriceID == "" {
		req.PriceID = h.DefaultPriceID
	}
	if req.Seats == 0 {
		req.Seats = 1
	}
	fields := map[string]string{}
	if req.PriceID == "" {
		fields["priceId"] = "is required"
	}
	if !checkout.ValidSeats(req.Seats) {
		fields["seats"] = fmt.Sprintf("must be between 1 and %d", checkout.MaxSeats)
	}
	if len(fields) > 0 {
		respondError(c, &models.ValidationError{Fields: fields})
		return
	}

	intent, err := h.Service.CreatePaymentIntent(c.Request.Context(), models.PaymentIntentRequest{
		PriceID:       req.PriceID,
		PromotionCode: strings.TrimSpace(req.CouponCode),
		Seats:         req.Seats,
		Email:         c.GetString("email"),
		UserID:        userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("Payment intent created", zap.String("paymentIntentID", intent.ID), zap.Int64("amount", intent.Amount))
	c.JSON(http.StatusOK, intent)
}

// ConfirmPayment confirms an intent with a payment method reference.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	var req struct {
		ClientSecret    string `json:"clientSecret" binding:"required"`
		PaymentMethodID string `json:"paymentMethodId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &models.ValidationError{Fields: map[string]string{
			"clientSecret":    "is required",
			"paymentMethodId": "is required",
		}})
		return
	}
	conf, err := h.Service.ConfirmPayment(c.Request.Context(), req.ClientSecret, req.PaymentMethodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}

// VerifyCoupon reports whether a discount code exists and what it is worth.
func (h *PaymentHandler) VerifyCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		respondError(c, &models.ValidationError{Fields: map[string]string{"code": "is required"}})
		return
	}
	coupon, err := h.Service.LookupCoupon(c.Request.Context(), strings.TrimSpace(req.Code))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "coupon": coupon})
}
