package handlers

import (
	"errors"
	"net/http"

	"traceaq/models"
	"traceaq/services/checkout"
	"traceaq/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a service error to its HTTP status and the message safe to show.
func statusFor(err error) (int, string) {
	var (
		verr *models.ValidationError
		perr *models.PaymentError
		serr *checkout.StepIncompleteError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "Please correct the highlighted fields"
	case errors.As(err, &serr):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &perr):
		msg := perr.Message
		if msg == "" {
			msg = "Payment was not completed"
		}
		return http.StatusPaymentRequired, msg
	case errors.Is(err, models.ErrAuth):
		return http.StatusUnauthorized, models.ErrAuth.Error()
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, models.ErrForbidden.Error()
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, checkout.ErrSessionNotFound):
		return http.StatusNotFound, checkout.ErrSessionNotFound.Error()
	case errors.Is(err, models.ErrInvalidCode):
		return http.StatusNotFound, models.ErrInvalidCode.Error()
	case errors.Is(err, models.ErrInvalidResetCode):
		return http.StatusBadRequest, models.ErrInvalidResetCode.Error()
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, checkout.ErrActionInProgress),
		errors.Is(err, checkout.ErrStaleResponse),
		errors.Is(err, checkout.ErrNavigationBlocked),
		errors.Is(err, checkout.ErrStepNotOpen),
		errors.Is(err, checkout.ErrPurchaseNotEnabled):
		return http.StatusConflict, err.Error()
	case errors.Is(err, checkout.ErrUnknownField),
		errors.Is(err, checkout.ErrUnknownStep),
		errors.Is(err, checkout.ErrInvalidSeats):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrNetwork):
		return http.StatusServiceUnavailable, models.ErrNetwork.Error()
	}
	return http.StatusInternalServerError, "An unexpected error occurred. Please try again later."
}

// respondError writes err as a JSON error body. Field level details of validation
// and incomplete steps are included.
func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	logger := getLogger(c)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	body := utils.ErrorResponse{Message: msg}
	var verr *models.ValidationError
	var serr *checkout.StepIncompleteError
	switch {
	case errors.As(err, &verr):
		body.Fields = verr.Fields
	case errors.As(err, &serr):
		body.Fields = make(map[string]string, len(serr.Fields))
		for k, v := range serr.Fields {
			body.Fields[string(k)] = v
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// respondView writes a checkout view even when the call failed, so the client can
// render field errors next to the inputs.
func respondView(c *gin.Context, view *models.CheckoutView, err error) {
	if err == nil {
		c.JSON(http.StatusOK, view)
		return
	}
	if view == nil {
		respondError(c, err)
		return
	}
	status, msg := statusFor(err)
	getLogger(c).Debug("Checkout action rejected", zap.Int("status", status), zap.Error(err))
	c.AbortWithStatusJSON(status, gin.H{"message": msg, "checkout": view})
}

// currentUserID returns the id set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	id := c.GetString("userID")
	if id == "" {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated")
		return "", false
	}
	return id, true
}
