package handlers

import (
	"net/http"

	"traceaq/models"
	"traceaq/services/order"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Service order.OrderService
	Logger  *zap.Logger
}

func NewOrderHandler(svc order.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{Service: svc, Logger: logger}
}

// CreateOrder stores an order for the signed in user. The user id of the body is ignored.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var in models.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, &models.ValidationError{Fields: map[string]string{"body": "invalid JSON"}})
		return
	}
	in.UserID = userID
	o, err := h.Service.CreateOrder(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	o, err := h.Service.GetOrder(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orders, err := h.Service.ListOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListPaymentMethods(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	methods, err := h.Service.ListPaymentMethods(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, methods)
}

func (h *OrderHandler) CreatePaymentMethod(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var in models.PaymentMethodInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, &models.ValidationError{Fields: map[string]string{"body": "invalid JSON"}})
		return
	}
	in.UserID = userID
	pm, err := h.Service.CreatePaymentMethod(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pm)
}

func (h *OrderHandler) SetDefaultPaymentMethod(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.Service.SetDefaultPaymentMethod(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) DeletePaymentMethod(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.Service.DeletePaymentMethod(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
