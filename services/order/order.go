package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"traceaq/models"
	"traceaq/utils"

	"go.uber.org/zap"
)

// CreateOrder validates the input and stores a new order. A missing status means pending.
func (s *DefaultOrderService) CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.OrderPending
	}
	now := time.Now()
	o := &models.Order{
		ID:                    utils.NewOrderID(),
		UserID:                in.UserID,
		Amount:                in.Amount,
		Currency:              strings.ToLower(in.Currency),
		Status:                status,
		StripePaymentIntentID: in.StripePaymentIntentID,
		Email:                 in.Email,
		FullName:              in.FullName,
		Address: models.Address{
			Line1:      in.AddressLine1,
			Line2:      in.AddressLine2,
			City:       in.City,
			Region:     in.State,
			PostalCode: in.ZipCode,
			Country:    in.Country,
		},
		IsResearcher: in.IsResearcher,
		AgreeToTerms: in.AgreeToTerms,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		s.Logger.Error("CreateOrder: failed to insert", zap.Error(err))
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.Logger.Info("Order created", zap.String("orderID", o.ID), zap.String("status", string(o.Status)))
	return o, nil
}

// GetOrder returns the order only to its owner.
func (s *DefaultOrderService) GetOrder(ctx context.Context, id, userID string) (*models.Order, error) {
	o, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, models.ErrForbidden
	}
	return o, nil
}

func (s *DefaultOrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *DefaultOrderService) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	if !status.Valid() {
		return &models.ValidationError{Fields: map[string]string{"status": "must be one of pending processing completed failed"}}
	}
	return s.Orders.UpdateStatus(ctx, orderID, status)
}
