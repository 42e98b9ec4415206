package order

import (
	"context"
	"fmt"
	"time"

	"traceaq/models"
	"traceaq/utils"

	"go.uber.org/zap"
)

// CreatePaymentMethod saves a card reference. The first saved method becomes the default.
func (s *DefaultOrderService) CreatePaymentMethod(ctx context.Context, in models.PaymentMethodInput) (*models.PaymentMethod, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	existing, err := s.PaymentMethods.ListByUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	pm := &models.PaymentMethod{
		ID:                    utils.NewPaymentMethodID(),
		UserID:                in.UserID,
		StripePaymentMethodID: in.StripePaymentMethodID,
		Last4:                 in.Last4,
		Brand:                 in.Brand,
		ExpiryMonth:           in.ExpiryMonth,
		ExpiryYear:            in.ExpiryYear,
		CreatedAt:             time.Now(),
	}
	makeDefault := in.IsDefault || len(existing) == 0
	if err := s.PaymentMethods.Create(ctx, pm); err != nil {
		return nil, fmt.Errorf("failed to save payment method: %w", err)
	}
	if makeDefault {
		if err := s.PaymentMethods.SetDefault(ctx, in.UserID, pm.ID); err != nil {
			return nil, fmt.Errorf("failed to set default payment method: %w", err)
		}
		pm.IsDefault = true
	}
	s.Logger.Info("Payment method saved", zap.String("paymentMethodID", pm.ID), zap.Bool("default", pm.IsDefault))
	return pm, nil
}

func (s *DefaultOrderService) ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	methods, err := s.PaymentMethods.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	if methods == nil {
		methods = []models.PaymentMethod{}
	}
	return methods, nil
}

func (s *DefaultOrderService) DeletePaymentMethod(ctx context.Context, userID, id string) error {
	return s.PaymentMethods.Delete(ctx, userID, id)
}

func (s *DefaultOrderService) SetDefaultPaymentMethod(ctx context.Context, userID, id string) error {
	return s.PaymentMethods.SetDefault(ctx, userID, id)
}
