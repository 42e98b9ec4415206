package orderRepo

import (
	"context"

	"traceaq/models"
)

// OrderRepository defines methods for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	// GetByID returns models.ErrNotFound when no order matches.
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
}
