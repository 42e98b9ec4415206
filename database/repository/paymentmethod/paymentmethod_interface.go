package paymentMethodRepo

import (
	"context"

	"traceaq/models"
)

// PaymentMethodRepository defines methods for saved payment method access.
// Every lookup is scoped to the owning user.
type PaymentMethodRepository interface {
	Create(ctx context.Context, pm *models.PaymentMethod) error
	// ListByUser returns the default method first, then newest first.
	ListByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	Delete(ctx context.Context, userID, id string) error
	// SetDefault clears every default of the user, then flags id.
	SetDefault(ctx context.Context, userID, id string) error
}
