package order

import (
	"context"

	orderRepo "traceaq/database/repository/order"
	paymentMethodRepo "traceaq/database/repository/paymentmethod"
	"traceaq/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id, userID string) (*models.Order, error)
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error

	CreatePaymentMethod(ctx context.Context, in models.PaymentMethodInput) (*models.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, userID, id string) error
	SetDefaultPaymentMethod(ctx context.Context, userID, id string) error
}

// DefaultOrderService is the production implementation.
type DefaultOrderService struct {
	Orders         orderRepo.OrderRepository
	PaymentMethods paymentMethodRepo.PaymentMethodRepository
	Logger         *zap.Logger
	validate       *validator.Validate
}

func NewOrderService(orders orderRepo.OrderRepository, methods paymentMethodRepo.PaymentMethodRepository, logger *zap.Logger) *DefaultOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultOrderService{
		Orders:         orders,
		PaymentMethods: methods,
		Logger:         logger,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}
