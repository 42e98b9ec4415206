package payment

import (
	"context"

	"traceaq/models"
)

// PaymentService is the processor gateway used by checkout and the payment endpoints.
type PaymentService interface {
	LookupCoupon(ctx context.Context, code string) (*models.Coupon, error)
	CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, clientSecret, paymentMethodID string) (*models.PaymentConfirmation, error)
}
