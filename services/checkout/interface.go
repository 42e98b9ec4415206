package checkout

import (
	"context"
	"errors"

	"traceaq/models"
)

// CouponLookup resolves discount codes. Unknown codes must be reported as models.ErrInvalidCode.
type CouponLookup interface {
	LookupCoupon(ctx context.Context, code string) (*models.Coupon, error)
}

// Identity creates the account captured by the sign up step.
type Identity interface {
	SignUp(ctx context.Context, email, password string, profile models.UserProfile) (string, error)
}

// Payments is the processor side of the purchase hand-off.
type Payments interface {
	CouponLookup
	CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, clientSecret, paymentMethodID string) (*models.PaymentConfirmation, error)
}

// Orders persists purchases.
type Orders interface {
	CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error
}

// PurchaseSignal is notified once an order completed.
type PurchaseSignal interface {
	SubscriptionConfirmed(ctx context.Context, order *models.Order) error
}

// SessionStore keeps checkout sessions between requests.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// Lock sets the processing marker of an action. It returns false when already set.
	Lock(ctx context.Context, id string, action Action) (bool, error)
	Unlock(ctx context.Context, id string, action Action) error
}

// CheckoutService drives checkout sessions for the HTTP layer.
type CheckoutService interface {
	StartSession(ctx context.Context) (*models.CheckoutView, error)
	GetSession(ctx context.Context, id string) (*models.CheckoutView, error)
	UpdateFields(ctx context.Context, id string, req FieldUpdate) (*models.CheckoutView, error)
	Advance(ctx context.Context, id string, req FieldUpdate) (*models.CheckoutView, error)
	Navigate(ctx context.Context, id string, target models.Step) (*models.CheckoutView, error)
	CancelEdit(ctx context.Context, id string) (*models.CheckoutView, error)
	ApplyDiscount(ctx context.Context, id, code string) (*models.CheckoutView, error)
	RemoveDiscount(ctx context.Context, id string) (*models.CheckoutView, error)
	SetSeats(ctx context.Context, id string, seats int) (*models.CheckoutView, error)
	Purchase(ctx context.Context, id string) (*models.Receipt, error)
	EndSession(ctx context.Context, id string) error
}

// FieldUpdate is a batch of edits to the open step. Blur lists fields the user left.
type FieldUpdate struct {
	Step   models.Step                 `json:"step"`
	Values map[models.FieldName]string `json:"values"`
	Blur   []models.FieldName          `json:"blur"`
}

func isInvalidCode(err error) bool {
	return errors.Is(err, models.ErrInvalidCode)
}
