package models

import "time"

// PaymentMethod is a saved card reference. Card data itself stays with the processor.
type PaymentMethod struct {
	ID                    string    `json:"id" bson:"id" db:"id"`
	UserID                string    `json:"userId" bson:"user_id" db:"user_id"`
	StripePaymentMethodID string    `json:"stripePaymentMethodId" bson:"stripe_payment_method_id" db:"stripe_payment_method_id"`
	Last4                 string    `json:"last4" bson:"last4" db:"last4"`
	Brand                 string    `json:"brand" bson:"brand" db:"brand"`
	ExpiryMonth           int       `json:"expiryMonth" bson:"expiry_month" db:"expiry_month"`
	ExpiryYear            int       `json:"expiryYear" bson:"expiry_year" db:"expiry_year"`
	IsDefault             bool      `json:"isDefault" bson:"is_default" db:"is_default"`
	CreatedAt             time.Time `json:"createdAt" bson:"created_at" db:"created_at"`
}

// PaymentMethodInput is the boundary shape for saving a payment method.
type PaymentMethodInput struct {
	UserID                string `json:"userId" validate:"required"`
	StripePaymentMethodID string `json:"stripePaymentMethodId" validate:"required,startswith=pm_"`
	Last4                 string `json:"last4" validate:"required,len=4,numeric"`
	Brand                 string `json:"brand" validate:"required"`
	ExpiryMonth           int    `json:"expiryMonth" validate:"min=1,max=12"`
	ExpiryYear            int    `json:"expiryYear" validate:"min=2000"`
	IsDefault             bool   `json:"isDefault"`
}

// PaymentStatus is the outcome of a payment confirmation.
type PaymentStatus string

const (
	PaymentSucceeded      PaymentStatus = "succeeded"
	PaymentRequiresAction PaymentStatus = "requires_action"
	PaymentFailed         PaymentStatus = "failed"
)

// Coupon is a discount descriptor as returned by the payment processor.
type Coupon struct {
	Code       string  `json:"code"`
	Name       string  `json:"name,omitempty"`
	PercentOff float64 `json:"percentOff,omitempty"`
	AmountOff  int64   `json:"amountOff,omitempty"`
	Currency   string  `json:"currency,omitempty"`
}

// PaymentIntentRequest carries what the processor needs to open a charge attempt.
type PaymentIntentRequest struct {
	PriceID       string
	PromotionCode string
	Seats         int
	Email         string
	UserID        string
}

// PaymentIntent is an in-progress charge attempt. Amount is authoritative.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// PaymentConfirmation is the processor's answer to a confirmation.
type PaymentConfirmation struct {
	PaymentIntentID string        `json:"paymentIntentId"`
	Status          PaymentStatus `json:"status"`
	Message         string        `json:"message,omitempty"`
}

// Receipt is returned to the client once the purchase hand-off finished.
type Receipt struct {
	OrderID  string        `json:"orderId"`
	Amount   int64         `json:"amount"`
	Currency string        `json:"currency"`
	Status   OrderStatus   `json:"status"`
	Payment  PaymentStatus `json:"paymentStatus"`
}
