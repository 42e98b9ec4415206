package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderFailed     OrderStatus = "failed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderFailed:
		return true
	}
	return false
}

// Order is a persisted subscription purchase. Amount is in minor currency units.
type Order struct {
	ID                    string      `json:"id" bson:"id" db:"id"`
	UserID                string      `json:"userId" bson:"user_id" db:"user_id"`
	Amount                int64       `json:"amount" bson:"amount" db:"amount"`
	Currency              string      `json:"currency" bson:"currency" db:"currency"`
	Status                OrderStatus `json:"status" bson:"status" db:"status"`
	StripePaymentIntentID string      `json:"stripePaymentIntentId,omitempty" bson:"stripe_payment_intent_id,omitempty" db:"stripe_payment_intent_id"`

	Email    string `json:"email" bson:"email" db:"email"`
	FullName string `json:"fullName" bson:"full_name" db:"full_name"`
	Address  `bson:",inline"`

	IsResearcher bool `json:"isResearcher" bson:"is_researcher" db:"is_researcher"`
	AgreeToTerms bool `json:"agreeToTerms" bson:"agree_to_terms" db:"agree_to_terms"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at" db:"updated_at"`
}

// OrderInput is the boundary shape for creating an order.
type OrderInput struct {
	UserID                string      `json:"userId" validate:"required"`
	Amount                int64       `json:"amount" validate:"gte=0"`
	Currency              string      `json:"currency" validate:"required,len=3"`
	Status                OrderStatus `json:"status" validate:"omitempty,oneof=pending processing completed failed"`
	StripePaymentIntentID string      `json:"stripePaymentIntentId"`
	Email                 string      `json:"email" validate:"required,email"`
	FullName              string      `json:"fullName" validate:"required"`
	AddressLine1          string      `json:"addressLine1" validate:"required"`
	AddressLine2          string      `json:"addressLine2"`
	City                  string      `json:"city" validate:"required"`
	State                 string      `json:"state"`
	ZipCode               string      `json:"zipCode" validate:"required"`
	Country               string      `json:"country" validate:"required"`
	IsResearcher          bool        `json:"isResearcher"`
	AgreeToTerms          bool        `json:"agreeToTerms" validate:"eq=true"`
}
