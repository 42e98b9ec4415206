package handlers

import (
	"traceaq/middleware"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Auth middleware.Authenticator

	// Checkout endpoints
	StartCheckoutSession   gin.HandlerFunc
	GetCheckoutSession     gin.HandlerFunc
	UpdateCheckoutFields   gin.HandlerFunc
	AdvanceCheckout        gin.HandlerFunc
	NavigateCheckout       gin.HandlerFunc
	CancelCheckoutEdit     gin.HandlerFunc
	ApplyCheckoutDiscount  gin.HandlerFunc
	RemoveCheckoutDiscount gin.HandlerFunc
	SetCheckoutSeats       gin.HandlerFunc
	PurchaseCheckout       gin.HandlerFunc
	EndCheckoutSession     gin.HandlerFunc

	// Order endpoints
	CreateOrder gin.HandlerFunc
	GetOrder    gin.HandlerFunc
	ListOrders  gin.HandlerFunc

	// Payment endpoints
	CreatePaymentIntent gin.HandlerFunc
	ConfirmPayment      gin.HandlerFunc
	VerifyCoupon        gin.HandlerFunc

	// Payment method endpoints
	ListPaymentMethods      gin.HandlerFunc
	CreatePaymentMethod     gin.HandlerFunc
	SetDefaultPaymentMethod gin.HandlerFunc
	DeletePaymentMethod     gin.HandlerFunc

	// Auth endpoints
	CurrentUser     gin.HandlerFunc
	Login           gin.HandlerFunc
	Logout          gin.HandlerFunc
	SendResetCode   gin.HandlerFunc
	VerifyResetCode gin.HandlerFunc

	Health gin.HandlerFunc
}

// NewHandlerBundle wires the handler methods into a bundle.
func NewHandlerBundle(auth middleware.Authenticator, co *CheckoutHandler, orders *OrderHandler, payments *PaymentHandler, authH *AuthHandler, health *HealthHandler) *HandlerBundle {
	return &HandlerBundle{
		Auth: auth,

		StartCheckoutSession:   co.StartSession,
		GetCheckoutSession:     co.GetSession,
		UpdateCheckoutFields:   co.UpdateFields,
		AdvanceCheckout:        co.Advance,
		NavigateCheckout:       co.Navigate,
		CancelCheckoutEdit:     co.CancelEdit,
		ApplyCheckoutDiscount:  co.ApplyDiscount,
		RemoveCheckoutDiscount: co.RemoveDiscount,
		SetCheckoutSeats:       co.SetSeats,
		PurchaseCheckout:       co.Purchase,
		EndCheckoutSession:     co.EndSession,

		CreateOrder: orders.CreateOrder,
		GetOrder:    orders.GetOrder,
		ListOrders:  orders.ListOrders,

		CreatePaymentIntent: payments.CreatePaymentIntent,
		ConfirmPayment:      payments.ConfirmPayment,
		VerifyCoupon:        payments.VerifyCoupon,

		ListPaymentMethods:      orders.ListPaymentMethods,
		CreatePaymentMethod:     orders.CreatePaymentMethod,
		SetDefaultPaymentMethod: orders.SetDefaultPaymentMethod,
		DeletePaymentMethod:     orders.DeletePaymentMethod,

		CurrentUser:     authH.CurrentUser,
		Login:           authH.Login,
		Logout:          authH.Logout,
		SendResetCode:   authH.SendResetCode,
		VerifyResetCode: authH.VerifyResetCode,

		Health: health.Health,
	}
}
