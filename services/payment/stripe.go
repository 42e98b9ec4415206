package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"traceaq/models"
	"traceaq/services/checkout"
)

// StripePaymentService talks to Stripe through an injected client.
type StripePaymentService struct {
	sc     *client.API
	logger *zap.Logger
}

// NewStripePaymentService builds a client for key. backends may be nil for the live API.
func NewStripePaymentService(key string, backends *stripe.Backends, logger *zap.Logger) *StripePaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	sc := &client.API{}
	sc.Init(key, backends)
	return &StripePaymentService{sc: sc, logger: logger}
}

// classify maps Stripe failures onto the error taxonomy. Missing resources are invalid
// codes; anything else means the processor could not answer.
func classify(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Code == stripe.ErrorCodeResourceMissing {
		return models.ErrInvalidCode
	}
	return fmt.Errorf("%w: %w", models.ErrNetwork, err)
}

// LookupCoupon retrieves a coupon by code.
func (s *StripePaymentService) LookupCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	params := &stripe.CouponParams{}
	params.Context = ctx
	c, err := s.sc.Coupons.Get(code, params)
	if err != nil {
		s.logger.Info("Coupon lookup failed", zap.String("code", code), zap.Error(err))
		return nil, classify(err)
	}
	if !c.Valid {
		return nil, models.ErrInvalidCode
	}
	return &models.Coupon{
		Code:       c.ID,
		Name:       c.Name,
		PercentOff: c.PercentOff,
		AmountOff:  c.AmountOff,
		Currency:   string(c.Currency),
	}, nil
}

func (s *StripePaymentService) customerFor(ctx context.Context, email, userID string) (string, error) {
	list := &stripe.CustomerListParams{Email: stripe.String(email)}
	list.Context = ctx
	list.Limit = stripe.Int64(1)
	iter := s.sc.Customers.List(list)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", err
	}

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	if userID != "" {
		params.AddMetadata("userId", userID)
	}
	c, err := s.sc.Customers.New(params)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// CreatePaymentIntent prices the order from Stripe's own price and coupon, then opens
// an intent for that amount. The returned amount is the one that will be charged.
func (s *StripePaymentService) CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error) {
	if req.Seats == 0 {
		req.Seats = 1
	}
	if !checkout.ValidSeats(req.Seats) {
		return nil, fmt.Errorf("%d seats: %w", req.Seats, checkout.ErrInvalidSeats)
	}
	customerID, err := s.customerFor(ctx, req.Email, req.UserID)
	if err != nil {
		s.logger.Error("Failed to resolve Stripe customer", zap.Error(err))
		return nil, classify(err)
	}

	priceParams := &stripe.PriceParams{}
	priceParams.Context = ctx
	price, err := s.sc.Prices.Get(req.PriceID, priceParams)
	if err != nil {
		s.logger.Error("Failed to read price", zap.String("priceID", req.PriceID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}

	quote := models.PricingQuote{
		UnitPrice: price.UnitAmount,
		Seats:     req.Seats,
		Currency:  string(price.Currency),
	}
	if req.PromotionCode != "" {
		d, err := checkout.LookupDiscount(ctx, s, req.PromotionCode, quote.Currency)
		if err != nil {
			return nil, err
		}
		quote.Discount = d
	}
	totals := checkout.Totals(quote)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(totals.Total),
		Currency: stripe.String(quote.Currency),
		Customer: stripe.String(customerID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.AddMetadata("userId", req.UserID)
	params.AddMetadata("priceId", req.PriceID)
	params.AddMetadata("seats", strconv.Itoa(req.Seats))
	if req.PromotionCode != "" {
		params.AddMetadata("couponCode", req.PromotionCode)
	}

	pi, err := s.sc.PaymentIntents.New(params)
	if err != nil {
		s.logger.Error("Failed to create payment intent", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}
	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// IntentIDFromSecret extracts the intent id from a client secret ("pi_x_secret_y").
func IntentIDFromSecret(secret string) (string, bool) {
	i := strings.Index(secret, "_secret_")
	if i <= 0 {
		return "", false
	}
	return secret[:i], true
}

// StatusFromIntent reduces Stripe's intent states to the three outcomes checkout knows.
func StatusFromIntent(status stripe.PaymentIntentStatus) models.PaymentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return models.PaymentSucceeded
	case stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresConfirmation:
		return models.PaymentRequiresAction
	}
	return models.PaymentFailed
}

// ConfirmPayment confirms an intent with a saved payment method. Card declines are an
// answer, not an error: they come back as a failed confirmation with Stripe's message.
func (s *StripePaymentService) ConfirmPayment(ctx context.Context, clientSecret, paymentMethodID string) (*models.PaymentConfirmation, error) {
	id, ok := IntentIDFromSecret(clientSecret)
	if !ok {
		return nil, &models.ValidationError{Fields: map[string]string{"clientSecret": "malformed client secret"}}
	}
	params := &stripe.PaymentIntentConfirmParams{PaymentMethod: stripe.String(paymentMethodID)}
	params.Context = ctx

	pi, err := s.sc.PaymentIntents.Confirm(id, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Type == stripe.ErrorTypeCard {
			s.logger.Info("Card declined", zap.String("paymentIntentID", id), zap.String("declineCode", string(serr.DeclineCode)))
			return &models.PaymentConfirmation{PaymentIntentID: id, Status: models.PaymentFailed, Message: serr.Msg}, nil
		}
		s.logger.Error("Failed to confirm payment", zap.String("paymentIntentID", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}

	conf := &models.PaymentConfirmation{PaymentIntentID: pi.ID, Status: StatusFromIntent(pi.Status)}
	if conf.Status == models.PaymentFailed && pi.LastPaymentError != nil {
		conf.Message = pi.LastPaymentError.Msg
	}
	return conf, nil
}
