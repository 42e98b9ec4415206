package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"traceaq/models"
	"traceaq/services/validation"
)

// Pricing is the list price every session starts from.
type Pricing struct {
	PriceID   string
	UnitPrice int64
	Currency  string
}

// DefaultCheckoutService implements CheckoutService on top of a SessionStore.
type DefaultCheckoutService struct {
	Store    SessionStore
	Identity Identity
	Payments Payments
	Orders   Orders
	Signal   PurchaseSignal
	Pricing  Pricing
	Logger   *zap.Logger
}

func NewCheckoutService(store SessionStore, identity Identity, payments Payments, orders Orders, signal PurchaseSignal, pricing Pricing, logger *zap.Logger) *DefaultCheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultCheckoutService{
		Store:    store,
		Identity: identity,
		Payments: payments,
		Orders:   orders,
		Signal:   signal,
		Pricing:  pricing,
		Logger:   logger,
	}
}

type loaded struct {
	session  *Session
	checkout *Checkout
	password string
}

func (s *DefaultCheckoutService) load(ctx context.Context, id string) (*loaded, error) {
	sess, err := s.Store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	w, err := RestoreWizard(sess.Wizard)
	if err != nil {
		return nil, fmt.Errorf("corrupt checkout session %s: %w", id, err)
	}
	return &loaded{session: sess, checkout: NewCheckout(w, sess.Quote, s.Payments)}, nil
}

func (s *DefaultCheckoutService) save(ctx context.Context, l *loaded) error {
	l.session.Wizard = l.checkout.Wizard.Snapshot()
	l.session.Quote = l.checkout.Quote()
	return s.Store.Save(ctx, l.session)
}

func (s *DefaultCheckoutService) view(l *loaded) *models.CheckoutView {
	w := l.checkout.Wizard
	v := &models.CheckoutView{
		SessionID: l.session.ID,
		State:     w.State(),
		Steps:     w.View(),
		Pricing:   l.checkout.Breakdown(),
		UserID:    l.session.UserID,
		ExpiresAt: l.session.ExpiresAt,
	}
	if v.State.ActiveStep == models.StepSignUp {
		v.PasswordRequirements = validation.PasswordRequirements(l.password)
	}
	return v
}

// apply writes an update into the open step. The country goes first so that a region
// sent in the same batch survives the country switch. Once the account exists the
// sign up step no longer takes passwords.
func (l *loaded) apply(req FieldUpdate) error {
	w := l.checkout.Wizard
	step := req.Step
	if step == "" {
		step = w.State().ActiveStep
	}
	if step == models.StepSignUp && l.session.UserID != "" {
		for _, name := range []models.FieldName{models.FieldPassword, models.FieldConfirmPassword} {
			if req.Values[name] != "" {
				return &models.ValidationError{Fields: map[string]string{
					string(name): "The account password is already set and cannot be changed here",
				}}
			}
		}
	}
	names := make([]models.FieldName, 0, len(req.Values))
	for name := range req.Values {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == models.FieldCountry || names[j] == models.FieldCountry {
			return names[i] == models.FieldCountry && names[j] != models.FieldCountry
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		if err := w.SetField(step, name, req.Values[name]); err != nil {
			return err
		}
	}
	for _, name := range req.Blur {
		if err := w.BlurField(step, name); err != nil {
			return err
		}
	}
	if pw, ok := req.Values[models.FieldPassword]; ok {
		l.password = pw
	}
	return nil
}

func (s *DefaultCheckoutService) StartSession(ctx context.Context) (*models.CheckoutView, error) {
	l := &loaded{
		session: &Session{ID: uuid.New().String()},
		checkout: NewCheckout(NewWizard(), models.PricingQuote{
			UnitPrice: s.Pricing.UnitPrice,
			Seats:     1,
			Currency:  s.Pricing.Currency,
		}, s.Payments),
	}
	if err := s.save(ctx, l); err != nil {
		return nil, err
	}
	s.Logger.Info("Checkout session started", zap.String("sessionID", l.session.ID))
	return s.view(l), nil
}

func (s *DefaultCheckoutService) GetSession(ctx context.Context, id string) (*models.CheckoutView, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(l), nil
}

// UpdateFields applies edits and blur events to the open step.
func (s *DefaultCheckoutService) UpdateFields(ctx context.Context, id string, req FieldUpdate) (*models.CheckoutView, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.apply(req); err != nil {
		return nil, err
	}
	if err := s.save(ctx, l); err != nil {
		return nil, err
	}
	return s.view(l), nil
}

func (s *DefaultCheckoutService) lock(ctx context.Context, id string, action Action) (func(), error) {
	ok, err := s.Store.Lock(ctx, id, action)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", action, ErrActionInProgress)
	}
	return func() {
		if err := s.Store.Unlock(context.Background(), id, action); err != nil {
			s.Logger.Warn("Failed to clear processing marker", zap.String("sessionID", id), zap.String("action", string(action)), zap.Error(err))
		}
	}, nil
}

// Advance applies the request's values and saves the open step. Passwords only ever
// arrive with this request. When the sign up step is saved for the first time the
// account is created; if that fails nothing is stored. Edits that landed while the
// account was being created are kept: the session is reloaded and the request is
// replayed on top of it.
func (s *DefaultCheckoutService) Advance(ctx context.Context, id string, req FieldUpdate) (*models.CheckoutView, error) {
	unlock, err := s.lock(ctx, id, ActionAdvance)
	if err != nil {
		return nil, err
	}
	defer unlock()

	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket := Ticket{
		Action:     ActionAdvance,
		Step:       l.checkout.Wizard.State().ActiveStep,
		Generation: l.checkout.Wizard.Generation(),
	}
	step := ticket.Step
	if err := l.apply(req); err != nil {
		return nil, err
	}
	if !l.checkout.Wizard.Advance() {
		if err := s.save(ctx, l); err != nil {
			return nil, err
		}
		return s.view(l), &StepIncompleteError{Step: step, Fields: l.checkout.Wizard.Form(step).Invalid()}
	}

	if step == models.StepSignUp && l.session.UserID == "" {
		details := SignUpDetailsFrom(l.checkout.Wizard.Form(step))
		userID, err := s.Identity.SignUp(ctx, strings.TrimSpace(details.Email), details.Password, models.UserProfile{
			FirstName:      strings.TrimSpace(details.FirstName),
			LastName:       strings.TrimSpace(details.LastName),
			MarketingOptIn: details.AgreeMarketing,
		})
		if err != nil {
			s.Logger.Warn("Sign up failed during checkout", zap.String("sessionID", id), zap.Error(err))
			return nil, err
		}
		if l, err = s.replayAdvance(ctx, id, ticket, req, userID); err != nil {
			return nil, err
		}
	}
	l.checkout.Wizard.Form(step).ClearSensitive()
	l.password = ""

	if err := s.save(ctx, l); err != nil {
		return nil, err
	}
	s.Logger.Info("Checkout step saved", zap.String("sessionID", id), zap.String("step", string(step)))
	return s.view(l), nil
}

// replayAdvance reloads the session after the account was created and advances it
// again. The new account is recorded even when the wizard moved on or the step no
// longer validates.
func (s *DefaultCheckoutService) replayAdvance(ctx context.Context, id string, ticket Ticket, req FieldUpdate, userID string) (*loaded, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.checkout.Wizard.Current(ticket) {
		l.session.UserID = userID
		if err := s.save(ctx, l); err != nil {
			return nil, err
		}
		s.Logger.Info("Checkout moved on during sign up", zap.String("sessionID", id))
		return nil, ErrStaleResponse
	}
	if err := l.apply(req); err != nil {
		return nil, err
	}
	l.session.UserID = userID
	if !l.checkout.Wizard.Advance() {
		form := l.checkout.Wizard.Form(ticket.Step)
		invalid := form.Invalid()
		form.ClearSensitive()
		if err := s.save(ctx, l); err != nil {
			return nil, err
		}
		return nil, &StepIncompleteError{Step: ticket.Step, Fields: invalid}
	}
	return l, nil
}

func (s *DefaultCheckoutService) Navigate(ctx context.Context, id string, target models.Step) (*models.CheckoutView, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%s: %w", target, ErrUnknownStep)
	}
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.checkout.Wizard.Navigate(target) {
		return s.view(l), ErrNavigationBlocked
	}
	if err := s.save(ctx, l); err != nil {
		return nil, err
	}
	return s.view(l), nil
}

// CancelEdit reverts the open step to what was last saved.
func (s *DefaultCheckoutService) CancelEdit(ctx context.Context, id string) (*models.CheckoutView, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	l.checkout.Wizard.Cancel()
	if err := s.save(ctx, l); err != nil {
		return nil, err
	}
	return s.view(l), nil
}

// ApplyDiscount resolves the code with the processor and stores it on the session.
// The answer is dropped with ErrStaleResponse when the wizard moved in the meantime.
func (s *DefaultCheckoutService) ApplyDiscount(ctx context.Context, id, code string) (*models.CheckoutView, error) {
	unlock, err := s.lock(ctx, id, ActionDiscount)
	if err != nil {
		return nil, err
	}
	defer unlock()

	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket := Ticket{
		Action:     ActionDiscount,
		Step:       l.checkout.Wizard.State().ActiveStep,
		Generation: l.checkout.Wizard.Generation(),
	}

	d, err := LookupDiscount(ctx, s.Payments, code, l.session.Quote.Currency)
	if err != nil {
		s.Logger.Info("Discount code rejected", zap.String("sessionID", id), zap.Error(err))
		return nil, err
	}

	// Reload: other requests may have moved the wizard while the processor answered.
	l, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.checkout.Wizard.Current(ticket) {
		s.Logger.Info("Discarding stale discount response", zap.String("sessionID", id))
		return nil, ErrStaleResponse
	}
	l.checkout.mu.Lock()
	l.checkout.quote.Discount = d
	l.checkout.mu.Unlock()
	if err := s.save(ctx, l); err != nil {
		return nil, err
	}
	return s.view(l), nil
}

func (s *DefaultCheckoutService) RemoveDiscount(ctx context.Context, id string) (*models.CheckoutView, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	l.checkout.ClearDiscount()
	if err := s.save(ctx, l); err != nil {
		return nil, err
	}
	return s.view(l), nil
}

func (s *DefaultCheckoutService) SetSeats(ctx context.Context, id string, seats int) (*models.CheckoutView, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.checkout.SetSeats(seats); err != nil {
		return nil, err
	}
	if err := s.save(ctx, l); err != nil {
		return nil, err
	}
	return s.view(l), nil
}

func orderStatusFor(p models.PaymentStatus) models.OrderStatus {
	switch p {
	case models.PaymentSucceeded:
		return models.OrderCompleted
	case models.PaymentRequiresAction:
		return models.OrderProcessing
	}
	return models.OrderFailed
}

// Purchase hands the saved steps to the processor: it opens a payment intent, records a
// pending order for the processor's amount, confirms the payment and settles the order.
// Declines come back as *models.PaymentError and keep the session for another attempt.
func (s *DefaultCheckoutService) Purchase(ctx context.Context, id string) (*models.Receipt, error) {
	unlock, err := s.lock(ctx, id, ActionPurchase)
	if err != nil {
		return nil, err
	}
	defer unlock()

	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	w := l.checkout.Wizard
	if !w.PurchaseEnabled() || l.session.UserID == "" {
		return nil, ErrPurchaseNotEnabled
	}

	signup := SavedSignUpDetails(w.Form(models.StepSignUp))
	addr := SavedAddress(w.Form(models.StepAddress))
	pay := SavedPaymentDetails(w.Form(models.StepPayment))
	quote := l.checkout.Quote()
	email := strings.TrimSpace(signup.Email)
	logger := s.Logger.With(zap.String("sessionID", id), zap.String("userID", l.session.UserID))

	req := models.PaymentIntentRequest{
		PriceID: s.Pricing.PriceID,
		Seats:   quote.Seats,
		Email:   email,
		UserID:  l.session.UserID,
	}
	if quote.Discount != nil {
		req.PromotionCode = quote.Discount.Code
	}
	intent, err := s.Payments.CreatePaymentIntent(ctx, req)
	if err != nil {
		logger.Error("Failed to create payment intent", zap.Error(err))
		return nil, err
	}

	order, err := s.Orders.CreateOrder(ctx, models.OrderInput{
		UserID:                l.session.UserID,
		Amount:                intent.Amount,
		Currency:              intent.Currency,
		Status:                models.OrderPending,
		StripePaymentIntentID: intent.ID,
		Email:                 email,
		FullName:              signup.DisplayName(),
		AddressLine1:          addr.Line1,
		AddressLine2:          addr.Line2,
		City:                  addr.City,
		State:                 addr.Region,
		ZipCode:               addr.PostalCode,
		Country:               addr.Country,
		IsResearcher:          validation.IsResearcherEmail(email),
		AgreeToTerms:          signup.AgreeTerms,
	})
	if err != nil {
		logger.Error("Failed to create order", zap.Error(err))
		return nil, err
	}

	conf, err := s.Payments.ConfirmPayment(ctx, intent.ClientSecret, pay.PaymentMethodID)
	if err != nil {
		// The outcome is unknown; the order stays pending for reconciliation.
		logger.Error("Payment confirmation failed", zap.String("orderID", order.ID), zap.Error(err))
		return nil, err
	}

	status := orderStatusFor(conf.Status)
	if err := s.Orders.UpdateOrderStatus(ctx, order.ID, status); err != nil {
		logger.Error("Failed to update order status", zap.String("orderID", order.ID), zap.Error(err))
		return nil, err
	}
	order.Status = status

	if conf.Status != models.PaymentSucceeded {
		logger.Info("Payment not completed", zap.String("orderID", order.ID), zap.String("status", string(conf.Status)))
		perr := &models.PaymentError{Status: conf.Status, Message: conf.Message}
		if conf.Status == models.PaymentRequiresAction {
			perr.ClientSecret = intent.ClientSecret
		}
		return nil, perr
	}

	if s.Signal != nil {
		if err := s.Signal.SubscriptionConfirmed(ctx, order); err != nil {
			logger.Warn("Failed to queue subscription email", zap.String("orderID", order.ID), zap.Error(err))
		}
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		logger.Warn("Failed to end checkout session", zap.Error(err))
	}
	logger.Info("Purchase completed", zap.String("orderID", order.ID), zap.Int64("amount", order.Amount))

	return &models.Receipt{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Status:   order.Status,
		Payment:  conf.Status,
	}, nil
}

func (s *DefaultCheckoutService) EndSession(ctx context.Context, id string) error {
	if _, err := s.Store.Load(ctx, id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return s.Store.Delete(ctx, id)
}
