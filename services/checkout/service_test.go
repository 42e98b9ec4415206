package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"traceaq/models"
)

// memoryStore mimics RedisSessionStore, JSON round trip included.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	locks    map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: map[string][]byte{}, locks: map[string]bool{}}
}

func (m *memoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memoryStore) Save(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = data
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memoryStore) Lock(_ context.Context, id string, action Action) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := lockKey(id, action)
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *memoryStore) Unlock(_ context.Context, id string, action Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockKey(id, action))
	return nil
}

type fakeIdentity struct {
	calls     int
	passwords []string
	err       error
	// during runs while the account is being created
	during func()
}

func (f *fakeIdentity) SignUp(_ context.Context, email, password string, _ models.UserProfile) (string, error) {
	f.calls++
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return "", f.err
	}
	f.passwords = append(f.passwords, password)
	return "user-1", nil
}

type fakePayments struct {
	stubCoupons
	status  models.PaymentStatus
	intents []models.PaymentIntentRequest
	pmIDs   []string
}

func (f *fakePayments) CreatePaymentIntent(_ context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error) {
	f.intents = append(f.intents, req)
	return &models.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_x", Amount: 7840, Currency: "usd"}, nil
}

func (f *fakePayments) ConfirmPayment(_ context.Context, _ string, pm string) (*models.PaymentConfirmation, error) {
	f.pmIDs = append(f.pmIDs, pm)
	conf := &models.PaymentConfirmation{PaymentIntentID: "pi_1", Status: f.status}
	if f.status == models.PaymentFailed {
		conf.Message = "Your card was declined."
	}
	return conf, nil
}

type fakeOrders struct {
	created  []models.OrderInput
	statuses map[string]models.OrderStatus
}

func (f *fakeOrders) CreateOrder(_ context.Context, in models.OrderInput) (*models.Order, error) {
	f.created = append(f.created, in)
	if f.statuses == nil {
		f.statuses = map[string]models.OrderStatus{}
	}
	f.statuses["order_1"] = in.Status
	return &models.Order{ID: "order_1", UserID: in.UserID, Amount: in.Amount, Currency: in.Currency, Status: in.Status}, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, id string, status models.OrderStatus) error {
	f.statuses[id] = status
	return nil
}

type fakeSignal struct{ orders []string }

func (f *fakeSignal) SubscriptionConfirmed(_ context.Context, o *models.Order) error {
	f.orders = append(f.orders, o.ID)
	return nil
}

type harness struct {
	svc      *DefaultCheckoutService
	store    *memoryStore
	identity *fakeIdentity
	payments *fakePayments
	orders   *fakeOrders
	signal   *fakeSignal
}

func newHarness() *harness {
	h := &harness{
		store:    newMemoryStore(),
		identity: &fakeIdentity{},
		payments: &fakePayments{
			stubCoupons: stubCoupons{coupons: map[string]*models.Coupon{"SAVE20": {PercentOff: 20}}},
			status:      models.PaymentSucceeded,
		},
		orders: &fakeOrders{},
		signal: &fakeSignal{},
	}
	h.svc = NewCheckoutService(h.store, h.identity, h.payments, h.orders, h.signal,
		Pricing{PriceID: "price_123", UnitPrice: 9800, Currency: "usd"}, nil)
	return h
}

var signUpValues = map[models.FieldName]string{
	models.FieldFirstName:       "Ada",
	models.FieldLastName:        "Lovelace",
	models.FieldEmail:           "ada@lab.edu",
	models.FieldPassword:        "Xq7$fKwz",
	models.FieldConfirmPassword: "Xq7$fKwz",
	models.FieldAgreeTerms:      "true",
	models.FieldAgreePrivacy:    "true",
}

var addressValues = map[models.FieldName]string{
	models.FieldLine1:      "1 Main St",
	models.FieldCity:       "Springfield",
	models.FieldRegion:     "IL",
	models.FieldPostalCode: "62701",
	models.FieldCountry:    "US",
}

var paymentValues = map[models.FieldName]string{
	models.FieldCardholderName: "Ada Lovelace",
	models.FieldPaymentMethod:  "pm_card_visa",
}

func (h *harness) completeSteps(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	for _, vals := range []map[models.FieldName]string{signUpValues, addressValues, paymentValues} {
		if _, err := h.svc.Advance(ctx, id, FieldUpdate{Values: vals}); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
}

func TestServiceHappyPath(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	view, err := h.svc.StartSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	id := view.SessionID
	if view.State.ActiveStep != models.StepSignUp || view.Pricing.Total != 9800 {
		t.Fatalf("unexpected initial view %+v", view)
	}

	h.completeSteps(t, id)
	if h.identity.calls != 1 || h.identity.passwords[0] != "Xq7$fKwz" {
		t.Fatalf("identity calls=%d", h.identity.calls)
	}

	raw := string(h.store.sessions[id])
	if strings.Contains(raw, "Xq7$fKwz") {
		t.Fatal("password persisted in session store")
	}

	view, err = h.svc.ApplyDiscount(ctx, id, "SAVE20")
	if err != nil {
		t.Fatal(err)
	}
	if !view.Pricing.PurchaseEnabled || view.Pricing.Total != 7840 {
		t.Fatalf("pricing %+v", view.Pricing)
	}

	receipt, err := h.svc.Purchase(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Status != models.OrderCompleted || receipt.Amount != 7840 {
		t.Fatalf("receipt %+v", receipt)
	}
	in := h.orders.created[0]
	if !in.IsResearcher || in.Status != models.OrderPending || in.FullName != "Ada Lovelace" || in.State != "IL" {
		t.Fatalf("order input %+v", in)
	}
	if h.payments.intents[0].PromotionCode != "SAVE20" || h.payments.pmIDs[0] != "pm_card_visa" {
		t.Fatal("payment hand-off lost data")
	}
	if len(h.signal.orders) != 1 {
		t.Fatal("subscription email not queued")
	}
	if _, err := h.svc.GetSession(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session should end after purchase, got %v", err)
	}
}

func TestServiceAdvanceIncomplete(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	view, _ := h.svc.StartSession(ctx)

	view, err := h.svc.Advance(ctx, view.SessionID, FieldUpdate{Values: map[models.FieldName]string{
		models.FieldEmail: "bad",
	}})
	var incomplete *StepIncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected StepIncompleteError, got %v", err)
	}
	if incomplete.Fields[models.FieldEmail] == "" {
		t.Fatal("email error missing")
	}
	if view.State.ActiveStep != models.StepSignUp || h.identity.calls != 0 {
		t.Fatal("failed advance moved the wizard")
	}
	if view.Steps[0].Errors[models.FieldFirstName] == "" {
		t.Fatal("errors should be visible after a failed advance")
	}
}

func TestServiceIdentityFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.identity.err = models.ErrConflict
	view, _ := h.svc.StartSession(ctx)

	if _, err := h.svc.Advance(ctx, view.SessionID, FieldUpdate{Values: signUpValues}); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, err := h.svc.GetSession(ctx, view.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State.StepCompletion.SignUp || got.UserID != "" {
		t.Fatal("identity failure left the sign up saved")
	}
}

func TestServiceNavigateBlocked(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	view, _ := h.svc.StartSession(ctx)
	view, err := h.svc.Navigate(ctx, view.SessionID, models.StepPayment)
	if !errors.Is(err, ErrNavigationBlocked) {
		t.Fatalf("expected ErrNavigationBlocked, got %v", err)
	}
	if view.State.ActiveStep != models.StepSignUp {
		t.Fatal("blocked navigation changed the step")
	}
}

func TestServiceStaleDiscount(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	view, _ := h.svc.StartSession(ctx)
	id := view.SessionID

	// the user saves the sign up step while the processor is answering
	h.payments.during = func() {
		if _, err := h.svc.Advance(ctx, id, FieldUpdate{Values: signUpValues}); err != nil {
			t.Errorf("advance during lookup: %v", err)
		}
	}
	if _, err := h.svc.ApplyDiscount(ctx, id, "SAVE20"); !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}
	got, _ := h.svc.GetSession(ctx, id)
	if got.Pricing.Discount != nil {
		t.Fatal("stale discount stored")
	}
	if got.State.ActiveStep != models.StepAddress {
		t.Fatal("concurrent advance lost")
	}
}

func TestServiceActionInProgress(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	view, _ := h.svc.StartSession(ctx)
	id := view.SessionID

	h.payments.during = func() {
		if _, err := h.svc.ApplyDiscount(ctx, id, "SAVE20"); !errors.Is(err, ErrActionInProgress) {
			t.Errorf("expected ErrActionInProgress, got %v", err)
		}
		if _, err := h.svc.SetSeats(ctx, id, 3); err != nil {
			t.Errorf("other actions must stay available: %v", err)
		}
	}
	if _, err := h.svc.ApplyDiscount(ctx, id, "SAVE20"); err != nil {
		t.Fatal(err)
	}
	got, _ := h.svc.GetSession(ctx, id)
	if got.Pricing.Seats != 3 || got.Pricing.Discount == nil {
		t.Fatalf("pricing %+v", got.Pricing)
	}
}

func TestServicePurchaseDeclined(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.payments.status = models.PaymentFailed
	view, _ := h.svc.StartSession(ctx)

	if _, err := h.svc.Purchase(ctx, view.SessionID); !errors.Is(err, ErrPurchaseNotEnabled) {
		t.Fatalf("expected ErrPurchaseNotEnabled, got %v", err)
	}

	h.completeSteps(t, view.SessionID)
	_, err := h.svc.Purchase(ctx, view.SessionID)
	var perr *models.PaymentError
	if !errors.As(err, &perr) || perr.Message != "Your card was declined." {
		t.Fatalf("expected decline, got %v", err)
	}
	if h.orders.statuses["order_1"] != models.OrderFailed {
		t.Fatalf("order status %s", h.orders.statuses["order_1"])
	}
	if _, err := h.svc.GetSession(ctx, view.SessionID); err != nil {
		t.Fatal("declined purchase should keep the session")
	}
	if len(h.signal.orders) != 0 {
		t.Fatal("email queued for a declined purchase")
	}
}

func TestServiceCancelEditAndSeats(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	view, _ := h.svc.StartSession(ctx)
	id := view.SessionID

	if _, err := h.svc.UpdateFields(ctx, id, FieldUpdate{
		Values: map[models.FieldName]string{models.FieldFirstName: "Ada"},
		Blur:   []models.FieldName{models.FieldFirstName},
	}); err != nil {
		t.Fatal(err)
	}
	view, err := h.svc.CancelEdit(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if view.Steps[0].Values[models.FieldFirstName] != "" {
		t.Fatal("cancel kept the draft")
	}
	if _, err := h.svc.SetSeats(ctx, id, 0); !errors.Is(err, ErrInvalidSeats) {
		t.Fatalf("expected ErrInvalidSeats, got %v", err)
	}
	if _, err := h.svc.SetSeats(ctx, id, MaxSeats+1); !errors.Is(err, ErrInvalidSeats) {
		t.Fatalf("expected ErrInvalidSeats above the cap, got %v", err)
	}
	if err := h.svc.EndSession(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := h.svc.EndSession(ctx, id); err != nil {
		t.Fatal("ending twice should be harmless")
	}
}

func TestServicePurchaseUsesSavedSteps(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	view, _ := h.svc.StartSession(ctx)
	id := view.SessionID
	h.completeSteps(t, id)

	if _, err := h.svc.Navigate(ctx, id, models.StepAddress); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.UpdateFields(ctx, id, FieldUpdate{Values: map[models.FieldName]string{
		models.FieldLine1:      "",
		models.FieldPostalCode: "ABCDE",
	}}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.Navigate(ctx, id, models.StepPayment); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.UpdateFields(ctx, id, FieldUpdate{Values: map[models.FieldName]string{
		models.FieldPaymentMethod: "pm_unsaved",
	}}); err != nil {
		t.Fatal(err)
	}

	if _, err := h.svc.Purchase(ctx, id); err != nil {
		t.Fatal(err)
	}
	in := h.orders.created[0]
	if in.AddressLine1 != "1 Main St" || in.ZipCode != "62701" {
		t.Fatalf("order used unsaved address: %+v", in)
	}
	if h.payments.pmIDs[0] != "pm_card_visa" {
		t.Fatalf("confirmed with unsaved payment method %q", h.payments.pmIDs[0])
	}
}

func TestServiceAdvanceKeepsEditsMadeDuringSignUp(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	view, _ := h.svc.StartSession(ctx)
	id := view.SessionID

	h.identity.during = func() {
		if _, err := h.svc.SetSeats(ctx, id, 3); err != nil {
			t.Errorf("set seats: %v", err)
		}
		if _, err := h.svc.UpdateFields(ctx, id, FieldUpdate{Values: map[models.FieldName]string{
			models.FieldAgreeMarketing: "true",
		}}); err != nil {
			t.Errorf("update fields: %v", err)
		}
	}
	view, err := h.svc.Advance(ctx, id, FieldUpdate{Values: signUpValues})
	if err != nil {
		t.Fatal(err)
	}
	if view.State.ActiveStep != models.StepAddress || view.UserID != "user-1" {
		t.Fatalf("advance lost: %+v", view.State)
	}

	got, err := h.svc.GetSession(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Pricing.Seats != 3 {
		t.Fatalf("seat change overwritten, seats=%d", got.Pricing.Seats)
	}
	if got.Steps[0].Saved[models.FieldAgreeMarketing] != "true" {
		t.Fatalf("sign up edit overwritten: %v", got.Steps[0].Saved)
	}
	if strings.Contains(string(h.store.sessions[id]), "Xq7$fKwz") {
		t.Fatal("password persisted in session store")
	}
}

func TestServiceAdvanceReplaysOverCancel(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	view, _ := h.svc.StartSession(ctx)
	id := view.SessionID

	h.identity.during = func() {
		if _, err := h.svc.CancelEdit(ctx, id); err != nil {
			t.Errorf("cancel: %v", err)
		}
	}
	view, err := h.svc.Advance(ctx, id, FieldUpdate{Values: signUpValues})
	if err != nil {
		t.Fatal(err)
	}
	if !view.State.StepCompletion.SignUp || view.Steps[0].Saved[models.FieldEmail] != "ada@lab.edu" {
		t.Fatalf("sign up not saved: %+v", view.Steps[0])
	}
}

func TestServiceSealedSignUpRejectsPassword(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	view, _ := h.svc.StartSession(ctx)
	id := view.SessionID
	h.completeSteps(t, id)

	if _, err := h.svc.Navigate(ctx, id, models.StepSignUp); err != nil {
		t.Fatal(err)
	}
	_, err := h.svc.Advance(ctx, id, FieldUpdate{Values: map[models.FieldName]string{
		models.FieldPassword:        "N3w$horse",
		models.FieldConfirmPassword: "N3w$horse",
	}})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Fields[string(models.FieldPassword)] == "" {
		t.Fatalf("expected password rejection, got %v", err)
	}
	if _, err := h.svc.UpdateFields(ctx, id, FieldUpdate{Values: map[models.FieldName]string{
		models.FieldConfirmPassword: "N3w$horse",
	}}); !errors.As(err, &verr) {
		t.Fatalf("expected password rejection on update, got %v", err)
	}

	view, err = h.svc.Advance(ctx, id, FieldUpdate{Values: map[models.FieldName]string{
		models.FieldFirstName: "Augusta",
	}})
	if err != nil {
		t.Fatal(err)
	}
	if h.identity.calls != 1 || view.Steps[0].Saved[models.FieldFirstName] != "Augusta" {
		t.Fatalf("calls=%d saved=%v", h.identity.calls, view.Steps[0].Saved)
	}
}
