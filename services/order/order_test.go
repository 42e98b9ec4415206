package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"traceaq/models"
)

type memoryOrders struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func (m *memoryOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memoryOrders) GetByID(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memoryOrders) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryOrders) UpdateStatus(_ context.Context, id string, status models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return models.ErrNotFound
	}
	o.Status = status
	return nil
}

type memoryMethods struct {
	mu      sync.Mutex
	methods []models.PaymentMethod
}

func (m *memoryMethods) Create(_ context.Context, pm *models.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods = append(m.methods, *pm)
	return nil
}

func (m *memoryMethods) ListByUser(_ context.Context, userID string) ([]models.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentMethod
	for _, pm := range m.methods {
		if pm.UserID == userID {
			out = append(out, pm)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsDefault && !out[j].IsDefault })
	return out, nil
}

func (m *memoryMethods) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, pm := range m.methods {
		if pm.ID == id && pm.UserID == userID {
			m.methods = append(m.methods[:i], m.methods[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memoryMethods) SetDefault(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, pm := range m.methods {
		if pm.ID == id && pm.UserID == userID {
			found = true
		}
	}
	if !found {
		return models.ErrNotFound
	}
	for i := range m.methods {
		if m.methods[i].UserID == userID {
			m.methods[i].IsDefault = m.methods[i].ID == id
		}
	}
	return nil
}

func newTestService() *DefaultOrderService {
	return NewOrderService(&memoryOrders{orders: map[string]*models.Order{}}, &memoryMethods{}, nil)
}

func validOrderInput() models.OrderInput {
	return models.OrderInput{
		UserID:       "user-1",
		Amount:       9800,
		Currency:     "USD",
		Email:        "ada@example.com",
		FullName:     "Ada Lovelace",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		State:        "IL",
		ZipCode:      "62701",
		Country:      "US",
		AgreeToTerms: true,
	}
}

func TestCreateOrder(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, validOrderInput())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(o.ID, "order_") || o.Status != models.OrderPending || o.Currency != "usd" || o.Region != "IL" {
		t.Fatalf("unexpected order %+v", o)
	}

	got, err := svc.GetOrder(ctx, o.ID, "user-1")
	if err != nil || got.ID != o.ID {
		t.Fatalf("GetOrder = %+v, %v", got, err)
	}
	if _, err := svc.GetOrder(ctx, o.ID, "someone-else"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.GetOrder(ctx, "order_missing", "user-1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newTestService()
	in := validOrderInput()
	in.Email = "not-an-email"
	in.AgreeToTerms = false
	in.Currency = "dollars"

	_, err := svc.CreateOrder(context.Background(), in)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"email", "agreeToTerms", "currency"} {
		if verr.Fields[field] == "" {
			t.Errorf("missing message for %s in %v", field, verr.Fields)
		}
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	o, err := svc.CreateOrder(ctx, validOrderInput())
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.UpdateOrderStatus(ctx, o.ID, "shipped"); err == nil {
		t.Fatal("unknown status accepted")
	}
	if err := svc.UpdateOrderStatus(ctx, o.ID, models.OrderCompleted); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.GetOrder(ctx, o.ID, "user-1")
	if got.Status != models.OrderCompleted {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestPaymentMethods(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	in := models.PaymentMethodInput{
		UserID:                "user-1",
		StripePaymentMethodID: "pm_card_visa",
		Last4:                 "4242",
		Brand:                 "visa",
		ExpiryMonth:           12,
		ExpiryYear:            2030,
	}

	first, err := svc.CreatePaymentMethod(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if !first.IsDefault || !strings.HasPrefix(first.ID, "pmr_") {
		t.Fatalf("first method should be default: %+v", first)
	}

	in.StripePaymentMethodID = "pm_card_mastercard"
	in.Last4 = "4444"
	second, err := svc.CreatePaymentMethod(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if second.IsDefault {
		t.Fatal("second method should not steal the default")
	}

	if err := svc.SetDefaultPaymentMethod(ctx, "user-1", second.ID); err != nil {
		t.Fatal(err)
	}
	list, err := svc.ListPaymentMethods(ctx, "user-1")
	if err != nil || len(list) != 2 || list[0].ID != second.ID || list[1].IsDefault {
		t.Fatalf("unexpected list %+v, %v", list, err)
	}

	if err := svc.DeletePaymentMethod(ctx, "user-2", first.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("other users must not delete: %v", err)
	}
	if err := svc.DeletePaymentMethod(ctx, "user-1", first.ID); err != nil {
		t.Fatal(err)
	}

	in.Last4 = "12a4"
	var verr *models.ValidationError
	if _, err := svc.CreatePaymentMethod(ctx, in); !errors.As(err, &verr) || verr.Fields["last4"] == "" {
		t.Fatalf("expected last4 validation error, got %v", err)
	}
}

func TestListOrdersNeverNil(t *testing.T) {
	orders, err := newTestService().ListOrders(context.Background(), "nobody")
	if err != nil || orders == nil {
		t.Fatalf("ListOrders = %v, %v", orders, err)
	}
}
