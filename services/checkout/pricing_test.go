package checkout

import (
	"context"
	"errors"
	"math"
	"testing"

	"traceaq/models"
)

type stubCoupons struct {
	coupons map[string]*models.Coupon
	err     error
	during  func()
	calls   int
}

func (s *stubCoupons) LookupCoupon(_ context.Context, code string) (*models.Coupon, error) {
	s.calls++
	if s.during != nil {
		s.during()
	}
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.coupons[code]
	if !ok {
		return nil, models.ErrInvalidCode
	}
	cp := *c
	return &cp, nil
}

func TestTotals(t *testing.T) {
	tests := []struct {
		name  string
		quote models.PricingQuote
		want  models.PriceBreakdown
	}{
		{
			name:  "no discount",
			quote: models.PricingQuote{UnitPrice: 4900, Seats: 3, Currency: "usd"},
			want:  models.PriceBreakdown{Subtotal: 14700, Total: 14700},
		},
		{
			name: "amount larger than subtotal clamps to zero",
			quote: models.PricingQuote{UnitPrice: 10000, Seats: 1, Currency: "usd",
				Discount: &models.Discount{Kind: models.DiscountAmount, AmountOff: 15000}},
			want: models.PriceBreakdown{Subtotal: 10000, DiscountAmount: 10000, Total: 0},
		},
		{
			name: "percent",
			quote: models.PricingQuote{UnitPrice: 20000, Seats: 1, Currency: "usd",
				Discount: &models.Discount{Kind: models.DiscountPercent, PercentOff: 25}},
			want: models.PriceBreakdown{Subtotal: 20000, DiscountAmount: 5000, Total: 15000},
		},
		{
			name: "percent rounds half away from zero",
			quote: models.PricingQuote{UnitPrice: 1, Seats: 1, Currency: "usd",
				Discount: &models.Discount{Kind: models.DiscountPercent, PercentOff: 50}},
			want: models.PriceBreakdown{Subtotal: 1, DiscountAmount: 1, Total: 0},
		},
		{
			name:  "huge seat count is capped instead of wrapping",
			quote: models.PricingQuote{UnitPrice: 9800, Seats: math.MaxInt64 / 1000, Currency: "usd"},
			want:  models.PriceBreakdown{Subtotal: 9800 * MaxSeats, Total: 9800 * MaxSeats},
		},
		{
			name:  "unit price overflow saturates",
			quote: models.PricingQuote{UnitPrice: math.MaxInt64 / 2, Seats: 3, Currency: "usd"},
			want:  models.PriceBreakdown{Subtotal: math.MaxInt64, Total: math.MaxInt64},
		},
		{
			name:  "seats below one count as one",
			quote: models.PricingQuote{UnitPrice: 500, Seats: 0, Currency: "usd"},
			want:  models.PriceBreakdown{Subtotal: 500, Total: 500},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Totals(tt.quote)
			if got.Subtotal != tt.want.Subtotal || got.DiscountAmount != tt.want.DiscountAmount || got.Total != tt.want.Total {
				t.Fatalf("got subtotal=%d discount=%d total=%d, want %d/%d/%d",
					got.Subtotal, got.DiscountAmount, got.Total,
					tt.want.Subtotal, tt.want.DiscountAmount, tt.want.Total)
			}
			if again := Totals(tt.quote); again.Total != got.Total {
				t.Fatal("Totals is not deterministic")
			}
			if got.Total < 0 {
				t.Fatal("negative total")
			}
		})
	}
}

func TestLookupDiscount(t *testing.T) {
	ctx := context.Background()
	coupons := &stubCoupons{coupons: map[string]*models.Coupon{
		"SAVE20": {PercentOff: 20},
		"TENOFF": {AmountOff: 1000, Currency: "usd"},
		"EUROS":  {AmountOff: 1000, Currency: "eur"},
		"EMPTY":  {},
	}}

	d, err := LookupDiscount(ctx, coupons, " SAVE20 ", "usd")
	if err != nil || d.Kind != models.DiscountPercent || d.Code != "SAVE20" {
		t.Fatalf("SAVE20: %+v %v", d, err)
	}
	if d, err := LookupDiscount(ctx, coupons, "TENOFF", "USD"); err != nil || d.AmountOff != 1000 {
		t.Fatalf("TENOFF: %+v %v", d, err)
	}
	for _, code := range []string{"", "MISSING", "EUROS", "EMPTY"} {
		if _, err := LookupDiscount(ctx, coupons, code, "usd"); !errors.Is(err, models.ErrInvalidCode) {
			t.Errorf("%q: expected ErrInvalidCode, got %v", code, err)
		}
	}

	down := &stubCoupons{err: errors.New("dial tcp: timeout")}
	if _, err := LookupDiscount(ctx, down, "SAVE20", "usd"); !errors.Is(err, models.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestCheckoutApplyDiscount(t *testing.T) {
	ctx := context.Background()
	coupons := &stubCoupons{coupons: map[string]*models.Coupon{"SAVE20": {PercentOff: 20}}}
	c := NewCheckout(NewWizard(), models.PricingQuote{UnitPrice: 10000, Seats: 1, Currency: "usd"}, coupons)

	if err := c.ApplyDiscount(ctx, "SAVE20"); err != nil {
		t.Fatal(err)
	}
	if got := c.Breakdown().Total; got != 8000 {
		t.Fatalf("total %d", got)
	}

	// a failed lookup leaves the previous discount in place
	if err := c.ApplyDiscount(ctx, "BOGUS"); !errors.Is(err, models.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if c.Quote().Discount == nil || c.Quote().Discount.Code != "SAVE20" {
		t.Fatal("previous discount lost")
	}

	if err := c.SetSeats(0); !errors.Is(err, ErrInvalidSeats) {
		t.Fatalf("expected ErrInvalidSeats, got %v", err)
	}
	if err := c.SetSeats(MaxSeats + 1); !errors.Is(err, ErrInvalidSeats) {
		t.Fatalf("expected ErrInvalidSeats above the cap, got %v", err)
	}
	if err := c.SetSeats(MaxSeats); err != nil {
		t.Fatalf("MaxSeats rejected: %v", err)
	}
	_ = c.SetSeats(2)
	c.ClearDiscount()
	b := c.Breakdown()
	if b.Total != 20000 || b.PurchaseEnabled {
		t.Fatalf("unexpected breakdown %+v", b)
	}
}

func TestCheckoutDiscardsStaleDiscount(t *testing.T) {
	w := NewWizard()
	fillSignUp(t, w.Form(models.StepSignUp))
	coupons := &stubCoupons{
		coupons: map[string]*models.Coupon{"SAVE20": {PercentOff: 20}},
		during:  func() { w.Advance() },
	}
	c := NewCheckout(w, models.PricingQuote{UnitPrice: 10000, Seats: 1, Currency: "usd"}, coupons)

	if err := c.ApplyDiscount(context.Background(), "SAVE20"); !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}
	if c.Quote().Discount != nil {
		t.Fatal("stale discount applied")
	}
	if w.InFlight(ActionDiscount) {
		t.Fatal("processing marker left behind")
	}
}
