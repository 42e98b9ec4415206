package checkout

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"traceaq/models"
)

// MaxSeats is the largest seat count a single checkout accepts.
const MaxSeats = 10000

// ValidSeats reports whether n is an orderable seat count.
func ValidSeats(n int) bool {
	return n >= 1 && n <= MaxSeats
}

// Totals derives the displayed price. It is pure: the same quote always yields the same
// breakdown, and the total never drops below zero. Seat counts outside 1..MaxSeats are
// clamped into range. The charged amount is recomputed by the payment processor.
func Totals(q models.PricingQuote) models.PriceBreakdown {
	seats := q.Seats
	if seats < 1 {
		seats = 1
	}
	if seats > MaxSeats {
		seats = MaxSeats
	}
	subtotal := seatSubtotal(q.UnitPrice, seats)

	var discount int64
	if q.Discount != nil {
		switch q.Discount.Kind {
		case models.DiscountPercent:
			pct := math.Min(math.Max(q.Discount.PercentOff, 0), 100)
			discount = int64(math.Round(float64(subtotal) * pct / 100))
		case models.DiscountAmount:
			discount = q.Discount.AmountOff
		}
	}
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	return models.PriceBreakdown{
		Currency:       q.Currency,
		UnitPrice:      q.UnitPrice,
		Seats:          seats,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          subtotal - discount,
		Discount:       q.Discount,
	}
}

// seatSubtotal multiplies without wrapping: negative prices give zero and products past
// math.MaxInt64 saturate.
func seatSubtotal(unit int64, seats int) int64 {
	if unit <= 0 || seats <= 0 {
		return 0
	}
	if unit > math.MaxInt64/int64(seats) {
		return math.MaxInt64
	}
	return unit * int64(seats)
}

// DiscountFromCoupon turns a processor coupon into a discount for the given currency.
func DiscountFromCoupon(c *models.Coupon, currency string) (*models.Discount, error) {
	switch {
	case c == nil:
		return nil, models.ErrInvalidCode
	case c.PercentOff > 0:
		return &models.Discount{Kind: models.DiscountPercent, PercentOff: c.PercentOff, Code: c.Code, Name: c.Name}, nil
	case c.AmountOff > 0:
		if c.Currency != "" && !strings.EqualFold(c.Currency, currency) {
			return nil, fmt.Errorf("coupon currency %s: %w", c.Currency, models.ErrInvalidCode)
		}
		return &models.Discount{
			Kind:      models.DiscountAmount,
			AmountOff: c.AmountOff,
			Currency:  strings.ToLower(currency),
			Code:      c.Code,
			Name:      c.Name,
		}, nil
	}
	return nil, models.ErrInvalidCode
}

// LookupDiscount resolves a code through the processor. Unknown or unusable codes give
// ErrInvalidCode; every other failure is reported as ErrNetwork.
func LookupDiscount(ctx context.Context, coupons CouponLookup, code, currency string) (*models.Discount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, models.ErrInvalidCode
	}
	c, err := coupons.LookupCoupon(ctx, code)
	if err != nil {
		if isInvalidCode(err) {
			return nil, models.ErrInvalidCode
		}
		return nil, fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}
	if c.Code == "" {
		c.Code = code
	}
	return DiscountFromCoupon(c, currency)
}

// Checkout couples a wizard with its pricing quote for in-process use.
type Checkout struct {
	Wizard *Wizard

	mu      sync.Mutex
	quote   models.PricingQuote
	coupons CouponLookup
}

func NewCheckout(w *Wizard, quote models.PricingQuote, coupons CouponLookup) *Checkout {
	if quote.Seats < 1 {
		quote.Seats = 1
	}
	return &Checkout{Wizard: w, quote: quote, coupons: coupons}
}

func (c *Checkout) Quote() models.PricingQuote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quote
}

// ApplyDiscount looks the code up and stores it. On any error the previous discount stays.
// If the wizard moved while the lookup was outstanding the answer is dropped.
func (c *Checkout) ApplyDiscount(ctx context.Context, code string) error {
	ticket, err := c.Wizard.Begin(ActionDiscount)
	if err != nil {
		return err
	}
	defer c.Wizard.Finish(ticket)

	d, err := LookupDiscount(ctx, c.coupons, code, c.Quote().Currency)
	if err != nil {
		return err
	}
	if !c.Wizard.Current(ticket) {
		return ErrStaleResponse
	}
	c.mu.Lock()
	c.quote.Discount = d
	c.mu.Unlock()
	return nil
}

func (c *Checkout) ClearDiscount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quote.Discount = nil
}

func (c *Checkout) SetSeats(n int) error {
	if !ValidSeats(n) {
		return ErrInvalidSeats
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quote.Seats = n
	return nil
}

// Breakdown is the current price summary with the wizard's purchase signal.
func (c *Checkout) Breakdown() models.PriceBreakdown {
	b := Totals(c.Quote())
	b.PurchaseEnabled = c.Wizard.PurchaseEnabled()
	return b
}
