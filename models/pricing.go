package models

// DiscountKind distinguishes percent-off from amount-off discounts.
type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountAmount  DiscountKind = "amount"
)

// Discount is an applied discount descriptor. Amounts are minor currency units.
type Discount struct {
	Kind       DiscountKind `json:"kind"`
	PercentOff float64      `json:"percentOff,omitempty"`
	AmountOff  int64        `json:"amountOff,omitempty"`
	Currency   string       `json:"currency,omitempty"`
	Code       string       `json:"code"`
	Name       string       `json:"name,omitempty"`
}

// PricingQuote is the input of the displayed total.
type PricingQuote struct {
	UnitPrice int64     `json:"unitPrice"`
	Seats     int       `json:"seats"`
	Currency  string    `json:"currency"`
	Discount  *Discount `json:"discount,omitempty"`
}

// PriceBreakdown is the derived, display-only summary of a quote.
type PriceBreakdown struct {
	Currency        string    `json:"currency"`
	UnitPrice       int64     `json:"unitPrice"`
	Seats           int       `json:"seats"`
	Subtotal        int64     `json:"subtotal"`
	DiscountAmount  int64     `json:"discountAmount"`
	Total           int64     `json:"total"`
	Discount        *Discount `json:"discount,omitempty"`
	PurchaseEnabled bool      `json:"purchaseEnabled"`
}
