package models

import "strings"

// SignUpDetails is the account information captured by the sign up step.
// The password fields never leave the process.
type SignUpDetails struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"-"`
	ConfirmPassword string `json:"-"`
	AgreeTerms      bool   `json:"agreeTerms"`
	AgreePrivacy    bool   `json:"agreePrivacy"`
	AgreeMarketing  bool   `json:"agreeMarketing"`
}

// DisplayName collapses first and last name into the single saved name.
func (d SignUpDetails) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
}

// PaymentDetails is what the payment step keeps: a processor reference, never card data.
type PaymentDetails struct {
	CardholderName  string `json:"cardholderName"`
	PaymentMethodID string `json:"paymentMethodId"`
}
