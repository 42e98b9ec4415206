package models

// ResetCodePayload is queued when a password reset code must be emailed.
type ResetCodePayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// SubscriptionPayload is queued after a purchase completed.
type SubscriptionPayload struct {
	OrderID      string `json:"orderId"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	IsResearcher bool   `json:"isResearcher"`
}

// MailMessage is a rendered email.
type MailMessage struct {
	From    string
	To      string
	Subject string
	Body    string
}
