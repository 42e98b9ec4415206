package models

import "time"

// StepView is the rendered state of one wizard step.
type StepView struct {
	Step       Step                 `json:"step"`
	Visibility StepVisibility       `json:"visibility"`
	Complete   bool                 `json:"complete"`
	Values     map[FieldName]string `json:"values,omitempty"`
	Errors     map[FieldName]string `json:"errors,omitempty"`
	Saved      map[FieldName]string `json:"saved,omitempty"`
}

// CheckoutView is what the checkout endpoints return.
type CheckoutView struct {
	SessionID            string         `json:"sessionId"`
	State                WizardState    `json:"state"`
	Steps                []StepView     `json:"steps"`
	Pricing              PriceBreakdown `json:"pricing"`
	PasswordRequirements []Requirement  `json:"passwordRequirements,omitempty"`
	UserID               string         `json:"userId,omitempty"`
	ExpiresAt            time.Time      `json:"expiresAt"`
}
