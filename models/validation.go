package models

// FieldName identifies a single input of a checkout step.
type FieldName string

const (
	// Sign up.
	FieldFirstName       FieldName = "firstName"
	FieldLastName        FieldName = "lastName"
	FieldEmail           FieldName = "email"
	FieldPassword        FieldName = "password"
	FieldConfirmPassword FieldName = "confirmPassword"
	FieldAgreeTerms      FieldName = "agreeTerms"
	FieldAgreePrivacy    FieldName = "agreePrivacy"
	FieldAgreeMarketing  FieldName = "agreeMarketing"

	// Billing address.
	FieldLine1      FieldName = "line1"
	FieldLine2      FieldName = "line2"
	FieldCity       FieldName = "city"
	FieldRegion     FieldName = "region"
	FieldPostalCode FieldName = "postalCode"
	FieldCountry    FieldName = "country"

	// Payment method.
	FieldCardholderName FieldName = "cardholderName"
	FieldPaymentMethod  FieldName = "paymentMethodId"
)

// FieldResult is the verdict of a field validator.
type FieldResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Requirement is one line of the password hint checklist.
type Requirement struct {
	Label string `json:"label"`
	Met   bool   `json:"met"`
}
