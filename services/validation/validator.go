// Package validation holds the field rules of the checkout steps. Every rule is a pure
// function from raw input to a models.FieldResult; malformed input is reported as
// invalid, never as an error or a panic.
package validation

import (
	"regexp"
	"strconv"
	"strings"

	"traceaq/models"
)

// emailPattern is intentionally loose: anything@anything.anything.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func ok() models.FieldResult {
	return models.FieldResult{Valid: true}
}

func fail(message string) models.FieldResult {
	return models.FieldResult{Valid: false, Message: message}
}

// Required accepts any value that is non-empty after trimming.
func Required(value, message string) models.FieldResult {
	if strings.TrimSpace(value) == "" {
		return fail(message)
	}
	return ok()
}

func FirstName(value string) models.FieldResult {
	return Required(value, "First name is required")
}

func LastName(value string) models.FieldResult {
	return Required(value, "Last name is required")
}

func CardholderName(value string) models.FieldResult {
	return Required(value, "Name on card is required")
}

// PaymentMethodRef checks the processor reference produced by the payment element.
func PaymentMethodRef(value string) models.FieldResult {
	return Required(value, "Enter a payment method")
}

// Email validates the loose local@domain.tld shape.
func Email(value string) models.FieldResult {
	if !emailPattern.MatchString(value) {
		return fail("Enter a valid email address")
	}
	return ok()
}

// IsResearcherEmail reports whether the address qualifies for the researcher offer.
func IsResearcherEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at < 0 || !Email(email).Valid {
		return false
	}
	return strings.HasSuffix(email[at+1:], ".edu")
}

// ParseCheckbox reads a checkbox value. Anything that is not a boolean literal is unchecked.
func ParseCheckbox(raw string) bool {
	checked, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && checked
}

// MustAgree requires the box to be checked.
func MustAgree(checked bool, message string) models.FieldResult {
	if !checked {
		return fail(message)
	}
	return ok()
}

func Terms(checked bool) models.FieldResult {
	return MustAgree(checked, "You must accept the Terms")
}

// Privacy covers the privacy policy and auto-renewal acknowledgement.
func Privacy(checked bool) models.FieldResult {
	return MustAgree(checked, "You must accept auto-renewal")
}

// Marketing is optional and always valid.
func Marketing(bool) models.FieldResult {
	return ok()
}
