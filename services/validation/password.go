package validation

import (
	"strings"
	"unicode/utf8"

	"traceaq/models"
)

const minPasswordLength = 8

// runSequences are scanned for any ascending 4-character window.
var runSequences = []string{
	"0123456789",
	"abcdefghijklmnopqrstuvwxyz",
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}

func hasUpper(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0
}

func hasLower(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= 'a' && r <= 'z' }) >= 0
}

// HasDisallowedRun reports four identical characters in a row, or a 4-character
// window of a digit, alphabet or keyboard-row sequence. Case-insensitive.
func HasDisallowedRun(s string) bool {
	runes := []rune(strings.ToLower(s))
	for i := 0; i+4 <= len(runes); i++ {
		w := runes[i : i+4]
		if w[0] == w[1] && w[1] == w[2] && w[2] == w[3] {
			return true
		}
		window := string(w)
		for _, seq := range runSequences {
			if strings.Contains(seq, window) {
				return true
			}
		}
	}
	return false
}

// PasswordRequirements returns the hint checklist shown next to the password input.
func PasswordRequirements(pw string) []models.Requirement {
	return []models.Requirement{
		{Label: "At least 8 characters", Met: utf8.RuneCountInString(pw) >= minPasswordLength},
		{Label: "Contains a letter", Met: hasLetter(pw)},
		{Label: "Contains a number", Met: hasDigit(pw)},
		{Label: "Upper and lower case letters", Met: hasUpper(pw) && hasLower(pw)},
		{Label: "No 4 repeated or sequential characters", Met: pw != "" && !HasDisallowedRun(pw)},
	}
}

// PasswordValid is the boolean form of Password.
func PasswordValid(pw string) bool {
	for _, req := range PasswordRequirements(pw) {
		if !req.Met {
			return false
		}
	}
	return true
}

func Password(pw string) models.FieldResult {
	if pw == "" {
		return fail("Password is required")
	}
	if !PasswordValid(pw) {
		return fail("Password does not meet requirements")
	}
	return ok()
}

// ConfirmPassword is valid only when it matches a password that is itself valid.
func ConfirmPassword(password, confirm string) models.FieldResult {
	if confirm != password {
		return fail("Passwords do not match")
	}
	if !PasswordValid(password) {
		return fail("Password does not meet requirements")
	}
	return ok()
}
