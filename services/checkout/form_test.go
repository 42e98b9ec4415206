package checkout

import (
	"errors"
	"testing"

	"traceaq/models"
)

func fillSignUp(t *testing.T, f *StepForm) {
	t.Helper()
	values := map[models.FieldName]string{
		models.FieldFirstName:       "Ada",
		models.FieldLastName:        "Lovelace",
		models.FieldEmail:           "ada@example.com",
		models.FieldPassword:        "Xq7$fKwz",
		models.FieldConfirmPassword: "Xq7$fKwz",
		models.FieldAgreeTerms:      "true",
		models.FieldAgreePrivacy:    "true",
	}
	for k, v := range values {
		if err := f.SetField(k, v); err != nil {
			t.Fatalf("SetField(%s): %v", k, err)
		}
	}
}

func fillAddress(t *testing.T, f *StepForm, postal string) {
	t.Helper()
	for _, kv := range [][2]string{
		{string(models.FieldCountry), "US"},
		{string(models.FieldLine1), "1 Main St"},
		{string(models.FieldCity), "Springfield"},
		{string(models.FieldRegion), "IL"},
		{string(models.FieldPostalCode), postal},
	} {
		if err := f.SetField(models.FieldName(kv[0]), kv[1]); err != nil {
			t.Fatalf("SetField(%s): %v", kv[0], err)
		}
	}
}

func fillPayment(t *testing.T, f *StepForm) {
	t.Helper()
	if err := f.SetField(models.FieldCardholderName, "Ada Lovelace"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetField(models.FieldPaymentMethod, "pm_card_visa"); err != nil {
		t.Fatal(err)
	}
}

func TestSetFieldUnknown(t *testing.T) {
	f := NewPaymentForm()
	if err := f.SetField("cardNumber", "4242"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := f.BlurField("cardNumber"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField on blur, got %v", err)
	}
}

func TestErrorsHiddenUntilTouched(t *testing.T) {
	f := NewSignUpForm()
	if err := f.SetField(models.FieldEmail, "nope"); err != nil {
		t.Fatal(err)
	}
	if f.Result(models.FieldEmail).Valid {
		t.Fatal("invalid email accepted")
	}
	if msg := f.VisibleError(models.FieldEmail); msg != "" {
		t.Fatalf("error visible before blur: %q", msg)
	}
	if f.Touched(models.FieldEmail) {
		t.Fatal("SetField must not mark touched")
	}
	if err := f.BlurField(models.FieldEmail); err != nil {
		t.Fatal(err)
	}
	if msg := f.VisibleError(models.FieldEmail); msg != "Enter a valid email address" {
		t.Fatalf("unexpected visible error %q", msg)
	}
}

func TestUSAddressCompleteness(t *testing.T) {
	f := NewAddressForm()
	fillAddress(t, f, "62701")
	if !f.IsComplete() {
		t.Fatalf("expected complete, invalid: %v", f.Invalid())
	}
	if err := f.SetField(models.FieldPostalCode, "ABCDE"); err != nil {
		t.Fatal(err)
	}
	if f.IsComplete() {
		t.Fatal("expected incomplete with postal code ABCDE")
	}
}

func TestCountryChangeClearsRegion(t *testing.T) {
	f := NewAddressForm()
	fillAddress(t, f, "62701")

	// same class keeps the region
	if err := f.SetField(models.FieldCountry, "United States"); err != nil {
		t.Fatal(err)
	}
	if got := f.Value(models.FieldRegion); got != "IL" {
		t.Fatalf("region cleared within the same country class: %q", got)
	}

	if err := f.SetField(models.FieldCountry, "Canada"); err != nil {
		t.Fatal(err)
	}
	if got := f.Value(models.FieldRegion); got != "" {
		t.Fatalf("expected region cleared, got %q", got)
	}
}

func TestAttemptAdvanceIncompleteTouchesAll(t *testing.T) {
	f := NewSignUpForm()
	if f.AttemptAdvance() {
		t.Fatal("empty form advanced")
	}
	for _, name := range f.Fields() {
		if !f.Touched(name) {
			t.Errorf("%s not touched after failed advance", name)
		}
	}
	if f.HasSaved() {
		t.Fatal("snapshot frozen on failure")
	}
	if len(f.Errors()) == 0 {
		t.Fatal("expected visible errors")
	}
}

func TestAttemptAdvanceIdempotent(t *testing.T) {
	f := NewAddressForm()
	fillAddress(t, f, "62701-1234")

	first := f.AttemptAdvance()
	saved := f.Saved()
	second := f.AttemptAdvance()
	if !first || !second {
		t.Fatalf("expected both attempts to succeed, got %v %v", first, second)
	}
	again := f.Saved()
	for k, v := range saved {
		if again[k] != v {
			t.Fatalf("snapshot changed on repeat: %s %q -> %q", k, v, again[k])
		}
	}

	g := NewAddressForm()
	if g.AttemptAdvance() != g.AttemptAdvance() {
		t.Fatal("repeated failed attempts disagree")
	}
}

func TestCancelRevertsToSnapshot(t *testing.T) {
	f := NewPaymentForm()
	fillPayment(t, f)
	if !f.AttemptAdvance() {
		t.Fatal("payment form should advance")
	}
	_ = f.SetField(models.FieldCardholderName, "Someone Else")
	_ = f.BlurField(models.FieldCardholderName)
	f.Cancel()
	if got := f.Value(models.FieldCardholderName); got != "Ada Lovelace" {
		t.Fatalf("cancel kept draft %q", got)
	}
	if f.Touched(models.FieldCardholderName) {
		t.Fatal("cancel kept touched flag")
	}

	empty := NewPaymentForm()
	_ = empty.SetField(models.FieldCardholderName, "draft")
	empty.Cancel()
	if empty.Value(models.FieldCardholderName) != "" {
		t.Fatal("cancel without snapshot should empty the form")
	}
}

func TestStateExcludesPasswords(t *testing.T) {
	f := NewSignUpForm()
	fillSignUp(t, f)
	if !f.AttemptAdvance() {
		t.Fatalf("sign up should advance: %v", f.Invalid())
	}
	st := f.State()
	for _, m := range []map[models.FieldName]string{st.Values, st.Saved} {
		if _, ok := m[models.FieldPassword]; ok {
			t.Fatal("password exported")
		}
		if _, ok := m[models.FieldConfirmPassword]; ok {
			t.Fatal("confirmation exported")
		}
	}

	restored, err := RestoreForm(st)
	if err != nil {
		t.Fatal(err)
	}
	if !restored.IsComplete() {
		t.Fatalf("restored sealed form should stay complete: %v", restored.Invalid())
	}
	if restored.Value(models.FieldEmail) != "ada@example.com" {
		t.Fatal("email lost on restore")
	}

	// a new password on a sealed form is validated again
	_ = restored.SetField(models.FieldPassword, "weak")
	if restored.IsComplete() {
		t.Fatal("weak replacement password accepted")
	}
}

func TestCheckboxNormalised(t *testing.T) {
	f := NewSignUpForm()
	_ = f.SetField(models.FieldAgreeTerms, "definitely")
	if f.Value(models.FieldAgreeTerms) != "false" {
		t.Fatalf("malformed checkbox stored as %q", f.Value(models.FieldAgreeTerms))
	}
	_ = f.SetChecked(models.FieldAgreeTerms, true)
	if !SignUpDetailsFrom(f).AgreeTerms {
		t.Fatal("checked terms not read back")
	}
}
