package checkout

import (
	"errors"
	"testing"

	"traceaq/models"
)

func completeWizard(t *testing.T, w *Wizard) {
	t.Helper()
	fillSignUp(t, w.Form(models.StepSignUp))
	if !w.Advance() {
		t.Fatal("sign up did not advance")
	}
	fillAddress(t, w.Form(models.StepAddress), "62701")
	if !w.Advance() {
		t.Fatal("address did not advance")
	}
	fillPayment(t, w.Form(models.StepPayment))
	if !w.Advance() {
		t.Fatal("payment did not advance")
	}
}

func TestWizardSequence(t *testing.T) {
	w := NewWizard()
	if got := w.State().ActiveStep; got != models.StepSignUp {
		t.Fatalf("initial step %s", got)
	}
	if w.Advance() {
		t.Fatal("empty sign up advanced")
	}
	if w.State().StepCompletion.SignUp {
		t.Fatal("completion set on failure")
	}

	completeWizard(t, w)
	st := w.State()
	if st.ActiveStep != models.StepPayment {
		t.Fatalf("expected payment to stay open, got %s", st.ActiveStep)
	}
	if !st.StepCompletion.SignUp || !st.StepCompletion.Address || !st.StepCompletion.Payment {
		t.Fatalf("completion %+v", st.StepCompletion)
	}
	if !w.PurchaseEnabled() {
		t.Fatal("purchase should be enabled")
	}
}

func TestNavigationGuard(t *testing.T) {
	w := NewWizard()
	before := w.State()
	if w.Navigate(models.StepPayment) {
		t.Fatal("jumped to payment with nothing saved")
	}
	if w.Navigate(models.StepAddress) {
		t.Fatal("jumped to address before sign up")
	}
	if w.State() != before {
		t.Fatal("rejected navigation changed state")
	}
	if !w.Navigate(models.StepSignUp) {
		t.Fatal("navigating to the active step must succeed")
	}

	fillSignUp(t, w.Form(models.StepSignUp))
	w.Advance()
	if w.Navigate(models.StepPayment) {
		t.Fatal("jumped to payment before address saved")
	}
	if !w.Navigate(models.StepSignUp) {
		t.Fatal("could not reopen saved sign up")
	}
	if w.Visibility(models.StepSignUp) != models.VisibilityOpen {
		t.Fatal("sign up should be open")
	}
	if !w.Navigate(models.StepAddress) {
		t.Fatal("could not return to address")
	}
	if w.Visibility(models.StepSignUp) != models.VisibilitySummary || w.Visibility(models.StepPayment) != models.VisibilityHidden {
		t.Fatal("unexpected visibility")
	}
}

func TestEditsOnlyReachOpenStep(t *testing.T) {
	w := NewWizard()
	err := w.SetField(models.StepAddress, models.FieldCity, "Springfield")
	if !errors.Is(err, ErrStepNotOpen) {
		t.Fatalf("expected ErrStepNotOpen, got %v", err)
	}
	if err := w.BlurField(models.StepPayment, models.FieldCardholderName); !errors.Is(err, ErrStepNotOpen) {
		t.Fatalf("expected ErrStepNotOpen on blur, got %v", err)
	}
	if err := w.SetField(models.StepSignUp, models.FieldFirstName, "Ada"); err != nil {
		t.Fatal(err)
	}
}

func TestReopenKeepsSnapshotAndCancelReverts(t *testing.T) {
	w := NewWizard()
	fillSignUp(t, w.Form(models.StepSignUp))
	w.Advance()
	w.Navigate(models.StepSignUp)
	if err := w.SetField(models.StepSignUp, models.FieldFirstName, "Grace"); err != nil {
		t.Fatal(err)
	}
	if w.Form(models.StepSignUp).Saved()[models.FieldFirstName] != "Ada" {
		t.Fatal("draft leaked into snapshot")
	}
	w.Cancel()
	if got := w.Form(models.StepSignUp).Value(models.FieldFirstName); got != "Ada" {
		t.Fatalf("cancel left %q", got)
	}
}

func TestActionInProgress(t *testing.T) {
	w := NewWizard()
	t1, err := w.Begin(ActionDiscount)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Begin(ActionDiscount); !errors.Is(err, ErrActionInProgress) {
		t.Fatalf("expected ErrActionInProgress, got %v", err)
	}
	if _, err := w.Begin(ActionPurchase); err != nil {
		t.Fatalf("other actions must stay available: %v", err)
	}
	w.Finish(t1)
	if _, err := w.Begin(ActionDiscount); err != nil {
		t.Fatalf("finish did not release: %v", err)
	}
}

func TestStaleTicket(t *testing.T) {
	w := NewWizard()
	ticket, _ := w.Begin(ActionDiscount)
	if !w.Current(ticket) {
		t.Fatal("fresh ticket reported stale")
	}
	fillSignUp(t, w.Form(models.StepSignUp))
	w.Advance()
	if w.Current(ticket) {
		t.Fatal("ticket still current after a transition")
	}
}

func TestWizardSnapshotRoundTrip(t *testing.T) {
	w := NewWizard()
	fillSignUp(t, w.Form(models.StepSignUp))
	w.Advance()
	_ = w.SetField(models.StepAddress, models.FieldCity, "Springfield")

	r, err := RestoreWizard(w.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if r.State() != w.State() || r.Generation() != w.Generation() {
		t.Fatal("state lost in snapshot")
	}
	if r.Form(models.StepAddress).Value(models.FieldCity) != "Springfield" {
		t.Fatal("draft lost in snapshot")
	}

	if _, err := RestoreWizard(WizardSnapshot{State: models.WizardState{ActiveStep: "shipping"}}); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}
