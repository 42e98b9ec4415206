package checkout

import (
	"fmt"
	"sync"

	"traceaq/models"
)

// Action names an asynchronous operation started from the wizard.
type Action string

const (
	ActionAdvance  Action = "advance"
	ActionDiscount Action = "discount"
	ActionPurchase Action = "purchase"
)

// Ticket identifies an in-flight action and the wizard position it was issued at.
type Ticket struct {
	Action     Action      `json:"action"`
	Step       models.Step `json:"step"`
	Generation uint64      `json:"generation"`
}

// WizardSnapshot is the persistable state of a Wizard.
type WizardSnapshot struct {
	State      models.WizardState        `json:"state"`
	Generation uint64                    `json:"generation"`
	Forms      map[models.Step]FormState `json:"forms"`
}

// Wizard sequences the sign up, address and payment steps. Exactly one step is open at
// a time; a step can only be opened once every step before it was saved.
type Wizard struct {
	mu         sync.Mutex
	forms      map[models.Step]*StepForm
	state      models.WizardState
	generation uint64
	inFlight   map[Action]bool
}

func NewWizard() *Wizard {
	return &Wizard{
		forms: map[models.Step]*StepForm{
			models.StepSignUp:  NewSignUpForm(),
			models.StepAddress: NewAddressForm(),
			models.StepPayment: NewPaymentForm(),
		},
		state:    models.WizardState{ActiveStep: models.StepSignUp},
		inFlight: map[Action]bool{},
	}
}

// RestoreWizard rebuilds a wizard from a snapshot. Missing forms start empty.
func RestoreWizard(snap WizardSnapshot) (*Wizard, error) {
	w := NewWizard()
	if snap.State.ActiveStep != "" {
		if !snap.State.ActiveStep.Valid() {
			return nil, fmt.Errorf("%s: %w", snap.State.ActiveStep, ErrUnknownStep)
		}
		w.state = snap.State
	}
	w.generation = snap.Generation
	for step, st := range snap.Forms {
		if st.Step == "" {
			st.Step = step
		}
		f, err := RestoreForm(st)
		if err != nil {
			return nil, err
		}
		w.forms[step] = f
	}
	return w, nil
}

func (w *Wizard) Snapshot() WizardSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := WizardSnapshot{
		State:      w.state,
		Generation: w.generation,
		Forms:      make(map[models.Step]FormState, len(w.forms)),
	}
	for step, f := range w.forms {
		snap.Forms[step] = f.State()
	}
	return snap
}

func (w *Wizard) State() models.WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wizard) Generation() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generation
}

// Form returns the form backing a step. Callers must not keep it across transitions.
func (w *Wizard) Form(step models.Step) *StepForm {
	return w.forms[step]
}

func (w *Wizard) openForm(step models.Step) (*StepForm, error) {
	if !step.Valid() {
		return nil, fmt.Errorf("%s: %w", step, ErrUnknownStep)
	}
	if step != w.state.ActiveStep {
		return nil, fmt.Errorf("%s: %w", step, ErrStepNotOpen)
	}
	return w.forms[step], nil
}

// SetField edits a field of the open step.
func (w *Wizard) SetField(step models.Step, name models.FieldName, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.openForm(step)
	if err != nil {
		return err
	}
	return f.SetField(name, value)
}

// BlurField marks a field of the open step touched.
func (w *Wizard) BlurField(step models.Step, name models.FieldName) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.openForm(step)
	if err != nil {
		return err
	}
	return f.BlurField(name)
}

// Advance saves the open step. On success the step is marked complete and the next step
// opens; saving the payment step enables purchase and keeps it open.
func (w *Wizard) Advance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	step := w.state.ActiveStep
	if !w.forms[step].AttemptAdvance() {
		return false
	}
	w.state.StepCompletion.Mark(step)
	if next, ok := step.Next(); ok {
		w.state.ActiveStep = next
	}
	w.generation++
	return true
}

// Navigate opens target if it is the active step or every earlier step was saved.
// Drafts of the step being left are kept.
func (w *Wizard) Navigate(target models.Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !target.Valid() {
		return false
	}
	if target == w.state.ActiveStep {
		return true
	}
	for _, prior := range models.StepOrder[:target.Index()] {
		if !w.state.StepCompletion.Done(prior) {
			return false
		}
	}
	w.state.ActiveStep = target
	w.generation++
	return true
}

// Cancel reverts the open step to its saved snapshot.
func (w *Wizard) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.forms[w.state.ActiveStep].Cancel()
}

// Visibility tells how a step renders: open when active, summary once saved, else hidden.
func (w *Wizard) Visibility(step models.Step) models.StepVisibility {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case step == w.state.ActiveStep:
		return models.VisibilityOpen
	case w.state.StepCompletion.Done(step):
		return models.VisibilitySummary
	}
	return models.VisibilityHidden
}

// PurchaseEnabled reports whether every step has been saved.
func (w *Wizard) PurchaseEnabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := w.state.StepCompletion
	return c.SignUp && c.Address && c.Payment
}

// Begin marks an action as processing and issues its ticket. A second Begin of the same
// action before Finish fails with ErrActionInProgress.
func (w *Wizard) Begin(action Action) (Ticket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[action] {
		return Ticket{}, fmt.Errorf("%s: %w", action, ErrActionInProgress)
	}
	w.inFlight[action] = true
	return Ticket{Action: action, Step: w.state.ActiveStep, Generation: w.generation}, nil
}

func (w *Wizard) Finish(t Ticket) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, t.Action)
}

// InFlight reports whether the action is processing.
func (w *Wizard) InFlight(action Action) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight[action]
}

// Current reports whether no transition happened since the ticket was issued.
// Responses for stale tickets must be discarded.
func (w *Wizard) Current(t Ticket) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return t.Generation == w.generation && t.Step == w.state.ActiveStep
}

// View renders every step for the client.
func (w *Wizard) View() []models.StepView {
	views := make([]models.StepView, 0, len(models.StepOrder))
	for _, step := range models.StepOrder {
		vis := w.Visibility(step)
		w.mu.Lock()
		f := w.forms[step]
		v := models.StepView{
			Step:       step,
			Visibility: vis,
			Complete:   f.IsComplete(),
		}
		switch vis {
		case models.VisibilityOpen:
			v.Values = f.Values()
			v.Errors = f.Errors()
			v.Saved = f.Saved()
		case models.VisibilitySummary:
			v.Saved = f.Saved()
		}
		w.mu.Unlock()
		views = append(views, v)
	}
	return views
}
