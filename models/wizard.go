package models

// Step identifies one section of the checkout wizard.
type Step string

const (
	StepSignUp  Step = "signup"
	StepAddress Step = "address"
	StepPayment Step = "payment"
)

// StepOrder lists the wizard steps in the order they must be completed.
var StepOrder = []Step{StepSignUp, StepAddress, StepPayment}

// Index returns the position of the step in StepOrder, or -1 for an unknown step.
func (s Step) Index() int {
	for i, st := range StepOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Step) Valid() bool {
	return s.Index() >= 0
}

// Next returns the step after s. The second value is false for the last step.
func (s Step) Next() (Step, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(StepOrder) {
		return "", false
	}
	return StepOrder[i+1], true
}

// StepCompletion records which steps have advanced successfully at least once.
type StepCompletion struct {
	SignUp  bool `json:"signUp" bson:"signUp"`
	Address bool `json:"address" bson:"address"`
	Payment bool `json:"payment" bson:"payment"`
}

// Done reports whether the given step has been completed.
func (c StepCompletion) Done(s Step) bool {
	switch s {
	case StepSignUp:
		return c.SignUp
	case StepAddress:
		return c.Address
	case StepPayment:
		return c.Payment
	}
	return false
}

// Mark flags the step as completed.
func (c *StepCompletion) Mark(s Step) {
	switch s {
	case StepSignUp:
		c.SignUp = true
	case StepAddress:
		c.Address = true
	case StepPayment:
		c.Payment = true
	}
}

// WizardState is the externally visible state of the checkout wizard.
type WizardState struct {
	ActiveStep     Step           `json:"activeStep"`
	StepCompletion StepCompletion `json:"stepCompletion"`
}

// StepVisibility describes how a step is rendered.
type StepVisibility string

const (
	VisibilityOpen    StepVisibility = "open"    // editable
	VisibilitySummary StepVisibility = "summary" // read-only saved snapshot
	VisibilityHidden  StepVisibility = "hidden"  // never completed
)
