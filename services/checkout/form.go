package checkout

import (
	"fmt"
	"strconv"

	"traceaq/models"
	"traceaq/services/validation"
)

type fieldSpec struct {
	name      models.FieldName
	checkbox  bool
	sensitive bool
}

// ruleFunc validates one field against the whole set of values. sealed is true once
// the step was saved with its sensitive values, which are not kept afterwards.
type ruleFunc func(values map[models.FieldName]string, sealed bool, name models.FieldName) models.FieldResult

// changeHook runs after a value changed, before re-validation.
type changeHook func(values map[models.FieldName]string, name models.FieldName, old string)

// StepForm holds the values, touched flags and saved snapshot of one wizard step.
type StepForm struct {
	step     models.Step
	fields   []fieldSpec
	rule     ruleFunc
	onChange changeHook

	values  map[models.FieldName]string
	touched map[models.FieldName]bool
	saved   map[models.FieldName]string
	sealed  bool
}

// FormState is the persistable form of a StepForm. Sensitive values are never included.
type FormState struct {
	Step    models.Step                 `json:"step"`
	Values  map[models.FieldName]string `json:"values"`
	Touched map[models.FieldName]bool   `json:"touched,omitempty"`
	Saved   map[models.FieldName]string `json:"saved,omitempty"`
	Sealed  bool                        `json:"sealed,omitempty"`
}

func newStepForm(step models.Step, fields []fieldSpec, rule ruleFunc, onChange changeHook) *StepForm {
	f := &StepForm{
		step:     step,
		fields:   fields,
		rule:     rule,
		onChange: onChange,
		values:   make(map[models.FieldName]string, len(fields)),
		touched:  make(map[models.FieldName]bool, len(fields)),
	}
	for _, fs := range fields {
		f.values[fs.name] = ""
	}
	return f
}

func (f *StepForm) Step() models.Step {
	return f.step
}

func (f *StepForm) lookup(name models.FieldName) (fieldSpec, bool) {
	for _, fs := range f.fields {
		if fs.name == name {
			return fs, true
		}
	}
	return fieldSpec{}, false
}

// Fields lists the field names of the form in display order.
func (f *StepForm) Fields() []models.FieldName {
	out := make([]models.FieldName, 0, len(f.fields))
	for _, fs := range f.fields {
		out = append(out, fs.name)
	}
	return out
}

// SetField updates a value. It does not mark the field touched.
func (f *StepForm) SetField(name models.FieldName, value string) error {
	fs, ok := f.lookup(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownField)
	}
	if fs.checkbox {
		value = strconv.FormatBool(validation.ParseCheckbox(value))
	}
	old := f.values[name]
	f.values[name] = value
	if f.onChange != nil && old != value {
		f.onChange(f.values, name, old)
	}
	return nil
}

// SetChecked is SetField for checkbox inputs.
func (f *StepForm) SetChecked(name models.FieldName, checked bool) error {
	return f.SetField(name, strconv.FormatBool(checked))
}

// BlurField marks the field touched so its error becomes visible.
func (f *StepForm) BlurField(name models.FieldName) error {
	if _, ok := f.lookup(name); !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownField)
	}
	f.touched[name] = true
	return nil
}

func (f *StepForm) Value(name models.FieldName) string {
	return f.values[name]
}

func (f *StepForm) Touched(name models.FieldName) bool {
	return f.touched[name]
}

// Result is the current validation verdict of a field, touched or not.
func (f *StepForm) Result(name models.FieldName) models.FieldResult {
	if _, ok := f.lookup(name); !ok {
		return models.FieldResult{Valid: false, Message: "unknown field"}
	}
	return f.rule(f.values, f.sealed, name)
}

// VisibleError returns the message to display for a field. Untouched fields show nothing.
func (f *StepForm) VisibleError(name models.FieldName) string {
	if !f.touched[name] {
		return ""
	}
	if res := f.Result(name); !res.Valid {
		return res.Message
	}
	return ""
}

// Errors returns the visible error of every touched invalid field.
func (f *StepForm) Errors() map[models.FieldName]string {
	out := map[models.FieldName]string{}
	for _, fs := range f.fields {
		if msg := f.VisibleError(fs.name); msg != "" {
			out[fs.name] = msg
		}
	}
	return out
}

// Invalid returns every failing field regardless of touched state.
func (f *StepForm) Invalid() map[models.FieldName]string {
	out := map[models.FieldName]string{}
	for _, fs := range f.fields {
		if res := f.rule(f.values, f.sealed, fs.name); !res.Valid {
			out[fs.name] = res.Message
		}
	}
	return out
}

func (f *StepForm) IsComplete() bool {
	return len(f.Invalid()) == 0
}

// AttemptAdvance freezes the snapshot when the form is complete. Otherwise every field
// is marked touched so all errors show, and false is returned. Repeating the call without
// edits gives the same outcome.
func (f *StepForm) AttemptAdvance() bool {
	if !f.IsComplete() {
		for _, fs := range f.fields {
			f.touched[fs.name] = true
		}
		return false
	}
	f.saved = copyValues(f.values)
	for _, fs := range f.fields {
		if fs.sensitive {
			f.sealed = true
		}
	}
	return true
}

// HasSaved reports whether the step was ever advanced.
func (f *StepForm) HasSaved() bool {
	return f.saved != nil
}

// Saved returns a copy of the snapshot without sensitive values, or nil.
func (f *StepForm) Saved() map[models.FieldName]string {
	if f.saved == nil {
		return nil
	}
	return f.publicCopy(f.saved)
}

// Values returns the current values without sensitive ones.
func (f *StepForm) Values() map[models.FieldName]string {
	return f.publicCopy(f.values)
}

// Cancel discards unsaved edits: values return to the snapshot, or to empty when the
// step was never saved, and touched flags are cleared.
func (f *StepForm) Cancel() {
	if f.saved != nil {
		f.values = copyValues(f.saved)
	} else {
		for k := range f.values {
			f.values[k] = ""
		}
	}
	for _, fs := range f.fields {
		if _, ok := f.values[fs.name]; !ok {
			f.values[fs.name] = ""
		}
	}
	f.touched = make(map[models.FieldName]bool, len(f.fields))
}

// ClearSensitive drops password-like values from memory.
func (f *StepForm) ClearSensitive() {
	for _, fs := range f.fields {
		if fs.sensitive {
			f.values[fs.name] = ""
			if f.saved != nil {
				f.saved[fs.name] = ""
			}
		}
	}
}

// State exports the form for storage.
func (f *StepForm) State() FormState {
	st := FormState{
		Step:   f.step,
		Values: f.publicCopy(f.values),
		Sealed: f.sealed,
	}
	if len(f.touched) > 0 {
		st.Touched = make(map[models.FieldName]bool, len(f.touched))
		for k, v := range f.touched {
			if v {
				st.Touched[k] = true
			}
		}
	}
	if f.saved != nil {
		st.Saved = f.publicCopy(f.saved)
	}
	return st
}

// restore loads a stored state into a freshly built form, ignoring unknown fields.
func (f *StepForm) restore(st FormState) {
	for k, v := range st.Values {
		if _, ok := f.lookup(k); ok {
			f.values[k] = v
		}
	}
	for k, v := range st.Touched {
		if _, ok := f.lookup(k); ok && v {
			f.touched[k] = true
		}
	}
	if st.Saved != nil {
		f.saved = make(map[models.FieldName]string, len(f.fields))
		for _, fs := range f.fields {
			f.saved[fs.name] = st.Saved[fs.name]
		}
	}
	f.sealed = st.Sealed
}

func (f *StepForm) publicCopy(src map[models.FieldName]string) map[models.FieldName]string {
	out := make(map[models.FieldName]string, len(src))
	for _, fs := range f.fields {
		if fs.sensitive {
			continue
		}
		out[fs.name] = src[fs.name]
	}
	return out
}

func copyValues(src map[models.FieldName]string) map[models.FieldName]string {
	out := make(map[models.FieldName]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
