package checkout

import (
	"traceaq/models"
	"traceaq/services/validation"
)

var signUpFields = []fieldSpec{
	{name: models.FieldFirstName},
	{name: models.FieldLastName},
	{name: models.FieldEmail},
	{name: models.FieldPassword, sensitive: true},
	{name: models.FieldConfirmPassword, sensitive: true},
	{name: models.FieldAgreeTerms, checkbox: true},
	{name: models.FieldAgreePrivacy, checkbox: true},
	{name: models.FieldAgreeMarketing, checkbox: true},
}

var addressFields = []fieldSpec{
	{name: models.FieldLine1},
	{name: models.FieldLine2},
	{name: models.FieldCity},
	{name: models.FieldRegion},
	{name: models.FieldPostalCode},
	{name: models.FieldCountry},
}

var paymentFields = []fieldSpec{
	{name: models.FieldCardholderName},
	{name: models.FieldPaymentMethod},
}

func valid() models.FieldResult {
	return models.FieldResult{Valid: true}
}

func signUpRule(v map[models.FieldName]string, sealed bool, name models.FieldName) models.FieldResult {
	// Once saved, the credentials live with the identity provider; empty password inputs
	// mean "unchanged".
	onFile := sealed && v[models.FieldPassword] == "" && v[models.FieldConfirmPassword] == ""
	switch name {
	case models.FieldFirstName:
		return validation.FirstName(v[name])
	case models.FieldLastName:
		return validation.LastName(v[name])
	case models.FieldEmail:
		return validation.Email(v[name])
	case models.FieldPassword:
		if onFile {
			return valid()
		}
		return validation.Password(v[name])
	case models.FieldConfirmPassword:
		if onFile {
			return valid()
		}
		return validation.ConfirmPassword(v[models.FieldPassword], v[name])
	case models.FieldAgreeTerms:
		return validation.Terms(validation.ParseCheckbox(v[name]))
	case models.FieldAgreePrivacy:
		return validation.Privacy(validation.ParseCheckbox(v[name]))
	case models.FieldAgreeMarketing:
		return validation.Marketing(validation.ParseCheckbox(v[name]))
	}
	return valid()
}

func addressRule(v map[models.FieldName]string, _ bool, name models.FieldName) models.FieldResult {
	country := v[models.FieldCountry]
	switch name {
	case models.FieldLine1:
		return validation.Line1(v[name])
	case models.FieldCity:
		return validation.City(v[name])
	case models.FieldRegion:
		return validation.Region(v[name], country)
	case models.FieldPostalCode:
		return validation.PostalCode(v[name], country)
	case models.FieldCountry:
		return validation.Country(v[name])
	}
	// line2 is optional
	return valid()
}

func paymentRule(v map[models.FieldName]string, _ bool, name models.FieldName) models.FieldResult {
	switch name {
	case models.FieldCardholderName:
		return validation.CardholderName(v[name])
	case models.FieldPaymentMethod:
		return validation.PaymentMethodRef(v[name])
	}
	return valid()
}

// clearRegionOnCountryClass empties the region when the country moves to another rule set.
func clearRegionOnCountryClass(v map[models.FieldName]string, name models.FieldName, old string) {
	if name != models.FieldCountry {
		return
	}
	if validation.ClassifyCountry(old) != validation.ClassifyCountry(v[name]) {
		v[models.FieldRegion] = ""
	}
}

func NewSignUpForm() *StepForm {
	return newStepForm(models.StepSignUp, signUpFields, signUpRule, nil)
}

func NewAddressForm() *StepForm {
	return newStepForm(models.StepAddress, addressFields, addressRule, clearRegionOnCountryClass)
}

func NewPaymentForm() *StepForm {
	return newStepForm(models.StepPayment, paymentFields, paymentRule, nil)
}

// NewForm builds the empty form of a step.
func NewForm(step models.Step) (*StepForm, error) {
	switch step {
	case models.StepSignUp:
		return NewSignUpForm(), nil
	case models.StepAddress:
		return NewAddressForm(), nil
	case models.StepPayment:
		return NewPaymentForm(), nil
	}
	return nil, ErrUnknownStep
}

// RestoreForm rebuilds a form from its stored state.
func RestoreForm(st FormState) (*StepForm, error) {
	f, err := NewForm(st.Step)
	if err != nil {
		return nil, err
	}
	f.restore(st)
	return f, nil
}

// SignUpDetailsFrom reads the sign up values, including any password still in memory.
func SignUpDetailsFrom(f *StepForm) models.SignUpDetails {
	return signUpDetails(f.Value)
}

func AddressFrom(f *StepForm) models.Address {
	return address(f.Value)
}

func PaymentDetailsFrom(f *StepForm) models.PaymentDetails {
	return paymentDetails(f.Value)
}

// SavedSignUpDetails reads the last saved sign up values. Passwords are never
// part of a saved snapshot.
func SavedSignUpDetails(f *StepForm) models.SignUpDetails {
	return signUpDetails(savedGetter(f))
}

// SavedAddress reads the address as it was when the step was last saved.
func SavedAddress(f *StepForm) models.Address {
	return address(savedGetter(f))
}

func SavedPaymentDetails(f *StepForm) models.PaymentDetails {
	return paymentDetails(savedGetter(f))
}

func savedGetter(f *StepForm) func(models.FieldName) string {
	saved := f.Saved()
	return func(name models.FieldName) string { return saved[name] }
}

func signUpDetails(get func(models.FieldName) string) models.SignUpDetails {
	return models.SignUpDetails{
		FirstName:       get(models.FieldFirstName),
		LastName:        get(models.FieldLastName),
		Email:           get(models.FieldEmail),
		Password:        get(models.FieldPassword),
		ConfirmPassword: get(models.FieldConfirmPassword),
		AgreeTerms:      validation.ParseCheckbox(get(models.FieldAgreeTerms)),
		AgreePrivacy:    validation.ParseCheckbox(get(models.FieldAgreePrivacy)),
		AgreeMarketing:  validation.ParseCheckbox(get(models.FieldAgreeMarketing)),
	}
}

func address(get func(models.FieldName) string) models.Address {
	return models.Address{
		Line1:      get(models.FieldLine1),
		Line2:      get(models.FieldLine2),
		City:       get(models.FieldCity),
		Region:     get(models.FieldRegion),
		PostalCode: get(models.FieldPostalCode),
		Country:    get(models.FieldCountry),
	}
}

func paymentDetails(get func(models.FieldName) string) models.PaymentDetails {
	return models.PaymentDetails{
		CardholderName:  get(models.FieldCardholderName),
		PaymentMethodID: get(models.FieldPaymentMethod),
	}
}
