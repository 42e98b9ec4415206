package validation

import (
	"regexp"
	"strings"

	"traceaq/models"
)

var (
	zipUS    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	postalCA = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z][ -]?\d[A-Za-z]\d$`)
)

// ClassifyCountry maps a free-text country onto the address rule set that applies to it.
func ClassifyCountry(country string) models.CountryClass {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "":
		return models.CountryClassNone
	case "us", "usa", "united states", "united states of america":
		return models.CountryClassUS
	case "ca", "can", "canada":
		return models.CountryClassCA
	}
	return models.CountryClassOther
}

func Line1(value string) models.FieldResult {
	return Required(value, "Street address is required")
}

func City(value string) models.FieldResult {
	return Required(value, "City is required")
}

func Country(value string) models.FieldResult {
	return Required(value, "Country is required")
}

// PostalCode applies the format of the postal system of the given country.
// Countries without a known format only need a non-empty value.
func PostalCode(value, country string) models.FieldResult {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail("Postal code is required")
	}
	switch ClassifyCountry(country) {
	case models.CountryClassUS:
		if !zipUS.MatchString(v) {
			return fail("Enter a valid US ZIP (12345 or 12345-6789)")
		}
	case models.CountryClassCA:
		if !postalCA.MatchString(v) {
			return fail("Enter a valid Canadian postal code (A1A 1A1)")
		}
	}
	return ok()
}

// Region is mandatory for the US and Canada, where it must name a known state,
// district, province or territory. Elsewhere any value, including none, is accepted.
func Region(value, country string) models.FieldResult {
	class := ClassifyCountry(country)
	if !class.RequiresRegion() {
		return ok()
	}
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "" {
		return fail("State/Province is required")
	}
	known := usStates
	if class == models.CountryClassCA {
		known = caProvinces
	}
	if _, found := known[v]; !found {
		return fail("Enter a valid state or province")
	}
	return ok()
}

// AddressErrors validates a whole address and returns the failing fields.
func AddressErrors(a models.Address) map[models.FieldName]string {
	out := map[models.FieldName]string{}
	checks := map[models.FieldName]models.FieldResult{
		models.FieldLine1:      Line1(a.Line1),
		models.FieldCity:       City(a.City),
		models.FieldRegion:     Region(a.Region, a.Country),
		models.FieldPostalCode: PostalCode(a.PostalCode, a.Country),
		models.FieldCountry:    Country(a.Country),
	}
	for name, res := range checks {
		if !res.Valid {
			out[name] = res.Message
		}
	}
	return out
}
