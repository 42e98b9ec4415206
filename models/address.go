package models

// Address is a billing address as captured by the address step and stored on orders.
type Address struct {
	Line1      string `json:"line1" bson:"address_line1" db:"address_line1"`
	Line2      string `json:"line2,omitempty" bson:"address_line2,omitempty" db:"address_line2"`
	City       string `json:"city" bson:"city" db:"city"`
	Region     string `json:"region" bson:"state" db:"state"`
	PostalCode string `json:"postalCode" bson:"zip_code" db:"zip_code"`
	Country    string `json:"country" bson:"country" db:"country"`
}

// CountryClass groups countries by the address rules that apply to them.
type CountryClass int

const (
	CountryClassNone CountryClass = iota
	CountryClassUS
	CountryClassCA
	CountryClassOther
)

func (c CountryClass) String() string {
	switch c {
	case CountryClassUS:
		return "US"
	case CountryClassCA:
		return "CA"
	case CountryClassOther:
		return "other"
	}
	return "none"
}

// RequiresRegion reports whether a state/province is mandatory for the class.
func (c CountryClass) RequiresRegion() bool {
	return c == CountryClassUS || c == CountryClassCA
}
