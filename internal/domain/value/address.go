package value

import (
	"strings"

	"github.com/example/ec-fulfillment/internal/domain/domainerr"
)

// Address is a postal address used for shipping and billing.
type Address struct {
	Line1      string `json:"line1" bson:"line1"`
	Line2      string `json:"line2,omitempty" bson:"line2,omitempty"`
	City       string `json:"city" bson:"city"`
	Region     string `json:"region,omitempty" bson:"region,omitempty"`
	PostalCode string `json:"postal_code" bson:"postal_code"`
	Country    string `json:"country" bson:"country"`
}

func (a Address) Validate() error {
	switch {
	case strings.TrimSpace(a.Line1) == "":
		return domainerr.Validationf("address line1 is required")
	case strings.TrimSpace(a.City) == "":
		return domainerr.Validationf("address city is required")
	case strings.TrimSpace(a.PostalCode) == "":
		return domainerr.Validationf("address postal code is required")
	case strings.TrimSpace(a.Country) == "":
		return domainerr.Validationf("address country is required")
	}
	return nil
}
