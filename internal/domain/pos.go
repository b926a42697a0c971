package domain

import (
	"time"
)

// POS type constants.
const (
	PosTypeCafe           = "CAFE"
	PosTypeBakery         = "BAKERY"
	PosTypeVendingMachine = "VENDING_MACHINE"
)

// Pos is a point-of-sale location on campus that users can review.
type Pos struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Street      string    `json:"street"`
	HouseNumber string    `json:"house_number"`
	PostalCode  string    `json:"postal_code"`
	City        string    `json:"city"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsValidPosType reports whether t is one of the known POS types.
func IsValidPosType(t string) bool {
	switch t {
	case PosTypeCafe, PosTypeBakery, PosTypeVendingMachine:
		return true
	default:
		return false
	}
}
