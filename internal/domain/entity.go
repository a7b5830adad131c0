package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies which master an opening balance belongs to.
// It is a closed set: adding a new kind requires a new constant and a new
// MasterSource implementation, checked at compile time via EntityTypes.
type EntityType string

const (
	EntityParty EntityType = "party"
	EntityItem  EntityType = "item"
)

// EntityTypes lists every supported entity type.
var EntityTypes = []EntityType{EntityParty, EntityItem}

// Valid reports whether t is a supported entity type.
func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}

	return false
}

// MasterOpening is the resolved opening state of an entity's master record.
type MasterOpening struct {
	SignedBalance decimal.Decimal
	CreatedAt     time.Time
}

// Item is the item master. Only its opening value participates in the
// balance chain; stock quantities are owned by the inventory subsystem.
type Item struct {
	ID               string
	CompanyID        string
	Name             string
	OpeningValue     decimal.Decimal
	OpeningValueType BalanceType
	CreatedAt        time.Time
}

// SignedOpening returns the item opening value in the signed debit-positive
// convention.
func (i *Item) SignedOpening() decimal.Decimal {
	return Normalize(i.OpeningValue, i.OpeningValueType)
}
