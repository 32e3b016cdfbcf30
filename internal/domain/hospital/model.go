package hospital

import (
	"time"

	"github.com/google/uuid"
)

// BloodGroup is one of the eight ABO/Rh blood group tags. Inventory and
// requests only ever use this closed set; free-form strings are rejected at
// the boundary.
type BloodGroup string

const (
	BloodAPos  BloodGroup = "A+"
	BloodANeg  BloodGroup = "A-"
	BloodBPos  BloodGroup = "B+"
	BloodBNeg  BloodGroup = "B-"
	BloodABPos BloodGroup = "AB+"
	BloodABNeg BloodGroup = "AB-"
	BloodOPos  BloodGroup = "O+"
	BloodONeg  BloodGroup = "O-"
)

// BloodGroups lists every recognized blood group tag.
var BloodGroups = []BloodGroup{
	BloodAPos, BloodANeg, BloodBPos, BloodBNeg,
	BloodABPos, BloodABNeg, BloodOPos, BloodONeg,
}

func (g BloodGroup) Valid() bool {
	switch g {
	case BloodAPos, BloodANeg, BloodBPos, BloodBNeg,
		BloodABPos, BloodABNeg, BloodOPos, BloodONeg:
		return true
	}
	return false
}

// Organ is one of the organ kinds a hospital can offer for transplant.
type Organ string

const (
	OrganKidney   Organ = "Kidney"
	OrganLiver    Organ = "Liver"
	OrganHeart    Organ = "Heart"
	OrganLung     Organ = "Lung"
	OrganPancreas Organ = "Pancreas"
	OrganCornea   Organ = "Cornea"
)

// Organs lists every recognized organ kind.
var Organs = []Organ{
	OrganKidney, OrganLiver, OrganHeart, OrganLung, OrganPancreas, OrganCornea,
}

func (o Organ) Valid() bool {
	switch o {
	case OrganKidney, OrganLiver, OrganHeart, OrganLung, OrganPancreas, OrganCornea:
		return true
	}
	return false
}

// Hospital maps to the hospital table. The oxygen cylinder count lives on the
// hospital row itself; blood and organ stock live in dedicated tables.
type Hospital struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Email           string    `db:"email" json:"email"`
	Phone           string    `db:"phone" json:"phone"`
	Address         string    `db:"address" json:"address"`
	City            string    `db:"city" json:"city"`
	State           string    `db:"state" json:"state"`
	OxygenCylinders int       `db:"oxygen_cylinders" json:"oxygen_cylinders"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// BloodStock is a single blood-group level in a hospital's inventory.
type BloodStock struct {
	Group BloodGroup `db:"blood_group" json:"blood_group"`
	Units int        `db:"units" json:"units"`
}

// OrganOffer maps to the organ_offer table. Each offer is a discrete unit:
// accepting an organ request removes exactly one matching row.
type OrganOffer struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	HospitalID uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	Organ      Organ      `db:"organ" json:"organ"`
	BloodGroup BloodGroup `db:"blood_group" json:"blood_group"`
	DonorAge   int        `db:"donor_age" json:"donor_age"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// InventorySnapshot aggregates a hospital's advertised stock for reads and
// for full replacement via the inventory endpoint.
type InventorySnapshot struct {
	OxygenCylinders int           `json:"oxygen_cylinders"`
	Blood           []BloodStock  `json:"blood"`
	Organs          []*OrganOffer `json:"organs"`
}

// Profile is a hospital together with its current inventory snapshot.
type Profile struct {
	Hospital
	Inventory InventorySnapshot `json:"inventory"`
}

// Summary is the abbreviated hospital view returned by the matching query.
type Summary struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	City  string    `db:"city" json:"city"`
	State string    `db:"state" json:"state"`
	Phone string    `db:"phone" json:"phone"`
}
