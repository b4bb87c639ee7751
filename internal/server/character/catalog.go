package character

import (
	"context"
	"errors"
)

// ErrUnknownEntry is returned by a Catalog when an id has no entry
var ErrUnknownEntry = errors.New("unknown catalog entry")

// Weapon slots
const (
	SlotPrimary   = "primary"
	SlotSecondary = "secondary"
)

// ClassInfo carries the starting stats of a class
type ClassInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	StartingHP      int    `json:"startingHp"`
	StartingEvasion int    `json:"startingEvasion"`
	Feature         string `json:"feature,omitempty"`
}

// Armor is a catalog armor stat block
type Armor struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	BaseScore       int    `json:"baseScore"`
	MajorThreshold  int    `json:"majorThreshold"`
	SevereThreshold int    `json:"severeThreshold"`
	Feature         string `json:"feature,omitempty"`
	MinLevel        int    `json:"minLevel"`
}

// Weapon is a catalog weapon stat block, Slot is "primary" or "secondary"
type Weapon struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Trait   string `json:"trait"`
	Range   string `json:"range"`
	Damage  string `json:"damage"`
	Feature string `json:"feature,omitempty"`
	Slot    string `json:"slot"`
}

// NamedEntry is a selectable catalog option such as a heritage or community
type NamedEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	ClassID string `json:"classId,omitempty"`
}

// Catalog is the read-only reference data the build engine depends on
type Catalog interface {
	ClassInfo(ctx context.Context, id string) (ClassInfo, error)
	Armor(ctx context.Context, id string) (Armor, error)
	Weapon(ctx context.Context, id string) (Weapon, error)
	Heritages(ctx context.Context) ([]NamedEntry, error)
	Subclasses(ctx context.Context, classID string) ([]NamedEntry, error)
	Communities(ctx context.Context) ([]NamedEntry, error)
}

// CatalogSeed is the document loaded by the catalog seeding command
type CatalogSeed struct {
	Classes     []ClassInfo  `json:"classes"`
	Subclasses  []NamedEntry `json:"subclasses"`
	Heritages   []NamedEntry `json:"heritages"`
	Communities []NamedEntry `json:"communities"`
	Armors      []Armor      `json:"armors"`
	Weapons     []Weapon     `json:"weapons"`
}

// ContainsEntry reports whether id is present in entries
func ContainsEntry(entries []NamedEntry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}
