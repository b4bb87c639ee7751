package character

import (
	"strings"
	"unicode/utf8"

	"charforge/internal/server/core"
)

// Field caps applied during normalization
const (
	NameMaxLength            = 100
	PronounsMaxLength        = 50
	ExperienceLabelMaxLength = 100
	ItemNameMaxLength        = 100
	ItemDescriptionMaxLength = 255

	// ExperienceModifier is the fixed bonus every experience grants
	ExperienceModifier = 2
)

// Experience is a normalized experience row
type Experience struct {
	Label    string
	Modifier int
}

// Item is a normalized inventory row
type Item struct {
	Name        string
	Description string
	Amount      int
}

// Build is a validated, normalized build submission
type Build struct {
	Name        string
	Pronouns    string
	Level       int
	HeritageID  string
	ClassID     string
	SubclassID  string
	CommunityID string
	Traits      Traits
	HP          *int
	Evasion     *int
	ArmorScore  int
	ArmorID     string
	PrimaryID   string
	SecondaryID string
	Experiences []Experience
	Inventory   []Item
}

// NewBuild validates the basics, then the trait pool, and normalizes child collections.
// Basics failures are reported without evaluating traits.
func NewBuild(req core.BuildRequest) (Build, error) {
	basics := req.Basics
	name := truncate(strings.TrimSpace(basics.Name), NameMaxLength)

	var fields []core.FieldError
	if name == "" {
		fields = append(fields, core.FieldError{Field: "basics.name", Message: "is required"})
	}
	if basics.Level < 1 {
		fields = append(fields, core.FieldError{Field: "basics.level", Message: "must be at least 1"})
	}
	if len(fields) > 0 {
		return Build{}, core.Validation(fields...)
	}

	traits, err := traitsFromInput(req.Traits)
	if err != nil {
		return Build{}, err
	}

	b := Build{
		Name:        name,
		Pronouns:    truncate(strings.TrimSpace(basics.Pronouns), PronounsMaxLength),
		Level:       basics.Level,
		HeritageID:  strings.TrimSpace(basics.HeritageID),
		ClassID:     strings.TrimSpace(basics.ClassID),
		SubclassID:  strings.TrimSpace(basics.SubclassID),
		CommunityID: strings.TrimSpace(basics.CommunityID),
		Traits:      traits,
		Evasion:     req.Defense.Evasion,
		ArmorScore:  req.Defense.ArmorScore,
		ArmorID:     strings.TrimSpace(req.Defense.ArmorID),
		PrimaryID:   strings.TrimSpace(req.Gear.PrimaryWeaponID),
		SecondaryID: strings.TrimSpace(req.Gear.SecondaryWeaponID),
		Experiences: NormalizeExperiences(req.Experiences),
		Inventory:   MergeInventory(req.Inventory),
	}
	if req.HP != nil {
		hp := Clamp(*req.HP, HPMax)
		b.HP = &hp
	}
	return b, nil
}

func traitsFromInput(in core.TraitsInput) (Traits, error) {
	slots := []*int{in.Agility, in.Strength, in.Finesse, in.Instinct, in.Presence, in.Knowledge}

	var missing []core.FieldError
	values := make([]int, 0, TraitCount)
	for i, slot := range slots {
		if slot == nil {
			missing = append(missing, core.FieldError{Field: "traits." + TraitNames[i], Message: "is not assigned"})
			continue
		}
		values = append(values, *slot)
	}
	if len(missing) > 0 {
		return Traits{}, core.Validation(missing...)
	}

	if !ValidTraitPool(values) {
		return Traits{}, core.Validation(core.FieldError{
			Field:   "traits",
			Message: "must be assigned as +2,+1,+1,+0,+0,-1",
		})
	}

	return Traits{
		Agility:   values[0],
		Strength:  values[1],
		Finesse:   values[2],
		Instinct:  values[3],
		Presence:  values[4],
		Knowledge: values[5],
	}, nil
}

// NormalizeExperiences trims and caps labels, drops empty ones and removes exact duplicates,
// keeping the first occurrence. Comparison is case-sensitive.
func NormalizeExperiences(in []core.ExperienceInput) []Experience {
	seen := make(map[string]struct{}, len(in))
	out := make([]Experience, 0, len(in))
	for _, e := range in {
		label := truncate(strings.TrimSpace(e.Label), ExperienceLabelMaxLength)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, Experience{Label: label, Modifier: ExperienceModifier})
	}
	return out
}

// MergeInventory collapses entries sharing a case-insensitive (name, description) key,
// summing their amounts. The first occurrence keeps its position and spelling.
func MergeInventory(in []core.InventoryInput) []Item {
	index := make(map[string]int, len(in))
	out := make([]Item, 0, len(in))
	for _, it := range in {
		name := truncate(strings.TrimSpace(it.Name), ItemNameMaxLength)
		if name == "" {
			continue
		}
		desc := truncate(strings.TrimSpace(it.Description), ItemDescriptionMaxLength)
		amount := max(it.Amount, 0)

		key := strings.ToLower(name) + "\x00" + strings.ToLower(desc)
		if i, ok := index[key]; ok {
			out[i].Amount += amount
			continue
		}
		index[key] = len(out)
		out = append(out, Item{Name: name, Description: desc, Amount: amount})
	}
	return out
}

// truncate caps s at n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
