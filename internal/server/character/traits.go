// Package character holds the build-time and live-state rules for player characters:
// the trait pool, tracker arithmetic and build payload normalization.
package character

import (
	"slices"
	"sort"
)

// TraitCount is the number of trait slots on a character
const TraitCount = 6

// Trait names in sheet order
const (
	TraitAgility   = "agility"
	TraitStrength  = "strength"
	TraitFinesse   = "finesse"
	TraitInstinct  = "instinct"
	TraitPresence  = "presence"
	TraitKnowledge = "knowledge"
)

// TraitNames lists the six traits in sheet order
var TraitNames = []string{
	TraitAgility,
	TraitStrength,
	TraitFinesse,
	TraitInstinct,
	TraitPresence,
	TraitKnowledge,
}

// traitPool is the capacity map of the starting distribution: value -> copies
var traitPool = map[int]int{2: 1, 1: 2, 0: 2, -1: 1}

// sortedPool is traitPool expanded and sorted ascending
var sortedPool = []int{-1, 0, 0, 1, 1, 2}

// Traits holds the six assigned trait modifiers
type Traits struct {
	Agility   int
	Strength  int
	Finesse   int
	Instinct  int
	Presence  int
	Knowledge int
}

// Values returns the traits in sheet order
func (t Traits) Values() []int {
	return []int{t.Agility, t.Strength, t.Finesse, t.Instinct, t.Presence, t.Knowledge}
}

// Map returns the traits keyed by name
func (t Traits) Map() map[string]int {
	values := t.Values()
	m := make(map[string]int, TraitCount)
	for i, name := range TraitNames {
		m[name] = values[i]
	}
	return m
}

// Value looks up a trait by name
func (t Traits) Value(name string) (int, bool) {
	v, ok := t.Map()[name]
	return v, ok
}

// ValidTraitPool reports whether values, taken as a multiset, equal exactly {-1,0,0,1,1,2}
func ValidTraitPool(values []int) bool {
	if len(values) != TraitCount {
		return false
	}
	sorted := slices.Clone(values)
	sort.Ints(sorted)
	return slices.Equal(sorted, sortedPool)
}

// RemainingTraitValues returns the values still available after the assigned ones are taken
// from the pool, highest first. The second result is false when assigned already exceeds the
// pool for some value, in which case no completion is legal.
func RemainingTraitValues(assigned []int) ([]int, bool) {
	left := make(map[int]int, len(traitPool))
	for v, n := range traitPool {
		left[v] = n
	}
	for _, v := range assigned {
		if left[v] == 0 {
			return nil, false
		}
		left[v]--
	}

	remaining := make([]int, 0, TraitCount)
	for _, v := range []int{2, 1, 0, -1} {
		for i := 0; i < left[v]; i++ {
			remaining = append(remaining, v)
		}
	}
	return remaining, true
}
