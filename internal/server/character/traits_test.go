package character

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// permutations yields every ordering of values, duplicates included
func permutations(values []int) [][]int {
	if len(values) <= 1 {
		return [][]int{append([]int(nil), values...)}
	}
	var out [][]int
	for i := range values {
		rest := make([]int, 0, len(values)-1)
		rest = append(rest, values[:i]...)
		rest = append(rest, values[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]int{values[i]}, p...))
		}
	}
	return out
}

func TestValidTraitPool_AllPermutations(t *testing.T) {
	perms := permutations([]int{2, 1, 1, 0, 0, -1})
	require.Len(t, perms, 720)
	for _, p := range perms {
		require.True(t, ValidTraitPool(p), "permutation %v", p)
	}
}

func TestValidTraitPool_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		values []int
	}{
		{name: "empty", values: nil},
		{name: "five slots", values: []int{2, 1, 1, 0, 0}},
		{name: "seven slots", values: []int{2, 1, 1, 0, 0, -1, 0}},
		{name: "two twos", values: []int{2, 2, 1, 0, 0, -1}},
		{name: "no minus one", values: []int{2, 1, 1, 0, 0, 0}},
		{name: "out of range", values: []int{3, 1, 1, 0, 0, -1}},
		{name: "all zero", values: []int{0, 0, 0, 0, 0, 0}},
		{name: "same sum wrong shape", values: []int{2, 2, 0, 0, -1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, ValidTraitPool(tt.values))
		})
	}
}

func TestValidTraitPool_DoesNotReorderInput(t *testing.T) {
	values := []int{2, -1, 1, 0, 1, 0}
	require.True(t, ValidTraitPool(values))
	require.Equal(t, []int{2, -1, 1, 0, 1, 0}, values)
}

func TestRemainingTraitValues(t *testing.T) {
	tests := []struct {
		name     string
		assigned []int
		want     []int
		ok       bool
	}{
		{name: "nothing assigned", assigned: nil, want: []int{2, 1, 1, 0, 0, -1}, ok: true},
		{name: "two and one", assigned: []int{2, 1}, want: []int{1, 0, 0, -1}, ok: true},
		{name: "complete", assigned: []int{2, 1, 1, 0, 0, -1}, want: []int{}, ok: true},
		{name: "second two", assigned: []int{2, 2}, ok: false},
		{name: "unknown value", assigned: []int{5}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RemainingTraitValues(tt.assigned)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTraitsMap(t *testing.T) {
	tr := Traits{Agility: 2, Strength: 1, Finesse: 1, Instinct: 0, Presence: 0, Knowledge: -1}
	m := tr.Map()
	require.Len(t, m, TraitCount)
	require.Equal(t, -1, m[TraitKnowledge])

	v, ok := tr.Value(TraitAgility)
	require.True(t, ok)
	require.Equal(t, 2, v)

	_, ok = tr.Value("luck")
	require.False(t, ok)
}
