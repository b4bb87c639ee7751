package character

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"charforge/internal/server/core"
)

func intp(v int) *int { return &v }

func validRequest() core.BuildRequest {
	return core.BuildRequest{
		Basics: core.BasicsInput{Name: "Marlowe", Pronouns: "they/them", Level: 1, ClassID: "ranger"},
		Traits: core.TraitsInput{
			Agility:   intp(2),
			Strength:  intp(1),
			Finesse:   intp(1),
			Instinct:  intp(0),
			Presence:  intp(0),
			Knowledge: intp(-1),
		},
	}
}

func TestNewBuild_Valid(t *testing.T) {
	req := validRequest()
	req.Basics.Name = "  Marlowe  "
	req.HP = intp(12)

	b, err := NewBuild(req)
	require.NoError(t, err)
	require.Equal(t, "Marlowe", b.Name)
	require.Equal(t, 2, b.Traits.Agility)
	require.Equal(t, -1, b.Traits.Knowledge)
	require.NotNil(t, b.HP)
	require.Equal(t, HPMax, *b.HP)
	require.Nil(t, b.Evasion)
}

func TestNewBuild_MissingBasics(t *testing.T) {
	req := validRequest()
	req.Basics.Name = "   "
	req.Basics.Level = 0
	// traits also broken: basics must be reported alone
	req.Traits.Agility = intp(2)
	req.Traits.Strength = intp(2)

	_, err := NewBuild(req)
	require.ErrorIs(t, err, core.ErrValidation)

	var e *core.Error
	require.ErrorAs(t, err, &e)
	require.Len(t, e.Fields, 2)
	require.Equal(t, "basics.name", e.Fields[0].Field)
	require.Equal(t, "basics.level", e.Fields[1].Field)
}

func TestNewBuild_InvalidTraits(t *testing.T) {
	req := validRequest()
	req.Traits.Strength = intp(2)

	_, err := NewBuild(req)
	var e *core.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, core.KindValidation, e.Kind)
	require.Equal(t, "traits", e.Fields[0].Field)
}

func TestNewBuild_UnassignedTrait(t *testing.T) {
	req := validRequest()
	req.Traits.Presence = nil

	_, err := NewBuild(req)
	var e *core.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, "traits.presence", e.Fields[0].Field)
}

func TestNormalizeExperiences(t *testing.T) {
	got := NormalizeExperiences([]core.ExperienceInput{
		{Label: " Sailor "},
		{Label: "Sailor"},
		{Label: "sailor"},
		{Label: "   "},
		{Label: strings.Repeat("x", 150)},
	})
	require.Len(t, got, 3)
	require.Equal(t, "Sailor", got[0].Label)
	require.Equal(t, "sailor", got[1].Label)
	require.Len(t, got[2].Label, ExperienceLabelMaxLength)
	for _, e := range got {
		require.Equal(t, ExperienceModifier, e.Modifier)
	}
}

func TestMergeInventory(t *testing.T) {
	got := MergeInventory([]core.InventoryInput{
		{Name: "Rope", Description: "50ft", Amount: 2},
		{Name: "Torch", Amount: 1},
		{Name: "rope", Description: "50FT", Amount: 3},
		{Name: "", Amount: 4},
		{Name: "Rope", Description: "short", Amount: -1},
	})
	require.Len(t, got, 3)
	require.Equal(t, Item{Name: "Rope", Description: "50ft", Amount: 5}, got[0])
	require.Equal(t, "Torch", got[1].Name)
	require.Equal(t, Item{Name: "Rope", Description: "short", Amount: 0}, got[2])
}

func TestTruncateRuneSafe(t *testing.T) {
	s := strings.Repeat("é", 120)
	got := truncate(s, 100)
	require.Equal(t, 100, len([]rune(got)))
}
