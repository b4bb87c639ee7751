package display

import (
	"fmt"
	"strings"
)

// traitOrder is the sheet's display order
var traitOrder = []string{"agility", "strength", "finesse", "instinct", "presence", "knowledge"}

// Dots renders a tracker as filled and empty boxes, e.g. "●●●○○○ 3/6"
func Dots(value, upper int) string {
	value = min(max(value, 0), upper)
	return fmt.Sprintf("%s%s%s%s %d/%d",
		Magenta, strings.Repeat("●", value), strings.Repeat("○", upper-value), Reset, value, upper)
}

// Signed formats a modifier with its sign
func Signed(v int) string {
	return fmt.Sprintf("%+d", v)
}

type TrackerLine struct {
	Name       string
	Value, Max int
}

// Sheet is the subset of a character sheet the renderer needs
type Sheet struct {
	Name, Pronouns          string
	Level                   int
	HeritageID, CommunityID string
	ClassID, SubclassID     string
	Evasion, ArmorScore     int
	Traits                  map[string]int
	Trackers                []TrackerLine
	Experiences             []string
	Weapons                 []string
	Inventory               []string
}

// RenderSheet prints a compact character sheet
func RenderSheet(s Sheet) {
	title := s.Name
	if s.Pronouns != "" {
		title += " (" + s.Pronouns + ")"
	}
	fmt.Printf("\n%s%s%s  level %d\n", Cyan, title, Reset, s.Level)

	var origin []string
	for _, v := range []string{s.HeritageID, s.CommunityID, s.ClassID, s.SubclassID} {
		if v != "" {
			origin = append(origin, v)
		}
	}
	if len(origin) > 0 {
		fmt.Printf("  %s\n", strings.Join(origin, " / "))
	}
	fmt.Printf("  Evasion %d  Armor %d\n", s.Evasion, s.ArmorScore)

	traits := make([]string, 0, len(traitOrder))
	for _, name := range traitOrder {
		traits = append(traits, fmt.Sprintf("%s %s", name[:3], Signed(s.Traits[name])))
	}
	fmt.Printf("  %s\n", strings.Join(traits, "  "))

	for _, t := range s.Trackers {
		fmt.Printf("  %-7s %s\n", t.Name, Dots(t.Value, t.Max))
	}

	printList := func(label string, items []string) {
		if len(items) > 0 {
			fmt.Printf("%s%s:%s %s\n", Yellow, label, Reset, strings.Join(items, ", "))
		}
	}
	printList("Experiences", s.Experiences)
	printList("Weapons", s.Weapons)
	printList("Inventory", s.Inventory)
}
