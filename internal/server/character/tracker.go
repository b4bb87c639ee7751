package character

import (
	"fmt"
	"strings"
)

// Tracker names a bounded live counter rendered as clickable dots
type Tracker string

const (
	TrackerHP     Tracker = "hp"
	TrackerStress Tracker = "stress"
	TrackerHope   Tracker = "hope"
	TrackerArmor  Tracker = "armor"
)

// Trackers lists every tracker in sheet order
var Trackers = []Tracker{TrackerHP, TrackerStress, TrackerHope, TrackerArmor}

// Upper bounds per tracker
const (
	HPMax     = 9
	StressMax = 6
	HopeMax   = 6
	ArmorMax  = 9
)

// ParseTracker resolves a tracker name, case-insensitively
func ParseTracker(name string) (Tracker, error) {
	t := Tracker(strings.ToLower(strings.TrimSpace(name)))
	switch t {
	case TrackerHP, TrackerStress, TrackerHope, TrackerArmor:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tracker: %q", name)
	}
}

// Max returns the upper bound of the tracker
func (t Tracker) Max() int {
	switch t {
	case TrackerHP:
		return HPMax
	case TrackerStress:
		return StressMax
	case TrackerHope:
		return HopeMax
	case TrackerArmor:
		return ArmorMax
	default:
		return 0
	}
}

func (t Tracker) String() string {
	return string(t)
}

// Clamp bounds value to [0, upper]
func Clamp(value, upper int) int {
	if value < 0 {
		return 0
	}
	if value > upper {
		return upper
	}
	return value
}

// NextValue applies a click on the 1-based dot index to the current value.
// Clicking the already-filled top dot clears it down by one.
func NextValue(current, index, upper int) int {
	next := index
	if index == current {
		next = index - 1
	}
	return Clamp(next, upper)
}
