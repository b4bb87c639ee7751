package display

// Terminal color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + Yellow + " > " + Reset
}

// Outcome colors a duality outcome: hope green, fear red, neutral plain
func Outcome(outcome string) string {
	switch outcome {
	case "hope":
		return Green + "Hope" + Reset
	case "fear":
		return Red + "Fear" + Reset
	default:
		return "-"
	}
}

// FearOutcome maps the stored tri-state flag onto an outcome name
func FearOutcome(fear *int) string {
	switch {
	case fear == nil:
		return "neutral"
	case *fear == 1:
		return "fear"
	default:
		return "hope"
	}
}
