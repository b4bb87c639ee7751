package display

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PrettyPrintJSON prints formatted JSON
func PrettyPrintJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%sError formatting JSON: %s%s\n", Red, err.Error(), Reset)
		return
	}
	fmt.Println(string(data))
}

// Indent re-indents raw JSON, returning non-JSON input unchanged
func Indent(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// PrintError prints an API error body
func PrintError(message, code, details string) {
	fmt.Printf("%sError: %s%s\n", Red, message, Reset)
	if code != "" {
		fmt.Printf("%sCode: %s%s\n", Red, code, Reset)
	}
	if details != "" {
		fmt.Printf("%sDetails: %s%s\n", Red, details, Reset)
	}
}
