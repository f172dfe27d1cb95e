package app

import "strings"

type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseOutputFormat(raw string) (OutputFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(FormatText), "plain":
		return FormatText, true
	case string(FormatJSON):
		return FormatJSON, true
	default:
		return "", false
	}
}
