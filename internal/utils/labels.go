package utils

import "strings"

// NormalizeLabel trims a free-form label and collapses inner runs of
// whitespace to a single space.
func NormalizeLabel(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// MatchLabel finds label among presets ignoring case and returns the preset's
// spelling. The second result is false when nothing matches.
func MatchLabel(label string, presets []string) (string, bool) {
	label = NormalizeLabel(label)
	for _, preset := range presets {
		if strings.EqualFold(NormalizeLabel(preset), label) {
			return NormalizeLabel(preset), true
		}
	}
	return "", false
}

// UniqueLabels normalizes labels and drops empty entries and case-insensitive
// duplicates, keeping the first spelling seen. Returns nil if the result is
// empty.
func UniqueLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(labels))
	result := make([]string, 0, len(labels))
	for _, label := range labels {
		normalized := NormalizeLabel(label)
		key := strings.ToLower(normalized)
		if normalized == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, normalized)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
