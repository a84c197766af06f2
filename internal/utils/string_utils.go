package utils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/slices"
)

// ParseScopes accepts a space (or comma) delimited string or a JSON array and
// returns a sorted, de-duplicated scope list. Anything else is an empty list.
func ParseScopes(value any) []string {
	scopes := make([]string, 0)

	switch v := value.(type) {
	case string:
		scopes = append(scopes, strings.FieldsFunc(v, func(r rune) bool {
			return r == ' ' || r == ','
		})...)
	case []string:
		scopes = append(scopes, v...)
	case []any:
		for _, item := range v {
			if str, ok := item.(string); ok {
				scopes = append(scopes, str)
			}
		}
	}

	return NormalizeList(scopes)
}

// NormalizeList trims, sorts and de-duplicates items, dropping empty ones
func NormalizeList(items []string) []string {
	normalized := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			normalized = append(normalized, item)
		}
	}
	slices.Sort(normalized)
	return slices.Compact(normalized)
}

// IntersectScopes returns the scopes of granted that are also in allowed
func IntersectScopes(allowed []string, granted []string) []string {
	result := make([]string, 0, len(granted))
	for _, scope := range NormalizeList(granted) {
		if slices.Contains(allowed, scope) {
			result = append(result, scope)
		}
	}
	return result
}

// Truncate cuts str to at most max runes, the marker included
func Truncate(str string, max int, marker string) string {
	if utf8.RuneCountInString(str) <= max {
		return str
	}
	markerLen := utf8.RuneCountInString(marker)
	if max <= markerLen {
		return string([]rune(marker)[:max])
	}
	return string([]rune(str)[:max-markerLen]) + marker
}

func SplitList(str string) []string {
	items := make([]string, 0)
	for item := range strings.SplitSeq(str, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
