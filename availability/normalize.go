package availability

import (
	"encoding/json"
	"strings"
)

// Summary counts slots per status across all groups of a result. It is
// always recomputed from the groups, never carried over from upstream.
type Summary struct {
	Total    int               `json:"total"`
	Statuses map[StatusKey]int `json:"statuses"`
}

// Result is the normalized availability for one day.
type Result struct {
	Groups  []Group `json:"groups"`
	Summary Summary `json:"summary"`
	Raw     any     `json:"raw,omitempty"`
}

// Normalize dispatches an already-decoded payload to the structure
// walker or the HTML extractor and assembles the result. Malformed or
// unexpected shapes degrade to empty groups rather than failing; the
// upstream shape is too unreliable for normalization errors to mean
// anything.
func Normalize(payload any) *Result {
	switch v := payload.(type) {
	case nil:
		return newResult(nil, nil)
	case string:
		groups := ExtractFromHTML(v)
		return newResult(groups, v)
	case map[string]any, []any:
		return newResult(ExtractGroups(v), v)
	default:
		return newResult(nil, v)
	}
}

// NormalizeBytes decodes a raw response body and normalizes it. JSON
// object and array bodies go through the walker; everything else is
// treated as markup or opaque text.
func NormalizeBytes(body []byte) *Result {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return newResult(nil, nil)
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return Normalize(decoded)
		}
	}

	return Normalize(trimmed)
}

func newResult(groups []Group, raw any) *Result {
	return &Result{
		Groups:  groups,
		Summary: Summarize(groups),
		Raw:     raw,
	}
}

// Summarize derives the status-count summary from a group sequence.
func Summarize(groups []Group) Summary {
	summary := Summary{Statuses: map[StatusKey]int{
		StatusVacant:  0,
		StatusFew:     0,
		StatusFull:    0,
		StatusUnknown: 0,
	}}
	for _, group := range groups {
		for _, slot := range group.Slots {
			summary.Statuses[slot.Status.Key]++
			summary.Total++
		}
	}
	return summary
}
