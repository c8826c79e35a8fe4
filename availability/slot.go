package availability

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// NoteJoiner separates assembled note fragments.
const NoteJoiner = " ／ "

// Candidate field names consulted in order when extracting values from a
// raw record. Kept as data so new upstream spellings are a one-line
// change.
var (
	timeRangeFields = []string{"timeText", "time", "timeRange", "timeSlot", "timeName", "jikantai", "jikan"}
	timeStartFields = []string{"startTime", "timeFrom", "beginTime", "start", "from"}
	timeEndFields   = []string{"endTime", "timeTo", "finishTime", "end", "to"}
	timeLabelFields = []string{"label", "name", "displayName", "title"}

	statusFields = []string{
		"status", "statusText", "statusName", "emptyStatus", "empty",
		"aki", "akiJokyo", "vacancy", "stock", "zan", "remaining",
		"reserveStatus", "availability",
	}

	noteFields = []string{"note", "memo", "comment", "remarks", "biko", "caption", "description", "message"}

	nameLikeFields = []string{"boatName", "menuName", "goodsName", "itemName", "title"}
)

// embeddedTimePattern scans free text for a time or time range.
var embeddedTimePattern = regexp.MustCompile(
	`\d{1,2}[:時]\d{1,2}分?(?:\s*[〜~\-ー―]\s*\d{1,2}[:時]\d{1,2}分?)?`)

// Slot is one discrete reservable time window with a classified status.
// A zero-valued string field means "absent"; SortKey is -1 when no time
// could be keyed, which sorts after every keyed slot.
type Slot struct {
	TimeText string `json:"timeText,omitempty"`
	Status   Status `json:"status"`
	Note     string `json:"note,omitempty"`
	SortKey  int    `json:"sortKey"`
	BoatName string `json:"boatName,omitempty"`
	Raw      any    `json:"raw,omitempty"`
}

// BuildSlot turns one raw record into a canonical Slot. Records carrying
// no signal at all (no time, no note, unknown status) come back nil and
// are dropped by the caller.
func BuildSlot(raw any) *Slot {
	switch v := raw.(type) {
	case string:
		return buildSlotFromText(v)
	case map[string]any:
		return buildSlotFromRecord(v)
	default:
		return nil
	}
}

func buildSlotFromText(text string) *Slot {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	timeText := ""
	if match := embeddedTimePattern.FindString(trimmed); match != "" {
		timeText = NormalizeTime(match)
	}

	slot := &Slot{
		TimeText: timeText,
		Status:   Classify(trimmed),
		Note:     trimmed,
		Raw:      text,
	}
	slot.SortKey = sortKeyFor(slot.TimeText)
	return slot
}

func buildSlotFromRecord(record map[string]any) *Slot {
	timeText, timeRaw := extractTimeText(record)
	slot := &Slot{
		TimeText: timeText,
		Note:     buildNote(record),
		BoatName: firstStringField(record, nameLikeFields),
		Raw:      record,
	}

	slot.Status = extractStatus(record, timeRaw)
	slot.SortKey = sortKeyFor(slot.TimeText)

	if slot.TimeText == "" && slot.Note == "" && slot.Status.Key == StatusUnknown {
		return nil
	}
	return slot
}

// extractTimeText resolves the slot's time. It also returns the source
// text the time came from, which the status fallback re-classifies (an
// upstream cell sometimes merges "10:00〜 ◯" into one field).
func extractTimeText(record map[string]any) (normalized, source string) {
	for _, field := range timeRangeFields {
		if text := stringValue(record[field]); text != "" {
			return NormalizeTime(text), text
		}
	}

	start, startRaw := "", ""
	for _, field := range timeStartFields {
		if text := stringValue(record[field]); text != "" {
			start, startRaw = NormalizeTime(text), text
			break
		}
	}
	end, endRaw := "", ""
	for _, field := range timeEndFields {
		if text := stringValue(record[field]); text != "" {
			end, endRaw = NormalizeTime(text), text
			break
		}
	}
	switch {
	case start != "" && end != "":
		return start + RangeSeparator + end, startRaw + RangeSeparator + endRaw
	case start != "":
		return start, startRaw
	case end != "":
		return end, endRaw
	}

	for _, field := range timeLabelFields {
		if text := stringValue(record[field]); text != "" {
			if match := embeddedTimePattern.FindString(text); match != "" {
				return NormalizeTime(match), text
			}
		}
	}
	return "", ""
}

// extractStatus consults the status candidate fields in order and keeps
// the first classification beyond unknown. When no field classifies, the
// time source text itself is the last resort.
func extractStatus(record map[string]any, timeText string) Status {
	var firstSeen *Status
	for _, field := range statusFields {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		status := Classify(value)
		if firstSeen == nil {
			firstSeen = &status
		}
		if status.Key != StatusUnknown {
			return status
		}
	}

	if timeText != "" {
		if status := Classify(timeText); status.Key != StatusUnknown {
			return status
		}
	}

	if firstSeen != nil {
		return *firstSeen
	}
	return Status{Key: StatusUnknown, Label: StatusUnknown.Label()}
}

func buildNote(record map[string]any) string {
	var parts []string

	if plan := stringValue(record["planName"]); plan != "" {
		parts = append(parts, plan)
	}

	for _, field := range noteFields {
		if text := stringValue(record[field]); text != "" {
			parts = append(parts, humanizeFieldName(field)+": "+text)
		}
	}

	if notes, ok := record["notes"].([]any); ok {
		for _, entry := range notes {
			if text := stringValue(entry); text != "" {
				parts = append(parts, text)
			}
		}
	}

	return strings.Join(parts, NoteJoiner)
}

func sortKeyFor(timeText string) int {
	if key, ok := BuildSortKey(timeText); ok {
		return key
	}
	return -1
}

func firstStringField(record map[string]any, fields []string) string {
	for _, field := range fields {
		if text := stringValue(record[field]); text != "" {
			return text
		}
	}
	return ""
}

// stringValue renders a scalar as trimmed text. Maps and slices are not
// note material and come back empty.
func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	case bool:
		return fmt.Sprintf("%v", v)
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// humanizeFieldName turns a camelCase key into display text, e.g.
// "planName" becomes "Plan name". Non-ASCII keys pass through as-is.
func humanizeFieldName(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
