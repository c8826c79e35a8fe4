package availability

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RangeSeparator joins the two sides of a canonical time range.
const RangeSeparator = "〜"

var (
	rangeSplitPattern = regexp.MustCompile(`[〜~\-ー―]`)
	clockPattern      = regexp.MustCompile(`(\d{1,2})[:時](\d*)`)
	bareDigitsPattern = regexp.MustCompile(`^\d{1,4}$`)
	sortKeyPattern    = regexp.MustCompile(`(\d{1,2})[:時](\d{2})`)
)

// NormalizeTime canonicalizes a time expression to "HH:MM" or
// "HH:MM〜HH:MM". Accepts "HH:MM", "HH時MM分", and bare digit runs.
// Unparseable text comes back trimmed but otherwise untouched.
func NormalizeTime(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	parts := rangeSplitPattern.Split(trimmed, 2)
	if len(parts) == 2 {
		left := normalizeClock(parts[0])
		right := normalizeClock(parts[1])
		switch {
		case left != "" && right != "":
			return left + RangeSeparator + right
		case left != "":
			return left
		case right != "":
			return right
		}
		return trimmed
	}

	if single := normalizeClock(trimmed); single != "" {
		return single
	}
	return trimmed
}

// normalizeClock canonicalizes one side of a range. Returns "" when the
// text carries no parseable clock, so the caller keeps the original.
func normalizeClock(text string) string {
	trimmed := strings.TrimSpace(text)

	// A bare digit run is H(H)MM — the minutes split off from the right,
	// so "900" is 9:00, not 90:00.
	if bareDigitsPattern.MatchString(trimmed) {
		hourDigits, minuteDigits := trimmed, ""
		if len(trimmed) > 2 {
			hourDigits, minuteDigits = trimmed[:len(trimmed)-2], trimmed[len(trimmed)-2:]
		}
		return formatClock(hourDigits, minuteDigits)
	}

	match := clockPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return ""
	}
	minuteDigits := match[2]
	if len(minuteDigits) > 2 {
		minuteDigits = minuteDigits[:2]
	}
	return formatClock(match[1], minuteDigits)
}

// formatClock renders validated hour/minute digits as HH:MM. Hours past
// 23 and minutes past 59 are not clock values and come back empty.
func formatClock(hourDigits, minuteDigits string) string {
	hour, err := strconv.Atoi(hourDigits)
	if err != nil || hour > 23 {
		return ""
	}
	minute := 0
	if minuteDigits != "" {
		var errM error
		minute, errM = strconv.Atoi(minuteDigits)
		if errM != nil {
			return ""
		}
	}
	if minute > 59 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// BuildSortKey extracts the first H:MM (or H時MM) pattern from a time
// text and returns it as minutes since midnight. The second return
// value is false when no pattern is found; callers sort such slots last.
func BuildSortKey(timeText string) (int, bool) {
	match := sortKeyPattern.FindStringSubmatch(timeText)
	if match == nil {
		return 0, false
	}
	hour, _ := strconv.Atoi(match[1])
	minute, _ := strconv.Atoi(match[2])
	return hour*60 + minute, true
}
