// Package dateutil enumerates the months and days the availability
// search iterates over.
package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdayLabels = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// Day is one calendar day of a month.
type Day struct {
	Date         time.Time
	ISO          string // YYYY-MM-DD
	Label        string // M/DD
	WeekdayLabel string // (曜)
}

// MonthOption is one selectable month.
type MonthOption struct {
	Value     string // YYYY-MM
	Label     string // YYYY年M月
	IsCurrent bool
}

// MonthID formats a time as the YYYY-MM month identifier.
func MonthID(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// MonthOptions lists selectable months around now.
func MonthOptions(now time.Time, monthsBefore, monthsAfter int) []MonthOption {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var options []MonthOption
	for offset := -monthsBefore; offset <= monthsAfter; offset++ {
		month := first.AddDate(0, offset, 0)
		options = append(options, MonthOption{
			Value:     MonthID(month),
			Label:     fmt.Sprintf("%d年%d月", month.Year(), int(month.Month())),
			IsCurrent: offset == 0,
		})
	}
	return options
}

// EnumerateMonthDays expands a YYYY-MM identifier into its days.
func EnumerateMonthDays(monthID string) ([]Day, error) {
	parts := strings.SplitN(monthID, "-", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("dateutil: invalid month id %q", monthID)
	}
	year, errY := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	if errY != nil || errM != nil || year <= 0 || month < 1 || month > 12 {
		return nil, fmt.Errorf("dateutil: invalid month id %q", monthID)
	}

	cursor := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	var days []Day
	for cursor.Month() == time.Month(month) {
		days = append(days, Day{
			Date:         cursor,
			ISO:          cursor.Format("2006-01-02"),
			Label:        fmt.Sprintf("%d/%02d", int(cursor.Month()), cursor.Day()),
			WeekdayLabel: "(" + weekdayLabels[int(cursor.Weekday())] + ")",
		})
		cursor = cursor.AddDate(0, 0, 1)
	}
	return days, nil
}
