package seastyle

import (
	"context"
	"log/slog"

	"akifune.dev/dateutil"
)

// DayOutcome pairs one day of the month with its fetch result. Err is
// set when every strategy for that day failed; the rest of the month is
// still attempted.
type DayOutcome struct {
	Day    dateutil.Day
	Result *DayResult
	Err    error
}

// ProgressFunc observes each completed day while a month fetch runs.
type ProgressFunc func(index, total int, outcome DayOutcome)

// FetchMonth retrieves availability for every day of a month, strictly
// serially so one cancellation cleanly aborts the remaining days.
// Already-completed day results stay valid after cancellation. Per-day
// exhaustion is recorded in the outcome, not raised, so one bad day
// does not lose the rest of the month.
func (c *Client) FetchMonth(ctx context.Context, marinaCd, monthID string, onProgress ProgressFunc) ([]DayOutcome, error) {
	days, err := dateutil.EnumerateMonthDays(monthID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]DayOutcome, 0, len(days))
	for i, day := range days {
		result, err := c.FetchDayAvailability(ctx, marinaCd, day.ISO)
		if err != nil {
			if isCancellation(err) {
				return outcomes, err
			}
			slog.Warn("day fetch failed", "marina_cd", marinaCd, "date", day.ISO, "error", err)
		}

		outcome := DayOutcome{Day: day, Result: result, Err: err}
		outcomes = append(outcomes, outcome)
		if onProgress != nil {
			onProgress(i, len(days), outcome)
		}
	}
	return outcomes, nil
}
