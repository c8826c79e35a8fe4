package seastyle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"akifune.dev/availability"
)

// DebugMeta is attached to every successful fetch for diagnostics: the
// strategy that won, the resolved URL, the raw payload, the response
// headers, and the failures that came before.
type DebugMeta struct {
	Strategy   string      `json:"strategy"`
	URL        string      `json:"url"`
	RawPayload any         `json:"rawPayload,omitempty"`
	Header     http.Header `json:"responseHeaders,omitempty"`
	Attempts   []Attempt   `json:"attempts,omitempty"`
}

// DayResult is the normalized availability of one day plus debug meta.
type DayResult struct {
	*availability.Result
	Debug DebugMeta `json:"debug"`
}

// htmlPathCandidates are the alternate rendering endpoints tried when
// the structured API gives nothing. Each is formatted with marinaCd and
// date query values; format=partial asks for the fragment the calendar
// widget embeds.
var htmlPathCandidates = []string{
	"/Reserve/EmptyState/Day",
	"/Reserve/Calendar/Day",
	"/Reserve/Frame",
}

// FetchDayAvailability retrieves one day of availability for a marina,
// trying the structured API first (two date-format variants) and the
// HTML rendering endpoints after that. The first strategy that yields a
// decodable non-empty body wins; a JSON reply counts even when it
// normalizes to zero groups.
func (c *Client) FetchDayAvailability(ctx context.Context, marinaCd, isoDate string) (*DayResult, error) {
	if strings.TrimSpace(marinaCd) == "" {
		return nil, fmt.Errorf("seastyle: marinaCd is required")
	}
	if strings.TrimSpace(isoDate) == "" {
		return nil, fmt.Errorf("seastyle: isoDate is required")
	}

	strategies := []strategy[*DayResult]{
		{
			name: "club-boat-empty-list",
			run: func(ctx context.Context) (*DayResult, error) {
				return c.fetchEmptyList(ctx, marinaCd, isoDate)
			},
		},
		{
			name: "club-boat-empty-list-compact-date",
			run: func(ctx context.Context) (*DayResult, error) {
				return c.fetchEmptyList(ctx, marinaCd, strings.ReplaceAll(isoDate, "-", ""))
			},
		},
	}
	for _, path := range htmlPathCandidates {
		strategies = append(strategies, strategy[*DayResult]{
			name: "html:" + path,
			run: func(ctx context.Context) (*DayResult, error) {
				return c.fetchAvailabilityHTML(ctx, path, marinaCd, isoDate)
			},
		})
	}

	result, winner, attempts, err := runChain(ctx, strategies)
	if err != nil {
		return nil, err
	}

	result.Debug.Strategy = winner
	result.Debug.Attempts = attempts
	slog.Debug("day availability fetched",
		"marina_cd", marinaCd,
		"date", isoDate,
		"strategy", winner,
		"slots", result.Summary.Total)
	return result, nil
}

func (c *Client) fetchEmptyList(ctx context.Context, marinaCd, date string) (*DayResult, error) {
	payload, err := json.Marshal(map[string]string{
		"marinaCd": marinaCd,
		"useDate":  date,
	})
	if err != nil {
		return nil, fmt.Errorf("seastyle: encode request: %w", err)
	}

	resp, err := c.postJSON(ctx, "/api/Reserve/GetClubBoatEmptyList", payload)
	if err != nil {
		return nil, err
	}
	return newDayResult(resp), nil
}

func (c *Client) fetchAvailabilityHTML(ctx context.Context, path, marinaCd, isoDate string) (*DayResult, error) {
	query := url.Values{
		"marinaCd": {marinaCd},
		"useDate":  {isoDate},
		"format":   {"partial"},
	}
	resp, err := c.get(ctx, path+"?"+query.Encode())
	if err != nil {
		return nil, err
	}
	return newDayResult(resp), nil
}

func newDayResult(resp *Response) *DayResult {
	normalized := availability.NormalizeBytes(resp.Body)
	return &DayResult{
		Result: normalized,
		Debug: DebugMeta{
			URL:        resp.URL,
			RawPayload: normalized.Raw,
			Header:     resp.Header,
		},
	}
}
