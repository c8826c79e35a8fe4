package seastyle

import (
	"context"
	"encoding/json"
	"log/slog"

	"akifune.dev/directory"
)

// DirectoryResult is the deduplicated marina list plus debug meta.
type DirectoryResult struct {
	Marinas []directory.Entry `json:"marinas"`
	Debug   DebugMeta         `json:"debug"`
}

// directoryEndpoints are the candidates for the marina list, in order.
// The documented POST endpoint goes first; the GET variants cover
// deployments where it is exposed read-only.
var directoryEndpoints = []struct {
	name   string
	method string
	path   string
}{
	{name: "marina-list", method: "POST", path: "/api/Reserve/GetMarinaList"},
	{name: "marina-list-get", method: "GET", path: "/api/Reserve/GetMarinaList"},
	{name: "marina-master", method: "GET", path: "/api/Marina/List"},
}

// FetchMarinaDirectory retrieves and normalizes the marina directory.
// Unlike the day fetch, a technically successful call that yields zero
// usable entries is treated as a failure and the chain continues.
func (c *Client) FetchMarinaDirectory(ctx context.Context) (*DirectoryResult, error) {
	strategies := make([]strategy[*DirectoryResult], 0, len(directoryEndpoints))
	for _, endpoint := range directoryEndpoints {
		strategies = append(strategies, strategy[*DirectoryResult]{
			name: endpoint.name,
			run: func(ctx context.Context) (*DirectoryResult, error) {
				return c.fetchDirectory(ctx, endpoint.method, endpoint.path)
			},
		})
	}

	result, winner, attempts, err := runChain(ctx, strategies)
	if err != nil {
		return nil, err
	}

	result.Debug.Strategy = winner
	result.Debug.Attempts = attempts
	slog.Debug("marina directory fetched", "strategy", winner, "marinas", len(result.Marinas))
	return result, nil
}

func (c *Client) fetchDirectory(ctx context.Context, method, path string) (*DirectoryResult, error) {
	var resp *Response
	var err error
	if method == "POST" {
		resp, err = c.postJSON(ctx, path, []byte("{}"))
	} else {
		resp, err = c.get(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	// Undecodable bodies count as empty for chain purposes.
	var payload any
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &EmptyResponseError{URL: resp.URL}
	}

	marinas := directory.Normalize(payload)
	if len(marinas) == 0 {
		return nil, &EmptyResponseError{URL: resp.URL}
	}

	return &DirectoryResult{
		Marinas: marinas,
		Debug: DebugMeta{
			URL:        resp.URL,
			RawPayload: payload,
			Header:     resp.Header,
		},
	}, nil
}
