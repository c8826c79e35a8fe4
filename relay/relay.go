// Package relay is a stateless CORS pass-through in front of the
// Sea-Style origin, for browser clients that cannot reach it directly.
// The availability engine itself never depends on it.
package relay

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultOrigin is the upstream the relay forwards to.
const DefaultOrigin = "https://sea-style-m.yamaha-motor.co.jp"

// hopHeaders never cross the relay in either direction.
var hopHeaders = map[string]bool{
	"Host":              true,
	"Connection":        true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
	"Upgrade":           true,
	"Content-Length":    true,
}

// Handler forwards requests to the upstream origin. The target path
// comes from the ?path= query parameter.
type Handler struct {
	Origin string
	Client *http.Client
}

// New creates a relay handler against the default origin.
func New() *Handler {
	return &Handler{
		Origin: DefaultOrigin,
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	targetPath := r.URL.Query().Get("path")
	if targetPath == "" {
		http.Error(w, "path パラメータが必要です", http.StatusBadRequest)
		return
	}

	target, err := h.resolveTarget(targetPath)
	if err != nil {
		http.Error(w, "path パラメータが不正です", http.StatusBadRequest)
		return
	}

	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = r.Body
	}

	upstream, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), body)
	if err != nil {
		http.Error(w, "上流リクエストの組み立てに失敗しました", http.StatusBadGateway)
		return
	}
	copyHeaders(upstream.Header, r.Header)

	slog.Info("relay: forwarding", "method", r.Method, "target", target.String())

	resp, err := h.Client.Do(upstream)
	if err != nil {
		slog.Warn("relay: upstream request failed", "target", target.String(), "error", err)
		http.Error(w, "上流へのリクエストに失敗しました", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if hopHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	setCORSHeaders(w)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.Warn("relay: copy response", "target", target.String(), "error", err)
	}
	slog.Info("relay: forwarded", "status", resp.StatusCode, "target", target.String())
}

// resolveTarget resolves the requested path against the configured
// origin and refuses anything that escapes to another host.
func (h *Handler) resolveTarget(targetPath string) (*url.URL, error) {
	origin, err := url.Parse(h.Origin)
	if err != nil {
		return nil, err
	}
	target, err := origin.Parse(targetPath)
	if err != nil {
		return nil, err
	}
	if target.Host != origin.Host || !strings.EqualFold(target.Scheme, origin.Scheme) {
		return nil, &url.Error{Op: "relay", URL: targetPath, Err: errForeignHost}
	}
	return target, nil
}

var errForeignHost = &foreignHostError{}

type foreignHostError struct{}

func (*foreignHostError) Error() string { return "target escapes relay origin" }

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if hopHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Requested-With")
}
