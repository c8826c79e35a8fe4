// Package availability normalizes Sea-Style reservation responses into a
// uniform model of time-slot availability. The upstream response shape is
// undocumented and varies by deployment (nested JSON, rendered HTML
// fragments, or plain strings), so everything here is best-effort:
// unrecognized input degrades to "unknown" rather than failing.
package availability

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// StatusKey is the canonical availability classification.
type StatusKey string

const (
	StatusVacant  StatusKey = "vacant"
	StatusFew     StatusKey = "few"
	StatusFull    StatusKey = "full"
	StatusUnknown StatusKey = "unknown"
)

// StatusLabels maps each key to its display label.
var StatusLabels = map[StatusKey]string{
	StatusVacant:  "空き",
	StatusFew:     "残りわずか",
	StatusFull:    "満席",
	StatusUnknown: "不明",
}

// Label returns the display label for the key.
func (k StatusKey) Label() string {
	if label, ok := StatusLabels[k]; ok {
		return label
	}
	return StatusLabels[StatusUnknown]
}

// Status is the result of classifying one raw availability value.
// Raw keeps the original input for debugging; it is nil only when the
// input itself was nil.
type Status struct {
	Key   StatusKey `json:"statusKey"`
	Label string    `json:"statusLabel"`
	Raw   any       `json:"statusRaw,omitempty"`
}

// NumericPolicy maps a numeric status code to a key. The second return
// value reports whether the policy handled the number; unhandled numbers
// fall through to text classification of their string form.
//
// The default mapping (0=vacant, 1=few, >=2=full) mirrors the observed
// behavior of the upstream service but has no confirmed documentation,
// so it is replaceable per Classifier.
type NumericPolicy func(n float64) (StatusKey, bool)

// DefaultNumericPolicy implements the 0/1/>=2 mapping.
func DefaultNumericPolicy(n float64) (StatusKey, bool) {
	if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return StatusUnknown, false
	}
	switch {
	case n == 0:
		return StatusVacant, true
	case n == 1:
		return StatusFew, true
	default:
		return StatusFull, true
	}
}

// Classifier maps arbitrary raw values to availability statuses.
type Classifier struct {
	Numeric NumericPolicy
}

// DefaultClassifier is used by the package-level Classify.
var DefaultClassifier = &Classifier{Numeric: DefaultNumericPolicy}

// Ordered pattern groups for text classification. The first group that
// matches wins, so a vacant mark beats a fuzzier full-text match.
var (
	vacantPattern = regexp.MustCompile(`◯|○|◎|〇|空|余|available|vacant|(?:^|[^不])可`)
	fewPattern    = regexp.MustCompile(`△|残|僅|少|few|less|わずか`)
	fullPattern   = regexp.MustCompile(`×|✕|✖|✗|╳|満|無|full|不可|締`)
)

// Classify maps a raw value to an availability status using the default
// classifier.
func Classify(value any) Status {
	return DefaultClassifier.Classify(value)
}

// Classify maps a raw value (boolean, number, text, or anything
// printable) to an availability status.
func (c *Classifier) Classify(value any) Status {
	if value == nil {
		return Status{Key: StatusUnknown, Label: StatusUnknown.Label()}
	}

	switch v := value.(type) {
	case bool:
		// Domain convention: presence of capacity is boolean-true.
		key := StatusFull
		if v {
			key = StatusVacant
		}
		return Status{Key: key, Label: key.Label(), Raw: value}
	case float64:
		return c.classifyNumber(v, value)
	case float32:
		return c.classifyNumber(float64(v), value)
	case int:
		return c.classifyNumber(float64(v), value)
	case int32:
		return c.classifyNumber(float64(v), value)
	case int64:
		return c.classifyNumber(float64(v), value)
	}

	return c.classifyText(toText(value), value)
}

func (c *Classifier) classifyNumber(n float64, raw any) Status {
	policy := c.Numeric
	if policy == nil {
		policy = DefaultNumericPolicy
	}
	if key, ok := policy(n); ok {
		return Status{Key: key, Label: key.Label(), Raw: raw}
	}
	return c.classifyText(toText(raw), raw)
}

func (c *Classifier) classifyText(text string, raw any) Status {
	normalized := strings.ToLower(strings.TrimSpace(text))
	key := StatusUnknown
	switch {
	case normalized == "":
		key = StatusUnknown
	case vacantPattern.MatchString(normalized):
		key = StatusVacant
	case fewPattern.MatchString(normalized):
		key = StatusFew
	case fullPattern.MatchString(normalized):
		key = StatusFull
	}
	return Status{Key: key, Label: key.Label(), Raw: raw}
}

// toText renders an arbitrary value as classification text.
func toText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}
