// Package directory collects the marina directory out of the upstream
// list payload and serves typeahead lookups over it. Like the
// availability walker, it assumes nothing about the payload shape and
// discovers candidate records by recursive traversal.
package directory

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Entry is one marina in the directory. Code is the unique key.
type Entry struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NameKana   string `json:"nameKana,omitempty"`
	Prefecture string `json:"prefecture,omitempty"`
	Area       string `json:"area,omitempty"`
	Raw        any    `json:"raw,omitempty"`

	keywords []string
}

// Candidate field names in priority order.
var (
	codeFields       = []string{"marinaCd", "marinaCode", "marinaID", "marinaId", "code", "id", "value"}
	nameFields       = []string{"marinaName", "name", "label", "text"}
	kanaFields       = []string{"marinaNameKana", "nameKana", "kana", "furigana"}
	prefectureFields = []string{"prefecture", "prefectureName", "pref", "ken"}
	areaFields       = []string{"area", "areaName", "region", "district"}
)

// inherited carries prefecture/area context downward to children that
// lack their own values.
type inherited struct {
	prefecture string
	area       string
}

// Normalize walks a directory payload depth-first and assembles the
// deduplicated marina list in first-seen order. A node is a candidate
// when it exposes both a code-like and a name-like field; nodes missing
// either are still descended into.
func Normalize(payload any) []Entry {
	var entries []Entry
	seen := make(map[string]bool)
	visited := make(map[uintptr]bool)

	var walk func(node any, ctx inherited)
	walk = func(node any, ctx inherited) {
		if id, ok := identityOf(node); ok {
			if visited[id] {
				return
			}
			visited[id] = true
		}

		switch n := node.(type) {
		case []any:
			for _, element := range n {
				walk(element, ctx)
			}
		case map[string]any:
			if pref := firstField(n, prefectureFields); pref != "" {
				ctx.prefecture = pref
			}
			if area := firstField(n, areaFields); area != "" {
				ctx.area = area
			}

			code := firstField(n, codeFields)
			name := firstField(n, nameFields)
			if code != "" && name != "" && !seen[code] {
				seen[code] = true
				entries = append(entries, Entry{
					Code:       code,
					Name:       name,
					NameKana:   firstField(n, kanaFields),
					Prefecture: ctx.prefecture,
					Area:       ctx.area,
					Raw:        n,
				})
			}

			for _, key := range sortedKeys(n) {
				switch value := n[key]; value.(type) {
				case []any, map[string]any:
					walk(value, ctx)
				}
			}
		}
	}
	walk(payload, inherited{})

	return entries
}

func firstField(record map[string]any, fields []string) string {
	for _, field := range fields {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			// Codes sometimes arrive as numbers.
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func sortedKeys(record map[string]any) []string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func identityOf(node any) (uintptr, bool) {
	switch node.(type) {
	case map[string]any, []any:
		v := reflect.ValueOf(node)
		if v.Kind() == reflect.Slice && v.Len() == 0 {
			return 0, false
		}
		return v.Pointer(), true
	}
	return 0, false
}
