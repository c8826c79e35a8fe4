package directory

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultSuggestionLimit caps Filter results when the caller passes 0.
const DefaultSuggestionLimit = 12

// Index is a typeahead-searchable view over directory entries. Queries
// are matched against folded keywords (code, name, kana, prefecture,
// area, plus name fragments), so ひらがな, カタカナ, and full-width
// input all hit the same entries.
type Index struct {
	entries []Entry
	byCode  map[string]int
}

// NewIndex builds a search index. Entries are sorted by name; keyword
// folding happens once here, not per query.
func NewIndex(entries []Entry) *Index {
	prepared := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Code == "" || entry.Name == "" {
			continue
		}
		entry.keywords = buildKeywords(entry)
		prepared = append(prepared, entry)
	}
	sort.SliceStable(prepared, func(i, j int) bool {
		return prepared[i].Name < prepared[j].Name
	})

	byCode := make(map[string]int, len(prepared))
	for i, entry := range prepared {
		if _, ok := byCode[entry.Code]; !ok {
			byCode[entry.Code] = i
		}
	}
	return &Index{entries: prepared, byCode: byCode}
}

// Entries returns the indexed entries in name order.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// FindByCode looks an entry up by its exact code.
func (idx *Index) FindByCode(code string) (Entry, bool) {
	i, ok := idx.byCode[strings.TrimSpace(code)]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[i], true
}

// FindExact returns the entry whose folded name or keyword equals the
// query.
func (idx *Index) FindExact(query string) (Entry, bool) {
	folded := FoldSearchText(query)
	if folded == "" {
		return Entry{}, false
	}
	for _, entry := range idx.entries {
		if FoldSearchText(entry.Name) == folded {
			return entry, true
		}
	}
	for _, entry := range idx.entries {
		for _, keyword := range entry.keywords {
			if keyword == folded {
				return entry, true
			}
		}
	}
	return Entry{}, false
}

// FindFirst returns the first entry any of whose keywords contains the
// query.
func (idx *Index) FindFirst(query string) (Entry, bool) {
	folded := FoldSearchText(query)
	if folded == "" {
		return Entry{}, false
	}
	for _, entry := range idx.entries {
		for _, keyword := range entry.keywords {
			if strings.Contains(keyword, folded) {
				return entry, true
			}
		}
	}
	return Entry{}, false
}

// Filter scores entries against the query and returns the best matches:
// exact keyword beats prefix beats earliest substring, name order breaks
// ties. An empty query returns the head of the list.
func (idx *Index) Filter(query string, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	folded := FoldSearchText(query)
	if folded == "" {
		if len(idx.entries) <= limit {
			return idx.Entries()
		}
		out := make([]Entry, limit)
		copy(out, idx.entries[:limit])
		return out
	}

	type scored struct {
		entry     Entry
		exact     bool
		prefix    bool
		bestIndex int
	}
	var matches []scored
	for _, entry := range idx.entries {
		s := scored{entry: entry, bestIndex: int(^uint(0) >> 1)}
		matched := false
		for _, keyword := range entry.keywords {
			at := strings.Index(keyword, folded)
			if at < 0 {
				continue
			}
			matched = true
			if keyword == folded {
				s.exact = true
			}
			if at == 0 {
				s.prefix = true
			}
			if at < s.bestIndex {
				s.bestIndex = at
			}
		}
		if matched {
			matches = append(matches, s)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.exact != b.exact {
			return a.exact
		}
		if a.prefix != b.prefix {
			return a.prefix
		}
		if a.bestIndex != b.bestIndex {
			return a.bestIndex < b.bestIndex
		}
		return a.entry.Name < b.entry.Name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.entry)
	}
	return out
}

// bracketStripper removes grouping punctuation before fragmenting names.
var bracketStripper = strings.NewReplacer(
	"(", " ", ")", " ", "（", " ", "）", " ",
	"［", " ", "］", " ", "「", " ", "」", " ",
	"【", " ", "】", " ", "『", " ", "』", " ",
	"・", " ", ",", " ", "、", " ",
)

func buildKeywords(entry Entry) []string {
	seen := make(map[string]bool)
	var keywords []string
	add := func(value string) {
		folded := FoldSearchText(value)
		if folded != "" && !seen[folded] {
			seen[folded] = true
			keywords = append(keywords, folded)
		}
	}

	add(entry.Code)
	add(entry.Name)
	add(entry.NameKana)
	add(entry.Prefecture)
	add(entry.Area)

	for _, fragment := range strings.Fields(bracketStripper.Replace(entry.Name)) {
		add(fragment)
	}
	return keywords
}

// FoldSearchText canonicalizes text for matching: NFKC (full-width to
// half-width, compatibility forms), lower case, hiragana folded to
// katakana, whitespace stripped.
func FoldSearchText(value string) string {
	folded := strings.ToLower(norm.NFKC.String(strings.TrimSpace(value)))
	if folded == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '　':
			continue
		case r >= 'ぁ' && r <= 'ゖ':
			b.WriteRune(r + 0x60)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
