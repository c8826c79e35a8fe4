package availability

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractFromHTML parses a markup fragment into the same Group shape the
// structure walker produces. The upstream availability pages render
// tables most of the time; when no table yields slots, elements carrying
// time-bearing attributes or classes are the fallback.
func ExtractFromHTML(htmlText string) []Group {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil
	}

	groups := extractTableGroups(doc)
	if countSlots(groups) == 0 {
		groups = extractAttributedGroups(doc)
	}
	return mergeGroups(groups)
}

func extractTableGroups(doc *html.Node) []Group {
	var groups []Group

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			title := tableTitle(n)
			if slots := parseTableSlots(n); len(slots) > 0 {
				groups = append(groups, Group{Title: titleOrDefault(title), Slots: slots})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return groups
}

// tableTitle scans preceding siblings for the nearest heading-like
// element: h1..h6 or anything carrying a "title" class.
func tableTitle(table *html.Node) string {
	for sib := table.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type != html.ElementNode {
			continue
		}
		if isHeadingTag(sib.Data) || hasClassContaining(sib, "title") {
			if text := nodeText(sib); text != "" {
				return text
			}
		}
	}
	return ""
}

func isHeadingTag(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func parseTableSlots(table *html.Node) []*Slot {
	var slots []*Slot

	var walkRows func(*html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			if slot := parseRow(n); slot != nil {
				slots = append(slots, slot)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkRows(c)
		}
	}
	walkRows(table)

	return slots
}

// parseRow reads a body row: cell 0 is the time, cell 1 the status, and
// any remaining cells form the note. Header rows (any th) and rows with
// neither time nor status are skipped.
func parseRow(tr *html.Node) *Slot {
	var cells []string
	for td := tr.FirstChild; td != nil; td = td.NextSibling {
		if td.Type != html.ElementNode {
			continue
		}
		if td.Data == "th" {
			return nil
		}
		if td.Data == "td" {
			cells = append(cells, nodeText(td))
		}
	}
	if len(cells) == 0 {
		return nil
	}

	timeText := NormalizeTime(cells[0])
	statusText := ""
	if len(cells) > 1 {
		statusText = cells[1]
	}
	if strings.TrimSpace(cells[0]) == "" && strings.TrimSpace(statusText) == "" {
		return nil
	}

	note := ""
	if len(cells) > 2 {
		var rest []string
		for _, cell := range cells[2:] {
			if cell != "" {
				rest = append(rest, cell)
			}
		}
		note = strings.Join(rest, NoteJoiner)
	}

	status := Classify(statusText)
	if status.Key == StatusUnknown && statusText == "" {
		status = Classify(cells[0])
	}

	// Same discard rule as the record builder: no time, no note, and an
	// unknown status is no slot at all.
	if timeText == "" && note == "" && status.Key == StatusUnknown {
		return nil
	}

	slot := &Slot{
		TimeText: timeText,
		Status:   status,
		Note:     note,
		Raw:      strings.TrimSpace(strings.Join(cells, " ")),
	}
	slot.SortKey = sortKeyFor(timeText)
	return slot
}

// extractAttributedGroups is the fallback for table-less fragments:
// elements annotated with a time attribute or class.
func extractAttributedGroups(doc *html.Node) []Group {
	var slots []*Slot

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if timeText := attributedTime(n); timeText != "" {
				statusText := attributedStatus(n)
				status := Classify(statusText)
				if statusText == "" {
					status = Classify(timeText)
				}
				slot := &Slot{
					TimeText: NormalizeTime(timeText),
					Status:   status,
					Note:     nodeText(n),
					Raw:      nodeText(n),
				}
				slot.SortKey = sortKeyFor(slot.TimeText)
				if slot.TimeText != "" || slot.Note != "" || slot.Status.Key != StatusUnknown {
					slots = append(slots, slot)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(slots) == 0 {
		return nil
	}
	return []Group{{Title: DefaultGroupTitle, Slots: slots}}
}

func attributedTime(n *html.Node) string {
	for _, a := range n.Attr {
		switch a.Key {
		case "data-time", "data-time-range", "data-start":
			if strings.TrimSpace(a.Val) != "" {
				return a.Val
			}
		}
	}
	if hasClassContaining(n, "time") {
		return nodeText(n)
	}
	return ""
}

func attributedStatus(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "data-status" && strings.TrimSpace(a.Val) != "" {
			return a.Val
		}
	}
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, class := range strings.Fields(a.Val) {
				if strings.Contains(class, "status-") {
					return strings.TrimPrefix(class, "status-")
				}
			}
		}
	}
	return ""
}

func hasClassContaining(n *html.Node, fragment string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" && strings.Contains(a.Val, fragment) {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return b.String()
}

func countSlots(groups []Group) int {
	total := 0
	for _, group := range groups {
		total += len(group.Slots)
	}
	return total
}
