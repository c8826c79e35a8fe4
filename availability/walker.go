package availability

import (
	"reflect"
	"sort"
)

// DefaultGroupTitle names groups whose payload offered no title of its
// own.
const DefaultGroupTitle = "時間帯"

// Group is a named collection of slots sharing a logical category, such
// as one boat or rental plan.
type Group struct {
	Title string  `json:"title"`
	Slots []*Slot `json:"slots"`
}

// frame is one queued traversal step: a node plus the title inherited
// from its enclosing context.
type frame struct {
	node  any
	title string
}

// ExtractGroups discovers slot arrays anywhere inside an arbitrarily
// nested JSON value. The upstream schema is undocumented and varies by
// deployment, so instead of per-schema code this walks the whole value
// breadth-first and treats any array whose elements build slots as a
// group. Visited nodes are tracked by identity, not value, so cyclic or
// shared substructures terminate.
func ExtractGroups(payload any) []Group {
	if payload == nil {
		return nil
	}

	var groups []Group
	visited := make(map[uintptr]bool)
	queue := []frame{{node: payload, title: ""}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if id, ok := identityOf(current.node); ok {
			if visited[id] {
				continue
			}
			visited[id] = true
		}

		switch node := current.node.(type) {
		case []any:
			slots := buildSlots(node)
			if len(slots) > 0 {
				groups = append(groups, Group{Title: titleOrDefault(current.title), Slots: slots})
				continue
			}
			// Not a slot array; descend into each element as a container.
			for _, element := range node {
				queue = append(queue, frame{node: element, title: inferTitle(element, current.title)})
			}
		case map[string]any:
			// A name-like field on the object itself titles everything
			// nested under it; only anonymous entries fall back to a
			// humanized form of their key.
			selfTitle := inferTitle(node, current.title)
			for _, key := range sortedKeys(node) {
				value := node[key]
				switch value.(type) {
				case []any, map[string]any:
					title := inferTitle(value, selfTitle)
					if title == "" {
						title = humanizeFieldName(key)
					}
					queue = append(queue, frame{node: value, title: title})
				}
			}
		}
	}

	return mergeGroups(groups)
}

func buildSlots(elements []any) []*Slot {
	var slots []*Slot
	for _, element := range elements {
		if slot := BuildSlot(element); slot != nil {
			slots = append(slots, slot)
		}
	}
	return slots
}

// inferTitle reads a name-like field off the node itself, falling back
// to the title the parent would hand down.
func inferTitle(node any, parentTitle string) string {
	if record, ok := node.(map[string]any); ok {
		if name := firstStringField(record, nameLikeFields); name != "" {
			return name
		}
	}
	return parentTitle
}

func titleOrDefault(title string) string {
	if title == "" {
		return DefaultGroupTitle
	}
	return title
}

// mergeGroups concatenates groups sharing a title, preserving first-seen
// order, then sorts each merged group's slots.
func mergeGroups(groups []Group) []Group {
	if len(groups) == 0 {
		return nil
	}

	var order []string
	byTitle := make(map[string]*Group)
	for _, group := range groups {
		existing, ok := byTitle[group.Title]
		if !ok {
			copied := Group{Title: group.Title, Slots: group.Slots}
			byTitle[group.Title] = &copied
			order = append(order, group.Title)
			continue
		}
		existing.Slots = append(existing.Slots, group.Slots...)
	}

	merged := make([]Group, 0, len(order))
	for _, title := range order {
		group := byTitle[title]
		sortSlots(group.Slots)
		merged = append(merged, *group)
	}
	return merged
}

// sortSlots orders by sort key ascending with lexicographic time text as
// tiebreak. Slots without a key (SortKey < 0) go last.
func sortSlots(slots []*Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i].SortKey, slots[j].SortKey
		if a < 0 && b < 0 {
			return slots[i].TimeText < slots[j].TimeText
		}
		if a < 0 {
			return false
		}
		if b < 0 {
			return true
		}
		if a != b {
			return a < b
		}
		return slots[i].TimeText < slots[j].TimeText
	})
}

// identityOf returns a stable identity for reference-like values so the
// walker never revisits a map or slice it has already expanded.
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

func sortedKeys(record map[string]any) []string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
