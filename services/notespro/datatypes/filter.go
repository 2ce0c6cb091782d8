package datatypes

import "strings"

// Filter is ephemeral view state: a free-text search and an optional
// selected label. The zero value matches every note. Filters are never
// persisted; they combine with the note list only at projection time.
type Filter struct {
	// SearchQuery is matched case-insensitively as a substring of a
	// note's title or content. Empty means no text filtering.
	SearchQuery string `json:"search_query"`

	// SelectedLabel restricts the view to notes carrying the label.
	// Empty means no label is selected.
	SelectedLabel string `json:"selected_label"`
}

// Matches reports whether the note passes both filter predicates. The
// label predicate and the search predicate are conjunctive.
func (f Filter) Matches(note Note) bool {
	if f.SelectedLabel != "" && !containsLabel(note.Labels, f.SelectedLabel) {
		return false
	}
	if f.SearchQuery == "" {
		return true
	}
	return containsFold(note.Title, f.SearchQuery) || containsFold(note.Content, f.SearchQuery)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
