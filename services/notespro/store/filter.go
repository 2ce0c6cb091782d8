// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import "github.com/notespro/notespro/services/notespro/datatypes"

// Project applies the filter to a note list without reordering it. Both
// predicates (label membership, case-insensitive substring search) must
// pass. Pure; the store never caches a projection.
func Project(notes []datatypes.Note, filter datatypes.Filter) []datatypes.Note {
	out := make([]datatypes.Note, 0, len(notes))
	for _, note := range notes {
		if filter.Matches(note) {
			out = append(out, note)
		}
	}
	return out
}

// Visible returns the filter projection of the current list.
func (s *Store) Visible(filter datatypes.Filter) []datatypes.Note {
	return Project(s.Snapshot().Notes, filter)
}

// AllLabels returns the distinct labels across the current list, in the
// order they first appear scanning newest note first.
func (s *Store) AllLabels() []string {
	snap := s.Snapshot()
	out := []string{}
	seen := make(map[string]struct{})
	for _, note := range snap.Notes {
		for _, label := range note.Labels {
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			out = append(out, label)
		}
	}
	return out
}
