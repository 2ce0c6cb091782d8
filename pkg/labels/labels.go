// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package labels derives hashtag labels from note content.
//
// Labels are the only denormalized field on a note: they are recomputed
// from the content on every create and update, never edited directly.
// Consumers must treat the result as a set; the slice order is merely the
// order of first occurrence.
package labels

import (
	"regexp"
	"strings"
)

// tagPattern matches a '#' followed by one or more word characters.
// A bare '#' or '#' followed by punctuation yields no label.
var tagPattern = regexp.MustCompile(`#(\w+)`)

// Extract returns the distinct labels found in content.
//
// Each label is the token after a '#', lower-cased. Duplicates (including
// case-variant duplicates like #Milk and #milk) collapse to a single entry
// at the position of their first occurrence. Content with no hashtags
// returns an empty, non-nil slice.
//
// Example:
//
//	labels.Extract("Buy #Milk and #milk again")  // ["milk"]
//	labels.Extract("trailing #tag, and #another.") // ["tag", "another"]
func Extract(content string) []string {
	matches := tagPattern.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		label := strings.ToLower(m[1])
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
