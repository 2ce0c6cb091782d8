// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for values that end up
// embedded in remote queries.
//
// Note and user ids are interpolated into PostgREST filter expressions
// (id=eq.<value>), so they are validated as UUIDs before any request is
// built. Rejecting malformed ids here keeps filter injection out of the
// wire layer entirely.
package validation

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateID checks that id is a well-formed UUID. The field name is
// only used in the error message.
func ValidateID(field, id string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid %s %q: must be a UUID", field, id)
	}
	return nil
}
