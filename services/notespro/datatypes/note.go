package datatypes

import "time"

// Color is the fixed palette a note card can take.
type Color string

const (
	ColorDefault Color = "default"
	ColorRed     Color = "red"
	ColorBlue    Color = "blue"
	ColorGreen   Color = "green"
	ColorYellow  Color = "yellow"
	ColorPurple  Color = "purple"
	ColorGray    Color = "gray"
)

// Colors lists every valid color, in palette order.
func Colors() []Color {
	return []Color{ColorDefault, ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple, ColorGray}
}

// IsValid reports whether c is one of the palette colors.
func (c Color) IsValid() bool {
	switch c {
	case ColorDefault, ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple, ColorGray:
		return true
	}
	return false
}

// Note is the sole persistent entity. The id, created_at and user_id
// fields are owned by the backing service: the client never sends them
// on update. Labels are derived from Content on every write.
type Note struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Labels    []string  `json:"labels"`
	Color     Color     `json:"color"`
	UserID    string    `json:"user_id"`
}

// NotePatch is the partial update sent for an existing note, keyed by id
// on the wire. Labels here are always the freshly derived set, never
// caller-supplied.
type NotePatch struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Labels  []string `json:"labels"`
	Color   Color    `json:"color"`
}

// NewNote is the insert payload for a note. Color starts at the palette
// default and UserID is the authenticated caller.
type NewNote struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Labels  []string `json:"labels"`
	Color   Color    `json:"color"`
	UserID  string   `json:"user_id"`
}
