package theme

// Stroke is the trace overlay drawing style derived from a theme.
type Stroke struct {
	Color string
	Width float64
}

// Table maps theme names to trace stroke styles. Visual theming beyond
// the stroke lives entirely in the frontend.
type Table struct {
	strokes map[string]Stroke
	def     Stroke
}

// NewTable returns the built-in theme table.
func NewTable() *Table {
	return &Table{
		strokes: map[string]Stroke{
			"light":    {Color: "#1a73e8", Width: 6},
			"dark":     {Color: "#8ab4f8", Width: 6},
			"contrast": {Color: "#ffd600", Width: 8},
			"mint":     {Color: "#00bfa5", Width: 6},
			"sunset":   {Color: "#ff7043", Width: 6},
		},
		def: Stroke{Color: "#1a73e8", Width: 6},
	}
}

// Stroke returns the stroke style for the named theme, falling back to
// the default for unknown names.
func (t *Table) Stroke(name string) Stroke {
	if s, ok := t.strokes[name]; ok {
		return s
	}
	return t.def
}

// Known reports whether the named theme exists.
func (t *Table) Known(name string) bool {
	_, ok := t.strokes[name]
	return ok
}
