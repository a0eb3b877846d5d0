package theme

import "testing"

func TestTableKnownThemes(t *testing.T) {
	t.Parallel()

	table := NewTable()
	for _, name := range []string{"light", "dark", "contrast", "mint", "sunset"} {
		if !table.Known(name) {
			t.Fatalf("expected %q to be a known theme", name)
		}
		s := table.Stroke(name)
		if s.Color == "" || s.Width <= 0 {
			t.Fatalf("theme %q has an unusable stroke: %+v", name, s)
		}
	}
}

func TestTableUnknownThemeFallsBack(t *testing.T) {
	t.Parallel()

	table := NewTable()
	if table.Known("neon") {
		t.Fatalf("did not expect neon to be registered")
	}
	if got, want := table.Stroke("neon"), table.Stroke("light"); got != want {
		t.Fatalf("expected fallback stroke %+v, got %+v", want, got)
	}
}
