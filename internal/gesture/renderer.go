package gesture

import (
	"gemkey/internal/domain"
	"gemkey/internal/theme"
)

// Renderer produces per-animation-frame snapshots of the active trace for
// the overlay canvas. Snapshotting, rather than sharing the live path,
// guarantees the canvas is never drawn from a half-updated point list.
type Renderer struct {
	tracker *Tracker
	themes  *theme.Table

	// scratch is reused across frames; Frame copies out of it.
	scratch []domain.TracePoint
}

func NewRenderer(tracker *Tracker, themes *theme.Table) *Renderer {
	return &Renderer{
		tracker: tracker,
		themes:  themes,
		scratch: make([]domain.TracePoint, 0, 256),
	}
}

// Frame returns the polyline to draw this frame, with stroke style from
// the named theme. An inactive frame carries no points; the frontend
// clears the overlay in response.
func (r *Renderer) Frame(themeName string) domain.TraceFrame {
	stroke := r.themes.Stroke(themeName)

	r.scratch = r.scratch[:0]
	snapshot, active := r.tracker.Snapshot(r.scratch)
	r.scratch = snapshot[:0]

	frame := domain.TraceFrame{
		Active:      active,
		StrokeColor: stroke.Color,
		StrokeWidth: stroke.Width,
	}
	if !active || len(snapshot) == 0 {
		return frame
	}

	frame.Points = make([]domain.TracePoint, len(snapshot))
	copy(frame.Points, snapshot)
	return frame
}
