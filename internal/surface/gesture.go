package surface

// Verdict is the outcome of releasing the slide control.
type Verdict int

const (
	// VerdictNone means the control springs back to center.
	VerdictNone Verdict = iota
	// VerdictAccept means the control passed the accept threshold.
	VerdictAccept
	// VerdictReject means the control passed the reject threshold.
	VerdictReject
)

// Track describes the slide control's geometry. Positive offsets run toward
// accept, negative toward reject.
type Track struct {
	// Width is the full track width in display units.
	Width float64
	// Threshold is the deciding displacement as a fraction of the track
	// half-width, in (0, 1].
	Threshold float64
}

// Fallback geometry for tracks built with out-of-range values.
const (
	defaultTrackWidth     = 300
	defaultSlideThreshold = 0.6
)

// normalized replaces out-of-range geometry with the defaults. Without the
// clamp a zero threshold would commit accept on an untouched control.
func (t Track) normalized() Track {
	if t.Width <= 0 {
		t.Width = defaultTrackWidth
	}

	if t.Threshold <= 0 || t.Threshold > 1 {
		t.Threshold = defaultSlideThreshold
	}

	return t
}

// Gesture is the slide-to-decide state machine. It is driven by one input
// sequence (Grab, Drag..., Release) and is not safe for concurrent use; the
// surface serializes access to it.
type Gesture struct {
	// track is the control geometry.
	track Track
	// offset is the control's current displacement from center.
	offset float64
	// grabbed is true between Grab and Release.
	grabbed bool
}

// NewGesture creates a gesture machine on the given track. Out-of-range
// geometry falls back to the defaults.
func NewGesture(track Track) *Gesture {
	return &Gesture{track: track.normalized()}
}

// Grab starts a drag at the center of the track.
func (g *Gesture) Grab() {
	g.grabbed = true
	g.offset = 0
}

// Drag moves the control, clamped to the track, and returns the effective
// offset for rendering. Offsets are ignored when the control is not grabbed.
func (g *Gesture) Drag(offset float64) float64 {
	if !g.grabbed {
		return g.offset
	}

	half := g.track.Width / 2

	switch {
	case offset > half:
		g.offset = half
	case offset < -half:
		g.offset = -half
	default:
		g.offset = offset
	}

	return g.offset
}

// Release ends the drag and returns the verdict. Anything short of the
// threshold springs back to center with no decision.
func (g *Gesture) Release() Verdict {
	if !g.grabbed {
		return VerdictNone
	}

	g.grabbed = false

	deciding := g.track.Threshold * g.track.Width / 2
	offset := g.offset
	g.offset = 0

	switch {
	case offset >= deciding:
		return VerdictAccept
	case offset <= -deciding:
		return VerdictReject
	default:
		return VerdictNone
	}
}

// Offset returns the control's current displacement for rendering.
func (g *Gesture) Offset() float64 {
	return g.offset
}
