package render

import "image/color"

// OpKind identifies a recorded drawing call.
type OpKind int

const (
	OpClear OpKind = iota
	OpFillRect
	OpFillCircle
)

// Op is one recorded fill, together with the state it was drawn with.
type Op struct {
	Kind  OpKind
	Mode  CompositeMode
	Alpha float64
	Color color.Color
	X, Y  float64
	W, H  float64 // FillRect only
	R     float64 // FillCircle only
}

// Recorder is a headless Surface that counts drawing calls.
//
// With Trace enabled every call is also kept in Ops, which tests use to
// inspect what was drawn. The headless runner leaves Trace off so memory
// stays flat over long runs.
type Recorder struct {
	Width, Height float64
	Trace         bool
	Ops           []Op

	Clears  int
	Rects   int
	Circles int

	mode  CompositeMode
	alpha float64
	fill  color.Color
}

// NewRecorder creates a recorder of the given size.
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{
		Width:  width,
		Height: height,
		alpha:  1,
		fill:   color.Black,
	}
}

// Size implements Surface.
func (r *Recorder) Size() (float64, float64) {
	return r.Width, r.Height
}

// Clear implements Surface.
func (r *Recorder) Clear() {
	r.Clears++
	r.record(Op{Kind: OpClear})
}

// SetCompositeMode implements Surface.
func (r *Recorder) SetCompositeMode(mode CompositeMode) {
	r.mode = mode
}

// SetGlobalAlpha implements Surface.
func (r *Recorder) SetGlobalAlpha(alpha float64) {
	r.alpha = alpha
}

// SetFillColor implements Surface.
func (r *Recorder) SetFillColor(c color.Color) {
	r.fill = c
}

// FillRect implements Surface.
func (r *Recorder) FillRect(x, y, width, height float64) {
	r.Rects++
	r.record(Op{Kind: OpFillRect, X: x, Y: y, W: width, H: height})
}

// FillCircle implements Surface.
func (r *Recorder) FillCircle(cx, cy, radius float64) {
	r.Circles++
	r.record(Op{Kind: OpFillCircle, X: cx, Y: cy, R: radius})
}

// Reset forgets all counters and traced calls.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
	r.Clears, r.Rects, r.Circles = 0, 0, 0
}

// CountOps returns how many traced calls match kind and mode.
func (r *Recorder) CountOps(kind OpKind, mode CompositeMode) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind && op.Mode == mode {
			n++
		}
	}
	return n
}

func (r *Recorder) record(op Op) {
	if !r.Trace {
		return
	}
	op.Mode = r.mode
	op.Alpha = r.alpha
	op.Color = r.fill
	r.Ops = append(r.Ops, op)
}
