package canvas

// Viewport describes the current pan/zoom state of a canvas view. It maps
// screen-space pointer coordinates (e.g. a drop event) to canvas
// coordinates.
//
// The transform follows the usual pan-then-scale convention: a canvas point
// p appears on screen at p*Zoom + Offset.
type Viewport struct {
	// OffsetX and OffsetY are the pan offsets in screen pixels.
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`

	// Zoom is the scale factor; 1 is unzoomed. Non-positive zoom is
	// treated as 1.
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is the identity transform: no pan, no zoom.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ScreenToCanvas converts a screen-space point to canvas coordinates.
func (v Viewport) ScreenToCanvas(screen Position) Position {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return Position{
		X: (screen.X - v.OffsetX) / zoom,
		Y: (screen.Y - v.OffsetY) / zoom,
	}
}

// CanvasToScreen converts a canvas point back to screen coordinates.
func (v Viewport) CanvasToScreen(canvas Position) Position {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return Position{
		X: canvas.X*zoom + v.OffsetX,
		Y: canvas.Y*zoom + v.OffsetY,
	}
}
