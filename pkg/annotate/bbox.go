package annotate

// Box is one normalized 2D bounding box: YOLO-style center/extent in [0, 1]
// plus the visible fraction used for occlusion/truncation filtering. Boxes
// are derived values, never mutated after creation.
type Box struct {
	ClassID int
	Class   string

	XCenter float32
	YCenter float32
	Width   float32
	Height  float32

	// Visibility is the clipped projected area over the full projected
	// area: near 0 for objects mostly off-frame or behind the camera.
	Visibility float32
}

// PixelRect returns the clipped box in pixel coordinates for an image of the
// given size, as (x0, y0, x1, y1).
func (b Box) PixelRect(width, height int) (float32, float32, float32, float32) {
	w := float32(width)
	h := float32(height)
	bw := b.Width * w
	bh := b.Height * h
	x0 := b.XCenter*w - bw/2
	y0 := b.YCenter*h - bh/2
	return x0, y0, x0 + bw, y0 + bh
}
