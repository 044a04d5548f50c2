package types

// Rect describes a rotated rectangle in absolute pixel coordinates.
// The rotation is in radians, counter-clockwise around the center.
type Rect struct {
	XCenter  float64 `json:"x_center"`
	YCenter  float64 `json:"y_center"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// NormalizedRect describes a rotated rectangle whose center and size are
// fractions of an accompanying image's width and height. Rotation is in
// radians, same frame as Rect.
type NormalizedRect struct {
	XCenter  float64 `json:"x_center"`
	YCenter  float64 `json:"y_center"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// ImageSize holds the pixel dimensions of the image a NormalizedRect
// refers to.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ToRect converts a normalized rect to absolute pixel coordinates.
func (r NormalizedRect) ToRect(size ImageSize) Rect {
	w, h := float64(size.Width), float64(size.Height)
	return Rect{
		XCenter:  r.XCenter * w,
		YCenter:  r.YCenter * h,
		Width:    r.Width * w,
		Height:   r.Height * h,
		Rotation: r.Rotation,
	}
}

// Box represents a normalized top-left bounding box as vision models
// typically emit it, with coordinates in [0,1] range.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ToNormalizedRect converts a top-left box to a center-based rect with
// zero rotation.
func (b Box) ToNormalizedRect() NormalizedRect {
	return NormalizedRect{
		XCenter: b.X + b.W/2,
		YCenter: b.Y + b.H/2,
		Width:   b.W,
		Height:  b.H,
	}
}

// BoxFromNormalizedRect converts a center-based rect back to a top-left
// box, dropping the rotation.
func BoxFromNormalizedRect(r NormalizedRect) Box {
	return Box{
		X: r.XCenter - r.Width/2,
		Y: r.YCenter - r.Height/2,
		W: r.Width,
		H: r.Height,
	}
}

// Detection is the primary subject reported by a vision backend.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
	Cx         float64 `json:"cx"`
	Cy         float64 `json:"cy"`
}

// DetectionResult contains the complete detection output from a vision
// backend.
type DetectionResult struct {
	Primary     Detection `json:"primary"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
}

// Rect returns the detected region as a center-based normalized rect.
func (d Detection) Rect() NormalizedRect {
	return d.Box.ToNormalizedRect()
}
