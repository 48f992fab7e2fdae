package pipeline

// boundingRect computes the axis-aligned bounding rectangle of a polygon.
// An empty vertex list yields the zero rectangle.
func boundingRect(vertices []Vertex) (left, top, width, height int) {
	if len(vertices) == 0 {
		return 0, 0, 0, 0
	}

	left = vertices[0].X
	top = vertices[0].Y
	right := vertices[0].X
	bottom := vertices[0].Y

	for _, v := range vertices[1:] {
		if v.X < left {
			left = v.X
		}
		if v.X > right {
			right = v.X
		}
		if v.Y < top {
			top = v.Y
		}
		if v.Y > bottom {
			bottom = v.Y
		}
	}

	return left, top, right - left, bottom - top
}

// buildFragments converts raw detections into fragments with derived
// rectangles. Order is preserved; the OCR service returns fragments in
// reading order and no reordering happens here.
func buildFragments(detections []Detection) []Fragment {
	fragments := make([]Fragment, 0, len(detections))
	for _, d := range detections {
		bounds := d.Vertices
		if bounds == nil {
			bounds = []Vertex{}
		}

		left, top, width, height := boundingRect(d.Vertices)
		fragments = append(fragments, Fragment{
			Text:   d.Text,
			Bounds: bounds,
			Left:   left,
			Top:    top,
			Width:  width,
			Height: height,
		})
	}
	return fragments
}
