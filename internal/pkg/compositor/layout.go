package compositor

import "image"

// Layout is the placement of every source image inside the composite.
type Layout struct {
	Width   int
	Height  int
	Offsets []image.Point
}

// NewLayout depends only on the ordered source sizes: width is the widest
// source, height is the sum of all heights, and each source is centred with
// its left edge at (Width-w)/2.
func NewLayout(sizes []image.Point) Layout {
	l := Layout{Offsets: make([]image.Point, len(sizes))}
	for _, s := range sizes {
		if s.X > l.Width {
			l.Width = s.X
		}
		l.Height += s.Y
	}

	y := 0
	for i, s := range sizes {
		l.Offsets[i] = image.Pt(centerOffset(l.Width, s.X), y)
		y += s.Y
	}
	return l
}

func (l Layout) Pixels() int64 {
	return int64(l.Width) * int64(l.Height)
}

func centerOffset(maxWidth, width int) int {
	return (maxWidth - width) / 2
}
