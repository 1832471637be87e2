// Package geometry provides basic geometric types used throughout the application.
package geometry

import "image"

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// InsetRect returns the rectangle left after removing margin pixels from each
// edge of a width x height image. ok is false when nothing would remain.
func InsetRect(width, height, margin int) (r RectInt, ok bool) {
	if margin < 0 || width <= 2*margin || height <= 2*margin {
		return RectInt{}, false
	}
	return RectInt{
		X:      margin,
		Y:      margin,
		Width:  width - 2*margin,
		Height: height - 2*margin,
	}, true
}

// Empty reports whether the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns Width*Height.
func (r RectInt) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Contains reports whether pixel (x, y) lies inside the rectangle.
func (r RectInt) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// ToImage converts to an image.Rectangle.
func (r RectInt) ToImage() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}
