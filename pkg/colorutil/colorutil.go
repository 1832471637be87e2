// Package colorutil provides shared color utilities for garment analysis.
package colorutil

import "image/color"

// RGB is an 8-bit per channel color without alpha.
type RGB struct {
	R, G, B uint8
}

// FromColor converts any color.Color to RGB, dropping alpha.
func FromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// FromBGR builds an RGB from OpenCV channel order.
func FromBGR(b, g, r uint8) RGB {
	return RGB{R: r, G: g, B: b}
}

// RGBA returns the opaque color.RGBA for c.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Max returns the largest channel value.
func (c RGB) Max() uint8 {
	return max(c.R, c.G, c.B)
}

// Min returns the smallest channel value.
func (c RGB) Min() uint8 {
	return min(c.R, c.G, c.B)
}

// Spread returns max channel minus min channel.
func (c RGB) Spread() int {
	return int(c.Max()) - int(c.Min())
}

// AbsDiff returns |a-b| for two channel values.
func AbsDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// Clamp8 truncates a float channel value into 0-255.
func Clamp8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
