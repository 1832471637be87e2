// Package segment isolates a garment from its photo background.
package segment

import (
	"fmt"
	"image"
	"runtime"

	"thrift-matcher/internal/garment"
	"thrift-matcher/pkg/geometry"

	"gocv.io/x/gocv"
)

// Segment runs GrabCut seeded with a rectangle inset by params.Margin from each
// edge: outside the rectangle is definite background, inside is unknown. img
// must be an 8-bit 3-channel BGR Mat.
//
// An image with width or height <= 2*Margin fails with
// garment.ErrInvalidImageGeometry. If no pixel ends up foreground the mask is
// returned together with garment.ErrEmptySegmentation.
func Segment(img gocv.Mat, params Params) (*Mask, error) {
	if img.Empty() {
		return nil, fmt.Errorf("segment: empty image: %w", garment.ErrInvalidImageGeometry)
	}
	if img.Channels() != 3 {
		return nil, fmt.Errorf("segment: expected 3-channel image, got %d", img.Channels())
	}

	w, h := img.Cols(), img.Rows()
	roi, ok := geometry.InsetRect(w, h, params.Margin)
	if !ok {
		return nil, fmt.Errorf("segment: %dx%d image with margin %d: %w",
			w, h, params.Margin, garment.ErrInvalidImageGeometry)
	}

	iterations := params.Iterations
	if iterations < 1 {
		iterations = DefaultIterations
	}

	labels := gocv.NewMat()
	defer labels.Close()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	gocv.GrabCut(img, &labels, roi.ToImage(), &bgdModel, &fgdModel, iterations, gocv.GCInitWithRect)

	mask := fromLabels(w, h, labels.ToBytes())
	if mask.Empty() {
		return mask, fmt.Errorf("segment: %w", garment.ErrEmptySegmentation)
	}
	return mask, nil
}

// ImageToMat converts a Go image.Image to a gocv.Mat in BGR format.
func ImageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.NewMat(), fmt.Errorf("image has no pixels: %w", garment.ErrInvalidImageGeometry)
	}

	buf := make([]byte, 0, w*h*3)
	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w*4]
			for x := 0; x < w; x++ {
				buf = append(buf, row[x*4+2], row[x*4+1], row[x*4])
			}
		}
	case *image.RGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w*4]
			for x := 0; x < w; x++ {
				buf = append(buf, row[x*4+2], row[x*4+1], row[x*4])
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				buf = append(buf, uint8(b>>8), uint8(g>>8), uint8(r>>8))
			}
		}
	}

	// NewMatFromBytes wraps buf without copying, so hand back an owned clone.
	view, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, buf)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create mat: %w", err)
	}
	defer view.Close()
	mat := view.Clone()
	runtime.KeepAlive(buf)
	return mat, nil
}
