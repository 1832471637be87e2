package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Formats accepted in addition to imaging's defaults.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
)

// DefaultMaxDimension bounds the longest side of the working image.
const DefaultMaxDimension = 800

// ErrUndecodableImage means the upload is not an image in a supported format.
var ErrUndecodableImage = errors.New("undecodable image")

// Decode reads an encoded photo, applies its EXIF orientation and shrinks it
// so neither side exceeds maxDim. maxDim <= 0 keeps the original size.
func Decode(data []byte, maxDim int) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("analysis: empty upload: %w", ErrUndecodableImage)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("analysis: %w: %v", ErrUndecodableImage, err)
	}

	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}
	return img, nil
}
