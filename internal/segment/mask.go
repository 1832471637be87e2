package segment

// GrabCut mask labels as written by OpenCV.
const (
	labelBackground         = 0 // GC_BGD
	labelForeground         = 1 // GC_FGD
	labelProbableBackground = 2 // GC_PR_BGD
	labelProbableForeground = 3 // GC_PR_FGD
)

// Mask is a binary foreground mask, 1 for garment and 0 for background,
// stored row-major.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask allocates an all-background mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At returns the mask value at (x, y). Out of range coordinates are background.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Pix[y*m.Width+x]
}

// Set marks (x, y) as foreground or background.
func (m *Mask) Set(x, y int, fg bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	var v uint8
	if fg {
		v = 1
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Empty reports whether no pixel is foreground.
func (m *Mask) Empty() bool {
	for _, v := range m.Pix {
		if v != 0 {
			return false
		}
	}
	return true
}

// Fraction returns the share of foreground pixels in [0,1].
func (m *Mask) Fraction() float64 {
	if len(m.Pix) == 0 {
		return 0
	}
	return float64(m.Count()) / float64(len(m.Pix))
}

// fromLabels converts GrabCut labels to a binary mask. Definite and probable
// background become 0, everything else 1.
func fromLabels(width, height int, labels []byte) *Mask {
	m := NewMask(width, height)
	for i, v := range labels {
		if i >= len(m.Pix) {
			break
		}
		if v != labelBackground && v != labelProbableBackground {
			m.Pix[i] = 1
		}
	}
	return m
}
