package segment

const (
	// DefaultMargin is the inset in pixels from each edge of the photo used
	// to seed the garment region.
	DefaultMargin = 10

	// DefaultIterations is the number of GrabCut refinement passes.
	DefaultIterations = 5
)

// Params configures foreground segmentation.
type Params struct {
	Margin     int // Inset from each edge; outside is definite background
	Iterations int // GrabCut refinement passes
}

// DefaultParams returns the default segmentation parameters.
func DefaultParams() Params {
	return Params{
		Margin:     DefaultMargin,
		Iterations: DefaultIterations,
	}
}

// WithMargin returns a copy of params with a different region inset.
func (p Params) WithMargin(margin int) Params {
	p.Margin = margin
	return p
}

// WithIterations returns a copy of params with a different pass count.
// Values below 1 fall back to DefaultIterations.
func (p Params) WithIterations(n int) Params {
	if n < 1 {
		n = DefaultIterations
	}
	p.Iterations = n
	return p
}
