// Package garment defines the attribute records produced by photo analysis and
// consumed by compatibility scoring.
package garment

import (
	"fmt"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Category is a garment category label, e.g. "shirt" or "pants".
type Category string

// CategoryUncertain is assigned when the classifier confidence is too low to
// trust its label but the caller chooses to keep the item anyway.
const CategoryUncertain Category = "uncertain"

// Season is a season tag a garment is suited to.
type Season string

const (
	SeasonAll    Season = "all"
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

// ColorName is one entry of the closed color vocabulary.
type ColorName string

const (
	ColorBlack ColorName = "black"
	ColorWhite ColorName = "white"
	ColorGrey  ColorName = "grey"
	ColorRed   ColorName = "red"
	ColorGreen ColorName = "green"
	ColorBlue  ColorName = "blue"
	ColorBrown ColorName = "brown"
	ColorOther ColorName = "other"

	// ColorUnknown is not part of the vocabulary. It only appears in the
	// distribution returned when segmentation finds no garment.
	ColorUnknown ColorName = "unknown"
)

// Vocabulary lists the color names in naming-rule order.
var Vocabulary = []ColorName{
	ColorBlack, ColorWhite, ColorGrey, ColorRed, ColorGreen, ColorBlue, ColorBrown, ColorOther,
}

func vocabularyIndex(c ColorName) int {
	if i := slices.Index(Vocabulary, c); i >= 0 {
		return i
	}
	return len(Vocabulary)
}

// DistributionTolerance is the allowed deviation of a distribution total from 100.
const DistributionTolerance = 0.5

// ColorDistribution maps a color name to its share of the garment in percent.
type ColorDistribution map[ColorName]float64

// UnknownDistribution is the distribution reported for an empty segmentation.
func UnknownDistribution() ColorDistribution {
	return ColorDistribution{ColorUnknown: 100}
}

// Total returns the sum of all percentages.
func (d ColorDistribution) Total() float64 {
	values := make([]float64, 0, len(d))
	for _, v := range d {
		values = append(values, v)
	}
	return floats.Sum(values)
}

// Names returns the color names ordered by share, largest first. Equal shares
// are ordered by vocabulary position so the result is deterministic.
func (d ColorDistribution) Names() []ColorName {
	names := make([]ColorName, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if d[names[i]] != d[names[j]] {
			return d[names[i]] > d[names[j]]
		}
		ii, jj := vocabularyIndex(names[i]), vocabularyIndex(names[j])
		if ii != jj {
			return ii < jj
		}
		return names[i] < names[j]
	})
	return names
}

// Primary returns the dominant color, or "" for an empty distribution.
func (d ColorDistribution) Primary() ColorName {
	names := d.Names()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// Secondary returns the second largest color, or "" if there is none.
func (d ColorDistribution) Secondary() ColorName {
	names := d.Names()
	if len(names) < 2 {
		return ""
	}
	return names[1]
}

// Clone returns an independent copy.
func (d ColorDistribution) Clone() ColorDistribution {
	out := make(ColorDistribution, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Validate checks value ranges and that the shares add up to 100.
func (d ColorDistribution) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("color distribution is empty")
	}
	for name, pct := range d {
		if name == "" {
			return fmt.Errorf("color distribution has an empty color name")
		}
		if pct < 0 || pct > 100 {
			return fmt.Errorf("color %q has share %.2f outside [0,100]", name, pct)
		}
	}
	if total := d.Total(); total < 100-DistributionTolerance || total > 100+DistributionTolerance {
		return fmt.Errorf("color shares sum to %.2f, want 100", total)
	}
	return nil
}

// Attributes describes one analyzed garment photo.
type Attributes struct {
	Category Category          `json:"category" validate:"required"`
	Colors   ColorDistribution `json:"color_distribution" validate:"required"`
	Seasons  []Season          `json:"season" validate:"required,min=1,dive,required"`
}

// NewAttributes validates and copies its inputs into an Attributes value.
// A nil or empty season list defaults to "all".
func NewAttributes(category Category, colors ColorDistribution, seasons []Season) (Attributes, error) {
	if len(seasons) == 0 {
		seasons = []Season{SeasonAll}
	}
	a := Attributes{
		Category: category,
		Colors:   colors.Clone(),
		Seasons:  slices.Clone(seasons),
	}
	if err := Validate(a); err != nil {
		return Attributes{}, err
	}
	return a, nil
}

// PrimaryColor returns the dominant color of the garment.
func (a Attributes) PrimaryColor() ColorName {
	return a.Colors.Primary()
}

// HasSeason reports whether s is one of the garment's seasons.
func (a Attributes) HasSeason(s Season) bool {
	return slices.Contains(a.Seasons, s)
}

// Record pairs attributes with the identifier of the item they describe.
type Record struct {
	ID         string     `json:"id"`
	Attributes Attributes `json:"attributes"`
}
