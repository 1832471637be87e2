package colors

import (
	"thrift-matcher/internal/garment"
	"thrift-matcher/pkg/colorutil"
)

// Naming thresholds.
const (
	blackMax      = 40  // every channel below this is black
	whiteMin      = 200 // every channel above this is white
	greyTolerance = 15  // |r-g| and |r-b| below this is grey

	brownRedMin   = 150
	brownGreenMin = 100
	brownBlueMax  = 80
)

// Name maps a cluster center to the color vocabulary. Rules are evaluated in
// order and the first match wins.
//
// Brown is checked after the three "strictly largest channel" rules, so it
// only fires when red and green tie for the largest channel.
func Name(c colorutil.RGB) garment.ColorName {
	r, g, b := c.R, c.G, c.B

	switch {
	case r < blackMax && g < blackMax && b < blackMax:
		return garment.ColorBlack
	case r > whiteMin && g > whiteMin && b > whiteMin:
		return garment.ColorWhite
	case colorutil.AbsDiff(r, g) < greyTolerance && colorutil.AbsDiff(r, b) < greyTolerance:
		return garment.ColorGrey
	case r > g && r > b:
		return garment.ColorRed
	case g > r && g > b:
		return garment.ColorGreen
	case b > r && b > g:
		return garment.ColorBlue
	case r > brownRedMin && g > brownGreenMin && b < brownBlueMax:
		return garment.ColorBrown
	default:
		return garment.ColorOther
	}
}
