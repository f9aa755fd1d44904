package model

import (
	"fmt"
	"strconv"
)

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Named colors used by the viewer.
var (
	// White is the fallback for values no bin covers.
	White = Color{R: 1, G: 1, B: 1, A: 1}
	// Yellow is the point color restored by a reset.
	Yellow = Color{R: 1, G: 1, B: 0, A: 1}
)

func floatToByte(v float64) int {
	switch {
	case v >= 1:
		return 255
	case v <= 0:
		return 0
	}
	return int(v * 256)
}

// CSS renders the color as rgb(...) when opaque and rgba(...) otherwise.
func (c Color) CSS() string {
	r, g, b := floatToByte(c.R), floatToByte(c.G), floatToByte(c.B)
	if c.A >= 1 {
		return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
	}
	return "rgba(" + strconv.Itoa(r) + "," + strconv.Itoa(g) + "," + strconv.Itoa(b) + "," +
		strconv.FormatFloat(c.A, 'f', -1, 64) + ")"
}

// Hex renders the color as #rrggbb, ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", floatToByte(c.R), floatToByte(c.G), floatToByte(c.B))
}
