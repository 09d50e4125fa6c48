// Package export renders particle configurations as images.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/jamsim/internal/dynamo"
)

var speciesColors = []string{"#00a8cc", "#ff00ff", "#00ff88", "#ffcc00", "#ff4444"}

// Packing describes a 2-D configuration to draw. Only the first two
// coordinates of each particle are used.
type Packing struct {
	Positions dynamo.State
	Dim       int
	Species   []int
	// Diameters holds the self-interaction sigma of each species.
	Diameters []float64
	Sides     []float64
}

// WriteSVG draws every particle as a disc of its species diameter inside
// the box outline, scaled so the box is width pixels wide. Discs that cross
// the boundary are drawn again on the opposite side.
func WriteSVG(w io.Writer, p Packing, width int) error {
	if p.Dim < 2 || len(p.Sides) < 2 {
		return dynamo.Invalidf("svg export needs at least 2 dimensions")
	}
	if len(p.Positions)%p.Dim != 0 || len(p.Species) != p.Positions.Count(p.Dim) {
		return dynamo.ErrDimensionMismatch
	}
	if width <= 0 {
		return dynamo.Invalidf("svg width must be positive, got %d", width)
	}

	lx, ly := p.Sides[0], p.Sides[1]
	scale := float64(width) / lx
	height := ly * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%.0f" viewBox="0 0 %d %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a" stroke="#666666"/>
`, width, height, width, height))

	for i := 0; i < len(p.Species); i++ {
		s := p.Species[i]
		if s < 0 || s >= len(p.Diameters) {
			return dynamo.Invalidf("particle %d has species %d, only %d diameters", i, s, len(p.Diameters))
		}
		r := p.Diameters[s] / 2
		x, y := p.Positions[i*p.Dim], p.Positions[i*p.Dim+1]
		color := speciesColors[s%len(speciesColors)]

		for _, ox := range images(x, r, lx) {
			for _, oy := range images(y, r, ly) {
				cx := (x + ox) * scale
				cy := height - (y+oy)*scale
				sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="0.6"/>
`, cx, cy, r*scale, color))
			}
		}
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// images returns the offsets at which a disc of radius r centered at x is
// visible in [0, L).
func images(x, r, L float64) []float64 {
	out := []float64{0}
	if x-r < 0 {
		out = append(out, L)
	}
	if x+r > L {
		out = append(out, -L)
	}
	return out
}
