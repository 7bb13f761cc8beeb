package annotation

import (
	"fmt"
	"math"
	"strings"
)

// NormalizePoints converts a raw record's geometry into the canonical
// ordered point list. An empty result means the record carries no usable
// geometry and is dropped from output.
func NormalizePoints(record *Record) []Point {
	switch record.Annotation {
	case TypeBox:
		return normalizeBox(record)
	case TypePolygons:
		// Order is meaningful; never re-sort or validate the ring.
		return record.Points
	}
	return nil
}

func normalizeBox(record *Record) []Point {
	// A present corner set is authoritative: a partial one drops the record.
	// The left/top/width/height fallback only applies when no corner was
	// exported at all.
	if c := record.Coords; c != nil && !c.empty() {
		if c.TL == nil || c.TR == nil || c.BR == nil || c.BL == nil {
			return nil
		}
		return []Point{*c.TL, *c.TR, *c.BR, *c.BL}
	}

	obj := record.Object
	if obj == nil || obj.Width <= 0 || obj.Height <= 0 {
		return nil
	}

	return []Point{
		{X: obj.Left, Y: obj.Top},
		{X: obj.Left + obj.Width, Y: obj.Top},
		{X: obj.Left + obj.Width, Y: obj.Top + obj.Height},
		{X: obj.Left, Y: obj.Top + obj.Height},
	}
}

// FormatCoord rounds to 4 decimals and renders with exactly 4 digits so the
// output is byte-stable regardless of input precision.
func FormatCoord(v float64) string {
	return fmt.Sprintf("%.4f", math.Round(v*10000)/10000)
}

// FormatPoints renders an ordered point list as the CVAT points attribute
// value, "x1,y1;x2,y2;...".
func FormatPoints(points []Point) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, FormatCoord(p.X)+","+FormatCoord(p.Y))
	}
	return strings.Join(parts, ";")
}
