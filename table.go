package planetview

import (
	"fmt"
	"math"
)

// SummaryRow is one field-of-view table entry: where a scene object lands
// on the page, how large it plots, and whether any of it survived
// visibility resolution and clipping.
type SummaryRow struct {
	Name   string
	X, Y   float64 // projected center, page units
	Radius float64 // projected angular size, page units
	State  string
}

const (
	rowVisible = "visible"
	rowHidden  = "hidden"
	rowShadow  = "in shadow"
	rowOffPage = "off page"
)

// BuildSummary renders rows as a fixed-width table, one string per line,
// with a header and ruled separator. Rows keep their input order so the
// table mirrors the draw order of the plot.
func BuildSummary(rows []SummaryRow) []string {
	out := make([]string, 0, len(rows)+2)
	out = append(out, fmt.Sprintf("%-14s %10s %10s %9s  %-9s", "object", "x", "y", "radius", "state"))
	out = append(out, fmt.Sprintf("%-14s %10s %10s %9s  %-9s", "--------------",
		"----------", "----------", "---------", "---------"))
	for _, r := range rows {
		out = append(out, fmt.Sprintf("%-14s %10.2f %10.2f %9.2f  %-9s",
			clampName(r.Name, 14), r.X, r.Y, r.Radius, r.State))
	}
	return out
}

func clampName(name string, width int) string {
	if len(name) <= width {
		return name
	}
	return name[:width]
}

// summaryState reduces a resolved limb partition to a single table word:
// visible if any arc survives, otherwise the dominant hidden cause.
func summaryState(segs []AngularSegment, onPage bool) string {
	if !onPage {
		return rowOffPage
	}
	var hidden, shadow float64
	for _, s := range segs {
		switch s.State {
		case SegVisible:
			return rowVisible
		case SegHiddenBehindBody:
			hidden += s.Len()
		case SegHiddenInShadow:
			shadow += s.Len()
		}
	}
	if shadow > hidden {
		return rowShadow
	}
	return rowHidden
}

// onPage reports whether any part of a disc of the given page radius at
// the given page center overlaps the field of view.
func onPage(center [2]float64, radius float64, vt ViewTransform) bool {
	return math.Abs(center[0])-radius <= vt.HalfW && math.Abs(center[1])-radius <= vt.HalfH
}
