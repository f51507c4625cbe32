package planetview

import (
	"fmt"
	"os"
	"path/filepath"

	kitlog "github.com/go-kit/kit/log"
)

// Renderer runs the full pipeline for one scene: visibility resolution,
// projection, clipping and document assembly. A Renderer carries only
// style and logging state and can be reused across scenes.
type Renderer struct {
	logger kitlog.Logger
	// Summary adds the field-of-view table to the document trailer.
	Summary bool
}

// NewRenderer returns a renderer logging to the given go-kit logger. A
// nil logger disables diagnostics.
func NewRenderer(logger kitlog.Logger) *Renderer {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Renderer{logger: kitlog.With(logger, "subsys", "render")}
}

// StdoutRenderer returns a renderer with logfmt diagnostics on stdout.
func StdoutRenderer() *Renderer {
	return NewRenderer(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout)))
}

// starStyle is the pen for star glyphs.
var starStyle = LineStyle{Width: 0.5}

// Render resolves and projects the whole scene into a document. The
// document is deterministic; callers wanting a dated header set
// Document.CreationDate afterwards.
func (r *Renderer) Render(s *Scene) (*Document, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	res, err := NewResolver(s)
	if err != nil {
		return nil, err
	}
	conf := pvConfig()
	clp := newClipper(s.View)

	doc := &Document{Title: s.Title, Creator: conf.creator, EpochJD: s.JD}
	var rows []SummaryRow
	for _, item := range s.drawOrder() {
		var block Block
		switch item.kind {
		case drawStars:
			block = r.starBlock(s, res, clp)
		case drawBody:
			var row SummaryRow
			block, row = r.bodyBlock(s, res, clp, conf, item.idx)
			rows = append(rows, row)
		case drawRing:
			block = r.ringBlock(s, res, clp, conf, item.idx)
		case drawLabel:
			l := s.Labels[item.idx]
			block = Block{Name: "label", Marks: []Mark{{Text: l.Text, At: l.At}}}
		}
		r.logger.Log("block", block.Name, "lines", len(block.Lines), "marks", len(block.Marks))
		doc.Blocks = append(doc.Blocks, block)
	}
	if r.Summary {
		doc.Summary = BuildSummary(rows)
	}
	return doc, nil
}

// RenderFile renders the scene and writes it atomically to path. When
// path is relative it lands in the configured output directory.
func (r *Renderer) RenderFile(s *Scene, path string) error {
	doc, err := r.Render(s)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(pvConfig().outputDir, path)
	}
	if err = doc.WriteFile(path); err != nil {
		return err
	}
	r.logger.Log("status", "written", "file", path)
	return nil
}

// plusGlyph builds the two strokes of a plus-shaped marker.
func plusGlyph(at [2]float64, half float64, style LineStyle) []Polyline {
	return []Polyline{
		{Points: [][2]float64{{at[0] - half, at[1]}, {at[0] + half, at[1]}}, Style: style},
		{Points: [][2]float64{{at[0], at[1] - half}, {at[0], at[1] + half}}, Style: style},
	}
}

// starBlock plots every star not behind a body as a plus glyph sized by
// magnitude. Glyphs are clipped like any other path but exempt from the
// degenerate-extent drop, since a glyph is small by construction.
func (r *Renderer) starBlock(s *Scene, res *Resolver, clp clipper) Block {
	block := Block{Name: "stars"}
	for _, st := range s.Stars {
		d := s.View.ToCamera(st.Dir)
		pt, ok := s.View.Project(d)
		if !ok || res.DirectionHidden(st.Dir) {
			continue
		}
		for _, g := range plusGlyph(pt, st.SymbolSize(), starStyle) {
			for _, piece := range clp.clip(g.Points) {
				if len(piece) >= 2 {
					block.Lines = append(block.Lines, Polyline{Points: piece, Style: g.Style})
				}
			}
		}
	}
	return block
}

// appendSegments samples, clips and appends every drawable segment of a
// resolved curve. Visible segments take style; in-shadow segments take the
// dark style unless unlit output is suppressed.
func appendSegments(block *Block, s *Scene, clp clipper, el Ellipse3, segs []AngularSegment, style, dark LineStyle) {
	for _, seg := range segs {
		var pen LineStyle
		switch seg.State {
		case SegVisible:
			pen = style
		case SegHiddenInShadow:
			if s.SuppressUnlit {
				continue
			}
			pen = dark
		default:
			continue
		}
		block.Lines = append(block.Lines, clp.clipPolylines(sampleArc(el, s.View, seg), pen)...)
	}
}

// surfaceCurve samples, clips and appends a curve lying on body bi's
// surface. Visible pieces split at the terminator planes so each is
// uniformly lit or unlit; segments shaded by another body's umbra take
// the dark style like any other eclipse.
func (r *Renderer) surfaceCurve(block *Block, s *Scene, res *Resolver, clp clipper, bi int, el Ellipse3, segs []AngularSegment, lit, dark LineStyle) {
	var litCuts []float64
	for li := range s.Lights {
		if term, _, tok := s.Bodies[bi].Terminator(s.Lights[li]); tok {
			litCuts = append(litCuts, planeEllipseAngles(el, term.Normal, term.PlaneConst())...)
		}
	}
	for _, seg := range SplitAt(segs, litCuts) {
		var pen LineStyle
		switch seg.State {
		case SegVisible:
			pen = lit
			if !res.Lit(bi, el.Point(seg.Mid())) {
				if s.SuppressUnlit {
					continue
				}
				pen = dark
			}
		case SegHiddenInShadow:
			if s.SuppressUnlit {
				continue
			}
			pen = dark
		default:
			continue
		}
		block.Lines = append(block.Lines, clp.clipPolylines(sampleArc(el, s.View, seg), pen)...)
	}
}

// bodyBlock draws one body: lit limb arcs solid, unlit limb arcs in the
// dark gray (or suppressed), surface grid circles thin, terminators
// thin, and reports a summary row from the projected limb.
func (r *Renderer) bodyBlock(s *Scene, res *Resolver, clp clipper, conf _pvconfig, bi int) (Block, SummaryRow) {
	body := s.Bodies[bi]
	block := Block{Name: body.Name}
	row := SummaryRow{Name: body.Name, State: rowHidden}

	limb, segs, ok := res.ResolveLimb(bi)
	if !ok {
		row.State = rowOffPage
		return block, row
	}

	litStyle := LineStyle{Width: conf.limbWidth}
	darkStyle := LineStyle{Width: conf.limbWidth, Gray: conf.darkGray}
	r.surfaceCurve(&block, s, res, clp, bi, limb, segs, litStyle, darkStyle)

	gridStyle := LineStyle{Width: conf.gridWidth}
	gridDark := LineStyle{Width: conf.gridWidth, Gray: conf.darkGray}
	grid := body.Meridians(body.Merids)
	grid = append(grid, body.LatitudeCircles(body.LatCircles)...)
	for _, g := range grid {
		r.surfaceCurve(&block, s, res, clp, bi, g, res.ResolveSurfaceCurve(bi, g), gridStyle, gridDark)
	}

	termStyle := LineStyle{Width: conf.termWidth}
	for li := range s.Lights {
		if term, tsegs, tok := res.ResolveTerminator(bi, li); tok {
			appendSegments(&block, s, clp, term, tsegs, termStyle, darkStyle)
		}
	}

	if proj, pok := limb.Project(s.View); pok {
		row.X, row.Y = proj.Center[0], proj.Center[1]
		row.Radius = proj.SemiMajor
		row.State = summaryState(segs, onPage(proj.Center, proj.SemiMajor, s.View))
	}
	return block, row
}

// ringBlock draws both boundaries of one ring plus its pericenter marker.
func (r *Renderer) ringBlock(s *Scene, res *Resolver, clp clipper, conf _pvconfig, idx int) Block {
	ring := s.Rings[idx]
	block := Block{Name: fmt.Sprintf("%s ring %s", s.Bodies[ring.Body].Name, ring.Name)}

	style := LineStyle{Width: conf.ringWidth}
	if ring.Opacity == RingSemiTransparent {
		style.Gray = conf.ringGray
	}
	if ring.Dashed {
		style.Dashed = true
		style.Dash = [2]float64{conf.dashOn, conf.dashOff}
	}
	dark := style
	dark.Gray = conf.darkGray

	for _, radius := range []float64{ring.Inner, ring.Outer} {
		if radius <= 0 {
			continue
		}
		el, segs := res.ResolveRingBoundary(idx, radius)
		appendSegments(&block, s, clp, el, segs, style, dark)
	}

	if ring.HasPericenter {
		// an eccentric boundary bakes the corotated apse line into its
		// axes, so the pericenter is its θ=0 point
		el := ring.boundary(ring.Outer, s.ElapsedSec)
		θ := 0.0
		if ring.Ecc == 0 {
			θ = mod2π(ring.Pericenter + ring.ArcRate*s.ElapsedSec)
		}
		peri := el.Point(θ)
		if !res.hiddenBy(peri, -1) {
			if pt, ok := s.View.Project(s.View.ToCamera(peri)); ok {
				for _, g := range plusGlyph(pt, 3, LineStyle{Width: conf.ringWidth}) {
					for _, piece := range clp.clip(g.Points) {
						if len(piece) >= 2 {
							block.Lines = append(block.Lines, Polyline{Points: piece, Style: g.Style})
						}
					}
				}
			}
		}
	}
	return block
}
