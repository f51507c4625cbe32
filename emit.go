package planetview

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Device coordinate system: the page is 612x792 printer points emitted in
// tenth-point integer units, with the diagram origin at the page center.
const (
	deviceScale   = 10
	deviceCenterX = 3060
	deviceCenterY = 4500
)

// Mark is a text annotation anchored at a page coordinate.
type Mark struct {
	Text string
	At   [2]float64
}

// Block is one named group of output: all polylines and marks for a
// single scene object, emitted under a "%Draw <name>" comment.
type Block struct {
	Name  string
	Lines []Polyline
	Marks []Mark
}

// Document is a fully resolved diagram ready for emission. Every field is
// deterministic; CreationDate is the only line that varies between runs
// and an empty value omits it entirely, which makes repeated renders of
// the same scene byte-identical.
type Document struct {
	Title        string
	Creator      string
	CreationDate string
	EpochJD      float64 // observation epoch, zero omits the header line
	Blocks       []Block
	Summary      []string // fixed-width table lines, emitted as trailing comments
}

// ri rounds to the nearest integer with halves away from zero.
func ri(v float64) int {
	return int(v + math.Copysign(0.5, v))
}

// devX and devY map page coordinates to device integers.
func devX(x float64) int { return ri(x*deviceScale) + deviceCenterX }
func devY(y float64) int { return ri(y*deviceScale) + deviceCenterY }

// psEscape quotes the characters PostScript strings reserve.
func psEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// penState tracks the emitted graphics state so redundant gray, width and
// dash operators are skipped.
type penState struct {
	gray   float64
	width  float64
	dashed bool
	dash   [2]float64
}

func (p *penState) apply(w *bufio.Writer, style LineStyle) {
	if style.Gray != p.gray {
		fmt.Fprintf(w, "%.1f G\n", style.Gray)
		p.gray = style.Gray
	}
	if style.Width != p.width {
		fmt.Fprintf(w, "%d setlinewidth\n", ri(style.Width*deviceScale))
		p.width = style.Width
	}
	if style.Dashed != p.dashed || (style.Dashed && style.Dash != p.dash) {
		if style.Dashed {
			fmt.Fprintf(w, "[%d %d] 0 setdash\n", ri(style.Dash[0]*deviceScale), ri(style.Dash[1]*deviceScale))
		} else {
			fmt.Fprintln(w, "[] 0 setdash")
		}
		p.dashed = style.Dashed
		p.dash = style.Dash
	}
}

// WriteTo emits the document as an EPSF-2.0 PostScript program. Output is
// a pure function of the document contents.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	bw := bufio.NewWriter(cw)

	fmt.Fprintln(bw, "%!PS-Adobe-2.0 EPSF-2.0")
	fmt.Fprintln(bw, "%%BoundingBox: 0 0 612 792")
	if d.Creator != "" {
		fmt.Fprintf(bw, "%%%%Creator: %s\n", d.Creator)
	}
	if d.Title != "" {
		fmt.Fprintf(bw, "%%%%Title: %s\n", d.Title)
	}
	if d.CreationDate != "" {
		fmt.Fprintf(bw, "%%%%CreationDate: %s\n", d.CreationDate)
	}
	if d.EpochJD != 0 {
		fmt.Fprintf(bw, "%%%%Epoch: JD %.5f\n", d.EpochJD)
	}
	bw.WriteString("%%EndComments\n")
	fmt.Fprintln(bw, "0.1 0.1 scale")
	fmt.Fprintln(bw, "/L {lineto} def")
	fmt.Fprintln(bw, "/M {moveto} def")
	fmt.Fprintln(bw, "/N {newpath} def")
	fmt.Fprintln(bw, "/G {setgray} def")
	fmt.Fprintln(bw, "/S {stroke} def")
	fmt.Fprintln(bw, "/Helvetica findfont 90 scalefont setfont")
	fmt.Fprintln(bw, "1 setlinecap 1 setlinejoin")

	pen := penState{gray: -1, width: -1}
	for _, b := range d.Blocks {
		if len(b.Lines) == 0 && len(b.Marks) == 0 {
			continue
		}
		fmt.Fprintf(bw, "%%Draw %s\n", b.Name)
		for _, pl := range b.Lines {
			if len(pl.Points) < 2 {
				continue
			}
			pen.apply(bw, pl.Style)
			fmt.Fprintf(bw, "N %d %d M", devX(pl.Points[0][0]), devY(pl.Points[0][1]))
			for i, pt := range pl.Points[1:] {
				if (i+1)%4 == 0 {
					fmt.Fprintln(bw)
				}
				fmt.Fprintf(bw, " %d %d L", devX(pt[0]), devY(pt[1]))
			}
			fmt.Fprintln(bw, " S")
		}
		for _, m := range b.Marks {
			if pen.gray != 0 {
				fmt.Fprintln(bw, "0.0 G")
				pen.gray = 0
			}
			fmt.Fprintf(bw, "%d %d M (%s) show\n", devX(m.At[0]), devY(m.At[1]), psEscape(m.Text))
		}
	}

	for _, line := range d.Summary {
		fmt.Fprintf(bw, "%% %s\n", line)
	}
	fmt.Fprintln(bw, "showpage")
	if err := bw.Flush(); err != nil {
		return cw.n, errors.Wrap(err, "flushing drawing output")
	}
	return cw.n, nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteFile writes the document atomically: the full program goes to a
// temporary file in the destination directory which is renamed into place
// only on success, so a failed render never leaves a partial plot behind.
func (d *Document) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "creating temporary file in %s", dir)
	}
	tmpName := tmp.Name()
	if _, err = d.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "writing %s", tmpName)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "closing %s", tmpName)
	}
	if err = os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "renaming into %s", path)
	}
	return nil
}
