package planetview

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testDoc() *Document {
	return &Document{
		Title:   "test plot",
		Creator: "planetview",
		Blocks: []Block{
			{
				Name: "Saturn",
				Lines: []Polyline{
					{Points: [][2]float64{{-10, 0}, {0, 10}, {10, 0}}, Style: LineStyle{Width: 1}},
					{Points: [][2]float64{{-20, -5}, {20, -5}}, Style: LineStyle{Width: 0.5, Gray: 0.7}},
				},
			},
			{
				Name:  "label",
				Marks: []Mark{{Text: "Titan (5)", At: [2]float64{30, 40}}},
			},
		},
		Summary: []string{"object x y", "Saturn 0.00 0.00"},
	}
}

func TestEmitDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	doc := testDoc()
	if _, err := doc.WriteTo(&a); err != nil {
		t.Fatal(err)
	}
	if _, err := doc.WriteTo(&b); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("two emissions of the same document differ")
	}
}

func TestEmitStructure(t *testing.T) {
	var buf bytes.Buffer
	n, err := testDoc().WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Fatalf("reported %d bytes, wrote %d", n, buf.Len())
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%!PS-Adobe-2.0 EPSF-2.0\n%%BoundingBox: 0 0 612 792\n") {
		t.Fatal("missing EPSF header")
	}
	if strings.Contains(out, "%%CreationDate") {
		t.Fatal("undated document must omit the CreationDate line")
	}
	if strings.Contains(out, "%%Epoch") {
		t.Fatal("document without an epoch must omit the Epoch line")
	}
	if !strings.Contains(out, "%Draw Saturn\n") {
		t.Fatal("missing block comment")
	}
	if !strings.Contains(out, "0.7 G\n") {
		t.Fatal("missing gray change")
	}
	if !strings.Contains(out, `(Titan \(5\)) show`) {
		t.Fatal("mark text not escaped")
	}
	if !strings.HasSuffix(out, "showpage\n") {
		t.Fatal("missing showpage trailer")
	}
	// page center maps to device (3060, 4500): the first path point
	// (-10, 0) lands at (2960, 4500)
	if !strings.Contains(out, "N 2960 4500 M") {
		t.Fatal("device mapping off for the first point")
	}
}

func TestEmitDateOnlyWhenSet(t *testing.T) {
	doc := testDoc()
	doc.CreationDate = "2017-01-01 00:00:00"
	doc.EpochJD = 2457754.5
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "%%CreationDate: 2017-01-01 00:00:00\n") {
		t.Fatal("CreationDate line missing")
	}
	if !strings.Contains(buf.String(), "%%Epoch: JD 2457754.50000\n") {
		t.Fatal("Epoch line missing")
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{{0.5, 1}, {-0.5, -1}, {2.4, 2}, {-2.4, -2}, {2.5, 3}, {-2.5, -3}, {0, 0}}
	for _, c := range cases {
		if got := ri(c.in); got != c.want {
			t.Fatalf("ri(%f) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plot.ps")
	if err := testDoc().WriteFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%!PS-Adobe-2.0 EPSF-2.0")) {
		t.Fatal("written file lacks the EPSF header")
	}
	// no leftover temporaries
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the plot in %s, found %d entries", dir, len(entries))
	}
}

func TestRenderFileLeavesNothingOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ps")
	scene := &Scene{
		View:   testView(t),
		Bodies: []Ellipsoid{NewSphere("around us", []float64{1, 0, 0}, 10)},
	}
	err := NewRenderer(nil).RenderFile(scene, path)
	if !IsConfigurationError(err) {
		t.Fatalf("expected a ConfigurationError, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("failed render left a file behind")
	}
}
