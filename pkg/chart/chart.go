// Package chart draws sweep results with gonum/plot.
package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type Series struct {
	Name string
	Y    []float64
}

// Figure is one x axis shared by any number of traces.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Series []Series
	LogY   bool // plots |y|; zero points are dropped
}

// FromResults picks x and the named traces out of an analysis result map.
// With no names every other key is drawn.
func FromResults(results map[string][]float64, x string, names ...string) (*Figure, error) {
	xs, ok := results[x]
	if !ok {
		return nil, fmt.Errorf("no result named %s", x)
	}
	if len(names) == 0 {
		for name := range results {
			if name != x && name != "SWEEP2" {
				names = append(names, name)
			}
		}
		sort.Strings(names)
	}

	f := &Figure{XLabel: x, X: xs}
	for _, name := range names {
		ys, ok := results[name]
		if !ok {
			return nil, fmt.Errorf("no result named %s", name)
		}
		if len(ys) != len(xs) {
			return nil, fmt.Errorf("%s has %d points, %s has %d", name, len(ys), x, len(xs))
		}
		f.Series = append(f.Series, Series{Name: name, Y: ys})
	}
	return f, nil
}

func (f *Figure) points(ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(ys))
	for i, y := range ys {
		if f.LogY {
			y = math.Abs(y)
			if y == 0 {
				continue
			}
		}
		if math.IsNaN(y) || math.IsInf(y, 0) || math.IsNaN(f.X[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: f.X[i], Y: y})
	}
	return pts
}

func (f *Figure) Plot() (*plot.Plot, error) {
	if len(f.Series) == 0 {
		return nil, fmt.Errorf("figure %q has no traces", f.Title)
	}

	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	if f.LogY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{}
	}
	p.Add(plotter.NewGrid())

	for i, s := range f.Series {
		pts := f.points(s.Y)
		if len(pts) == 0 {
			logrus.Warnf("chart: %s has no finite points, skipped", s.Name)
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("trace %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	p.Legend.Top = true
	return p, nil
}

// Save writes the figure; the extension picks the format (png, svg, pdf).
func (f *Figure) Save(path string, width, height vg.Length) error {
	p, err := f.Plot()
	if err != nil {
		return err
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	logrus.Infof("chart written to %s", path)
	return nil
}
