package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/edp1096/toy-semi/pkg/circuit"
)

type DCSweep struct {
	BaseAnalysis
	sourceNames []string         // Names of voltage/current sources to sweep
	sweepVals   [][]float64      // Generated sweep values for each source
	sources     []circuit.Source // Resolved in Setup
	origVals    []float64        // Original values of the sources
}

// NewDCSweep steps up to two sources from start to stop by increment.
// The outer loop is the first source.
func NewDCSweep(sources []string, starts, stops, increments []float64) (*DCSweep, error) {
	if len(sources) != len(starts) || len(sources) != len(stops) || len(sources) != len(increments) {
		return nil, fmt.Errorf("inconsistent parameter lengths")
	}
	if len(sources) == 0 || len(sources) > 2 {
		return nil, fmt.Errorf("unsupported number of sweep sources: %d", len(sources))
	}

	dc := &DCSweep{
		BaseAnalysis: *NewBaseAnalysis(),
		sourceNames:  sources,
		sweepVals:    make([][]float64, len(sources)),
		origVals:     make([]float64, len(sources)),
	}

	for i := range sources {
		grid, err := stepGrid(starts[i], stops[i], increments[i])
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", sources[i], err)
		}
		dc.sweepVals[i] = grid
	}

	return dc, nil
}

// stepGrid is start, start+inc, ... up to stop inclusive.
func stepGrid(start, stop, inc float64) ([]float64, error) {
	if inc == 0 || (stop-start)/inc < 0 {
		return nil, fmt.Errorf("increment %g does not reach %g from %g", inc, stop, start)
	}
	steps := int(math.Floor((stop-start)/inc + 1e-9))
	end := start + float64(steps)*inc
	if steps == 0 {
		return []float64{start}, nil
	}
	return floats.Span(make([]float64, steps+1), start, end), nil
}

func (dc *DCSweep) Setup(ckt *circuit.Circuit) error {
	dc.Circuit = ckt
	dc.sources = dc.sources[:0]

	for i, name := range dc.sourceNames {
		el, ok := ckt.Element(name)
		if !ok {
			return fmt.Errorf("source %s not found", name)
		}
		src, ok := el.(circuit.Source)
		if !ok {
			return fmt.Errorf("%s is not an independent source", name)
		}
		dc.sources = append(dc.sources, src)
		dc.origVals[i] = src.GetValue()
	}

	return nil
}

func (dc *DCSweep) Execute() error {
	if dc.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}
	defer func() {
		for i, src := range dc.sources {
			src.SetValue(dc.origVals[i])
		}
	}()

	if len(dc.sources) == 1 {
		for _, val := range dc.sweepVals[0] {
			if err := dc.point(map[string]float64{"SWEEP1": val}, val); err != nil {
				return err
			}
		}
		return nil
	}

	for _, val1 := range dc.sweepVals[0] {
		for _, val2 := range dc.sweepVals[1] {
			if err := dc.point(map[string]float64{"SWEEP1": val1, "SWEEP2": val2}, val1, val2); err != nil {
				return err
			}
		}
	}
	return nil
}

func (dc *DCSweep) point(sweep map[string]float64, vals ...float64) error {
	for i, v := range vals {
		dc.sources[i].SetValue(v)
	}

	if err := dc.solve(); err != nil {
		return fmt.Errorf("convergence error at %v: %w", sweep, err)
	}

	dc.StoreResult(sweep, dc.Circuit.GetSolution())
	return nil
}
