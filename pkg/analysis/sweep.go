package analysis

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/edp1096/toy-semi/pkg/device"
	"github.com/edp1096/toy-semi/pkg/expr"
)

// QuantitySweep steps one device quantity across an evenly spaced grid and
// records the chosen outputs at each point. Outputs that are not concrete
// at a point record NaN.
type QuantitySweep struct {
	BaseAnalysis
	Model   device.Model
	Name    string
	Values  []float64
	Outputs []string
	States  []string // device.State per point
}

func NewQuantitySweep(model device.Model, name string, start, stop float64, points int, outputs []string) (*QuantitySweep, error) {
	if points < 2 {
		return nil, fmt.Errorf("sweep of %s needs at least 2 points, got %d", name, points)
	}
	return &QuantitySweep{
		BaseAnalysis: *NewBaseAnalysis(),
		Model:        model,
		Name:         name,
		Values:       floats.Span(make([]float64, points), start, stop),
		Outputs:      outputs,
	}, nil
}

// Execute restores the swept quantity when done.
func (s *QuantitySweep) Execute() error {
	orig, err := s.Model.Get(s.Name)
	if err != nil {
		return err
	}
	for _, out := range s.Outputs {
		if _, err := s.Model.Get(out); err != nil {
			return err
		}
	}

	defer func() {
		if err := s.Model.Set(s.Name, orig); err != nil {
			logrus.Warnf("restoring %s: %v", s.Name, err)
		}
	}()

	for _, v := range s.Values {
		if err := s.Model.SetFloat(s.Name, v); err != nil {
			return fmt.Errorf("sweep %s=%g: %w", s.Name, v, err)
		}
		s.store(s.Name, v)
		for _, out := range s.Outputs {
			e, _ := s.Model.Get(out)
			f, ok := expr.Value(e)
			if !ok {
				f = math.NaN()
			}
			s.store(out, f)
		}
		s.States = append(s.States, device.State(s.Model))
	}
	logrus.Debugf("swept %s over %d points", s.Name, len(s.Values))
	return nil
}
