package analysis

import (
	"github.com/edp1096/toy-semi/pkg/circuit"
)

type OperatingPoint struct{ BaseAnalysis }

func NewOP() *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(),
	}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	op.Circuit = ckt
	return nil
}

func (op *OperatingPoint) Execute() error {
	if err := op.solve(); err != nil {
		return err
	}
	op.StoreResult(nil, op.Circuit.GetSolution())
	return nil
}
