package circuit

import (
	"github.com/edp1096/toy-semi/pkg/matrix"
)

type Element interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetNodes() []int
	Stamp(matrix matrix.DeviceMatrix, status *Status) error
	GetValue() float64
	SetNodes(nodes []int)
}

type BaseElement struct {
	Name      string
	Nodes     []int
	Value     float64
	NodeNames []string
}

// NonLinear elements re-linearize around the latest Newton solution.
type NonLinear interface {
	UpdateVoltages(voltages []float64) error
}

// Source is an independent source whose value a DC sweep can step.
type Source interface {
	Element
	SetValue(value float64)
}

type AnalysisMode int

const (
	OperatingPointAnalysis AnalysisMode = iota
	DCSweep
)

type Status struct {
	Gmin float64
	Mode AnalysisMode
}

func (e *BaseElement) GetName() string {
	return e.Name
}

func (e *BaseElement) GetNodes() []int {
	return e.Nodes
}

func (e *BaseElement) GetNodeNames() []string {
	return e.NodeNames
}

func (e *BaseElement) GetValue() float64 {
	return e.Value
}

func (e *BaseElement) SetNodes(nodes []int) {
	e.Nodes = nodes
}

func newBaseElement(name string, value float64, nodeNames []string) BaseElement {
	return BaseElement{
		Name:      name,
		Value:     value,
		NodeNames: nodeNames,
		Nodes:     make([]int, len(nodeNames)),
	}
}

// voltage reads a node voltage from a 1-based solution, ground being 0.
func voltage(solution []float64, node int) float64 {
	if node <= 0 || node >= len(solution) {
		return 0
	}
	return solution[node]
}
