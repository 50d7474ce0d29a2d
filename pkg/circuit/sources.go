package circuit

import (
	"github.com/edp1096/toy-semi/pkg/matrix"
)

type VoltageSource struct {
	BaseElement
	branchIdx int // MNA branch row
}

func NewVoltageSource(name string, nodeNames []string, value float64) *VoltageSource {
	return &VoltageSource{BaseElement: newBaseElement(name, value, nodeNames)}
}

func (v *VoltageSource) GetType() string { return "V" }

func (v *VoltageSource) Stamp(matrix matrix.DeviceMatrix, status *Status) error {
	n1, n2 := v.Nodes[0], v.Nodes[1]
	bIdx := v.branchIdx

	// v1 - v2 = V
	if n1 != 0 {
		matrix.AddElement(bIdx, n1, 1)
		matrix.AddElement(n1, bIdx, 1)
	}
	if n2 != 0 {
		matrix.AddElement(bIdx, n2, -1)
		matrix.AddElement(n2, bIdx, -1)
	}

	matrix.AddRHS(bIdx, v.Value)
	return nil
}

func (v *VoltageSource) BranchIndex() int {
	return v.branchIdx
}

func (v *VoltageSource) SetBranchIndex(idx int) {
	v.branchIdx = idx
}

func (v *VoltageSource) SetValue(value float64) {
	v.Value = value
}

type CurrentSource struct {
	BaseElement
}

func NewCurrentSource(name string, nodeNames []string, value float64) *CurrentSource {
	return &CurrentSource{BaseElement: newBaseElement(name, value, nodeNames)}
}

func (i *CurrentSource) GetType() string { return "I" }

func (i *CurrentSource) Stamp(matrix matrix.DeviceMatrix, status *Status) error {
	n1, n2 := i.Nodes[0], i.Nodes[1]

	// By KCL, current flows into n1 and out of n2
	if n1 != 0 {
		matrix.AddRHS(n1, i.Value)
	}
	if n2 != 0 {
		matrix.AddRHS(n2, -i.Value)
	}
	return nil
}

func (i *CurrentSource) SetValue(value float64) {
	i.Value = value
}
