package analysis

import (
	"fmt"

	"github.com/edp1096/toy-semi/pkg/circuit"
	"github.com/edp1096/toy-semi/pkg/device"
	"github.com/edp1096/toy-semi/pkg/netlist"
)

// CommonSourceQPoint biases m at its present V_GS between a drain resistor
// rd to vdd and a source resistor rs to ground, and returns the quiescent
// drain current and V_DS.
func CommonSourceQPoint(vdd, rd, rs float64, m *device.Mosfet) (id, vds float64, err error) {
	vgs, ok := m.Float("V_GS")
	if !ok {
		return 0, 0, fmt.Errorf("q-point: V_GS: %w", circuit.ErrSymbolic)
	}
	if rd < 0 || rs < 0 {
		return 0, 0, fmt.Errorf("q-point: negative resistance (rd=%g, rs=%g)", rd, rs)
	}

	drain, source := "d", "s"
	elements := []netlist.Element{
		{Type: "V", Name: "VDD", Nodes: []string{"vdd", "0"}, Value: vdd},
		{Type: "V", Name: "VGS", Nodes: []string{"g", source}, Value: vgs},
	}
	if rd > 0 {
		elements = append(elements, netlist.Element{Type: "R", Name: "RD", Nodes: []string{"vdd", drain}, Value: rd})
	} else {
		drain = "vdd"
	}
	if rs > 0 {
		elements = append(elements, netlist.Element{Type: "R", Name: "RS", Nodes: []string{source, "0"}, Value: rs})
	} else {
		source = "0"
		elements[1].Nodes[1] = source
	}
	elements = append(elements, netlist.Element{Type: "M", Name: "M1", Nodes: []string{drain, "g", source, source}})

	ckt := circuit.New("common-source")
	defer ckt.Destroy()
	ckt.Bind("M1", m)
	if err := ckt.Build(elements); err != nil {
		return 0, 0, fmt.Errorf("q-point: %w", err)
	}

	op := NewOP()
	if err := op.Setup(ckt); err != nil {
		return 0, 0, err
	}
	if err := op.Execute(); err != nil {
		return 0, 0, fmt.Errorf("q-point: %w", err)
	}

	vd, _ := ckt.NodeVoltage(drain)
	vs, _ := ckt.NodeVoltage(source)
	vds = vd - vs
	if rd+rs > 0 {
		id = (vdd - vds) / (rd + rs)
	} else {
		el, _ := ckt.Element("M1")
		id = el.(*circuit.Transistor).Current()
	}
	return id, vds, nil
}
