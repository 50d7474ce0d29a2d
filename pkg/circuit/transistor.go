package circuit

import (
	"errors"
	"fmt"
	"math"

	"github.com/edp1096/toy-semi/pkg/device"
	"github.com/edp1096/toy-semi/pkg/matrix"
)

var ErrSymbolic = errors.New("quantity is not concrete")

// Transistor is an NMOS element driven by a reactive device.Mosfet.
// Nodes are drain, gate, source and bulk.
type Transistor struct {
	BaseElement
	Model *device.Mosfet

	vgs, vds, vbs float64
	id, gm, gds   float64
	gmbs          float64
	primed        bool
}

func NewTransistor(name string, nodeNames []string, model *device.Mosfet) *Transistor {
	if model == nil {
		model = device.NewMosfet()
	}
	return &Transistor{BaseElement: newBaseElement(name, 0, nodeNames), Model: model}
}

func (m *Transistor) GetType() string { return "M" }

func (m *Transistor) evaluate() error {
	if err := m.Model.Bias(m.vgs, m.vds, m.vbs); err != nil {
		return fmt.Errorf("transistor %s: %w", m.Name, err)
	}

	var out [3]float64
	for i, name := range []string{"I_D", "g_m", "g_d"} {
		v, ok := m.Model.Float(name)
		if !ok {
			return fmt.Errorf("transistor %s: %s: %w", m.Name, name, ErrSymbolic)
		}
		out[i] = v
	}
	m.id, m.gm, m.gds = out[0], out[1], out[2]
	m.gmbs = m.bodyTransconductance()
	return nil
}

// bodyTransconductance is g_m dV_TN/dV_BS. A pinned threshold has no
// body effect.
func (m *Transistor) bodyTransconductance() float64 {
	if m.Model.Locked("V_TN") {
		return 0
	}
	gamma, okG := m.Model.Float("gamma")
	phi, okP := m.Model.Float("phi_fb")
	if !okG || !okP || 2*phi-m.vbs <= 0 {
		return 0
	}
	return m.gm * gamma / (2 * math.Sqrt(2*phi-m.vbs))
}

func (m *Transistor) Stamp(matrix matrix.DeviceMatrix, status *Status) error {
	if len(m.Nodes) != 4 {
		return fmt.Errorf("transistor %s: requires exactly 4 nodes", m.Name)
	}

	nd := m.Nodes[0] // Drain
	ng := m.Nodes[1] // Gate
	ns := m.Nodes[2] // Source
	nb := m.Nodes[3] // Bulk

	if !m.primed {
		// Initial voltages for first iteration
		m.vgs = 0.7
		m.vds = 0.1
		m.primed = true
	}

	if err := m.evaluate(); err != nil {
		return err
	}

	gmin := status.Gmin
	rhs := m.id - m.gds*m.vds - m.gm*m.vgs - m.gmbs*m.vbs

	if nd != 0 {
		matrix.AddElement(nd, nd, m.gds+gmin)
		if ng != 0 {
			matrix.AddElement(nd, ng, m.gm)
		}
		if ns != 0 {
			matrix.AddElement(nd, ns, -m.gds-m.gm-m.gmbs)
		}
		if nb != 0 {
			matrix.AddElement(nd, nb, m.gmbs)
		}
		matrix.AddRHS(nd, -rhs)
	}

	if ns != 0 {
		matrix.AddElement(ns, ns, m.gds+m.gm+m.gmbs+gmin)
		if nd != 0 {
			matrix.AddElement(ns, nd, -m.gds)
		}
		if ng != 0 {
			matrix.AddElement(ns, ng, -m.gm)
		}
		if nb != 0 {
			matrix.AddElement(ns, nb, -m.gmbs)
		}
		matrix.AddRHS(ns, rhs)
	}

	return nil
}

func (m *Transistor) UpdateVoltages(voltages []float64) error {
	vd := voltage(voltages, m.Nodes[0])
	vg := voltage(voltages, m.Nodes[1])
	vs := voltage(voltages, m.Nodes[2])
	vb := voltage(voltages, m.Nodes[3])

	m.vgs = vg - vs
	m.vds = vd - vs
	m.vbs = vb - vs
	m.primed = true
	return nil
}

// Current is the drain current at the last linearization point.
func (m *Transistor) Current() float64 { return m.id }

// Bias returns V_GS, V_DS and V_BS at the last linearization point.
func (m *Transistor) Bias() (vgs, vds, vbs float64) { return m.vgs, m.vds, m.vbs }
