package circuit

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-semi/internal/consts"
	"github.com/edp1096/toy-semi/pkg/device"
	"github.com/edp1096/toy-semi/pkg/expr"
	"github.com/edp1096/toy-semi/pkg/formula"
	"github.com/edp1096/toy-semi/pkg/matrix"
)

// maxExpArg bounds the junction exponent; beyond it the current is
// continued along its tangent.
const maxExpArg = 40.0

// Diode is a p-n junction whose saturation currents come from a reactive
// device.Diode. Anode is the p side.
type Diode struct {
	BaseElement
	Model *device.Diode

	vd, id, gd float64
}

func NewDiode(name string, nodeNames []string, model *device.Diode) *Diode {
	if model == nil {
		model = device.NewDiode()
	}
	return &Diode{BaseElement: newBaseElement(name, 0, nodeNames), Model: model}
}

func (d *Diode) GetType() string { return "D" }

// companion returns the current and small-signal conductance at vd.
func (d *Diode) companion(vd float64) (float64, float64, error) {
	var js [3]float64
	for i, name := range []string{"J_S_diff", "J_S_scr", "area"} {
		v, ok := d.Model.Float(name)
		if !ok {
			return 0, 0, fmt.Errorf("diode %s: %s: %w", d.Name, name, ErrSymbolic)
		}
		js[i] = v
	}
	// Past the built-in voltage the depletion width, and with it the
	// recombination term, is undefined.
	if math.IsNaN(js[1]) || math.IsInf(js[1], 0) {
		js[1] = 0
	}

	v := expr.Symbol("v")
	density := expr.Mul(formula.DiodeCurrentDensity(expr.Float(js[0]), expr.Float(js[1]), v), expr.Float(js[2]))
	slope := expr.Diff(density, "v")

	limit := maxExpArg * consts.KT_Q
	at := vd
	if at > limit {
		at = limit
	}
	env := map[string]float64{"v": at}
	id, err := expr.Eval(density, env)
	if err != nil {
		return 0, 0, err
	}
	gd, err := expr.Eval(slope, env)
	if err != nil {
		return 0, 0, err
	}
	return id + gd*(vd-at), gd, nil
}

func (d *Diode) Stamp(matrix matrix.DeviceMatrix, status *Status) error {
	if len(d.Nodes) != 2 {
		return fmt.Errorf("diode %s: requires exactly 2 nodes", d.Name)
	}

	id, gd, err := d.companion(d.vd)
	if err != nil {
		return err
	}
	d.id, d.gd = id, gd+status.Gmin

	n1, n2 := d.Nodes[0], d.Nodes[1]
	if n1 != 0 {
		matrix.AddElement(n1, n1, d.gd)
		if n2 != 0 {
			matrix.AddElement(n1, n2, -d.gd)
		}
		matrix.AddRHS(n1, -(d.id - d.gd*d.vd))
	}

	if n2 != 0 {
		if n1 != 0 {
			matrix.AddElement(n2, n1, -d.gd)
		}
		matrix.AddElement(n2, n2, d.gd)
		matrix.AddRHS(n2, (d.id - d.gd*d.vd))
	}

	return nil
}

func (d *Diode) UpdateVoltages(voltages []float64) error {
	d.vd = voltage(voltages, d.Nodes[0]) - voltage(voltages, d.Nodes[1])
	return d.Model.Bias(d.vd)
}

func (d *Diode) Current() float64 { return d.id }
