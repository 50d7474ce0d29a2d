package device

import (
	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-semi/pkg/expr"
)

// Inverter is a resistor-loaded NMOS inverter. Its output follows from the
// transistor's K_N, V_TN and lambda at the time of the last recalculation.
type Inverter struct {
	*Quantities

	Mosfet *Mosfet

	rl, vdd, vin expr.Expr
	vout, id     expr.Expr
}

// NewInverter wraps m, or a fresh transistor when m is nil.
func NewInverter(m *Mosfet) *Inverter {
	if m == nil {
		m = NewMosfet()
	}

	q := newQuantities()
	inv := &Inverter{Quantities: q, Mosfet: m}
	q.register(map[string]*expr.Expr{
		"R_L":   &inv.rl,
		"V_DD":  &inv.vdd,
		"V_in":  &inv.vin,
		"V_out": &inv.vout,
		"I_D":   &inv.id,
	})
	q.defaults(map[string]float64{
		"R_L":  1,
		"V_DD": 0,
		"V_in": 0,
	})
	inv.start(inv.recalculate)
	return inv
}

func (inv *Inverter) recalculate() error {
	m := inv.Mosfet
	kn := expr.Div(m.kN, expr.Float(2))
	vov := expr.Sub(inv.vin, m.vtn)

	vout := inv.saturated(kn, vov, m.lambda)
	if v, ok := expr.Value(vov); ok && v <= 0 {
		vout = inv.vdd
	} else if triode, ok := inv.triode(kn, vov, m.lambda, vout); ok {
		vout = triode
	}

	inv.put("V_out", vout)
	inv.put("I_D", expr.Div(expr.Sub(inv.vdd, inv.vout), inv.rl))

	logrus.Debugf("inverter: V_in=%s V_out=%s", inv.vin, inv.vout)
	return nil
}

// saturated solves V_DD - V_out = R_L Kn Vov^2 (1 + lambda V_out) for V_out.
func (inv *Inverter) saturated(kn, vov, lambda expr.Expr) expr.Expr {
	drive := expr.Mul(kn, expr.Pow(vov, expr.Float(2)))
	num := expr.Sub(expr.Div(inv.vdd, inv.rl), drive)
	den := expr.Add(expr.Mul(lambda, drive), expr.Div(expr.Float(1), inv.rl))
	return expr.Div(num, den)
}

// triode replaces the saturation answer when it lands below the overdrive.
// V_DD - V = R_L Kn (2 Vov V - V^2)(1 + lambda V) is decreasing on [0, Vov]
// and changes sign there, so bisection finds the single root.
func (inv *Inverter) triode(kn, vov, lambda, sat expr.Expr) (expr.Expr, bool) {
	k, okK := expr.Value(kn)
	ov, okV := expr.Value(vov)
	l, okL := expr.Value(lambda)
	vs, okS := expr.Value(sat)
	rl, okR := expr.Value(inv.rl)
	vdd, okD := expr.Value(inv.vdd)
	if !okK || !okV || !okL || !okS || !okR || !okD || vs >= ov {
		return nil, false
	}

	residual := func(v float64) float64 {
		return vdd - v - rl*k*(2*ov*v-v*v)*(1+l*v)
	}
	lo, hi := 0.0, ov
	for range 200 {
		mid := (lo + hi) / 2
		if residual(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return expr.Float((lo + hi) / 2), true
}
