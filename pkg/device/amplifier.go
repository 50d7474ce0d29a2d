package device

import (
	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-semi/pkg/expr"
)

// Amplifier is a common-source stage with a divider-biased gate. Its
// small-signal figures come from the transistor's g_m and r_ds_sat.
type Amplifier struct {
	*Quantities

	Mosfet *Mosfet

	r1, r2, rl, rd, rs, rsig expr.Expr
	vdd                      expr.Expr

	vgg, rin, av, ai, rout expr.Expr
}

func NewAmplifier(m *Mosfet) *Amplifier {
	if m == nil {
		m = NewMosfet()
	}

	q := newQuantities()
	a := &Amplifier{Quantities: q, Mosfet: m}
	q.register(map[string]*expr.Expr{
		"R_1":   &a.r1,
		"R_2":   &a.r2,
		"R_L":   &a.rl,
		"R_D":   &a.rd,
		"R_S":   &a.rs,
		"R_sig": &a.rsig,
		"V_DD":  &a.vdd,
		"V_GG":  &a.vgg,
		"R_in":  &a.rin,
		"A_v":   &a.av,
		"A_i":   &a.ai,
		"R_out": &a.rout,
	})
	q.defaults(map[string]float64{
		"R_1":   1,
		"R_2":   1,
		"R_L":   1,
		"R_D":   1,
		"R_S":   1,
		"R_sig": 1,
		"V_DD":  1,
	})
	a.start(a.recalculate)
	return a
}

func parallel(rs ...expr.Expr) expr.Expr {
	g := make([]expr.Expr, len(rs))
	for i, r := range rs {
		g[i] = expr.Div(expr.Float(1), r)
	}
	return expr.Div(expr.Float(1), expr.Add(g...))
}

func (a *Amplifier) recalculate() error {
	m := a.Mosfet

	a.put("V_GG", expr.Div(expr.Mul(a.vdd, a.r1), expr.Add(a.r1, a.r2)))
	rg := parallel(a.r1, a.r2)
	a.put("R_in", rg)

	load := parallel(m.rds, a.rd, a.rl)
	divider := expr.Div(rg, expr.Add(a.rsig, rg))
	a.put("A_v", expr.Neg(expr.Mul(m.gm, load, divider)))
	a.put("A_i", expr.Div(expr.Mul(a.av, expr.Add(a.rsig, rg)), a.rl))
	a.put("R_out", parallel(m.rds, a.rd))

	logrus.Debugf("amplifier: A_v=%s R_in=%s R_out=%s", a.av, a.rin, a.rout)
	return nil
}
