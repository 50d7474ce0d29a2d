package device

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-semi/pkg/expr"
	"github.com/edp1096/toy-semi/pkg/formula"
)

// Diode is an abrupt long-base pn junction made of a p-type and an n-type
// silicon sample.
type Diode struct {
	*Quantities

	P, N *Silicon

	na, nd, vpn, area expr.Expr

	vbi, w, wp, wn expr.Expr
	vbiN, vbiP     expr.Expr // potential drop on each side
	eMax           expr.Expr
	x, ex          expr.Expr // position from the junction (cm, n side positive) and the field there
	nEdge, pEdge   expr.Expr // minority concentrations at the depletion edges
	jnEdge, jpEdge expr.Expr
	tauRec, tauGen expr.Expr // space-charge region lifetimes
	rMax           expr.Expr
	jSCR           expr.Expr
	jsDiff, jsSCR  expr.Expr
	jd, id         expr.Expr
	vb             expr.Expr
	qdep           expr.Expr
	qDiffN, qDiffP expr.Expr
	cdep           expr.Expr
	cDiffN, cDiffP expr.Expr
	cDiff, cpn     expr.Expr
}

func NewDiode() *Diode {
	q := newQuantities()
	d := &Diode{Quantities: q, P: NewSilicon(), N: NewSilicon()}
	q.register(map[string]*expr.Expr{
		"Na":       &d.na,
		"Nd":       &d.nd,
		"V_pn":     &d.vpn,
		"area":     &d.area,
		"V_bi":     &d.vbi,
		"W":        &d.w,
		"W_p":      &d.wp,
		"W_n":      &d.wn,
		"V_bi_n":   &d.vbiN,
		"V_bi_p":   &d.vbiP,
		"E_max":    &d.eMax,
		"x":        &d.x,
		"E_x":      &d.ex,
		"n_edge":   &d.nEdge,
		"p_edge":   &d.pEdge,
		"J_n_edge": &d.jnEdge,
		"J_p_edge": &d.jpEdge,
		"tau_rec":  &d.tauRec,
		"tau_gen":  &d.tauGen,
		"R_max":    &d.rMax,
		"J_scr":    &d.jSCR,
		"J_S_diff": &d.jsDiff,
		"J_S_scr":  &d.jsSCR,
		"J_D":      &d.jd,
		"I_D":      &d.id,
		"V_B":      &d.vb,
		"Q_dep":    &d.qdep,
		"Q_diff_n": &d.qDiffN,
		"Q_diff_p": &d.qDiffP,
		"C_dep":    &d.cdep,
		"C_diff_n": &d.cDiffN,
		"C_diff_p": &d.cDiffP,
		"C_diff":   &d.cDiff,
		"C_pn":     &d.cpn,
	})
	q.defaults(map[string]float64{
		"V_pn": 0,
		"area": 1,
		"x":    0,
	})
	d.start(d.recalculate)
	return d
}

// Dope sets the acceptor doping of the p side and the donor doping of the
// n side.
func (d *Diode) Dope(na, nd float64) error {
	return d.setAll(false,
		assignment{"Na", expr.Float(na)},
		assignment{"Nd", expr.Float(nd)})
}

func (d *Diode) Bias(vpn float64) error { return d.SetFloat("V_pn", vpn) }

func (d *Diode) SetArea(area float64) error { return d.SetFloat("area", area) }

func (d *Diode) recalculate() error {
	zero := expr.Float(0)
	for _, side := range []struct {
		s      *Silicon
		na, nd expr.Expr
	}{
		{d.P, d.na, zero},
		{d.N, zero, d.nd},
	} {
		if err := side.s.setAll(false,
			assignment{"Na", side.na},
			assignment{"Nd", side.nd}); err != nil {
			return err
		}
	}

	p, n := d.P, d.N
	d.put("V_bi", formula.BuiltInVoltage(d.na, d.nd))
	d.put("W", formula.JunctionWidth(d.na, d.nd, d.vpn))
	d.put("W_p", formula.JunctionWidthP(d.na, d.nd, d.vpn))
	d.put("W_n", formula.JunctionWidthN(d.na, d.nd, d.vpn))
	d.put("V_bi_n", formula.EdgePotential(d.nd, d.wn))
	d.put("V_bi_p", formula.EdgePotential(d.na, d.wp))
	d.put("E_max", formula.FieldP(d.na, d.wp, zero))
	d.put("E_x", d.field())

	d.put("n_edge", formula.EdgeMinority(p.n, d.vpn))
	d.put("p_edge", formula.EdgeMinority(n.p, d.vpn))
	d.put("J_n_edge", formula.ElectronEdgeCurrent(d.na, p.dn, p.lDiffN, d.vpn))
	d.put("J_p_edge", formula.HoleEdgeCurrent(d.nd, n.dp, n.lDiffP, d.vpn))

	half := expr.Float(0.5)
	d.put("tau_rec", expr.Mul(half, expr.Add(p.tauRecN, n.tauRecP)))
	d.put("tau_gen", expr.Mul(half, expr.Add(p.tauGenN, n.tauGenP)))
	d.put("R_max", formula.RecombinationRate(d.tauRec, d.vpn))
	d.put("J_S_scr", formula.SCRSaturationCurrent(d.w, d.tauRec))
	d.put("J_scr", formula.SCRCurrent(d.jsSCR, d.vpn))
	d.put("J_S_diff", formula.DiffusionSaturationCurrent(p.dn, p.lDiffN, d.na, n.dp, n.lDiffP, d.nd))
	d.put("J_D", formula.DiodeCurrentDensity(d.jsDiff, d.jsSCR, d.vpn))
	d.put("I_D", expr.Mul(d.jd, d.area))

	na, okA := expr.Value(d.na)
	nd, okD := expr.Value(d.nd)
	if okA && okD {
		d.put("V_B", formula.BreakdownVoltage(expr.Float(math.Min(na, nd))))
	}

	d.put("Q_dep", formula.DepletionCharge(d.nd, d.wn))
	d.put("Q_diff_n", formula.DiffusionCharge(n.lDiffP, d.nd, d.vpn))
	d.put("Q_diff_p", expr.Neg(formula.DiffusionCharge(p.lDiffN, d.na, d.vpn)))
	d.put("C_dep", formula.DepletionCapacitance(d.area, d.na, d.nd, d.vbi, d.vpn))
	d.put("C_diff_n", formula.DiffusionCapacitance(d.area, n.lDiffP, d.nd, d.vpn))
	d.put("C_diff_p", formula.DiffusionCapacitance(d.area, p.lDiffN, d.na, d.vpn))
	d.put("C_diff", expr.Add(d.cDiffN, d.cDiffP))
	d.put("C_pn", expr.Add(d.cdep, d.cDiff))

	logrus.Debugf("diode: Na=%s Nd=%s V_pn=%s V_bi=%s I_D=%s", d.na, d.nd, d.vpn, d.vbi, d.id)
	return nil
}

// SaturationCurrent is the ideal diffusion saturation current in amperes,
// or false while the junction is still symbolic.
func (d *Diode) SaturationCurrent() (float64, bool) {
	return expr.Value(expr.Mul(d.jsDiff, d.area))
}

// field is the depletion-approximation field at x, zero outside the
// depletion region.
func (d *Diode) field() expr.Expr {
	x, ok := expr.Value(d.x)
	if !ok {
		return expr.Undefined
	}
	if x <= 0 {
		if wp, ok := expr.Value(d.wp); ok && -x > wp {
			return expr.Float(0)
		}
		return formula.FieldP(d.na, d.wp, d.x)
	}
	if wn, ok := expr.Value(d.wn); ok && x > wn {
		return expr.Float(0)
	}
	return formula.FieldN(d.nd, d.wn, d.x)
}
