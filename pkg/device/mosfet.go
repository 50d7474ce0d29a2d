package device

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-semi/pkg/expr"
	"github.com/edp1096/toy-semi/pkg/formula"
)

type Region int

const (
	Cutoff Region = iota
	Linear
	Saturation
)

func (r Region) String() string {
	switch r {
	case Cutoff:
		return "cutoff"
	case Linear:
		return "linear"
	case Saturation:
		return "saturation"
	}
	return fmt.Sprintf("Region(%d)", int(r))
}

// Mosfet is a level-1 n-channel enhancement MOSFET built on the capacitor
// model of its gate stack.
type Mosfet struct {
	*Moscap

	lch, wch     expr.Expr // channel length and width (cm)
	qtrap        expr.Expr // Q_f + Q_it
	vgs, vds     expr.Expr
	vbs          expr.Expr
	muCh         expr.Expr // channel mobility
	lambda       expr.Expr // channel-length modulation (1/V)
	lgsov, lgdov expr.Expr // overlap lengths
	nsd          expr.Expr // source/drain doping

	qdepB    expr.Expr
	kn, kN   expr.Expr // Kn = mu Cox W/2L, K_N = 2 Kn
	gamma    expr.Expr
	qinvCh   expr.Expr
	vdsat    expr.Expr
	vgd      expr.Expr
	coxTot   expr.Expr
	qgLin    expr.Expr
	qG       expr.Expr
	vbiSD    expr.Expr
	vbiSW    expr.Expr
	ft       expr.Expr
	id       expr.Expr
	gm       expr.Expr
	gds      expr.Expr // output conductance of the saturation formula
	gd       expr.Expr // dI_D/dV_DS of the active formula
	rds      expr.Expr
	cgs, cgd expr.Expr

	cgsOv, cgdOv expr.Expr
}

var (
	vgsSym = expr.Symbol("V_GS")
	vdsSym = expr.Symbol("V_DS")
)

func newMosfet(q *Quantities) *Mosfet {
	m := &Mosfet{Moscap: newMoscap(q)}
	q.register(map[string]*expr.Expr{
		"L_ch":     &m.lch,
		"W_ch":     &m.wch,
		"Q_trap":   &m.qtrap,
		"V_GS":     &m.vgs,
		"V_DS":     &m.vds,
		"V_BS":     &m.vbs,
		"mu_n_ch":  &m.muCh,
		"lambda":   &m.lambda,
		"L_gs_ov":  &m.lgsov,
		"L_gd_ov":  &m.lgdov,
		"N_sd":     &m.nsd,
		"Q_dep_B":  &m.qdepB,
		"K_n":      &m.kn,
		"K_N":      &m.kN,
		"gamma":    &m.gamma,
		"Q_inv_B":  &m.qinvCh,
		"V_DSat":   &m.vdsat,
		"V_GD":     &m.vgd,
		"C_ox_tot": &m.coxTot,
		"Q_G_lin":  &m.qgLin,
		"Q_G":      &m.qG,
		"V_bi_sd":  &m.vbiSD,
		"V_bi_sw":  &m.vbiSW,
		"f_t":      &m.ft,
		"I_D":      &m.id,
		"g_m":      &m.gm,
		"g_ds":     &m.gds,
		"g_d":      &m.gd,
		"r_ds_sat": &m.rds,
		"C_gs":     &m.cgs,
		"C_gd":     &m.cgd,
		"C_gs_ov":  &m.cgsOv,
		"C_gd_ov":  &m.cgdOv,
	})
	q.defaults(map[string]float64{
		"Q_trap": 0,
		"V_GS":   0,
		"V_DS":   0,
		"V_BS":   0,
		"lambda": 0,
	})

	q.alias("Q_trap", func(v expr.Expr) {
		q.put("Q_f", v)
		q.put("Q_it", expr.Float(0))
	})
	q.guardLast = true
	return m
}

// NewMosfet returns a transistor with symbolic doping, oxide and geometry
// at zero bias.
func NewMosfet() *Mosfet {
	m := newMosfet(newQuantities())
	m.start(m.recalculate)
	return m
}

// Bias sets the three terminal voltages with a single recalculation.
func (m *Mosfet) Bias(vgs, vds, vbs float64) error {
	return m.setAll(false,
		assignment{"V_GS", expr.Float(vgs)},
		assignment{"V_BS", expr.Float(vbs)},
		assignment{"V_DS", expr.Float(vds)})
}

// Region classifies the present bias.
func (m *Mosfet) Region() Region {
	r, _ := m.region()
	return r
}

// region defaults to the linear formula when the bias cannot be ordered.
func (m *Mosfet) region() (Region, error) {
	vgs, okG := expr.Value(m.vgs)
	vtn, okT := expr.Value(m.vtn)
	if okG && okT {
		if math.IsNaN(vgs) || math.IsNaN(vtn) {
			return Linear, fmt.Errorf("mosfet V_GS=%g V_TN=%g: %w", vgs, vtn, ErrUndefined)
		}
		if vgs < vtn {
			return Cutoff, nil
		}
	}

	vds, okD := expr.Value(m.vds)
	vdsat, okS := expr.Value(m.vdsat)
	if okD && okS {
		if math.IsNaN(vds) || math.IsNaN(vdsat) {
			return Linear, fmt.Errorf("mosfet V_DS=%g V_DSat=%g: %w", vds, vdsat, ErrUndefined)
		}
		if vds >= vdsat {
			return Saturation, nil
		}
	}
	return Linear, nil
}

func (m *Mosfet) recalculate() error {
	if err := m.Moscap.recalculate(); err != nil {
		return err
	}

	two := expr.Float(2)
	m.put("Q_dep_B", formula.DepletionChargeDensity(m.nab, m.phiFB, m.vbs))
	m.put("K_n", formula.TransconductanceParameter(m.muCh, m.cox, m.wch, m.lch))
	// A concrete K_N stands in for a K_n the geometry cannot yet produce.
	if expr.IsConcrete(m.kN) && !expr.IsConcrete(m.kn) {
		m.put("K_n", expr.Div(m.kN, two))
	} else {
		m.put("K_N", expr.Mul(two, m.kn))
	}
	m.put("V_TN", formula.BodyThreshold(m.vfb, m.phiFB, m.cox, m.nab, m.vbs))
	m.put("gamma", formula.BodyEffectCoefficient(m.nab, m.cox))
	m.put("Q_inv_B", formula.InversionChargeDensity(m.cox, m.vgs, m.vtn))
	m.put("V_DSat", expr.Sub(m.vgs, m.vtn))
	m.put("V_GD", expr.Sub(m.vgs, m.vds))
	m.put("C_ox_tot", expr.Mul(m.cox, m.wch, m.lch))
	m.put("Q_G_lin", formula.LinearGateCharge(m.coxTot, m.vgs, m.vds, m.vtn))
	m.put("V_bi_sd", formula.BuiltInVoltage(m.nab, m.nsd))
	m.put("V_bi_sw", formula.BuiltInVoltage(m.nab, m.nab))
	m.put("f_t", formula.TransitFrequency(m.muCh, m.lch, m.vgs, m.vtn))

	region, err := m.region()
	if err != nil {
		return err
	}

	zero := expr.Float(0)
	var current expr.Expr
	switch region {
	case Cutoff:
		current = zero
		m.put("C_gs", zero)
		m.put("C_gd", zero)
	case Saturation:
		current = formula.SaturationCurrent(m.kn, vgsSym, m.vtn, m.lambda, vdsSym, m.vdsat)
		m.put("C_gs", expr.Mul(expr.Float(2.0/3), m.coxTot))
		m.put("C_gd", zero)
	default:
		current = formula.LinearCurrent(m.kn, vgsSym, m.vtn, vdsSym)
		m.put("C_gs", formula.LinearGateSourceCapacitance(m.coxTot, m.vgs, m.vgd, m.vtn))
		m.put("C_gd", formula.LinearGateDrainCapacitance(m.coxTot, m.vgs, m.vgd, m.vtn))
	}

	bias := map[string]expr.Expr{"V_GS": m.vgs, "V_DS": m.vds}
	m.put("I_D", expr.SubsAll(current, bias))
	m.put("g_m", expr.SubsAll(expr.Diff(current, "V_GS"), bias))
	m.put("g_d", expr.SubsAll(expr.Diff(current, "V_DS"), bias))

	gds := zero
	if region != Cutoff {
		sat := formula.SaturationCurrent(m.kn, m.vgs, m.vtn, m.lambda, vdsSym, m.vdsat)
		gds = expr.Subs(expr.Diff(sat, "V_DS"), "V_DS", m.vds)
	}
	m.put("g_ds", gds)
	if v, ok := expr.Value(m.gds); ok && v == 0 {
		m.put("r_ds_sat", expr.Float(math.Inf(1)))
	} else {
		m.put("r_ds_sat", expr.Div(expr.Float(1), m.gds))
	}

	m.put("C_gs_ov", formula.OverlapCapacitance(m.wch, m.lgsov, m.xox))
	m.put("C_gd_ov", formula.OverlapCapacitance(m.wch, m.lgdov, m.xox))

	idlin := formula.LinearCurrent(m.kn, m.vgs, m.vtn, m.vds)
	m.put("Q_G", formula.GateCharge(m.muCh, m.wch, m.cox, idlin, m.vgs, m.vtn, m.vds))

	logrus.Debugf("mosfet: V_GS=%s V_DS=%s V_TN=%s region=%s I_D=%s", m.vgs, m.vds, m.vtn, region, m.id)
	return nil
}
