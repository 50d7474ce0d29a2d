package device

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-semi/pkg/expr"
	"github.com/edp1096/toy-semi/pkg/formula"
)

type Regime int

const (
	Accumulation Regime = iota
	FlatBand
	Depletion
	Inversion
)

func (r Regime) String() string {
	switch r {
	case Accumulation:
		return "accumulation"
	case FlatBand:
		return "flat-band"
	case Depletion:
		return "depletion"
	case Inversion:
		return "inversion"
	}
	return fmt.Sprintf("Regime(%d)", int(r))
}

// Moscap is an aluminium-gate MOS capacitor on a p-type substrate.
type Moscap struct {
	*Silicon

	nab      expr.Expr // substrate acceptor doping
	xox, xw  expr.Expr // oxide and wafer thickness (cm)
	qf, qit  expr.Expr // fixed and interface-trap charge (C/cm²)
	vgb      expr.Expr
	phiPM    expr.Expr // contact potential
	phiFB    expr.Expr // bulk Fermi potential
	cox      expr.Expr // F/cm²
	vfb, vtn expr.Expr
	vscbTN   expr.Expr
	wTN      expr.Expr
	ldb      expr.Expr

	vox, exox, qg expr.Expr
	qscb, vscb    expr.Expr
	qscbExact     expr.Expr // Q_SCB without the depletion approximation
	wdep          expr.Expr
	cscb, cgb     expr.Expr // low-frequency, area-scaled
	cscbHF, cgbHF expr.Expr
	qinvB         expr.Expr
	exB           expr.Expr
}

func newMoscap(q *Quantities) *Moscap {
	m := &Moscap{Silicon: newSilicon(q)}
	q.register(map[string]*expr.Expr{
		"N_ab":     &m.nab,
		"X_ox":     &m.xox,
		"X_w":      &m.xw,
		"Q_f":      &m.qf,
		"Q_it":     &m.qit,
		"V_GB":     &m.vgb,
		"phi_pm":   &m.phiPM,
		"phi_fb":   &m.phiFB,
		"C_ox":     &m.cox,
		"V_FB":     &m.vfb,
		"V_TN":     &m.vtn,
		"v_SCB_TN": &m.vscbTN,
		"w_TN":     &m.wTN,
		"L_BD":     &m.ldb,
		"V_ox":     &m.vox,
		"E_ox":     &m.exox,
		"Q_g":      &m.qg,
		"Q_SCB":    &m.qscb,
		"Q_SCB_ex": &m.qscbExact,
		"V_SCB":    &m.vscb,
		"w_dep":    &m.wdep,
		"C_SCB":    &m.cscb,
		"C_gb":     &m.cgb,
		"C_SCB_HF": &m.cscbHF,
		"C_gb_HF":  &m.cgbHF,
		"Q_invB":   &m.qinvB,
		"E_x_B":    &m.exB,
	})
	q.defaults(map[string]float64{
		"Q_f":  0,
		"Q_it": 0,
		"V_GB": 0,
	})

	q.alias("N_ab", func(v expr.Expr) {
		q.put("Na", v)
		q.put("Nd", expr.Float(0))
	})
	q.put("Na", m.nab)
	q.put("Nd", expr.Float(0))
	return m
}

// NewMoscap returns a capacitor with symbolic substrate doping and oxide.
func NewMoscap() *Moscap {
	m := newMoscap(newQuantities())
	m.start(m.recalculate)
	return m
}

// Regime classifies the present gate bias.
func (m *Moscap) Regime() Regime {
	r, _ := m.regime()
	return r
}

// regime falls back to accumulation while a needed decider is symbolic.
// Accumulation and flat-band only need V_GB and V_FB.
func (m *Moscap) regime() (Regime, error) {
	vgb, okG := expr.Value(m.vgb)
	vfb, okF := expr.Value(m.vfb)
	if !okG || !okF {
		return Accumulation, nil
	}
	if math.IsNaN(vgb) || math.IsNaN(vfb) {
		return Accumulation, fmt.Errorf("moscap V_GB=%g V_FB=%g: %w", vgb, vfb, ErrUndefined)
	}
	switch {
	case vgb < vfb:
		return Accumulation, nil
	case vgb == vfb:
		return FlatBand, nil
	}

	vtn, ok := expr.Value(m.vtn)
	if !ok {
		return Accumulation, nil
	}
	if math.IsNaN(vtn) {
		return Accumulation, fmt.Errorf("moscap V_TN=%g: %w", vtn, ErrUndefined)
	}
	if vgb < vtn {
		return Depletion, nil
	}
	return Inversion, nil
}

func (m *Moscap) recalculate() error {
	if err := m.Silicon.recalculate(); err != nil {
		return err
	}

	m.put("phi_pm", formula.ContactPotential(m.nab))
	m.put("phi_fb", formula.FermiPotential(m.nab))
	m.put("C_ox", formula.OxideCapacitance(m.xox))
	m.put("V_FB", formula.FlatBandVoltage(m.phiPM, m.qf, m.qit, m.cox))
	m.put("V_TN", formula.ThresholdVoltage(m.vfb, m.phiFB, m.nab, m.cox))
	m.put("v_SCB_TN", expr.Mul(expr.Float(2), m.phiFB))
	m.put("w_TN", formula.DepletionWidth(m.nab, m.vscbTN))
	m.put("L_BD", formula.SubstrateDebyeLength(m.nab))

	regime, err := m.regime()
	if err != nil {
		return err
	}
	logrus.Debugf("moscap: V_GB=%s V_FB=%s V_TN=%s regime=%s", m.vgb, m.vfb, m.vtn, regime)

	inf := expr.Float(math.Inf(1))
	zero := expr.Float(0)
	switch regime {
	case Accumulation:
		m.put("V_ox", expr.Sub(m.vgb, m.phiPM))
		m.put("E_ox", expr.Div(m.vox, m.xox))
		m.put("Q_g", formula.GateChargeDensity(m.exox))
		m.put("Q_SCB", formula.AccumulationSpaceCharge(m.cox, m.vgb, m.vfb))
		m.put("V_SCB", zero)
		m.put("w_dep", zero)
		m.put("C_SCB", inf)
		m.put("C_gb", expr.Mul(m.cox, m.area))
	case FlatBand:
		m.put("Q_SCB", zero)
		m.put("V_SCB", zero)
		m.put("Q_g", expr.Neg(expr.Add(m.qf, m.qit)))
		m.put("E_ox", formula.OxideField(m.qg))
		m.put("V_ox", expr.Mul(m.xox, m.exox))
		m.put("w_dep", zero)
		m.put("C_SCB", inf)
		m.put("C_gb", expr.Mul(m.cox, m.area))
	case Depletion:
		m.put("V_SCB", formula.DepletionVoltage(m.vgb, m.vfb, m.nab, m.cox))
		m.put("Q_g", formula.DepletionGateCharge(m.nab, m.vscb, m.qf, m.qit))
		m.put("E_ox", formula.OxideField(m.qg))
		m.put("V_ox", expr.Mul(m.xox, m.exox))
		m.put("Q_SCB", formula.NeutralSpaceCharge(m.qg, m.qf, m.qit))
		m.put("w_dep", formula.DepletionWidth(m.nab, m.vscb))
		cscb := formula.SpaceChargeCapacitance(m.wdep)
		m.put("C_SCB", expr.Mul(cscb, m.area))
		m.put("C_gb", expr.Mul(formula.SeriesCapacitance(m.cox, cscb), m.area))
	case Inversion:
		m.put("V_SCB", m.vscbTN)
		m.put("w_dep", m.wTN)
		m.put("V_ox", expr.Sub(m.vgb, expr.Add(m.vscbTN, m.phiPM)))
		m.put("E_ox", expr.Div(m.vox, m.xox))
		m.put("Q_g", formula.GateChargeDensity(m.exox))
		m.put("Q_SCB", formula.NeutralSpaceCharge(m.qg, m.qf, m.qit))
		m.put("C_SCB", inf)
		m.put("C_gb", expr.Mul(m.cox, m.area))
	}

	if regime == Inversion {
		cscb := formula.SpaceChargeCapacitance(m.wdep)
		m.put("C_SCB_HF", expr.Mul(cscb, m.area))
		m.put("C_gb_HF", expr.Mul(formula.SeriesCapacitance(m.cox, cscb), m.area))
		m.put("Q_invB", formula.InversionChargeDensity(m.cox, m.vgb, m.vtn))
	} else {
		m.put("C_SCB_HF", m.cscb)
		m.put("C_gb_HF", m.cgb)
		m.put("Q_invB", zero)
	}

	if regime == Depletion || regime == Inversion {
		m.put("Q_SCB_ex", formula.SpaceChargeDensity(m.vscb, m.ldb, m.n, m.p))
	} else {
		m.put("Q_SCB_ex", m.qscb)
	}

	m.put("E_x_B", formula.SubstrateField(m.qscb))
	return nil
}
