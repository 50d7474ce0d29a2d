package device

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-semi/internal/consts"
	"github.com/edp1096/toy-semi/pkg/expr"
	"github.com/edp1096/toy-semi/pkg/formula"
)

// Silicon is a doped silicon sample. All concentrations are cm^-3 and all
// lengths cm.
type Silicon struct {
	*Quantities

	na, nd    expr.Expr // acceptor and donor doping
	threshold expr.Expr // compensation band, Na/Nd ratio
	eField    expr.Expr // applied field (V/cm)
	length    expr.Expr
	area      expr.Expr

	n, p     expr.Expr // carrier concentrations
	muN, muP expr.Expr // mobilities (cm²/V·s)
	dn, dp   expr.Expr // diffusivities (cm²/s)

	tauRecN, tauRecP expr.Expr // minority recombination lifetimes
	tauGenN, tauGenP expr.Expr // minority generation lifetimes
	lRecN, lRecP     expr.Expr
	lGenN, lGenP     expr.Expr
	lDiffN, lDiffP   expr.Expr
	lDebyeN, lDebyeP expr.Expr

	sigma, rho, r, tauDiel expr.Expr

	vDriftN, vDriftP expr.Expr
	jDriftN, jDriftP expr.Expr
	jDrift           expr.Expr

	dnDx, dpDx     expr.Expr // carrier gradients (cm^-4)
	jDiffN, jDiffP expr.Expr
	jN, jP, j      expr.Expr

	nc, nv   expr.Expr // effective band densities
	ecF, eFv expr.Expr // Ec-EF and EF-Ev (eV)
	fc, fcB  expr.Expr // conduction-edge occupancy, Fermi-Dirac and Boltzmann
	nFD      expr.Expr // Fermi-Dirac electron density at the same Fermi level

	pType, nType, degenerate bool
}

func newSilicon(q *Quantities) *Silicon {
	s := &Silicon{Quantities: q}
	q.register(map[string]*expr.Expr{
		"Na":                     &s.na,
		"Nd":                     &s.nd,
		"compensation_threshold": &s.threshold,
		"e_field":                &s.eField,
		"length":                 &s.length,
		"area":                   &s.area,
		"n":                      &s.n,
		"p":                      &s.p,
		"mu_n":                   &s.muN,
		"mu_p":                   &s.muP,
		"D_n":                    &s.dn,
		"D_p":                    &s.dp,
		"tau_rec_n":              &s.tauRecN,
		"tau_rec_p":              &s.tauRecP,
		"tau_gen_n":              &s.tauGenN,
		"tau_gen_p":              &s.tauGenP,
		"L_rec_n":                &s.lRecN,
		"L_rec_p":                &s.lRecP,
		"L_gen_n":                &s.lGenN,
		"L_gen_p":                &s.lGenP,
		"L_diff_n":               &s.lDiffN,
		"L_diff_p":               &s.lDiffP,
		"L_Debye_n":              &s.lDebyeN,
		"L_Debye_p":              &s.lDebyeP,
		"sigma":                  &s.sigma,
		"rho":                    &s.rho,
		"R":                      &s.r,
		"tau_diel":               &s.tauDiel,
		"v_drift_n":              &s.vDriftN,
		"v_drift_p":              &s.vDriftP,
		"J_drift_n":              &s.jDriftN,
		"J_drift_p":              &s.jDriftP,
		"J_drift":                &s.jDrift,
		"dn_dx":                  &s.dnDx,
		"dp_dx":                  &s.dpDx,
		"J_diff_n":               &s.jDiffN,
		"J_diff_p":               &s.jDiffP,
		"J_n":                    &s.jN,
		"J_p":                    &s.jP,
		"J":                      &s.j,
		"N_c":                    &s.nc,
		"N_v":                    &s.nv,
		"E_c_F":                  &s.ecF,
		"E_F_v":                  &s.eFv,
		"f_c":                    &s.fc,
		"f_c_B":                  &s.fcB,
		"n_FD":                   &s.nFD,
	})
	q.defaults(map[string]float64{
		"compensation_threshold": 5,
		"e_field":                0,
		"length":                 1,
		"area":                   1,
		"dn_dx":                  0,
		"dp_dx":                  0,
		"N_c":                    consts.NC,
		"N_v":                    consts.NV,
	})
	return s
}

// NewSilicon returns a sample with symbolic doping.
func NewSilicon() *Silicon {
	s := newSilicon(newQuantities())
	s.start(s.recalculate)
	return s
}

func (s *Silicon) IsPType() bool      { return s.pType }
func (s *Silicon) IsNType() bool      { return s.nType }
func (s *Silicon) IsDegenerate() bool { return s.degenerate }

// Dope sets both dopant concentrations in one recalculation.
func (s *Silicon) Dope(na, nd float64) error {
	return s.setAll(false,
		assignment{"Na", expr.Float(na)},
		assignment{"Nd", expr.Float(nd)})
}

func (s *Silicon) recalculate() error {
	na, okA := expr.Value(s.na)
	nd, okD := expr.Value(s.nd)
	if !okA || !okD {
		logrus.Tracef("silicon: doping is symbolic, keeping derived quantities")
		return nil
	}

	s.pType, s.nType = na > nd, nd > na
	s.carriers(na, nd)
	s.mobilities()
	s.lifetimes()
	s.transport()
	s.statistics()

	logrus.Debugf("silicon: Na=%g Nd=%g n=%s p=%s ptype=%v ntype=%v degenerate=%v",
		na, nd, s.n, s.p, s.pType, s.nType, s.degenerate)
	return nil
}

func (s *Silicon) compensated(na, nd float64) bool {
	if na <= 0 || nd <= 0 {
		return false
	}
	th, ok := expr.Value(s.threshold)
	if !ok || th <= 1 {
		return false
	}
	ratio := na / nd
	return ratio > 1/th && ratio < th
}

func (s *Silicon) carriers(na, nd float64) {
	switch {
	case na == nd:
		s.put("n", expr.Float(consts.NI))
		s.put("p", expr.Float(consts.NI))
	case s.compensated(na, nd) && s.pType:
		s.put("p", formula.CompensatedMajority(s.na, s.nd))
		s.put("n", formula.MassAction(s.p))
	case s.compensated(na, nd):
		s.put("n", formula.CompensatedMajority(s.nd, s.na))
		s.put("p", formula.MassAction(s.n))
	case s.pType:
		s.put("p", s.na)
		s.put("n", formula.MassAction(s.na))
	default:
		s.put("n", s.nd)
		s.put("p", formula.MassAction(s.nd))
	}

	n, _ := expr.Value(s.n)
	p, _ := expr.Value(s.p)
	s.degenerate = (s.nType && n > consts.NC) || (s.pType && p > consts.NV)
}

func (s *Silicon) mobilities() {
	switch {
	case s.pType:
		s.put("mu_n", formula.MuNMin(s.na))
		s.put("mu_p", formula.MuPMaj(s.na))
	case s.nType:
		s.put("mu_n", formula.MuNMaj(s.nd))
		s.put("mu_p", formula.MuPMin(s.nd))
	default:
		s.put("mu_n", formula.MuNMaj(s.nd))
		s.put("mu_p", formula.MuPMaj(s.na))
	}
	s.put("D_n", formula.Diffusivity(s.muN))
	s.put("D_p", formula.Diffusivity(s.muP))
}

// lifetimes fills the minority-carrier quantities and leaves the majority
// side undefined. Intrinsic material has no minority carrier.
func (s *Silicon) lifetimes() {
	recN, genN, recP, genP := expr.Undefined, expr.Undefined, expr.Undefined, expr.Undefined
	switch {
	case s.pType:
		recN, genN = formula.RecLifeP(s.na), formula.GenLifeP(s.na)
	case s.nType:
		recP, genP = formula.RecLifeN(s.nd), formula.GenLifeN(s.nd)
	}
	s.put("tau_rec_n", recN)
	s.put("tau_gen_n", genN)
	s.put("tau_rec_p", recP)
	s.put("tau_gen_p", genP)

	s.put("L_rec_n", formula.DiffusionLength(s.dn, s.tauRecN))
	s.put("L_gen_n", formula.DiffusionLength(s.dn, s.tauGenN))
	s.put("L_diff_n", formula.DiffusionLength(s.dn, s.tauRecN))
	s.put("L_rec_p", formula.DiffusionLength(s.dp, s.tauRecP))
	s.put("L_gen_p", formula.DiffusionLength(s.dp, s.tauGenP))
	s.put("L_diff_p", formula.DiffusionLength(s.dp, s.tauRecP))
}

func (s *Silicon) transport() {
	s.put("sigma", formula.Conductivity(s.muN, s.n, s.muP, s.p))
	s.put("rho", formula.Resistivity(s.sigma))
	s.put("R", formula.Resistance(s.rho, s.length, s.area))
	s.put("tau_diel", formula.DielectricRelaxation(s.sigma))

	debyeN, debyeP := expr.Undefined, expr.Undefined
	if !s.pType {
		debyeN = formula.DebyeLength(s.dn, s.tauDiel)
	}
	if !s.nType {
		debyeP = formula.DebyeLength(s.dp, s.tauDiel)
	}
	s.put("L_Debye_n", debyeN)
	s.put("L_Debye_p", debyeP)

	s.put("v_drift_n", formula.VDriftN(s.muN, s.eField))
	s.put("v_drift_p", formula.VDriftP(s.muP, s.eField))
	s.put("J_drift_n", formula.JDriftN(s.muN, s.n, s.eField))
	s.put("J_drift_p", formula.JDriftP(s.muP, s.p, s.eField))
	s.put("J_drift", expr.Add(s.jDriftN, s.jDriftP))

	s.put("J_diff_n", formula.JDiffusionN(s.dn, s.dnDx))
	s.put("J_diff_p", formula.JDiffusionP(s.dp, s.dpDx))
	s.put("J_n", formula.JN(s.muN, s.n, s.eField, s.dn, s.dnDx))
	s.put("J_p", formula.JP(s.muP, s.p, s.eField, s.dp, s.dpDx))
	s.put("J", expr.Add(s.jN, s.jP))
}

// statistics places the Fermi level from the carrier densities and checks
// the Boltzmann picture against Fermi-Dirac occupancy.
func (s *Silicon) statistics() {
	zero := expr.Float(0)
	s.put("E_c_F", formula.BandOffset(s.nc, s.n))
	s.put("E_F_v", formula.BandOffset(s.nv, s.p))
	s.put("f_c", formula.FermiDirac(s.ecF, zero))
	s.put("f_c_B", formula.Boltzmann(s.ecF, zero))

	nFD := expr.Undefined
	if ecF, ok := expr.Value(s.ecF); ok && !math.IsNaN(ecF) {
		nFD = expr.Float(formula.ElectronsQuantum(ecF, 0, math.Max(ecF, 0)+1, 400))
	}
	s.put("n_FD", nFD)
}
