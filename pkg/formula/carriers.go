// Package formula holds the closed-form device-physics equations. Every
// function is pure: it folds to a number when its inputs are concrete and
// stays symbolic otherwise.
package formula

import (
	"github.com/edp1096/toy-semi/internal/consts"
	"github.com/edp1096/toy-semi/pkg/expr"
)

var (
	q     = expr.Float(consts.CHARGE)
	ktq   = expr.Float(consts.KT_Q)
	kt    = expr.Float(consts.KT)
	ni    = expr.Float(consts.NI)
	epsSi = expr.Float(consts.EPSSI)
	epsOx = expr.Float(consts.EPSOX)
)

func num(v float64) expr.Expr { return expr.Float(v) }

// MassAction returns the minority concentration ni^2/c.
func MassAction(c expr.Expr) expr.Expr {
	return expr.Div(expr.Pow(ni, num(2)), c)
}

// CompensatedMajority solves the charge-neutrality quadratic for the majority
// carrier of compensated silicon.
func CompensatedMajority(nMaj, nMin expr.Expr) expr.Expr {
	diff := expr.Sub(nMaj, nMin)
	root := expr.Sqrt(expr.Add(expr.Pow(diff, num(2)), expr.Mul(num(4), expr.Pow(ni, num(2)))))
	return expr.Mul(num(0.5), expr.Add(diff, root))
}

// RecLifeP is the electron (minority) recombination lifetime in p-type silicon.
func RecLifeP(na expr.Expr) expr.Expr {
	return expr.Div(num(1), expr.Add(expr.Mul(num(3.45e-12), na), expr.Mul(num(9.5e-32), expr.Pow(na, num(2)))))
}

// RecLifeN is the hole (minority) recombination lifetime in n-type silicon.
func RecLifeN(nd expr.Expr) expr.Expr {
	return expr.Div(num(1), expr.Add(expr.Mul(num(7.8e-13), nd), expr.Mul(num(1.8e-31), expr.Pow(nd, num(2)))))
}

func GenLifeP(na expr.Expr) expr.Expr { return expr.Mul(num(75), RecLifeP(na)) }

func GenLifeN(nd expr.Expr) expr.Expr { return expr.Mul(num(75), RecLifeN(nd)) }

func mobility(floor, span, ref, exp float64, n expr.Expr) expr.Expr {
	return expr.Add(num(floor), expr.Div(num(span), expr.Add(num(1), expr.Pow(expr.Div(n, num(ref)), num(exp)))))
}

// MuPMaj is the hole mobility in p-type silicon (cm^2/V*s).
func MuPMaj(na expr.Expr) expr.Expr { return mobility(49.7, 418.3, 1.6e17, 0.7, na) }

// MuPMin is the hole mobility in n-type silicon.
func MuPMin(nd expr.Expr) expr.Expr { return mobility(130, 370, 8e17, 1.25, nd) }

// MuNMaj is the electron mobility in n-type silicon.
func MuNMaj(nd expr.Expr) expr.Expr { return mobility(92, 1268, 1.3e17, 0.91, nd) }

// MuNMin is the electron mobility in p-type silicon.
func MuNMin(na expr.Expr) expr.Expr { return mobility(232, 1180, 8e16, 0.9, na) }

// Diffusivity is the Einstein relation D = (kT/q)mu.
func Diffusivity(mu expr.Expr) expr.Expr { return expr.Mul(ktq, mu) }

func DiffusionLength(d, tau expr.Expr) expr.Expr { return expr.Sqrt(expr.Mul(d, tau)) }

func VDriftN(mu, e expr.Expr) expr.Expr { return expr.Neg(expr.Mul(mu, e)) }

func VDriftP(mu, e expr.Expr) expr.Expr { return expr.Mul(mu, e) }

func JDriftN(mu, n, e expr.Expr) expr.Expr { return expr.Mul(q, mu, n, e) }

func JDriftP(mu, p, e expr.Expr) expr.Expr { return expr.Mul(q, mu, p, e) }

func HoleDiffusionFlux(d, dp expr.Expr) expr.Expr { return expr.Neg(expr.Mul(d, dp)) }

func ElectronDiffusionFlux(d, dn expr.Expr) expr.Expr { return expr.Mul(d, dn) }

func JDiffusionP(d, dp expr.Expr) expr.Expr { return expr.Mul(q, HoleDiffusionFlux(d, dp)) }

func JDiffusionN(d, dn expr.Expr) expr.Expr { return expr.Mul(q, ElectronDiffusionFlux(d, dn)) }

// JN is the total electron current density, drift plus diffusion.
func JN(mu, n, e, d, dn expr.Expr) expr.Expr {
	return expr.Add(JDriftN(mu, n, e), JDiffusionN(d, dn))
}

func JP(mu, p, e, d, dp expr.Expr) expr.Expr {
	return expr.Add(JDriftP(mu, p, e), JDiffusionP(d, dp))
}

// Conductivity is q(mu_n n + mu_p p) in S/cm.
func Conductivity(muN, n, muP, p expr.Expr) expr.Expr {
	return expr.Mul(q, expr.Add(expr.Mul(muN, n), expr.Mul(muP, p)))
}

func Resistivity(sigma expr.Expr) expr.Expr { return expr.Div(num(1), sigma) }

func Resistance(rho, length, area expr.Expr) expr.Expr {
	return expr.Div(expr.Mul(rho, length), area)
}

// DielectricRelaxation is eps_si/sigma.
func DielectricRelaxation(sigma expr.Expr) expr.Expr { return expr.Div(epsSi, sigma) }

func DebyeLength(d, tau expr.Expr) expr.Expr { return expr.Sqrt(expr.Mul(d, tau)) }
