package formula

import (
	"math"

	"github.com/edp1096/toy-semi/internal/consts"
	"github.com/edp1096/toy-semi/pkg/expr"
)

func boltzmannFactor(v expr.Expr, ideality float64) expr.Expr {
	return expr.Exp(expr.Div(v, expr.Mul(num(ideality), ktq)))
}

// BuiltInVoltage is kT/q ln(Na Nd/ni^2).
func BuiltInVoltage(na, nd expr.Expr) expr.Expr {
	return expr.Mul(ktq, expr.Ln(expr.Div(expr.Mul(na, nd), expr.Pow(ni, num(2)))))
}

func junctionWidth(na, nd, vpn, doping expr.Expr) expr.Expr {
	vbi := BuiltInVoltage(na, nd)
	pre := expr.Div(expr.Mul(num(2), epsSi), q)
	return expr.Sqrt(expr.Mul(pre, doping, expr.Sub(vbi, vpn)))
}

// JunctionWidth is the total depletion width at bias vpn.
func JunctionWidth(na, nd, vpn expr.Expr) expr.Expr {
	return junctionWidth(na, nd, vpn, expr.Div(expr.Add(na, nd), expr.Mul(na, nd)))
}

func JunctionWidthP(na, nd, vpn expr.Expr) expr.Expr {
	return junctionWidth(na, nd, vpn, expr.Div(nd, expr.Mul(na, expr.Add(na, nd))))
}

func JunctionWidthN(na, nd, vpn expr.Expr) expr.Expr {
	return junctionWidth(na, nd, vpn, expr.Div(na, expr.Mul(nd, expr.Add(na, nd))))
}

// FieldP is the field in the p-side depletion region at x from the junction.
func FieldP(na, wdp, x expr.Expr) expr.Expr {
	return expr.Neg(expr.Mul(expr.Div(expr.Mul(q, na), epsSi), expr.Add(x, wdp)))
}

func FieldN(nd, wdn, x expr.Expr) expr.Expr {
	return expr.Neg(expr.Mul(expr.Div(expr.Mul(q, nd), epsSi), expr.Sub(wdn, x)))
}

// EdgeMinority is the minority concentration at a depletion edge under bias.
func EdgeMinority(c, vpn expr.Expr) expr.Expr {
	return expr.Mul(c, boltzmannFactor(vpn, 1))
}

func edgeCurrent(doping, d, l, vpn expr.Expr) expr.Expr {
	pre := expr.Div(expr.Mul(q, d, expr.Pow(ni, num(2))), expr.Mul(l, doping))
	return expr.Mul(pre, expr.Sub(boltzmannFactor(vpn, 1), num(1)))
}

// HoleEdgeCurrent is the hole current density at the n-side depletion edge.
func HoleEdgeCurrent(nd, dp, lp, vpn expr.Expr) expr.Expr { return edgeCurrent(nd, dp, lp, vpn) }

func ElectronEdgeCurrent(na, dn, ln, vpn expr.Expr) expr.Expr { return edgeCurrent(na, dn, ln, vpn) }

// EdgePotential is the potential drop q N w^2/(2 eps_si) across one side.
func EdgePotential(n, w expr.Expr) expr.Expr {
	return expr.Mul(expr.Div(expr.Mul(q, n), expr.Mul(num(2), epsSi)), expr.Pow(w, num(2)))
}

// BreakdownVoltage of a one-sided junction with lighter doping nb.
func BreakdownVoltage(nb expr.Expr) expr.Expr {
	gap := num(60 * math.Pow(consts.EGSI/1.1242, 1.5))
	return expr.Mul(gap, expr.Pow(expr.Div(num(1e16), nb), num(0.75)))
}

func DepletionCharge(nd, wn expr.Expr) expr.Expr { return expr.Mul(q, nd, wn) }

// DiffusionCharge is the stored minority charge of a long-base region with
// diffusion length l and doping n. The p side carries the opposite sign.
func DiffusionCharge(l, n, vpn expr.Expr) expr.Expr {
	pre := expr.Div(expr.Mul(q, expr.Pow(ni, num(2)), l), n)
	return expr.Mul(pre, expr.Sub(boltzmannFactor(vpn, 1), num(1)))
}

func DepletionCapacitance(area, na, nd, vbi, vpn expr.Expr) expr.Expr {
	series := expr.Div(expr.Mul(na, nd), expr.Add(na, nd))
	return expr.Mul(area, expr.Sqrt(expr.Div(expr.Mul(num(0.5), q, epsSi, series), expr.Sub(vbi, vpn))))
}

func DiffusionCapacitance(area, l, n, vpn expr.Expr) expr.Expr {
	pre := expr.Div(expr.Mul(expr.Pow(q, num(2)), expr.Pow(ni, num(2)), l), expr.Mul(kt, n))
	return expr.Mul(area, pre, boltzmannFactor(vpn, 1))
}

// RecombinationRate is the peak net recombination rate inside the space-charge region.
func RecombinationRate(tau, vpn expr.Expr) expr.Expr {
	return expr.Mul(expr.Div(ni, expr.Mul(num(2), tau)), boltzmannFactor(vpn, 2))
}

// SCRSaturationCurrent is q ni W/(2 tau).
func SCRSaturationCurrent(w, tau expr.Expr) expr.Expr {
	return expr.Div(expr.Mul(q, ni, w), expr.Mul(num(2), tau))
}

func DiffusionSaturationCurrent(dn, ln, na, dp, lp, nd expr.Expr) expr.Expr {
	n := expr.Div(expr.Mul(q, dn, expr.Pow(ni, num(2))), expr.Mul(ln, na))
	p := expr.Div(expr.Mul(q, dp, expr.Pow(ni, num(2))), expr.Mul(lp, nd))
	return expr.Add(n, p)
}

// DiodeCurrentDensity sums the ideal diffusion term and the space-charge
// recombination term with ideality 2.
func DiodeCurrentDensity(jsDiff, jsSCR, vpn expr.Expr) expr.Expr {
	return expr.Add(
		expr.Mul(jsDiff, expr.Sub(boltzmannFactor(vpn, 1), num(1))),
		expr.Mul(jsSCR, expr.Sub(boltzmannFactor(vpn, 2), num(1))),
	)
}

// SCRCurrent is the space-charge recombination current density at bias vpn.
func SCRCurrent(jsSCR, vpn expr.Expr) expr.Expr {
	return expr.Mul(jsSCR, boltzmannFactor(vpn, 2))
}
