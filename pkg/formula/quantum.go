package formula

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/edp1096/toy-semi/internal/consts"
	"github.com/edp1096/toy-semi/pkg/expr"
)

// FermiDirac is the occupancy 1/(1 + exp((E-EF)/kT)) with energies in eV.
func FermiDirac(e, ef expr.Expr) expr.Expr {
	return expr.Div(num(1), expr.Add(num(1), expr.Exp(expr.Div(expr.Sub(e, ef), ktq))))
}

// Boltzmann is the non-degenerate limit exp(-(E-EF)/kT).
func Boltzmann(e, ef expr.Expr) expr.Expr {
	return expr.Exp(expr.Neg(expr.Div(expr.Sub(e, ef), ktq)))
}

// dosPrefactor converts (1/2pi^2)(2m/hbar^2)^(3/2) to cm^-3 eV^-3/2 for a
// mass given in grams.
func dosPrefactor(mass float64) float64 {
	m := mass * 1e-3
	hbar := consts.PLANCK * consts.CHARGE / (2 * math.Pi)
	perJoule := math.Pow(2*m/(hbar*hbar), 1.5) / (2 * math.Pi * math.Pi)
	return perJoule * 1e-6 * math.Pow(consts.CHARGE, 1.5)
}

// EffectiveDensity is 2(2 pi m kT/h^2)^(3/2) in cm^-3 for a mass in grams.
func EffectiveDensity(mass float64) float64 {
	m := mass * 1e-3
	h := consts.PLANCK * consts.CHARGE
	return 2 * math.Pow(2*math.Pi*m*consts.KT/(h*h), 1.5) * 1e-6
}

// BandOffset is the non-degenerate distance in eV between the Fermi level
// and a band edge with effective density nEff, given its carrier density.
func BandOffset(nEff, carriers expr.Expr) expr.Expr {
	return expr.Mul(ktq, expr.Ln(expr.Div(nEff, carriers)))
}

// ElectronsQuantum integrates g_c(E) f(E) from the band edge to evac with an
// n-point Gauss-Legendre rule.
func ElectronsQuantum(ec, ef, evac float64, n int) float64 {
	pref := dosPrefactor(consts.MNDOS)
	f := func(e float64) float64 {
		if e <= ec {
			return 0
		}
		occupancy := 1 / (1 + math.Exp((e-ef)/consts.KT_Q))
		return pref * math.Sqrt(e-ec) * occupancy
	}
	return quad.Fixed(f, ec, evac, n, nil, 0)
}
