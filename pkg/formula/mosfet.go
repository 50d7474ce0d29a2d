package formula

import (
	"math"

	"github.com/edp1096/toy-semi/pkg/expr"
)

// BodyThreshold is the level-1 threshold voltage with body bias vbs.
func BodyThreshold(vfb, phiFB, cox, nab, vbs expr.Expr) expr.Expr {
	return expr.Add(vfb, expr.Mul(num(2), phiFB), expr.Div(bodyCharge(nab, phiFB, vbs), cox))
}

func bodyCharge(nab, phiFB, vbs expr.Expr) expr.Expr {
	surface := expr.Sub(expr.Mul(num(2), phiFB), vbs)
	return expr.Sqrt(expr.Mul(num(2), q, epsSi, nab, surface))
}

// DepletionChargeDensity is the level-1 Q_DEP,B.
func DepletionChargeDensity(nab, phiFB, vbs expr.Expr) expr.Expr {
	return expr.Neg(bodyCharge(nab, phiFB, vbs))
}

// TransconductanceParameter is Kn = mu Cox W/(2L).
func TransconductanceParameter(mu, cox, w, l expr.Expr) expr.Expr {
	return expr.Div(expr.Mul(mu, cox, w), expr.Mul(num(2), l))
}

func BodyEffectCoefficient(nab, cox expr.Expr) expr.Expr {
	return expr.Div(expr.Sqrt(expr.Mul(num(2), q, epsSi, nab)), cox)
}

// SaturationCurrent is Kn(Vgs-Vtn)^2 (1 + lambda(Vds - Vdsat)).
func SaturationCurrent(kn, vgs, vtn, lambda, vds, vdsat expr.Expr) expr.Expr {
	clm := expr.Add(num(1), expr.Mul(lambda, expr.Sub(vds, vdsat)))
	return expr.Mul(kn, expr.Pow(expr.Sub(vgs, vtn), num(2)), clm)
}

// LinearCurrent is 2Kn((Vgs-Vtn)Vds - Vds^2/2).
func LinearCurrent(kn, vgs, vtn, vds expr.Expr) expr.Expr {
	quad := expr.Sub(expr.Mul(expr.Sub(vgs, vtn), vds), expr.Mul(num(0.5), expr.Pow(vds, num(2))))
	return expr.Mul(num(2), kn, quad)
}

// GateCharge integrates the channel charge from source to drain. It is
// undefined when the linear current is exactly zero.
func GateCharge(mu, w, cox, idlin, vgs, vtn, vds expr.Expr) expr.Expr {
	if v, ok := expr.Value(idlin); ok && v == 0 {
		return expr.Undefined
	}

	ov := expr.Sub(vgs, vtn)
	poly := expr.Add(
		expr.Mul(expr.Pow(ov, num(2)), vds),
		expr.Neg(expr.Mul(ov, expr.Pow(vds, num(2)))),
		expr.Mul(num(1.0/3), expr.Pow(vds, num(3))),
	)
	pre := expr.Div(expr.Mul(mu, expr.Pow(w, num(2)), expr.Pow(cox, num(2))), idlin)
	return expr.Mul(pre, poly)
}

// LinearGateCharge is the triode-range gate charge from the total oxide
// capacitance. Equal end overdrives give zero.
func LinearGateCharge(totalCox, vgs, vds, vtn expr.Expr) expr.Expr {
	vgd := expr.Sub(vgs, vds)
	a := expr.Pow(expr.Sub(vgd, vtn), num(2))
	b := expr.Pow(expr.Sub(vgs, vtn), num(2))
	if expr.Equal(a, b) {
		return num(0)
	}

	cubes := expr.Sub(expr.Pow(expr.Sub(vgd, vtn), num(3)), expr.Pow(expr.Sub(vgs, vtn), num(3)))
	return expr.Mul(num(2.0/3), totalCox, expr.Div(cubes, expr.Sub(a, b)))
}

func partition(totalCox, far, vgs, vgd, vtn expr.Expr) expr.Expr {
	den := expr.Pow(expr.Sub(expr.Add(vgs, vgd), expr.Mul(num(2), vtn)), num(2))
	ratio := expr.Div(expr.Pow(expr.Sub(far, vtn), num(2)), den)
	return expr.Mul(num(2.0/3), totalCox, expr.Sub(num(1), ratio))
}

// LinearGateSourceCapacitance partitions the triode gate capacitance to the source.
func LinearGateSourceCapacitance(totalCox, vgs, vgd, vtn expr.Expr) expr.Expr {
	return partition(totalCox, vgd, vgs, vgd, vtn)
}

func LinearGateDrainCapacitance(totalCox, vgs, vgd, vtn expr.Expr) expr.Expr {
	return partition(totalCox, vgs, vgs, vgd, vtn)
}

func OverlapCapacitance(w, lov, xox expr.Expr) expr.Expr {
	return expr.Div(expr.Mul(epsOx, w, lov), xox)
}

// TransitFrequency is 3mu/(4 pi L^2) (Vgs - Vtn).
func TransitFrequency(mu, l, vgs, vtn expr.Expr) expr.Expr {
	pre := expr.Div(expr.Mul(num(3), mu), expr.Mul(num(4*math.Pi), expr.Pow(l, num(2))))
	return expr.Mul(pre, expr.Sub(vgs, vtn))
}
