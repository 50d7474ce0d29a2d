package formula

import (
	"github.com/edp1096/toy-semi/pkg/expr"
)

// Aluminium gate against the intrinsic level, in volts.
const aluminiumOffset = -0.51165

// ContactPotential is phi_pm between the p-type bulk and the aluminium back contact.
func ContactPotential(nab expr.Expr) expr.Expr {
	return expr.Sub(num(aluminiumOffset), expr.Mul(ktq, expr.Ln(expr.Div(nab, ni))))
}

// FermiPotential is phi_fb of the substrate.
func FermiPotential(nab expr.Expr) expr.Expr {
	return expr.Mul(ktq, expr.Ln(expr.Div(nab, ni)))
}

func OxideCapacitance(xox expr.Expr) expr.Expr { return expr.Div(epsOx, xox) }

func FlatBandVoltage(phiPM, qf, qit, cox expr.Expr) expr.Expr {
	return expr.Sub(phiPM, expr.Div(expr.Add(qf, qit), cox))
}

// ThresholdVoltage of the capacitor at zero body bias.
func ThresholdVoltage(vfb, phiFB, nab, cox expr.Expr) expr.Expr {
	depl := expr.Sqrt(expr.Mul(num(4), q, epsSi, nab, phiFB))
	return expr.Add(vfb, expr.Mul(num(2), phiFB), expr.Div(depl, cox))
}

// DepletionWidth is sqrt(2 eps_si vscb/(q Nab)).
func DepletionWidth(nab, vscb expr.Expr) expr.Expr {
	return expr.Sqrt(expr.Mul(expr.Div(expr.Mul(num(2), epsSi), expr.Mul(q, nab)), vscb))
}

func SubstrateDebyeLength(nab expr.Expr) expr.Expr {
	return expr.Sqrt(expr.Div(expr.Mul(epsSi, kt), expr.Mul(expr.Pow(q, num(2)), nab)))
}

// SpaceChargeDensity is the exact Q_SC,B for a space-charge voltage vscb.
func SpaceChargeDensity(vscb, ldb, nb, pb expr.Expr) expr.Expr {
	beta := expr.Div(q, kt)
	bv := expr.Mul(beta, vscb)
	p1 := expr.Div(expr.Mul(expr.Sqrt(num(2)), epsSi, ktq), ldb)
	holes := expr.Add(expr.Exp(expr.Neg(bv)), bv, num(-1))
	electrons := expr.Sub(expr.Sub(expr.Exp(bv), bv), num(1))
	return expr.Neg(expr.Mul(p1, expr.Sqrt(expr.Add(holes, expr.Mul(expr.Div(nb, pb), electrons)))))
}

// NeutralSpaceCharge closes Qg + Qscb + Qit + Qf = 0 for Qscb.
func NeutralSpaceCharge(qg, qf, qit expr.Expr) expr.Expr {
	return expr.Neg(expr.Add(qg, qf, qit))
}

func GateChargeDensity(exox expr.Expr) expr.Expr { return expr.Mul(epsOx, exox) }

func OxideField(qg expr.Expr) expr.Expr { return expr.Div(qg, epsOx) }

func AccumulationSpaceCharge(cox, vgb, vfb expr.Expr) expr.Expr {
	return expr.Neg(expr.Mul(cox, expr.Sub(vgb, vfb)))
}

// DepletionVoltage is the space-charge voltage solved from the depletion-range
// charge balance.
func DepletionVoltage(vgb, vfb, nab, cox expr.Expr) expr.Expr {
	over := expr.Sub(vgb, vfb)
	k := expr.Mul(q, epsSi, nab)
	inner := expr.Sqrt(expr.Add(num(1), expr.Mul(expr.Div(expr.Mul(num(2), expr.Pow(cox, num(2))), k), over)))
	return expr.Add(over, expr.Mul(expr.Div(k, expr.Pow(cox, num(2))), expr.Sub(num(1), inner)))
}

// DepletionGateCharge is sqrt(2 q eps_si Nab vscb) - (Qf + Qit).
func DepletionGateCharge(nab, vscb, qf, qit expr.Expr) expr.Expr {
	return expr.Sub(expr.Sqrt(expr.Mul(num(2), q, epsSi, nab, vscb)), expr.Add(qf, qit))
}

func SpaceChargeCapacitance(w expr.Expr) expr.Expr { return expr.Div(epsSi, w) }

func SeriesCapacitance(a, b expr.Expr) expr.Expr {
	return expr.Div(expr.Mul(a, b), expr.Add(a, b))
}

// InversionChargeDensity is -Cox(V - Vtn).
func InversionChargeDensity(cox, v, vtn expr.Expr) expr.Expr {
	return expr.Neg(expr.Mul(cox, expr.Sub(v, vtn)))
}

// SubstrateField is the field at the substrate surface, -Qscb/eps_si.
func SubstrateField(qscb expr.Expr) expr.Expr { return expr.Neg(expr.Div(qscb, epsSi)) }
