package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-semi/internal/consts"
	"github.com/edp1096/toy-semi/pkg/expr"
)

func value(t *testing.T, e expr.Expr) float64 {
	t.Helper()
	v, ok := expr.Value(e)
	require.True(t, ok, "expected concrete value, got %s", e)
	return v
}

func TestBuiltInVoltage(t *testing.T) {
	got := value(t, BuiltInVoltage(num(1e17), num(1e15)))
	want := 0.025852 * math.Log(1e17*1e15/(1.07e10*1.07e10))

	assert.InDelta(t, want, got, 1e-12)
	assert.InDelta(t, 0.7108, got, 1e-3)
}

func TestMobilityFallsWithDoping(t *testing.T) {
	curves := map[string]func(expr.Expr) expr.Expr{
		"mu_p_maj": MuPMaj,
		"mu_p_min": MuPMin,
		"mu_n_maj": MuNMaj,
		"mu_n_min": MuNMin,
	}

	for name, mu := range curves {
		t.Run(name, func(t *testing.T) {
			light := value(t, mu(num(1e14)))
			heavy := value(t, mu(num(1e19)))
			assert.Greater(t, light, heavy)
			assert.Greater(t, heavy, 0.0)
		})
	}
}

func TestCompensatedMajority(t *testing.T) {
	got := value(t, CompensatedMajority(num(1e17), num(3e16)))
	assert.InEpsilon(t, 7e16, got, 1e-9)

	minority := value(t, MassAction(num(got)))
	assert.InEpsilon(t, consts.NI*consts.NI, got*minority, 1e-12)
}

func TestConductivity(t *testing.T) {
	sigma := value(t, Conductivity(num(1000), num(1e16), num(400), num(1e4)))
	assert.InEpsilon(t, consts.CHARGE*(1000*1e16+400*1e4), sigma, 1e-12)

	rho := value(t, Resistivity(num(sigma)))
	r := value(t, Resistance(num(rho), num(2), num(0.5)))
	assert.InEpsilon(t, 4*rho, r, 1e-12)
}

func TestDrainCurrents(t *testing.T) {
	sat := value(t, SaturationCurrent(num(1e-3), num(2), num(0.5), num(0.02), num(3), num(1.5)))
	assert.InDelta(t, 1e-3*2.25*(1+0.02*1.5), sat, 1e-15)

	lin := value(t, LinearCurrent(num(1e-3), num(2), num(0.5), num(1)))
	assert.InDelta(t, 2e-3*(1.5*1-0.5), lin, 1e-15)

	// Both formulas meet at Vds = Vdsat when lambda is zero.
	edgeSat := value(t, SaturationCurrent(num(1e-3), num(2), num(0.5), num(0), num(1.5), num(1.5)))
	edgeLin := value(t, LinearCurrent(num(1e-3), num(2), num(0.5), num(1.5)))
	assert.InDelta(t, edgeSat, edgeLin, 1e-15)
}

func TestGateChargeEdges(t *testing.T) {
	assert.True(t, expr.IsUndefined(GateCharge(num(500), num(1e-4), num(3e-7), num(0), num(2), num(0.5), num(0))))

	zero := value(t, LinearGateCharge(num(1e-12), num(2), num(0), num(0.5)))
	assert.Equal(t, 0.0, zero)

	q := value(t, LinearGateCharge(num(1e-12), num(2), num(1), num(0.5)))
	assert.Greater(t, q, 0.0)
}

func TestLinearCapacitancePartition(t *testing.T) {
	total := num(3e-12)
	// Vds = 0 splits the channel evenly between source and drain.
	cgs := value(t, LinearGateSourceCapacitance(total, num(2), num(2), num(0.5)))
	cgd := value(t, LinearGateDrainCapacitance(total, num(2), num(2), num(0.5)))
	assert.InDelta(t, 1.5e-12, cgs, 1e-24)
	assert.InDelta(t, cgs, cgd, 1e-24)
}

func TestThresholdStaysSymbolic(t *testing.T) {
	nab := expr.Symbol("N_ab")
	xox := expr.Symbol("X_ox")
	cox := OxideCapacitance(xox)
	phi := FermiPotential(nab)
	vfb := FlatBandVoltage(ContactPotential(nab), num(0), num(0), cox)

	vtn := ThresholdVoltage(vfb, phi, nab, cox)
	assert.False(t, expr.IsConcrete(vtn))
	assert.Equal(t, []string{"N_ab", "X_ox"}, expr.Symbols(vtn))

	v, err := expr.Eval(vtn, map[string]float64{"N_ab": 1e16, "X_ox": 2e-6})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(v))
}

func TestMoscapDepletionContinuity(t *testing.T) {
	nab, cox := num(1e16), OxideCapacitance(num(1e-6))
	vfb := num(-1)

	// At VGB = VFB the space-charge voltage vanishes.
	v0 := value(t, DepletionVoltage(vfb, vfb, nab, cox))
	assert.InDelta(t, 0, v0, 1e-12)

	v1 := value(t, DepletionVoltage(num(0), vfb, nab, cox))
	assert.Greater(t, v1, 0.0)
	assert.Less(t, v1, 1.0)
}

func TestEffectiveDensityMatchesTable(t *testing.T) {
	assert.InEpsilon(t, consts.NC, EffectiveDensity(consts.MNDOS), 0.01)
	assert.InEpsilon(t, consts.NV, EffectiveDensity(consts.MPDOS), 0.05)
}

func TestElectronsQuantumMatchesClassical(t *testing.T) {
	ec, ef := 1.0, 0.7

	quantum := ElectronsQuantum(ec, ef, ec+1, 400)
	classical := EffectiveDensity(consts.MNDOS) * math.Exp(-(ec-ef)/consts.KT_Q)
	assert.InEpsilon(t, classical, quantum, 1e-3)

	offset := value(t, BandOffset(num(EffectiveDensity(consts.MNDOS)), num(classical)))
	assert.InDelta(t, ec-ef, offset, 1e-12)
}

func TestOccupancy(t *testing.T) {
	half := value(t, FermiDirac(num(0.5), num(0.5)))
	assert.InDelta(t, 0.5, half, 1e-15)

	fd := value(t, FermiDirac(num(1), num(0.5)))
	mb := value(t, Boltzmann(num(1), num(0.5)))
	assert.InEpsilon(t, mb, fd, 1e-6)
}
