package device

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-semi/internal/consts"
	"github.com/edp1096/toy-semi/pkg/expr"
)

// biasedMoscap is a 50 nm oxide on 1e16 cm^-3 substrate.
func biasedMoscap(t *testing.T, vgb float64) *Moscap {
	t.Helper()
	m := NewMoscap()
	require.NoError(t, m.SetFloat("N_ab", 1e16))
	require.NoError(t, m.SetFloat("X_ox", 5e-6))
	require.NoError(t, m.SetFloat("V_GB", vgb))
	return m
}

func TestMoscapSymbolic(t *testing.T) {
	m := NewMoscap()
	assert.Equal(t, Accumulation, m.Regime())

	vtn := mustGet(t, m, "V_TN")
	assert.False(t, expr.IsConcrete(vtn))
	assert.Equal(t, []string{"N_ab", "X_ox"}, expr.Symbols(vtn))
	assert.Equal(t, "N_ab", mustGet(t, m, "Na").String())
	assert.Equal(t, 0.0, mustFloat(t, m, "Nd"))
}

func TestMoscapRegimeWithSymbolicThreshold(t *testing.T) {
	tests := []struct {
		name string
		vgb  float64
		want Regime
	}{
		{"below flat-band", -1, Accumulation},
		{"at flat-band", 0.3, FlatBand},
		{"above flat-band", 1, Accumulation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMoscap()
			require.NoError(t, m.SetAndLock("V_FB", expr.Float(0.3)))
			require.NoError(t, m.SetFloat("V_GB", tt.vgb))

			require.False(t, expr.IsConcrete(mustGet(t, m, "V_TN")))
			assert.Equal(t, tt.want, m.Regime())
		})
	}
}

func TestMoscapAlias(t *testing.T) {
	m := NewMoscap()
	require.NoError(t, m.SetFloat("Nd", 3e15))
	require.NoError(t, m.SetFloat("N_ab", 1e16))

	assert.Equal(t, 1e16, mustFloat(t, m, "Na"))
	assert.Equal(t, 0.0, mustFloat(t, m, "Nd"))
	assert.True(t, m.IsPType())
}

func TestMoscapThreshold(t *testing.T) {
	m := biasedMoscap(t, 0)

	phi := 0.025852 * math.Log(1e16/consts.NI)
	cox := consts.EPSOX / 5e-6
	vfb := -0.51165 - phi
	vtn := vfb + 2*phi + math.Sqrt(4*consts.CHARGE*consts.EPSSI*1e16*phi)/cox

	assert.InEpsilon(t, cox, mustFloat(t, m, "C_ox"), 1e-12)
	assert.InDelta(t, vfb, mustFloat(t, m, "V_FB"), 1e-12)
	assert.InDelta(t, vtn, mustFloat(t, m, "V_TN"), 1e-12)
	assert.InDelta(t, 2*phi, mustFloat(t, m, "v_SCB_TN"), 1e-12)
}

func TestMoscapRegimes(t *testing.T) {
	m := biasedMoscap(t, 0)
	vfb := mustFloat(t, m, "V_FB")
	vtn := mustFloat(t, m, "V_TN")
	require.Less(t, vfb, vtn)

	tests := []struct {
		name string
		vgb  float64
		want Regime
	}{
		{"accumulation", vfb - 1, Accumulation},
		{"flat-band tie", vfb, FlatBand},
		{"depletion", (vfb + vtn) / 2, Depletion},
		{"threshold tie", vtn, Inversion},
		{"inversion", vtn + 2, Inversion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, m.SetFloat("V_GB", tt.vgb))
			assert.Equal(t, tt.want, m.Regime())
		})
	}
}

func TestMoscapChargeNeutrality(t *testing.T) {
	m := biasedMoscap(t, 0)
	vfb := mustFloat(t, m, "V_FB")
	vtn := mustFloat(t, m, "V_TN")

	for _, vgb := range []float64{vfb - 2, vfb, vfb + 0.1, (vfb + vtn) / 2, vtn + 1} {
		require.NoError(t, m.SetFloat("V_GB", vgb))
		qg := mustFloat(t, m, "Q_g")
		qscb := mustFloat(t, m, "Q_SCB")
		assert.InDelta(t, 0, qg+qscb, 1e-12*math.Max(math.Abs(qg), 1e-9), "V_GB=%g %s", vgb, m.Regime())
	}
}

func TestMoscapFlatBand(t *testing.T) {
	m := biasedMoscap(t, 0)
	require.NoError(t, m.SetFloat("V_GB", mustFloat(t, m, "V_FB")))

	assert.Equal(t, FlatBand, m.Regime())
	assert.Equal(t, 0.0, mustFloat(t, m, "Q_SCB"))
	assert.Equal(t, 0.0, mustFloat(t, m, "V_SCB"))
	assert.True(t, math.IsInf(mustFloat(t, m, "C_SCB"), 1))
	assert.InEpsilon(t, mustFloat(t, m, "C_ox"), mustFloat(t, m, "C_gb"), 1e-12)
}

func TestMoscapCapacitanceVoltage(t *testing.T) {
	m := biasedMoscap(t, 0)
	cox := mustFloat(t, m, "C_ox")
	vfb := mustFloat(t, m, "V_FB")
	vtn := mustFloat(t, m, "V_TN")

	require.NoError(t, m.SetFloat("V_GB", vfb-1))
	assert.InEpsilon(t, cox, mustFloat(t, m, "C_gb"), 1e-12)
	assert.Equal(t, 0.0, mustFloat(t, m, "Q_invB"))

	require.NoError(t, m.SetFloat("V_GB", (vfb+vtn)/2))
	depl := mustFloat(t, m, "C_gb")
	assert.Less(t, depl, cox)
	assert.InEpsilon(t, depl, mustFloat(t, m, "C_gb_HF"), 1e-12)
	assert.Greater(t, mustFloat(t, m, "w_dep"), 0.0)
	assert.Less(t, mustFloat(t, m, "w_dep"), mustFloat(t, m, "w_TN"))

	require.NoError(t, m.SetFloat("V_GB", vtn+1))
	assert.InEpsilon(t, cox, mustFloat(t, m, "C_gb"), 1e-12)
	hf := mustFloat(t, m, "C_gb_HF")
	assert.Less(t, hf, depl)
	assert.InEpsilon(t, -cox*1, mustFloat(t, m, "Q_invB"), 1e-9)
	assert.Equal(t, mustFloat(t, m, "w_TN"), mustFloat(t, m, "w_dep"))
}

func TestMoscapExactSpaceCharge(t *testing.T) {
	m := biasedMoscap(t, 0)
	vfb := mustFloat(t, m, "V_FB")
	vtn := mustFloat(t, m, "V_TN")

	tests := []struct {
		name string
		vgb  float64
		tol  float64
	}{
		{"depletion", (vfb + vtn) / 2, 0.1},
		{"inversion", vtn + 1, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, m.SetFloat("V_GB", tt.vgb))
			approx := mustFloat(t, m, "Q_SCB")
			exact := mustFloat(t, m, "Q_SCB_ex")
			assert.Less(t, exact, 0.0)
			assert.InEpsilon(t, approx, exact, tt.tol)
		})
	}

	// Outside depletion the exact charge is the model charge.
	require.NoError(t, m.SetFloat("V_GB", vfb-1))
	assert.Equal(t, mustFloat(t, m, "Q_SCB"), mustFloat(t, m, "Q_SCB_ex"))
}

func TestMoscapDepletionIsContinuous(t *testing.T) {
	m := biasedMoscap(t, 0)
	vfb := mustFloat(t, m, "V_FB")
	cox := mustFloat(t, m, "C_ox")

	require.NoError(t, m.SetFloat("V_GB", vfb-1e-3))
	below := mustFloat(t, m, "Q_SCB")

	require.NoError(t, m.SetFloat("V_GB", vfb+1e-3))
	assert.Equal(t, Depletion, m.Regime())
	above := mustFloat(t, m, "Q_SCB")

	vscb := mustFloat(t, m, "V_SCB")
	assert.Greater(t, vscb, 0.0)
	assert.Less(t, vscb, 1e-5)
	assert.InDelta(t, below, above, 2.01e-3*cox)
}

func TestMoscapUndefinedDecider(t *testing.T) {
	m := NewMoscap()
	require.NoError(t, m.SetFloat("X_ox", 5e-6))

	err := m.SetFloat("N_ab", -1)
	assert.ErrorIs(t, err, ErrUndefined)
}
