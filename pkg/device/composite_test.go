package device

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-semi/internal/consts"
	"github.com/edp1096/toy-semi/pkg/expr"
)

func TestDiodeBuiltIn(t *testing.T) {
	d := NewDiode()
	assert.Equal(t, []string{"Na", "Nd"}, expr.Symbols(mustGet(t, d, "V_bi")))

	require.NoError(t, d.Dope(1e17, 1e15))
	want := consts.KT_Q * math.Log(1e17*1e15/(consts.NI*consts.NI))
	assert.InDelta(t, want, mustFloat(t, d, "V_bi"), 1e-12)

	assert.True(t, d.P.IsPType())
	assert.True(t, d.N.IsNType())

	// The lightly doped side carries nearly all of the depletion width.
	wn, wp := mustFloat(t, d, "W_n"), mustFloat(t, d, "W_p")
	assert.InEpsilon(t, mustFloat(t, d, "W"), wn+wp, 1e-9)
	assert.InEpsilon(t, 100.0, wn/wp, 1e-9)
	assert.InEpsilon(t, mustFloat(t, d, "V_bi"), mustFloat(t, d, "V_bi_n")+mustFloat(t, d, "V_bi_p"), 1e-9)
}

func TestDiodeFieldProfile(t *testing.T) {
	d := NewDiode()
	require.NoError(t, d.Dope(1e17, 1e15))
	emax := mustFloat(t, d, "E_max")
	wp, wn := mustFloat(t, d, "W_p"), mustFloat(t, d, "W_n")
	require.Less(t, emax, 0.0)

	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"junction", 0, emax},
		{"halfway into p", -wp / 2, emax / 2},
		{"halfway into n", wn / 2, emax / 2},
		{"p edge", -wp, 0},
		{"beyond p edge", -2 * wp, 0},
		{"beyond n edge", 2 * wn, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, d.SetFloat("x", tt.x))
			assert.InDelta(t, tt.want, mustFloat(t, d, "E_x"), 1e-9*math.Abs(emax))
		})
	}
}

func TestDiodeCurrent(t *testing.T) {
	d := NewDiode()
	require.NoError(t, d.Dope(1e17, 1e15))
	require.NoError(t, d.SetArea(1e-4))

	assert.Equal(t, 0.0, mustFloat(t, d, "I_D"))

	require.NoError(t, d.Bias(0.6))
	forward := mustFloat(t, d, "I_D")
	assert.Greater(t, forward, 0.0)

	require.NoError(t, d.Bias(-1))
	reverse := mustFloat(t, d, "I_D")
	assert.Less(t, reverse, 0.0)
	assert.Less(t, -reverse, forward)

	is, ok := d.SaturationCurrent()
	require.True(t, ok)
	assert.Greater(t, is, 0.0)
}

func TestDiodeCapacitance(t *testing.T) {
	d := NewDiode()
	require.NoError(t, d.Dope(1e17, 1e15))

	require.NoError(t, d.Bias(-5))
	reverse := mustFloat(t, d, "C_dep")
	require.NoError(t, d.Bias(0))
	zero := mustFloat(t, d, "C_dep")
	assert.Less(t, reverse, zero)

	// Breakdown is set by the lighter side.
	assert.InEpsilon(t, 60*math.Pow(10, 0.75), mustFloat(t, d, "V_B"), 1e-9)
}

func TestInverter(t *testing.T) {
	m := pinnedMosfet(t, 1e-3, 0.5, 0)
	inv := NewInverter(m)
	require.NoError(t, inv.SetFloat("R_L", 1e3))
	require.NoError(t, inv.SetFloat("V_DD", 5))

	// Cutoff passes V_DD through.
	require.NoError(t, inv.SetFloat("V_in", 0.2))
	assert.Equal(t, 5.0, mustFloat(t, inv, "V_out"))
	assert.Equal(t, 0.0, mustFloat(t, inv, "I_D"))

	// Saturation: V_out = V_DD - R_L Kn Vov^2.
	require.NoError(t, inv.SetFloat("V_in", 1))
	assert.InDelta(t, 4.75, mustFloat(t, inv, "V_out"), 1e-12)
	assert.InDelta(t, 2.5e-4, mustFloat(t, inv, "I_D"), 1e-15)

	// Triode: resistor and channel currents agree.
	require.NoError(t, inv.SetFloat("V_in", 5))
	vout := mustFloat(t, inv, "V_out")
	assert.Less(t, vout, 4.5)
	channel := 2e-3 * (4.5*vout - vout*vout/2)
	assert.InDelta(t, channel, mustFloat(t, inv, "I_D"), 1e-12)
}

func TestInverterTransferIsMonotone(t *testing.T) {
	m := pinnedMosfet(t, 1e-3, 0.5, 0.01)
	inv := NewInverter(m)
	require.NoError(t, inv.SetFloat("R_L", 2e3))
	require.NoError(t, inv.SetFloat("V_DD", 3))

	prev := math.Inf(1)
	for vin := 0.0; vin <= 3; vin += 0.1 {
		require.NoError(t, inv.SetFloat("V_in", vin))
		vout := mustFloat(t, inv, "V_out")
		assert.LessOrEqual(t, vout, prev+1e-12, "V_in=%g", vin)
		assert.GreaterOrEqual(t, vout, 0.0)
		prev = vout
	}
}

func TestAmplifier(t *testing.T) {
	m := NewMosfet()
	require.NoError(t, m.SetAndLock("g_m", expr.Float(2e-3)))
	require.NoError(t, m.SetAndLock("r_ds_sat", expr.Float(math.Inf(1))))

	a := NewAmplifier(m)
	for name, v := range map[string]float64{
		"R_1": 1e6, "R_2": 1e6, "R_D": 1e4, "R_L": 1e4, "R_sig": 0, "V_DD": 10,
	} {
		require.NoError(t, a.SetFloat(name, v), name)
	}

	assert.InDelta(t, 5.0, mustFloat(t, a, "V_GG"), 1e-12)
	assert.InEpsilon(t, 5e5, mustFloat(t, a, "R_in"), 1e-12)
	assert.InEpsilon(t, -2e-3*5e3, mustFloat(t, a, "A_v"), 1e-12)
	assert.InEpsilon(t, -10*5e5/1e4, mustFloat(t, a, "A_i"), 1e-12)
	assert.InEpsilon(t, 1e4, mustFloat(t, a, "R_out"), 1e-12)
}
