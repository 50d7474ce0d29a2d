package device

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-semi/internal/consts"
	"github.com/edp1096/toy-semi/pkg/expr"
	"github.com/edp1096/toy-semi/pkg/formula"
)

// mustFloat reads a concrete quantity from a model.
func mustFloat(t *testing.T, m Model, name string) float64 {
	t.Helper()
	v, ok := m.Float(name)
	require.True(t, ok, "%s is not concrete: %s", name, mustGet(t, m, name))
	return v
}

func mustGet(t *testing.T, m Model, name string) expr.Expr {
	t.Helper()
	e, err := m.Get(name)
	require.NoError(t, err)
	return e
}

func doped(t *testing.T, na, nd float64) *Silicon {
	t.Helper()
	s := NewSilicon()
	require.NoError(t, s.Dope(na, nd))
	return s
}

func TestSiliconSymbolicUntilDoped(t *testing.T) {
	s := NewSilicon()
	assert.Equal(t, "n", mustGet(t, s, "n").String())
	assert.Equal(t, "mu_p", mustGet(t, s, "mu_p").String())

	require.NoError(t, s.SetFloat("Na", 1e16))
	assert.Equal(t, "n", mustGet(t, s, "n").String(), "Nd is still symbolic")

	require.NoError(t, s.SetFloat("Nd", 0))
	assert.True(t, s.IsPType())
	assert.InDelta(t, 1e16, mustFloat(t, s, "p"), 0)
}

func TestSiliconCompensated(t *testing.T) {
	s := doped(t, 1e17, 3e16)

	assert.True(t, s.IsPType())
	assert.False(t, s.IsNType())
	assert.False(t, s.IsDegenerate())

	p := mustFloat(t, s, "p")
	assert.InEpsilon(t, 7e16, p, 1e-9)
	assert.InEpsilon(t, consts.NI*consts.NI/p, mustFloat(t, s, "n"), 1e-12)

	muN, _ := expr.Value(formula.MuNMin(expr.Float(1e17)))
	muP, _ := expr.Value(formula.MuPMaj(expr.Float(1e17)))
	assert.InEpsilon(t, muN, mustFloat(t, s, "mu_n"), 1e-12)
	assert.InEpsilon(t, muP, mustFloat(t, s, "mu_p"), 1e-12)
}

func TestSiliconOutsideCompensationBand(t *testing.T) {
	s := doped(t, 1e17, 1e16)
	assert.Equal(t, 1e17, mustFloat(t, s, "p"))

	require.NoError(t, s.SetFloat("compensation_threshold", 20))
	assert.InEpsilon(t, 9e16, mustFloat(t, s, "p"), 1e-9)
}

func TestSiliconMassAction(t *testing.T) {
	tests := []struct {
		name   string
		na, nd float64
	}{
		{"p-type", 1e16, 0},
		{"n-type", 0, 5e15},
		{"compensated n", 2e16, 5e16},
		{"compensated p", 5e16, 2e16},
		{"intrinsic", 1e15, 1e15},
		{"undoped", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := doped(t, tt.na, tt.nd)
			n, p := mustFloat(t, s, "n"), mustFloat(t, s, "p")
			assert.InEpsilon(t, consts.NI*consts.NI, n*p, 1e-9)
		})
	}
}

func TestSiliconIntrinsic(t *testing.T) {
	s := doped(t, 1e15, 1e15)

	assert.False(t, s.IsPType())
	assert.False(t, s.IsNType())
	assert.Equal(t, consts.NI, mustFloat(t, s, "n"))
	assert.Equal(t, consts.NI, mustFloat(t, s, "p"))
	for _, name := range []string{"tau_rec_n", "tau_rec_p", "tau_gen_n", "L_diff_n", "L_diff_p"} {
		assert.True(t, expr.IsUndefined(mustGet(t, s, name)), name)
	}
}

func TestSiliconMinorityQuantities(t *testing.T) {
	p := doped(t, 1e16, 0)
	assert.Greater(t, mustFloat(t, p, "tau_rec_n"), 0.0)
	assert.Greater(t, mustFloat(t, p, "L_diff_n"), 0.0)
	assert.True(t, expr.IsUndefined(mustGet(t, p, "tau_rec_p")))
	assert.True(t, expr.IsUndefined(mustGet(t, p, "L_diff_p")))
	assert.Greater(t, mustFloat(t, p, "L_Debye_p"), 0.0)
	assert.True(t, expr.IsUndefined(mustGet(t, p, "L_Debye_n")))

	n := doped(t, 0, 1e16)
	assert.Greater(t, mustFloat(t, n, "tau_gen_p"), mustFloat(t, n, "tau_rec_p"))
	assert.True(t, expr.IsUndefined(mustGet(t, n, "tau_rec_n")))
	assert.Greater(t, mustFloat(t, n, "L_Debye_n"), 0.0)
}

func TestSiliconDegenerate(t *testing.T) {
	assert.True(t, doped(t, 0, 1e20).IsDegenerate())
	assert.True(t, doped(t, 5e19, 0).IsDegenerate())
	assert.False(t, doped(t, 0, 1e18).IsDegenerate())
}

func TestSiliconTransport(t *testing.T) {
	s := doped(t, 0, 1e16)
	require.NoError(t, s.SetFloat("length", 2))
	require.NoError(t, s.SetFloat("area", 0.5))
	require.NoError(t, s.SetFloat("e_field", 100))

	muN, n := mustFloat(t, s, "mu_n"), mustFloat(t, s, "n")
	muP, p := mustFloat(t, s, "mu_p"), mustFloat(t, s, "p")
	sigma := mustFloat(t, s, "sigma")
	assert.InEpsilon(t, consts.CHARGE*(muN*n+muP*p), sigma, 1e-12)
	assert.InEpsilon(t, 4/sigma, mustFloat(t, s, "R"), 1e-12)
	assert.InEpsilon(t, consts.EPSSI/sigma, mustFloat(t, s, "tau_diel"), 1e-12)

	assert.InEpsilon(t, -muN*100, mustFloat(t, s, "v_drift_n"), 1e-12)
	jn, jp := mustFloat(t, s, "J_drift_n"), mustFloat(t, s, "J_drift_p")
	assert.InEpsilon(t, jn+jp, mustFloat(t, s, "J_drift"), 1e-12)
	assert.InEpsilon(t, sigma*100, jn+jp, 1e-9)
}

func TestSiliconDiffusionCurrent(t *testing.T) {
	s := doped(t, 0, 1e16)
	require.NoError(t, s.SetFloat("e_field", 10))
	require.NoError(t, s.SetFloat("dn_dx", 1e19))
	require.NoError(t, s.SetFloat("dp_dx", -1e15))

	dn, dp := mustFloat(t, s, "D_n"), mustFloat(t, s, "D_p")
	jDiffN, jDiffP := mustFloat(t, s, "J_diff_n"), mustFloat(t, s, "J_diff_p")
	assert.InEpsilon(t, consts.CHARGE*dn*1e19, jDiffN, 1e-12)
	assert.InEpsilon(t, consts.CHARGE*dp*1e15, jDiffP, 1e-12)

	jn, jp := mustFloat(t, s, "J_n"), mustFloat(t, s, "J_p")
	assert.InEpsilon(t, mustFloat(t, s, "J_drift_n")+jDiffN, jn, 1e-12)
	assert.InEpsilon(t, mustFloat(t, s, "J_drift_p")+jDiffP, jp, 1e-12)
	assert.InEpsilon(t, jn+jp, mustFloat(t, s, "J"), 1e-12)
}

func TestSiliconFermiLevel(t *testing.T) {
	tests := []struct {
		name       string
		na, nd     float64
		degenerate bool
	}{
		{"p-type", 1e16, 0, false},
		{"n-type", 0, 1e17, false},
		{"degenerate n-type", 0, 1e20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := doped(t, tt.na, tt.nd)
			n, p := mustFloat(t, s, "n"), mustFloat(t, s, "p")
			ecF, eFv := mustFloat(t, s, "E_c_F"), mustFloat(t, s, "E_F_v")
			assert.InDelta(t, consts.KT_Q*math.Log(consts.NC/n), ecF, 1e-12)
			assert.InDelta(t, consts.KT_Q*math.Log(consts.NV/p), eFv, 1e-12)

			nFD := mustFloat(t, s, "n_FD")
			if tt.degenerate {
				assert.Less(t, ecF, 0.0)
				assert.Less(t, nFD, n)
				assert.Less(t, mustFloat(t, s, "f_c"), mustFloat(t, s, "f_c_B"))
				return
			}

			// Away from the band the two statistics agree.
			assert.InEpsilon(t, mustFloat(t, s, "f_c_B"), mustFloat(t, s, "f_c"), 1e-2)
			scale := formula.EffectiveDensity(consts.MNDOS) / consts.NC
			assert.InEpsilon(t, n*scale, nFD, 1e-2)
		})
	}
}
