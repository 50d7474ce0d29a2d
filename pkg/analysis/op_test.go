package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-semi/pkg/circuit"
	"github.com/edp1096/toy-semi/pkg/netlist"
)

func buildDeck(t *testing.T, src string) *circuit.Circuit {
	t.Helper()
	deck, err := netlist.Parse(src)
	require.NoError(t, err)
	ckt, err := circuit.FromDeck(deck)
	require.NoError(t, err)
	t.Cleanup(ckt.Destroy)
	return ckt
}

func runOP(t *testing.T, ckt *circuit.Circuit) map[string][]float64 {
	t.Helper()
	op := NewOP()
	require.NoError(t, op.Setup(ckt))
	require.NoError(t, op.Execute())
	return op.GetResults()
}

func TestOperatingPointDivider(t *testing.T) {
	ckt := buildDeck(t, `divider
V1 in 0 DC 10
R1 in out 1k
R2 out 0 3k
.op
`)
	res := runOP(t, ckt)

	assert.InDelta(t, 7.5, res["V(out)"][0], 1e-9)
	assert.InDelta(t, 10.0, res["V(in)"][0], 1e-9)
	assert.InDelta(t, 2.5e-3, res["I(V1)"][0], 1e-12)
	assert.InDelta(t, 2.5e-3, res["I(R2)"][0], 1e-12)
}

func TestOperatingPointCurrentSource(t *testing.T) {
	ckt := buildDeck(t, `current into a resistor
I1 n 0 2m
R1 n 0 500
`)
	res := runOP(t, ckt)
	assert.InDelta(t, 1.0, res["V(n)"][0], 1e-9)
}

func TestOperatingPointDiode(t *testing.T) {
	ckt := buildDeck(t, `forward diode
V1 in 0 5
R1 in a 1k
D1 a 0 DM
.model DM D(Na=1e17 Nd=1e15 area=1e-4)
.op
`)
	res := runOP(t, ckt)

	va := res["V(a)"][0]
	assert.Greater(t, va, 0.3)
	assert.Less(t, va, 1.0)
	assert.InEpsilon(t, (5-va)/1e3, res["I(D1)"][0], 1e-3)
}

func TestOperatingPointSymbolicModel(t *testing.T) {
	deck, err := netlist.Parse(`undoped
V1 in 0 1
R1 in d 1k
M1 d in 0 0
`)
	require.NoError(t, err)

	_, err = circuit.FromDeck(deck)
	assert.ErrorIs(t, err, circuit.ErrSymbolic)
}
