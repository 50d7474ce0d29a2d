package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-semi/pkg/device"
	"github.com/edp1096/toy-semi/pkg/expr"
	"github.com/edp1096/toy-semi/pkg/netlist"
)

// recorder is a DeviceMatrix that keeps every stamp.
type recorder struct {
	a   map[[2]int]float64
	rhs map[int]float64
}

func newRecorder() *recorder {
	return &recorder{a: make(map[[2]int]float64), rhs: make(map[int]float64)}
}

func (r *recorder) AddElement(i, j int, value float64) { r.a[[2]int{i, j}] += value }
func (r *recorder) AddRHS(i int, value float64)        { r.rhs[i] += value }

func parse(t *testing.T, src string) *netlist.Deck {
	t.Helper()
	deck, err := netlist.Parse(src)
	require.NoError(t, err)
	return deck
}

func TestNodeAndBranchMaps(t *testing.T) {
	ckt, err := FromDeck(parse(t, `divider
V1 in 0 10
R1 in out 1k
R2 out gnd 3k
`))
	require.NoError(t, err)
	defer ckt.Destroy()

	assert.Equal(t, map[string]int{"in": 1, "out": 2}, ckt.GetNodeMap())
	assert.Equal(t, map[string]int{"V1": 3}, ckt.GetBranchMap())
	assert.Equal(t, 2, ckt.GetNumNodes())
	assert.Equal(t, 3, ckt.GetMatrix().Size)

	el, ok := ckt.Element("r2")
	require.True(t, ok)
	assert.Equal(t, []int{2, 0}, el.GetNodes())

	v, ok := ckt.NodeVoltage("gnd")
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
	_, ok = ckt.NodeVoltage("nowhere")
	assert.False(t, ok)
}

func TestResistorStamp(t *testing.T) {
	r := NewResistor("R1", []string{"a", "b"}, 2)
	r.SetNodes([]int{1, 2})

	rec := newRecorder()
	require.NoError(t, r.Stamp(rec, &Status{}))
	assert.Equal(t, 0.5, rec.a[[2]int{1, 1}])
	assert.Equal(t, -0.5, rec.a[[2]int{1, 2}])
	assert.Equal(t, -0.5, rec.a[[2]int{2, 1}])
	assert.Equal(t, 0.5, rec.a[[2]int{2, 2}])

	bad := NewResistor("R2", []string{"a", "b"}, 0)
	bad.SetNodes([]int{1, 2})
	assert.Error(t, bad.Stamp(rec, &Status{}))
}

func TestTransistorStampLinearizes(t *testing.T) {
	m := device.NewMosfet()
	require.NoError(t, m.SetAndLock("K_n", expr.Float(1e-3)))
	require.NoError(t, m.SetAndLock("V_TN", expr.Float(0.5)))

	tr := NewTransistor("M1", []string{"d", "g", "0", "0"}, m)
	tr.SetNodes([]int{1, 2, 0, 0})
	require.NoError(t, tr.UpdateVoltages([]float64{0, 3, 2}))

	rec := newRecorder()
	require.NoError(t, tr.Stamp(rec, &Status{}))

	assert.Equal(t, device.Saturation, m.Region())
	assert.InDelta(t, 2.25e-3, tr.Current(), 1e-15)

	// The companion reproduces the drain current at the linearization point.
	vd, vg := 3.0, 2.0
	leaving := rec.a[[2]int{1, 1}]*vd + rec.a[[2]int{1, 2}]*vg - rec.rhs[1]
	assert.InDelta(t, 2.25e-3, leaving, 1e-15)

	vgs, vds, vbs := tr.Bias()
	assert.Equal(t, [3]float64{2, 3, 0}, [3]float64{vgs, vds, vbs})
}

func TestTransistorBodyEffect(t *testing.T) {
	m := device.NewMosfet()
	for name, v := range map[string]float64{
		"N_ab": 1e16, "X_ox": 5e-6, "mu_n_ch": 500, "W_ch": 1e-3, "L_ch": 1e-4,
	} {
		require.NoError(t, m.SetFloat(name, v), name)
	}

	tr := NewTransistor("M1", []string{"d", "g", "s", "b"}, m)
	tr.SetNodes([]int{1, 2, 3, 4})
	require.NoError(t, tr.UpdateVoltages([]float64{0, 3, 2, 0, -1}))

	rec := newRecorder()
	require.NoError(t, tr.Stamp(rec, &Status{}))
	gmbs := rec.a[[2]int{1, 4}]
	assert.Greater(t, gmbs, 0.0)
	assert.Less(t, gmbs, rec.a[[2]int{1, 2}])

	// A pinned threshold removes the body term.
	require.NoError(t, m.SetAndLock("V_TN", expr.Float(0.5)))
	rec = newRecorder()
	require.NoError(t, tr.Stamp(rec, &Status{}))
	assert.Equal(t, 0.0, rec.a[[2]int{1, 4}])
}

func TestDiodeCompanion(t *testing.T) {
	dev := device.NewDiode()
	require.NoError(t, dev.Dope(1e17, 1e15))
	require.NoError(t, dev.SetArea(1e-4))

	d := NewDiode("D1", []string{"a", "0"}, dev)
	d.SetNodes([]int{1, 0})
	require.NoError(t, d.UpdateVoltages([]float64{0, 0.6}))

	rec := newRecorder()
	require.NoError(t, d.Stamp(rec, &Status{}))

	want, ok := dev.Float("I_D")
	require.True(t, ok)
	assert.InEpsilon(t, want, d.Current(), 1e-9)

	gd := rec.a[[2]int{1, 1}]
	assert.Greater(t, gd, 0.0)
	assert.InEpsilon(t, want, gd*0.6-rec.rhs[1], 1e-9)
}

func TestDiodeSymbolic(t *testing.T) {
	d := NewDiode("D1", []string{"a", "0"}, nil)
	d.SetNodes([]int{1, 0})
	assert.ErrorIs(t, d.Stamp(newRecorder(), &Status{}), ErrSymbolic)
}

func TestCreateElementModelMismatch(t *testing.T) {
	deck := parse(t, `mismatch
V1 a 0 1
D1 a 0 NM
.model NM nmos(K_n=1m V_TN=0.5)
`)
	_, err := FromDeck(deck)
	assert.Error(t, err)
}

func TestBindOverridesModel(t *testing.T) {
	m := device.NewMosfet()
	require.NoError(t, m.SetAndLock("K_n", expr.Float(1e-3)))
	require.NoError(t, m.SetAndLock("V_TN", expr.Float(0.5)))

	ckt := New("bound")
	defer ckt.Destroy()
	ckt.Bind("m1", m)
	require.NoError(t, ckt.Build(parse(t, "t\nV1 d 0 1\nM1 d d 0 0\n").Elements))

	el, ok := ckt.Element("M1")
	require.True(t, ok)
	assert.Same(t, m, el.(*Transistor).Model)
}
