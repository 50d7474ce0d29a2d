package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantFolding(t *testing.T) {
	x := Symbol("x")

	tests := []struct {
		name string
		got  Expr
		want float64
	}{
		{"add", Add(Float(1), Float(2), Float(3)), 6},
		{"mul", Mul(Float(2), Float(4)), 8},
		{"zero factor", Mul(x, Float(0)), 0},
		{"sub self numbers", Sub(Float(5), Float(5)), 0},
		{"pow", Pow(Float(2), Float(10)), 1024},
		{"sqrt", Sqrt(Float(16)), 4},
		{"ln exp", Ln(Exp(Float(2))), 2},
		{"div", Div(Float(1), Float(4)), 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Value(tt.got)
			require.True(t, ok, "expected a concrete result, got %s", tt.got)
			assert.InDelta(t, tt.want, v, 1e-12)
		})
	}
}

func TestSymbolicStaysSymbolic(t *testing.T) {
	x := Symbol("x")

	e := Add(Mul(Float(2), x), Float(-3))
	assert.False(t, IsConcrete(e))
	assert.Equal(t, "2*x - 3", e.String())
	assert.Equal(t, x, Pow(x, Float(1)))
	assert.Equal(t, "x", Ln(Exp(x)).String())
}

func TestString(t *testing.T) {
	a, b, x := Symbol("a"), Symbol("b"), Symbol("x")

	tests := []struct {
		e    Expr
		want string
	}{
		{Sub(x, Float(1)), "x - 1"},
		{Div(a, b), "a/b"},
		{Sqrt(x), "sqrt(x)"},
		{Pow(Add(x, a), Float(2)), "(x + a)^2"},
		{Neg(x), "-x"},
		{Div(Float(1), x), "1/x"},
		{Ln(Div(a, b)), "ln(a/b)"},
		{Mul(a, Add(x, b)), "a*(x + b)"},
		{Undefined, "undefined"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.e.String())
		})
	}
}

func TestDiffQuadratic(t *testing.T) {
	k, x, a := Symbol("K"), Symbol("x"), Symbol("a")

	f := Mul(k, Pow(Sub(x, a), Float(2)))
	d := Diff(f, "x")
	assert.Equal(t, "2*K*(x - a)", d.String())

	v, err := Eval(d, map[string]float64{"K": 2, "x": 3, "a": 1})
	require.NoError(t, err)
	assert.InDelta(t, 8.0, v, 1e-12)
}

func TestDiffRules(t *testing.T) {
	x := Symbol("x")

	tests := []struct {
		name string
		f    Expr
		at   float64
		want float64
	}{
		{"ln", Ln(x), 2, 0.5},
		{"exp", Exp(Mul(Float(3), x)), 0, 3},
		{"sqrt", Sqrt(x), 4, 0.25},
		{"product", Mul(x, x, x), 2, 12},
		{"quotient", Div(Float(1), x), 2, -0.25},
		{"x^x", Pow(x, x), 1, 1},
		{"constant", Mul(Float(7), Symbol("y")), 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Eval(Diff(tt.f, "x"), map[string]float64{"x": tt.at, "y": 1})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, v, 1e-12)
		})
	}
}

func TestSubsMakesConcrete(t *testing.T) {
	vgs, vtn := Symbol("V_GS"), Symbol("V_TN")
	e := Mul(Float(0.5), Pow(Sub(vgs, vtn), Float(2)))

	partial := Subs(e, "V_TN", Float(1))
	assert.False(t, IsConcrete(partial))
	assert.Equal(t, []string{"V_GS"}, Symbols(partial))

	full := Subs(partial, "V_GS", Float(3))
	v, ok := Value(full)
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 1e-12)
}

func TestUndefinedAbsorbs(t *testing.T) {
	x := Symbol("x")

	assert.True(t, IsUndefined(Add(Undefined, Float(1))))
	assert.True(t, IsUndefined(Mul(x, Undefined)))
	assert.True(t, IsUndefined(Sqrt(Undefined)))
	assert.True(t, IsUndefined(Ln(Undefined)))
	assert.True(t, IsUndefined(nil))

	_, ok := Value(Undefined)
	assert.False(t, ok)

	_, err := Eval(Undefined, nil)
	assert.Error(t, err)
}

func TestEvalUnbound(t *testing.T) {
	_, err := Eval(Add(Symbol("a"), Symbol("b")), map[string]float64{"a": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnbound)
	assert.Contains(t, err.Error(), "b")
}

func TestIEEEEdges(t *testing.T) {
	v, ok := Value(Ln(Float(-1)))
	require.True(t, ok)
	assert.True(t, math.IsNaN(v))

	v, ok = Value(Div(Float(1), Float(0)))
	require.True(t, ok)
	assert.True(t, math.IsInf(v, 1))

	assert.True(t, Equal(Float(math.NaN()), Float(math.NaN())))
	assert.True(t, Equal(Sub(Symbol("x"), Float(1)), Add(Symbol("x"), Float(-1))))
}
