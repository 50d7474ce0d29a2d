// Package expr is a small symbolic algebra kernel. Every physical quantity in
// the device models is an Expr: a concrete number, a named unknown, a tree
// built from those, or Undefined when the quantity does not apply.
package expr

import (
	"math"
)

type Expr interface {
	String() string
	isExpr()
}

// Num is a concrete value.
type Num float64

// Sym is a named unknown.
type Sym string

type undefined struct{}

type sum struct{ terms []Expr }

type product struct{ factors []Expr }

type power struct{ base, exp Expr }

type call struct {
	fn  string
	arg Expr
}

// Undefined marks a quantity that has no meaning in the current state, for
// example a minority lifetime of the majority carrier. It absorbs arithmetic.
var Undefined Expr = undefined{}

func (Num) isExpr()       {}
func (Sym) isExpr()       {}
func (undefined) isExpr() {}
func (sum) isExpr()       {}
func (product) isExpr()   {}
func (power) isExpr()     {}
func (call) isExpr()      {}

func Float(v float64) Expr { return Num(v) }

func Symbol(name string) Expr { return Sym(name) }

// Value reports whether e is concrete and returns its number.
func Value(e Expr) (float64, bool) {
	if n, ok := e.(Num); ok {
		return float64(n), true
	}
	return 0, false
}

func IsConcrete(e Expr) bool {
	_, ok := e.(Num)
	return ok
}

func IsUndefined(e Expr) bool {
	_, ok := e.(undefined)
	return ok || e == nil
}

func anyUndefined(es []Expr) bool {
	for _, e := range es {
		if IsUndefined(e) {
			return true
		}
	}
	return false
}

func Add(terms ...Expr) Expr {
	if anyUndefined(terms) {
		return Undefined
	}

	c := 0.0
	out := make([]Expr, 0, len(terms))
	for _, t := range flattenSum(terms) {
		if n, ok := t.(Num); ok {
			c += float64(n)
			continue
		}
		out = append(out, t)
	}

	if len(out) == 0 {
		return Num(c)
	}
	if c != 0 {
		out = append(out, Num(c))
	}
	if len(out) == 1 {
		return out[0]
	}
	return sum{terms: out}
}

func flattenSum(terms []Expr) []Expr {
	out := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if s, ok := t.(sum); ok {
			out = append(out, s.terms...)
			continue
		}
		out = append(out, t)
	}
	return out
}

func Mul(factors ...Expr) Expr {
	if anyUndefined(factors) {
		return Undefined
	}

	c := 1.0
	out := make([]Expr, 0, len(factors))
	for _, f := range flattenProduct(factors) {
		if n, ok := f.(Num); ok {
			c *= float64(n)
			continue
		}
		out = append(out, f)
	}

	if len(out) == 0 {
		return Num(c)
	}
	if c == 0 {
		return Num(0)
	}
	if c != 1 {
		out = append([]Expr{Num(c)}, out...)
	}
	if len(out) == 1 {
		return out[0]
	}
	return product{factors: out}
}

func flattenProduct(factors []Expr) []Expr {
	out := make([]Expr, 0, len(factors))
	for _, f := range factors {
		if p, ok := f.(product); ok {
			out = append(out, p.factors...)
			continue
		}
		out = append(out, f)
	}
	return out
}

func Neg(e Expr) Expr { return Mul(Num(-1), e) }

func Sub(a, b Expr) Expr { return Add(a, Neg(b)) }

func Div(a, b Expr) Expr { return Mul(a, Pow(b, Num(-1))) }

func Pow(base, exp Expr) Expr {
	if IsUndefined(base) || IsUndefined(exp) {
		return Undefined
	}

	b, bok := Value(base)
	x, xok := Value(exp)
	switch {
	case bok && xok:
		return Num(math.Pow(b, x))
	case xok && x == 0:
		return Num(1)
	case xok && x == 1:
		return base
	case bok && b == 1:
		return Num(1)
	}

	// (a^m)^k with integer k is safe to merge.
	if p, ok := base.(power); ok && xok && x == math.Trunc(x) {
		if m, ok := Value(p.exp); ok {
			return Pow(p.base, Num(m*x))
		}
	}
	return power{base: base, exp: exp}
}

func Sqrt(e Expr) Expr { return Pow(e, Num(0.5)) }

func Ln(e Expr) Expr {
	if IsUndefined(e) {
		return Undefined
	}
	if v, ok := Value(e); ok {
		return Num(math.Log(v))
	}
	if c, ok := e.(call); ok && c.fn == "exp" {
		return c.arg
	}
	return call{fn: "ln", arg: e}
}

func Exp(e Expr) Expr {
	if IsUndefined(e) {
		return Undefined
	}
	if v, ok := Value(e); ok {
		return Num(math.Exp(v))
	}
	return call{fn: "exp", arg: e}
}

// Equal compares two expressions structurally through their canonical form.
func Equal(a, b Expr) bool {
	if IsUndefined(a) || IsUndefined(b) {
		return IsUndefined(a) && IsUndefined(b)
	}
	av, aok := Value(a)
	bv, bok := Value(b)
	if aok && bok {
		return av == bv || (math.IsNaN(av) && math.IsNaN(bv))
	}
	return a.String() == b.String()
}
