package expr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnbound = errors.New("unbound symbol")

// Subs replaces every occurrence of the symbol name with v and re-folds.
func Subs(e Expr, name string, v Expr) Expr {
	return SubsAll(e, map[string]Expr{name: v})
}

func SubsAll(e Expr, env map[string]Expr) Expr {
	switch t := e.(type) {
	case Sym:
		if v, ok := env[string(t)]; ok {
			return v
		}
		return t
	case sum:
		terms := make([]Expr, len(t.terms))
		for i, x := range t.terms {
			terms[i] = SubsAll(x, env)
		}
		return Add(terms...)
	case product:
		factors := make([]Expr, len(t.factors))
		for i, x := range t.factors {
			factors[i] = SubsAll(x, env)
		}
		return Mul(factors...)
	case power:
		return Pow(SubsAll(t.base, env), SubsAll(t.exp, env))
	case call:
		return apply(t.fn, SubsAll(t.arg, env))
	default:
		return e
	}
}

func apply(fn string, arg Expr) Expr {
	switch fn {
	case "ln":
		return Ln(arg)
	case "exp":
		return Exp(arg)
	}
	return Undefined
}

// Has reports whether the symbol name occurs in e.
func Has(e Expr, name string) bool {
	switch t := e.(type) {
	case Sym:
		return string(t) == name
	case sum:
		for _, x := range t.terms {
			if Has(x, name) {
				return true
			}
		}
	case product:
		for _, x := range t.factors {
			if Has(x, name) {
				return true
			}
		}
	case power:
		return Has(t.base, name) || Has(t.exp, name)
	case call:
		return Has(t.arg, name)
	}
	return false
}

// Symbols lists the free symbols of e in sorted order.
func Symbols(e Expr) []string {
	seen := make(map[string]bool)
	collect(e, seen)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collect(e Expr, seen map[string]bool) {
	switch t := e.(type) {
	case Sym:
		seen[string(t)] = true
	case sum:
		for _, x := range t.terms {
			collect(x, seen)
		}
	case product:
		for _, x := range t.factors {
			collect(x, seen)
		}
	case power:
		collect(t.base, seen)
		collect(t.exp, seen)
	case call:
		collect(t.arg, seen)
	}
}

// Diff differentiates e with respect to the symbol name.
func Diff(e Expr, name string) Expr {
	switch t := e.(type) {
	case Num:
		return Num(0)
	case Sym:
		if string(t) == name {
			return Num(1)
		}
		return Num(0)
	case sum:
		terms := make([]Expr, len(t.terms))
		for i, x := range t.terms {
			terms[i] = Diff(x, name)
		}
		return Add(terms...)
	case product:
		terms := make([]Expr, 0, len(t.factors))
		for i := range t.factors {
			d := Diff(t.factors[i], name)
			if v, ok := Value(d); ok && v == 0 {
				continue
			}
			factors := make([]Expr, len(t.factors))
			copy(factors, t.factors)
			factors[i] = d
			terms = append(terms, Mul(factors...))
		}
		return Add(terms...)
	case power:
		if !Has(t.exp, name) {
			return Mul(t.exp, Pow(t.base, Sub(t.exp, Num(1))), Diff(t.base, name))
		}
		// d(b^p) = b^p * (p' ln b + p b'/b)
		return Mul(t, Add(
			Mul(Diff(t.exp, name), Ln(t.base)),
			Mul(t.exp, Diff(t.base, name), Pow(t.base, Num(-1))),
		))
	case call:
		inner := Diff(t.arg, name)
		switch t.fn {
		case "ln":
			return Mul(inner, Pow(t.arg, Num(-1)))
		case "exp":
			return Mul(t, inner)
		}
	}
	return Undefined
}

// Eval binds every symbol from env and returns the resulting number.
func Eval(e Expr, env map[string]float64) (float64, error) {
	if IsUndefined(e) {
		return 0, fmt.Errorf("evaluating undefined expression")
	}

	bound := make(map[string]Expr, len(env))
	for k, v := range env {
		bound[k] = Num(v)
	}
	r := SubsAll(e, bound)

	v, ok := Value(r)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnbound, strings.Join(Symbols(r), ", "))
	}
	return v, nil
}
