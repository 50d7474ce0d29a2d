package expr

import (
	"strconv"
	"strings"
)

func (n Num) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

func (s Sym) String() string { return string(s) }

func (undefined) String() string { return "undefined" }

func (s sum) String() string {
	var b strings.Builder
	for i, t := range s.terms {
		str, neg := unsigned(t)
		switch {
		case i == 0 && neg:
			b.WriteString("-" + str)
		case i == 0:
			b.WriteString(str)
		case neg:
			b.WriteString(" - " + str)
		default:
			b.WriteString(" + " + str)
		}
	}
	return b.String()
}

// unsigned splits a leading minus sign off a term so sums print as a - b.
func unsigned(e Expr) (string, bool) {
	switch t := e.(type) {
	case Num:
		if t < 0 {
			return Num(-t).String(), true
		}
	case product:
		if c, ok := t.factors[0].(Num); ok && c < 0 {
			rest := append([]Expr{Num(-c)}, t.factors[1:]...)
			return Mul(rest...).String(), true
		}
	}
	return e.String(), false
}

func (p product) String() string {
	var num, den []Expr
	sign := ""
	for i, f := range p.factors {
		if c, ok := f.(Num); ok && i == 0 {
			switch {
			case c == -1:
				sign = "-"
				continue
			case c < 0:
				sign = "-"
				f = Num(-c)
			}
		}
		if pw, ok := f.(power); ok {
			if x, ok := Value(pw.exp); ok && x < 0 {
				den = append(den, Pow(pw.base, Num(-x)))
				continue
			}
		}
		num = append(num, f)
	}

	str := "1"
	if len(num) > 0 {
		parts := make([]string, len(num))
		for i, f := range num {
			parts[i] = wrap(f, isSum(f))
		}
		str = strings.Join(parts, "*")
	}

	if len(den) == 1 && isAtom(den[0]) {
		str += "/" + den[0].String()
	} else if len(den) > 0 {
		parts := make([]string, len(den))
		for i, f := range den {
			parts[i] = wrap(f, isSum(f))
		}
		str += "/(" + strings.Join(parts, "*") + ")"
	}
	return sign + str
}

func (p power) String() string {
	if x, ok := Value(p.exp); ok {
		switch {
		case x == 0.5:
			return "sqrt(" + p.base.String() + ")"
		case x < 0:
			inv := Pow(p.base, Num(-x))
			return "1/" + wrap(inv, !isAtom(inv))
		}
	}

	base := wrap(p.base, !isAtom(p.base) || isNegative(p.base))
	exp := wrap(p.exp, !isAtom(p.exp) || isNegative(p.exp))
	return base + "^" + exp
}

func (c call) String() string {
	return c.fn + "(" + c.arg.String() + ")"
}

func wrap(e Expr, paren bool) string {
	if paren {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func isSum(e Expr) bool {
	_, ok := e.(sum)
	return ok
}

func isNegative(e Expr) bool {
	v, ok := Value(e)
	return ok && v < 0
}

func isAtom(e Expr) bool {
	switch t := e.(type) {
	case Num, Sym, call, undefined:
		return true
	case power:
		x, ok := Value(t.exp)
		return ok && x == 0.5
	}
	return false
}
