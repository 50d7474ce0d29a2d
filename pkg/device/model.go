package device

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edp1096/toy-semi/pkg/expr"
)

// Model is the reactive quantity surface every device model shares.
type Model interface {
	Set(name string, v expr.Expr) error
	SetFloat(name string, v float64) error
	SetAndLock(name string, v expr.Expr) error
	Lock(name string) error
	Unlock(name string)
	Locked(name string) bool
	Get(name string) (expr.Expr, error)
	Float(name string) (float64, bool)
	Names() []string
	Snapshot() map[string]expr.Expr
	Recalculate() error
}

var constructors = map[string]func() Model{
	"silicon":   func() Model { return NewSilicon() },
	"moscap":    func() Model { return NewMoscap() },
	"mosfet":    func() Model { return NewMosfet() },
	"diode":     func() Model { return NewDiode() },
	"inverter":  func() Model { return NewInverter(nil) },
	"amplifier": func() Model { return NewAmplifier(nil) },
}

// New builds a model by kind name.
func New(kind string) (Model, error) {
	ctor, ok := constructors[strings.ToLower(kind)]
	if !ok {
		return nil, fmt.Errorf("unknown device kind %q (want one of %s)", kind, strings.Join(Kinds(), ", "))
	}
	return ctor(), nil
}

func Kinds() []string {
	kinds := make([]string, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// State describes the classification of a model, for printing.
func State(m Model) string {
	switch d := m.(type) {
	case *Mosfet:
		return fmt.Sprintf("region=%s regime=%s", d.Region(), d.Regime())
	case *Moscap:
		return fmt.Sprintf("regime=%s", d.Regime())
	case *Silicon:
		kind := "intrinsic"
		switch {
		case d.IsPType():
			kind = "p-type"
		case d.IsNType():
			kind = "n-type"
		}
		if d.IsDegenerate() {
			kind += " degenerate"
		}
		return kind
	}
	return ""
}
