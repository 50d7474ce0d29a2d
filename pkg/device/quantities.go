package device

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-semi/pkg/expr"
)

var (
	ErrUnknownQuantity = errors.New("unknown quantity")
	ErrInvalidValue    = errors.New("invalid value")
	ErrUndefined       = errors.New("regime decider is undefined")
)

// Quantities is the reactive attribute channel of a device model. Every
// layer registers pointers to its own fields here; a write through Set stores
// the value, applies the aliasing rules and then runs the outermost layer's
// recalculation once.
type Quantities struct {
	fields  map[string]*expr.Expr
	locked  map[string]bool
	aliases map[string]func(v expr.Expr)

	live         bool // false while constructing or recalculating
	guardLast    bool // drop recalculated writes to the quantity the caller just set
	lastModified string
	recalc       func() error
}

func newQuantities() *Quantities {
	return &Quantities{
		fields:  make(map[string]*expr.Expr),
		locked:  make(map[string]bool),
		aliases: make(map[string]func(v expr.Expr)),
	}
}

// register installs fields as named placeholders.
func (q *Quantities) register(fields map[string]*expr.Expr) {
	for name, field := range fields {
		q.fields[name] = field
		*field = expr.Symbol(name)
	}
}

func (q *Quantities) defaults(values map[string]float64) {
	for name, v := range values {
		*q.fields[name] = expr.Float(v)
	}
}

func (q *Quantities) alias(name string, fn func(v expr.Expr)) {
	q.aliases[name] = fn
}

// start switches the model live and runs the first full recalculation.
func (q *Quantities) start(recalc func() error) {
	q.recalc = recalc
	q.live = true
	if err := q.run(""); err != nil {
		logrus.Warnf("initial recalculation: %v", err)
	}
}

func (q *Quantities) run(name string) error {
	if q.recalc == nil {
		return nil
	}

	q.live = false
	defer func() { q.live = true }()

	q.lastModified = name
	return q.recalc()
}

// put is the write path used by recalculation and aliasing.
func (q *Quantities) put(name string, v expr.Expr) {
	if q.locked[name] {
		return
	}
	if q.guardLast && !q.live && name == q.lastModified {
		return
	}
	if v == nil {
		v = expr.Undefined
	}
	*q.fields[name] = v
}

type assignment struct {
	name string
	v    expr.Expr
}

func (q *Quantities) check(name string, v expr.Expr) error {
	if _, ok := q.fields[name]; !ok {
		return ErrUnknownQuantity
	}
	if v == nil {
		return ErrInvalidValue
	}
	if x, ok := expr.Value(v); ok && math.IsNaN(x) {
		return ErrInvalidValue
	}
	return nil
}

// setAll validates every write, stores them, optionally locks them, and then
// recalculates once. Locked names keep their values; if every name is locked
// nothing is recalculated.
func (q *Quantities) setAll(lock bool, writes ...assignment) error {
	for _, w := range writes {
		if err := q.check(w.name, w.v); err != nil {
			return fmt.Errorf("set %s: %w", w.name, err)
		}
	}

	stored := false
	for _, w := range writes {
		if q.locked[w.name] {
			logrus.Tracef("set %s: locked", w.name)
			continue
		}
		logrus.Tracef("set %s = %s", w.name, w.v)
		*q.fields[w.name] = w.v
		if lock {
			q.locked[w.name] = true
		}
		if fn, ok := q.aliases[w.name]; ok {
			fn(w.v)
		}
		stored = true
	}
	if !stored {
		return nil
	}

	last := writes[len(writes)-1].name
	q.lastModified = last
	if !q.live {
		return nil
	}
	if err := q.run(last); err != nil {
		return fmt.Errorf("set %s: %w", last, err)
	}
	return nil
}

// Set writes a quantity and recalculates everything that depends on it.
// Writes to a locked quantity are dropped without error.
func (q *Quantities) Set(name string, v expr.Expr) error {
	return q.setAll(false, assignment{name, v})
}

func (q *Quantities) SetFloat(name string, v float64) error {
	return q.Set(name, expr.Float(v))
}

func (q *Quantities) Lock(name string) error {
	if _, ok := q.fields[name]; !ok {
		return fmt.Errorf("lock %s: %w", name, ErrUnknownQuantity)
	}
	q.locked[name] = true
	return nil
}

func (q *Quantities) Unlock(name string) {
	delete(q.locked, name)
}

// SetAndLock pins a quantity to v, replacing any earlier pinned value. The
// lock is in place before recalculation runs.
func (q *Quantities) SetAndLock(name string, v expr.Expr) error {
	if err := q.check(name, v); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	q.Unlock(name)
	return q.setAll(true, assignment{name, v})
}

func (q *Quantities) Locked(name string) bool { return q.locked[name] }

func (q *Quantities) Get(name string) (expr.Expr, error) {
	field, ok := q.fields[name]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", name, ErrUnknownQuantity)
	}
	return *field, nil
}

// Float returns the quantity's number when it is concrete.
func (q *Quantities) Float(name string) (float64, bool) {
	field, ok := q.fields[name]
	if !ok {
		return 0, false
	}
	return expr.Value(*field)
}

// Recalculate reruns the full recalculation without changing any input.
func (q *Quantities) Recalculate() error {
	if !q.live {
		return nil
	}
	return q.run("")
}

func (q *Quantities) Names() []string {
	names := make([]string, 0, len(q.fields))
	for name := range q.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot copies every quantity, for comparisons and printing.
func (q *Quantities) Snapshot() map[string]expr.Expr {
	out := make(map[string]expr.Expr, len(q.fields))
	for name, field := range q.fields {
		out[name] = *field
	}
	return out
}
