package netlist

import (
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-semi/pkg/device"
	"github.com/edp1096/toy-semi/pkg/expr"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// modelKinds maps .model types to device kinds.
var modelKinds = map[string]string{
	"NMOS": "mosfet",
	"D":    "diode",
}

// Value parses a deck value. Identifiers become symbols.
func Value(raw string) (expr.Expr, error) {
	v, err := ParseValue(raw)
	if err == nil {
		return expr.Float(v), nil
	}
	if identPattern.MatchString(raw) {
		return expr.Symbol(raw), nil
	}
	return nil, err
}

// Apply writes sets in order, then pins locks.
func Apply(dev device.Model, sets, locks []Assignment) error {
	for _, a := range sets {
		v, err := Value(a.Value)
		if err != nil {
			return fmt.Errorf("set %s: %w", a.Name, err)
		}
		if err := dev.Set(a.Name, v); err != nil {
			return err
		}
	}
	for _, a := range locks {
		v, err := Value(a.Value)
		if err != nil {
			return fmt.Errorf("lock %s: %w", a.Name, err)
		}
		if err := dev.SetAndLock(a.Name, v); err != nil {
			return err
		}
	}
	return nil
}

// Build constructs the deck's standalone device.
func (d *Deck) Build() (device.Model, error) {
	if d.Device == "" {
		return nil, fmt.Errorf("deck %q has no .device: %w", d.Title, ErrDirective)
	}
	dev, err := device.New(d.Device)
	if err != nil {
		return nil, err
	}
	if err := Apply(dev, d.Sets, d.Locks); err != nil {
		return nil, fmt.Errorf("deck %q: %w", d.Title, err)
	}
	logrus.Debugf("built %s with %d sets and %d locks", d.Device, len(d.Sets), len(d.Locks))
	return dev, nil
}

// Build constructs a fresh device for one element using the card.
func (m Model) Build() (device.Model, error) {
	kind, ok := modelKinds[m.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported model type: %s", m.Type)
	}
	dev, err := device.New(kind)
	if err != nil {
		return nil, err
	}
	if err := Apply(dev, nil, m.Params); err != nil {
		return nil, fmt.Errorf("model %s: %w", m.Name, err)
	}
	return dev, nil
}

// KnownDevice reports whether kind names a device a deck can build.
func KnownDevice(kind string) bool {
	_, err := device.New(kind)
	return err == nil
}
