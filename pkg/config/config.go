// Package config loads device decks from YAML. A YAML deck carries the same
// content as a netlist deck and decodes into the same netlist.Deck.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/edp1096/toy-semi/pkg/netlist"
)

type File struct {
	Title  string               `yaml:"title"`
	Device string               `yaml:"device" validate:"omitempty,devicekind"`
	Set    []netlist.Assignment `yaml:"set" validate:"dive"`
	Lock   []netlist.Assignment `yaml:"lock" validate:"dive"`
	Bias   string               `yaml:"bias" validate:"omitempty,excluded_unless=Device diode,deckvalue"`
	Area   string               `yaml:"area" validate:"omitempty,excluded_unless=Device diode,deckvalue"`
	Sweep  *netlist.Sweep       `yaml:"sweep"`
	Print  []string             `yaml:"print" validate:"dive,required"`

	Circuit *Circuit `yaml:"circuit"`
}

type Circuit struct {
	Models   []Model   `yaml:"models" validate:"dive"`
	Elements []Element `yaml:"elements" validate:"required,dive"`
	OP       bool      `yaml:"op"`
	DC       *DC       `yaml:"dc"`
}

type Model struct {
	Name   string               `yaml:"name" validate:"required"`
	Type   string               `yaml:"type" validate:"required,oneof=NMOS D"`
	Params []netlist.Assignment `yaml:"params" validate:"dive"`
}

type Element struct {
	Name  string   `yaml:"name" validate:"required"`
	Nodes []string `yaml:"nodes" validate:"min=2,max=4,dive,required"`
	Value string   `yaml:"value" validate:"omitempty,deckvalue"`
	Model string   `yaml:"model"`
}

type DC struct {
	Source string  `yaml:"source" validate:"required"`
	Start  float64 `yaml:"start"`
	Stop   float64 `yaml:"stop"`
	Step   float64 `yaml:"step" validate:"ne=0"`
}

var validate *validator.Validate

var customValidations = map[string]validator.Func{
	"deckvalue": func(fl validator.FieldLevel) bool {
		_, err := netlist.Value(fl.Field().String())
		return err == nil
	},
	"devicekind": func(fl validator.FieldLevel) bool {
		return netlist.KnownDevice(fl.Field().String())
	},
}

func init() {
	validate = validator.New()
	for tag, fn := range customValidations {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("config: registering %q validation: %v", tag, err))
		}
	}
}

// LoadDeck reads a deck, choosing the format by extension.
func LoadDeck(path string) (*netlist.Deck, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	}
	return netlist.ParseFile(path)
}

func LoadYAML(path string) (*netlist.Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deck: %w", err)
	}
	deck, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return deck, nil
}

// Decode parses a YAML deck strictly: unknown keys are errors.
func Decode(data []byte) (*netlist.Deck, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing deck: %w", err)
	}
	f.Device = strings.ToLower(f.Device)
	if f.Circuit != nil {
		for i := range f.Circuit.Models {
			f.Circuit.Models[i].Type = strings.ToUpper(f.Circuit.Models[i].Type)
		}
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid deck: %w", err)
	}

	deck, err := f.Deck()
	if err != nil {
		return nil, err
	}
	logrus.Debugf("decoded yaml deck %q: device=%q elements=%d", deck.Title, deck.Device, len(deck.Elements))
	return deck, nil
}

// Deck converts the file into a netlist deck and runs the deck checks.
func (f *File) Deck() (*netlist.Deck, error) {
	if err := checkValues(f.Set, f.Lock); err != nil {
		return nil, err
	}
	deck := netlist.NewDeck()
	deck.Title = f.Title
	deck.Device = f.Device
	deck.Sets = append(deck.Sets, f.Set...)
	deck.Locks = append(deck.Locks, f.Lock...)
	if f.Bias != "" {
		deck.Sets = append(deck.Sets, netlist.Assignment{Name: "V_pn", Value: f.Bias})
	}
	if f.Area != "" {
		deck.Sets = append(deck.Sets, netlist.Assignment{Name: "area", Value: f.Area})
	}
	deck.Sweep = f.Sweep
	deck.Prints = f.Print

	if c := f.Circuit; c != nil {
		for _, m := range c.Models {
			if err := checkValues(m.Params); err != nil {
				return nil, fmt.Errorf("model %s: %w", m.Name, err)
			}
			deck.Models[m.Name] = netlist.Model{Name: m.Name, Type: m.Type, Params: m.Params}
		}
		for _, e := range c.Elements {
			elem, err := element(e)
			if err != nil {
				return nil, err
			}
			deck.Elements = append(deck.Elements, elem)
			for _, node := range elem.Nodes {
				if _, exists := deck.Nodes[node]; !exists {
					deck.Nodes[node] = len(deck.Nodes)
				}
			}
		}
		if c.OP {
			deck.Analysis = netlist.AnalysisOP
		}
		if c.DC != nil {
			deck.Analysis = netlist.AnalysisDC
			deck.DCParam.Source = c.DC.Source
			deck.DCParam.Start = c.DC.Start
			deck.DCParam.Stop = c.DC.Stop
			deck.DCParam.Increment = c.DC.Step
		}
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

func checkValues(groups ...[]netlist.Assignment) error {
	for _, pairs := range groups {
		for _, a := range pairs {
			if _, err := netlist.Value(a.Value); err != nil {
				return fmt.Errorf("%s: %w", a.Name, err)
			}
		}
	}
	return nil
}

func element(e Element) (netlist.Element, error) {
	elem := netlist.Element{
		Name:   e.Name,
		Type:   strings.ToUpper(e.Name[:1]),
		Nodes:  e.Nodes,
		Params: make(map[string]string),
	}

	want := 2
	switch elem.Type {
	case "M":
		want = 4
	case "R", "V", "I", "D":
	default:
		return elem, fmt.Errorf("unsupported element %s", e.Name)
	}
	if len(e.Nodes) != want {
		return elem, fmt.Errorf("element %s: want %d nodes, got %d", e.Name, want, len(e.Nodes))
	}

	switch elem.Type {
	case "R", "V", "I":
		if e.Value == "" {
			return elem, fmt.Errorf("element %s needs a value", e.Name)
		}
		v, err := netlist.ParseValue(e.Value)
		if err != nil {
			return elem, fmt.Errorf("element %s: %w", e.Name, err)
		}
		elem.Value = v
		if elem.Type != "R" {
			elem.Params["type"] = "dc"
		}
	default:
		if e.Model != "" {
			elem.Params["model"] = e.Model
		}
	}
	return elem, nil
}
