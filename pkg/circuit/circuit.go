package circuit

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-semi/pkg/device"
	"github.com/edp1096/toy-semi/pkg/matrix"
	"github.com/edp1096/toy-semi/pkg/netlist"
)

type Circuit struct {
	name             string
	nodeMap          map[string]int
	branchMap        map[string]int
	elements         []Element
	numNodes         int
	matrix           *matrix.CircuitMatrix
	Status           *Status
	nonlinearDevices []NonLinear
	Models           map[string]netlist.Model
	bound            map[string]device.Model
}

func New(name string) *Circuit {
	return &Circuit{
		name:      name,
		nodeMap:   make(map[string]int),
		branchMap: make(map[string]int),
		Status:    &Status{Gmin: 1e-12},
		Models:    make(map[string]netlist.Model),
		bound:     make(map[string]device.Model),
	}
}

// FromDeck builds a ready circuit from a parsed deck.
func FromDeck(deck *netlist.Deck) (*Circuit, error) {
	c := New(deck.Title)
	c.SetModels(deck.Models)
	if err := c.Build(deck.Elements); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

func (c *Circuit) SetModels(models map[string]netlist.Model) {
	c.Models = models
}

// Bind makes element name use dev instead of a device built from its
// model card. Call before Build.
func (c *Circuit) Bind(name string, dev device.Model) {
	c.bound[strings.ToUpper(name)] = dev
}

// Build runs node assignment, matrix creation and element setup.
func (c *Circuit) Build(elements []netlist.Element) error {
	if err := c.AssignNodeBranchMaps(elements); err != nil {
		return err
	}
	if err := c.CreateMatrix(); err != nil {
		return err
	}
	return c.SetupElements(elements)
}

func isGround(node string) bool {
	return node == "0" || strings.EqualFold(node, "gnd")
}

func (c *Circuit) AssignNodeBranchMaps(elements []netlist.Element) error {
	for _, elem := range elements {
		for _, nodeName := range elem.Nodes {
			if isGround(nodeName) {
				continue
			}
			if _, exists := c.nodeMap[nodeName]; !exists {
				c.nodeMap[nodeName] = len(c.nodeMap) + 1
			}
		}
	}

	branchStart := len(c.nodeMap) + 1
	for _, elem := range elements {
		if elem.Type == "V" {
			if _, dup := c.branchMap[elem.Name]; dup {
				return fmt.Errorf("duplicate voltage source %s", elem.Name)
			}
			c.branchMap[elem.Name] = branchStart
			branchStart++
		}
	}

	c.numNodes = len(c.nodeMap)
	if c.numNodes == 0 {
		return fmt.Errorf("circuit %s has no nodes besides ground", c.name)
	}
	return nil
}

func (c *Circuit) CreateMatrix() error {
	m, err := matrix.NewMatrix(len(c.nodeMap) + len(c.branchMap))
	if err != nil {
		return err
	}
	c.matrix = m
	return nil
}

func (c *Circuit) SetupElements(elements []netlist.Element) error {
	for _, elem := range elements {
		el, err := c.CreateElement(elem)
		if err != nil {
			return fmt.Errorf("creating element %s: %w", elem.Name, err)
		}

		nodeIndices := make([]int, len(elem.Nodes))
		for i, nodeName := range elem.Nodes {
			if isGround(nodeName) {
				continue
			}
			nodeIndices[i] = c.nodeMap[nodeName]
		}
		el.SetNodes(nodeIndices)

		if v, ok := el.(*VoltageSource); ok {
			v.SetBranchIndex(c.branchMap[elem.Name])
		}

		if nl, ok := el.(NonLinear); ok {
			c.nonlinearDevices = append(c.nonlinearDevices, nl)
		}

		c.elements = append(c.elements, el)
	}

	// Stamp once so a bad element fails at setup, not mid-analysis
	if err := c.Stamp(c.Status); err != nil {
		return fmt.Errorf("initial stamping failed: %w", err)
	}
	return nil
}

// CreateElement turns a parsed element into a stampable one. Diodes and
// transistors get a bound device, or a fresh one from their model card.
func (c *Circuit) CreateElement(elem netlist.Element) (Element, error) {
	switch elem.Type {
	case "R":
		return NewResistor(elem.Name, elem.Nodes, elem.Value), nil
	case "V":
		return NewVoltageSource(elem.Name, elem.Nodes, elem.Value), nil
	case "I":
		return NewCurrentSource(elem.Name, elem.Nodes, elem.Value), nil
	case "D":
		dev, err := c.deviceFor(elem)
		if err != nil {
			return nil, err
		}
		diode, ok := dev.(*device.Diode)
		if !ok && dev != nil {
			return nil, fmt.Errorf("diode %s: model is not a diode", elem.Name)
		}
		return NewDiode(elem.Name, elem.Nodes, diode), nil
	case "M":
		dev, err := c.deviceFor(elem)
		if err != nil {
			return nil, err
		}
		mosfet, ok := dev.(*device.Mosfet)
		if !ok && dev != nil {
			return nil, fmt.Errorf("transistor %s: model is not a mosfet", elem.Name)
		}
		return NewTransistor(elem.Name, elem.Nodes, mosfet), nil
	}
	return nil, fmt.Errorf("unsupported element type: %s", elem.Type)
}

func (c *Circuit) deviceFor(elem netlist.Element) (device.Model, error) {
	if dev, ok := c.bound[strings.ToUpper(elem.Name)]; ok {
		return dev, nil
	}
	name, ok := elem.Params["model"]
	if !ok {
		return nil, nil
	}
	model, exists := c.Models[name]
	if !exists {
		return nil, fmt.Errorf("undefined model %s", name)
	}
	return model.Build()
}

func (c *Circuit) Stamp(status *Status) error {
	for _, el := range c.elements {
		if err := el.Stamp(c.matrix, status); err != nil {
			return fmt.Errorf("stamping element %s: %w", el.GetName(), err)
		}
	}
	return nil
}

func (c *Circuit) GetMatrix() *matrix.CircuitMatrix {
	return c.matrix
}

func (c *Circuit) GetNodeMap() map[string]int {
	return c.nodeMap
}

func (c *Circuit) GetBranchMap() map[string]int {
	return c.branchMap
}

func (c *Circuit) GetElements() []Element {
	return c.elements
}

// Element finds an element by name, case-insensitively.
func (c *Circuit) Element(name string) (Element, bool) {
	for _, el := range c.elements {
		if strings.EqualFold(el.GetName(), name) {
			return el, true
		}
	}
	return nil, false
}

func (c *Circuit) GetSolution() map[string]float64 {
	solution := make(map[string]float64)
	matrixSolution := c.matrix.Solution()

	for name, idx := range c.nodeMap {
		solution[fmt.Sprintf("V(%s)", name)] = matrixSolution[idx]
	}

	// Branch current of voltage source
	for name, idx := range c.branchMap {
		solution[fmt.Sprintf("I(%s)", name)] = -matrixSolution[idx]
	}

	for _, el := range c.elements {
		switch e := el.(type) {
		case *Resistor:
			solution[fmt.Sprintf("I(%s)", e.Name)] = e.Current(matrixSolution)
		case *Diode:
			solution[fmt.Sprintf("I(%s)", e.Name)] = e.Current()
		case *Transistor:
			solution[fmt.Sprintf("I(%s)", e.Name)] = e.Current()
		}
	}

	return solution
}

func (c *Circuit) Destroy() {
	if c.matrix != nil {
		c.matrix.Destroy()
	}
}

func (c *Circuit) Name() string {
	return c.name
}

func (c *Circuit) GetNumNodes() int {
	return c.numNodes
}

func (c *Circuit) GetNodeVoltage(nodeIdx int) float64 {
	return voltage(c.matrix.Solution(), nodeIdx)
}

// NodeVoltage looks a node up by name; ground reads 0.
func (c *Circuit) NodeVoltage(name string) (float64, bool) {
	if isGround(name) {
		return 0, true
	}
	idx, ok := c.nodeMap[name]
	if !ok {
		return 0, false
	}
	return c.GetNodeVoltage(idx), true
}

func (c *Circuit) UpdateNonlinearVoltages(solution []float64) error {
	for _, dev := range c.nonlinearDevices {
		if err := dev.UpdateVoltages(solution); err != nil {
			return fmt.Errorf("updating voltages: %w", err)
		}
	}
	logrus.Tracef("%s: updated %d nonlinear elements", c.name, len(c.nonlinearDevices))
	return nil
}
