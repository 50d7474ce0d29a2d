package netlist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

type AnalysisType int

const (
	AnalysisNone AnalysisType = iota
	AnalysisOP
	AnalysisDC
)

var ErrDirective = errors.New("invalid directive")

// Deck is one parsed device run: a standalone model described by
// .device/.set/.lock, and optionally a small DC circuit around it.
type Deck struct {
	Title  string
	Device string // .device kind

	Sets   []Assignment // applied in order
	Locks  []Assignment // applied after Sets
	Sweep  *Sweep
	Prints []string

	Elements []Element        // Circuit elements
	Nodes    map[string]int   // Node name and index
	Models   map[string]Model // .model cards

	Analysis AnalysisType
	DCParam  struct {
		Source    string
		Start     float64
		Stop      float64
		Increment float64
	}

	diodeOnly []string
}

// Assignment binds a quantity name to a raw value. The value is a number
// with an optional SI suffix, or a bare identifier that stays symbolic.
type Assignment struct {
	Name  string `yaml:"name" validate:"required"`
	Value string `yaml:"value" validate:"required"`
}

type Sweep struct {
	Name   string  `yaml:"name" validate:"required"`
	Start  float64 `yaml:"start"`
	Stop   float64 `yaml:"stop"`
	Points int     `yaml:"points" validate:"gte=2"`
}

type Element struct {
	Type   string            // Part type (R, V, I, D, M)
	Name   string            // Part name
	Nodes  []string          // Node names
	Value  float64           // Part value
	Params map[string]string // Parameter values
}

// Model is a .model card. Its parameters are pinned on the device built
// for every element that names it.
type Model struct {
	Name   string
	Type   string // NMOS or D
	Params []Assignment
}

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var (
	valuePattern = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?[a-zA-Z]*$`)
	spaces       = regexp.MustCompile(`\s+`)
)

func NewDeck() *Deck {
	return &Deck{
		Nodes:  make(map[string]int),
		Models: make(map[string]Model),
	}
}

func ParseFile(path string) (*Deck, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deck: %w", err)
	}
	return Parse(string(raw))
}

// Parse reads a deck. The first line is the title; '*' starts a comment
// and '+' continues the previous line.
func Parse(input string) (*Deck, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	deck := NewDeck()

	// Title or comment
	if scanner.Scan() {
		deck.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	var currentLine string
	lineNo, startNo := 1, 1
	flush := func() error {
		if currentLine == "" {
			return nil
		}
		line := currentLine
		currentLine = ""
		if err := parseLine(deck, line); err != nil {
			return fmt.Errorf("line %d: %w", startNo, err)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		// Inline comment
		if idx := strings.Index(line, "*"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		if strings.HasPrefix(line, "+") {
			if currentLine == "" {
				return nil, fmt.Errorf("line %d: continuation without a line to continue", lineNo)
			}
			currentLine += " " + strings.TrimSpace(line[1:])
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		currentLine = line
		startNo = lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return deck, deck.Validate()
}

// Validate checks the cross-line constraints of a deck.
func (d *Deck) Validate() error {
	if len(d.diodeOnly) > 0 && !strings.EqualFold(d.Device, "diode") {
		return fmt.Errorf("%s needs .device diode: %w", strings.Join(d.diodeOnly, ", "), ErrDirective)
	}
	if d.Device == "" && len(d.Elements) == 0 {
		return fmt.Errorf("deck has neither a .device nor circuit elements: %w", ErrDirective)
	}
	for _, elem := range d.Elements {
		model, ok := elem.Params["model"]
		if !ok {
			continue
		}
		if _, exists := d.Models[model]; !exists {
			return fmt.Errorf("element %s: undefined model %s", elem.Name, model)
		}
	}
	if d.Analysis == AnalysisDC {
		for _, elem := range d.Elements {
			if strings.EqualFold(elem.Name, d.DCParam.Source) {
				return nil
			}
		}
		return fmt.Errorf(".dc source %s is not in the circuit", d.DCParam.Source)
	}
	return nil
}

func parseLine(deck *Deck, line string) error {
	line = spaces.ReplaceAllString(line, " ")

	if strings.HasPrefix(line, ".") {
		return parseDotOperator(deck, line)
	}

	element, err := parseElement(line)
	if err != nil {
		return err
	}

	deck.Elements = append(deck.Elements, *element)
	for _, node := range element.Nodes {
		if _, exists := deck.Nodes[node]; !exists {
			deck.Nodes[node] = len(deck.Nodes)
		}
	}
	return nil
}

func parseDotOperator(deck *Deck, line string) error {
	fields := strings.Fields(line)

	switch strings.ToLower(fields[0]) {
	case ".device":
		if len(fields) != 2 {
			return fmt.Errorf(".device takes one kind: %w", ErrDirective)
		}
		deck.Device = strings.ToLower(fields[1])

	case ".set", ".lock":
		pairs, err := ParseAssignments(fields[1:])
		if err != nil {
			return fmt.Errorf("%s: %w", fields[0], err)
		}
		if len(pairs) == 0 {
			return fmt.Errorf("%s needs name=value pairs: %w", fields[0], ErrDirective)
		}
		if strings.EqualFold(fields[0], ".set") {
			deck.Sets = append(deck.Sets, pairs...)
		} else {
			deck.Locks = append(deck.Locks, pairs...)
		}

	case ".sweep":
		if len(fields) != 5 {
			return fmt.Errorf(".sweep needs name start stop points: %w", ErrDirective)
		}
		sweep := &Sweep{Name: fields[1]}
		var err error
		if sweep.Start, err = ParseValue(fields[2]); err != nil {
			return fmt.Errorf("invalid sweep start: %w", err)
		}
		if sweep.Stop, err = ParseValue(fields[3]); err != nil {
			return fmt.Errorf("invalid sweep stop: %w", err)
		}
		if sweep.Points, err = strconv.Atoi(fields[4]); err != nil || sweep.Points < 2 {
			return fmt.Errorf("sweep points must be an integer of at least 2, got %s: %w", fields[4], ErrDirective)
		}
		deck.Sweep = sweep

	case ".print":
		if len(fields) < 2 {
			return fmt.Errorf(".print needs at least one quantity: %w", ErrDirective)
		}
		deck.Prints = append(deck.Prints, fields[1:]...)

	case ".bias", ".area":
		if len(fields) != 2 {
			return fmt.Errorf("%s takes one value: %w", fields[0], ErrDirective)
		}
		name := "V_pn"
		if strings.EqualFold(fields[0], ".area") {
			name = "area"
		}
		if _, err := ParseValue(fields[1]); err != nil {
			return fmt.Errorf("%s: %w", fields[0], err)
		}
		deck.Sets = append(deck.Sets, Assignment{Name: name, Value: fields[1]})
		deck.diodeOnly = append(deck.diodeOnly, strings.ToLower(fields[0]))

	case ".model":
		return parseModel(deck, fields[1:])

	case ".op":
		deck.Analysis = AnalysisOP

	case ".dc":
		deck.Analysis = AnalysisDC
		if len(fields) < 5 {
			return fmt.Errorf("insufficient DC sweep parameters")
		}

		deck.DCParam.Source = fields[1]
		var err error
		deck.DCParam.Start, err = ParseValue(fields[2])
		if err != nil {
			return fmt.Errorf("invalid start value: %w", err)
		}
		deck.DCParam.Stop, err = ParseValue(fields[3])
		if err != nil {
			return fmt.Errorf("invalid stop value: %w", err)
		}
		deck.DCParam.Increment, err = ParseValue(fields[4])
		if err != nil {
			return fmt.Errorf("invalid increment value: %w", err)
		}
		if deck.DCParam.Increment == 0 {
			return fmt.Errorf("zero DC sweep increment: %w", ErrDirective)
		}

	case ".end":

	default:
		return fmt.Errorf("unsupported directive %s: %w", fields[0], ErrDirective)
	}

	return nil
}

func ParseAssignments(fields []string) ([]Assignment, error) {
	var pairs []Assignment
	for _, field := range fields {
		parts := strings.Split(field, "=")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("malformed assignment %q: %w", field, ErrDirective)
		}
		if _, err := Value(parts[1]); err != nil {
			return nil, fmt.Errorf("%s: %w", parts[0], err)
		}
		pairs = append(pairs, Assignment{Name: parts[0], Value: parts[1]})
	}
	return pairs, nil
}

// parseModel reads `.model NAME TYPE(name=value ...)`.
func parseModel(deck *Deck, fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("insufficient model parameters")
	}

	modelName := fields[0]
	rest := strings.Join(fields[1:], " ")
	rest = strings.ReplaceAll(rest, "(", " ")
	rest = strings.ReplaceAll(rest, ")", " ")
	words := strings.Fields(rest)

	modelType := strings.ToUpper(words[0])
	if _, ok := modelKinds[modelType]; !ok {
		return fmt.Errorf("unsupported model type: %s", modelType)
	}

	params, err := ParseAssignments(words[1:])
	if err != nil {
		return fmt.Errorf("model %s: %w", modelName, err)
	}

	deck.Models[modelName] = Model{
		Name:   modelName,
		Type:   modelType,
		Params: params,
	}
	return nil
}

// Parse circuit element
func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid element format: %s", line)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   strings.ToUpper(string(fields[0][0])),
		Params: make(map[string]string),
	}

	switch elem.Type {
	case "V", "I":
		return parseSource(elem, fields)

	case "D":
		if len(fields) < 3 || len(fields) > 4 {
			return nil, fmt.Errorf("diode %s: want D name anode cathode [model]", elem.Name)
		}
		elem.Nodes = fields[1:3]
		if len(fields) > 3 {
			elem.Params["model"] = fields[3]
		}
		return elem, nil

	case "M":
		if len(fields) < 5 || len(fields) > 6 {
			return nil, fmt.Errorf("transistor %s: want M name drain gate source bulk [model]", elem.Name)
		}
		elem.Nodes = fields[1:5]
		if len(fields) > 5 {
			elem.Params["model"] = fields[5]
		}
		return elem, nil

	case "R":
		if len(fields) != 4 {
			return nil, fmt.Errorf("resistor %s: want R name n1 n2 value", elem.Name)
		}
		elem.Nodes = fields[1:3]
		value, err := ParseValue(fields[3])
		if err != nil {
			return nil, err
		}
		elem.Value = value
		return elem, nil

	default:
		return nil, fmt.Errorf("unsupported element %s", elem.Name)
	}
}

// parseSource reads `V name n+ n- [DC] value`.
func parseSource(elem *Element, fields []string) (*Element, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("insufficient source parameters")
	}
	elem.Nodes = []string{fields[1], fields[2]}

	words := fields[3:]
	if strings.EqualFold(words[0], "DC") {
		words = words[1:]
	}
	if len(words) != 1 {
		return nil, fmt.Errorf("source %s: only DC values are supported", elem.Name)
	}

	value, err := ParseValue(words[0])
	if err != nil {
		return nil, err
	}
	elem.Params["type"] = "dc"
	elem.Value = value
	return elem, nil
}

// ParseValue - Parse value and factor. 1k -> 1000
func ParseValue(val string) (float64, error) {
	matches := valuePattern.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	// factor
	if matches[2] != "" {
		num *= unitMap[matches[2]]
	}

	return num, nil
}
