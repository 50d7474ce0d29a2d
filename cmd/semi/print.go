package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/edp1096/toy-semi/pkg/analysis"
	"github.com/edp1096/toy-semi/pkg/device"
	"github.com/edp1096/toy-semi/pkg/util"
)

func printQuantities(w io.Writer, m device.Model, names []string) {
	if len(names) == 0 {
		names = m.Names()
	}
	if state := device.State(m); state != "" {
		fmt.Fprintf(w, "state: %s\n", state)
	}
	for _, name := range names {
		v, err := m.Get(name)
		if err != nil {
			fmt.Fprintf(w, "%-24s %v\n", name, err)
			continue
		}
		lock := ""
		if m.Locked(name) {
			lock = " (locked)"
		}
		fmt.Fprintf(w, "%-24s %s%s\n", name, util.FormatExpr(v, util.Unit(name)), lock)
	}
}

func printSweep(w io.Writer, s *analysis.QuantitySweep) {
	results := s.GetResults()
	fmt.Fprintf(w, "\nSweep of %s (%d points):\n", s.Name, len(s.Values))
	fmt.Fprintf(w, "%-14s", s.Name)
	for _, out := range s.Outputs {
		fmt.Fprintf(w, "%-16s", out)
	}
	fmt.Fprintln(w, "state")

	for i, v := range s.Values {
		fmt.Fprintf(w, "%-14s", util.FormatValueFactor(v, util.Unit(s.Name)))
		for _, out := range s.Outputs {
			fmt.Fprintf(w, "%-16s", util.FormatValueFactor(results[out][i], util.Unit(out)))
		}
		fmt.Fprintln(w, s.States[i])
	}
}

func splitNames(results map[string][]float64) (voltageNames, currentNames []string) {
	for name := range results {
		if strings.HasPrefix(name, "V(") {
			voltageNames = append(voltageNames, name)
		} else if strings.HasPrefix(name, "I(") {
			currentNames = append(currentNames, name)
		}
	}
	sort.Strings(voltageNames)
	sort.Strings(currentNames)
	return voltageNames, currentNames
}

// printResults prints an operating point or a DC sweep.
func printResults(w io.Writer, results map[string][]float64) {
	voltageNames, currentNames := splitNames(results)

	// DC Sweep
	if sweep1, isDC := results["SWEEP1"]; isDC {
		fmt.Fprintf(w, "\nDC Sweep Analysis Results (%d points):\n", len(sweep1))

		sweep2, hasNested := results["SWEEP2"]
		for i := range sweep1 {
			if hasNested {
				fmt.Fprintf(w, "V1=%-11s V2=%-11s  ",
					util.FormatValueFactor(sweep1[i], "V"),
					util.FormatValueFactor(sweep2[i], "V"))
			} else {
				fmt.Fprintf(w, "V=%-11s  ", util.FormatValueFactor(sweep1[i], "V"))
			}
			for _, name := range voltageNames {
				fmt.Fprintf(w, "%s=%s  ", name, util.FormatValueFactor(results[name][i], "V"))
			}
			for _, name := range currentNames {
				fmt.Fprintf(w, "%s=%s  ", name, util.FormatValueFactor(results[name][i], "A"))
			}
			fmt.Fprintln(w)
		}
		return
	}

	// Operating point
	fmt.Fprintln(w, "\nNode Voltages:")
	for _, name := range voltageNames {
		fmt.Fprintf(w, "%s = %s\n", name, util.FormatValueFactor(results[name][0], "V"))
	}
	fmt.Fprintln(w, "\nBranch Currents:")
	for _, name := range currentNames {
		fmt.Fprintf(w, "%s = %s\n", name, util.FormatValueFactor(results[name][0], "A"))
	}
}
