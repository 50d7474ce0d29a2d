package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/edp1096/toy-semi/pkg/analysis"
	"github.com/edp1096/toy-semi/pkg/chart"
	"github.com/edp1096/toy-semi/pkg/circuit"
	"github.com/edp1096/toy-semi/pkg/device"
	"github.com/edp1096/toy-semi/pkg/netlist"
	"github.com/edp1096/toy-semi/pkg/util"
)

var vtcFlags struct {
	vdd, rl, step float64
	locks         []string
	plot          string
}

var vtcCmd = &cobra.Command{
	Use:   "vtc [name=value ...]",
	Short: "Trace the transfer curve of a resistor-loaded inverter",
	Long: `Sweeps the input of a resistor-loaded NMOS inverter from 0 to VDD with
the circuit solver and prints the closed-form inverter output next to it.`,
	Example: `  semi vtc --lock K_N=2m,V_TN=0.5 --vdd 5 --rl 1000 --step 0.25`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := device.NewMosfet()
		if err := applyArgs(m, args, vtcFlags.locks); err != nil {
			return err
		}
		inv := device.NewInverter(m)
		if err := inv.SetFloat("R_L", vtcFlags.rl); err != nil {
			return err
		}
		if err := inv.SetFloat("V_DD", vtcFlags.vdd); err != nil {
			return err
		}

		elements := []netlist.Element{
			{Type: "V", Name: "VDD", Nodes: []string{"vdd", "0"}, Value: vtcFlags.vdd},
			{Type: "V", Name: "VIN", Nodes: []string{"in", "0"}, Value: 0},
			{Type: "R", Name: "RL", Nodes: []string{"vdd", "out"}, Value: vtcFlags.rl},
			{Type: "M", Name: "M1", Nodes: []string{"out", "in", "0", "0"}},
		}
		ckt := circuit.New("inverter")
		defer ckt.Destroy()
		ckt.Bind("M1", m)
		if err := ckt.Build(elements); err != nil {
			return err
		}

		dc, err := analysis.NewDCSweep([]string{"VIN"}, []float64{0}, []float64{vtcFlags.vdd}, []float64{vtcFlags.step})
		if err != nil {
			return err
		}
		if err := dc.Setup(ckt); err != nil {
			return err
		}
		if err := dc.Execute(); err != nil {
			return err
		}
		results := dc.GetResults()

		vin, solved := results["SWEEP1"], results["V(out)"]
		closed := make([]float64, len(vin))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-12s %-14s %-14s\n", "V_in", "V(out)", "V_out closed")
		for i, v := range vin {
			if err := inv.SetFloat("V_in", v); err != nil {
				return err
			}
			vout, ok := inv.Float("V_out")
			if !ok {
				return fmt.Errorf("inverter output at V_in=%g: %w", v, circuit.ErrSymbolic)
			}
			closed[i] = vout
			fmt.Fprintf(out, "%-12s %-14s %-14s\n",
				util.FormatValueFactor(v, "V"),
				util.FormatValueFactor(solved[i], "V"),
				util.FormatValueFactor(vout, "V"))
		}

		if vtcFlags.plot == "" {
			return nil
		}
		f := &chart.Figure{
			Title:  "inverter transfer",
			XLabel: "V_in (V)",
			YLabel: "V_out (V)",
			X:      vin,
			Series: []chart.Series{{Name: "V(out)", Y: solved}, {Name: "closed form", Y: closed}},
		}
		return f.Save(vtcFlags.plot, 6*vg.Inch, 4*vg.Inch)
	},
}

func init() {
	vtcCmd.Flags().Float64Var(&vtcFlags.vdd, "vdd", 5, "Supply voltage")
	vtcCmd.Flags().Float64Var(&vtcFlags.rl, "rl", 1e3, "Load resistor")
	vtcCmd.Flags().Float64Var(&vtcFlags.step, "step", 0.1, "Input step")
	vtcCmd.Flags().StringSliceVar(&vtcFlags.locks, "lock", nil, "Pin name=value pairs")
	vtcCmd.Flags().StringVar(&vtcFlags.plot, "plot", "", "Write the curve to a chart (.png, .svg or .pdf)")
}
