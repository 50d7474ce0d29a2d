package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edp1096/toy-semi/pkg/analysis"
	"github.com/edp1096/toy-semi/pkg/device"
	"github.com/edp1096/toy-semi/pkg/util"
)

var qpointFlags struct {
	vdd, rd, rs float64
	locks       []string
}

var qpointCmd = &cobra.Command{
	Use:   "qpoint [name=value ...]",
	Short: "Solve the bias point of a common-source stage",
	Long: `Places the transistor between a drain resistor to VDD and a source
resistor to ground, holds its present V_GS across gate and source, and
solves for the quiescent drain current and V_DS.`,
	Example: `  semi qpoint V_GS=1.5 --lock K_n=1m,V_TN=0.5 --vdd 10 --rd 2000 --rs 1000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := device.NewMosfet()
		if err := applyArgs(m, args, qpointFlags.locks); err != nil {
			return err
		}

		id, vds, err := analysis.CommonSourceQPoint(qpointFlags.vdd, qpointFlags.rd, qpointFlags.rs, m)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "I_D  = %s\n", util.FormatValueFactor(id, "A"))
		fmt.Fprintf(out, "V_DS = %s\n", util.FormatValueFactor(vds, "V"))
		printQuantities(out, m, []string{"V_TN", "V_DSat", "g_m", "g_ds"})
		return nil
	},
}

func init() {
	qpointCmd.Flags().Float64Var(&qpointFlags.vdd, "vdd", 5, "Supply voltage")
	qpointCmd.Flags().Float64Var(&qpointFlags.rd, "rd", 0, "Drain resistor, 0 ties the drain to VDD")
	qpointCmd.Flags().Float64Var(&qpointFlags.rs, "rs", 0, "Source resistor, 0 grounds the source")
	qpointCmd.Flags().StringSliceVar(&qpointFlags.locks, "lock", nil, "Pin name=value pairs")
}
