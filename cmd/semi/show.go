package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edp1096/toy-semi/pkg/device"
	"github.com/edp1096/toy-semi/pkg/netlist"
)

var (
	lockPairs []string // name=value pairs pinned after the sets
	printOnly []string // Quantities to print, all when empty
)

var showCmd = &cobra.Command{
	Use:   "show [KIND [name=value ...]]",
	Short: "Print the quantities of a device model",
	Example: `  semi show silicon Na=1e16
  semi show mosfet N_ab=1e16 X_ox=5e-6 mu_n_ch=500 W_ch=1e-3 L_ch=1e-4 V_GS=2 V_DS=3 --print I_D,g_m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			fmt.Fprintf(out, "kinds: %s\n", strings.Join(device.Kinds(), ", "))
			return nil
		}

		dev, err := device.New(args[0])
		if err != nil {
			return err
		}
		if err := applyArgs(dev, args[1:], lockPairs); err != nil {
			return err
		}
		printQuantities(out, dev, printOnly)
		return nil
	},
}

func init() {
	showCmd.Flags().StringSliceVar(&lockPairs, "lock", nil, "Pin name=value pairs")
	showCmd.Flags().StringSliceVar(&printOnly, "print", nil, "Quantities to print")
}

func applyArgs(dev device.Model, sets, locks []string) error {
	setPairs, err := netlist.ParseAssignments(sets)
	if err != nil {
		return err
	}
	lockedPairs, err := netlist.ParseAssignments(locks)
	if err != nil {
		return err
	}
	return netlist.Apply(dev, setPairs, lockedPairs)
}
