package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/edp1096/toy-semi/pkg/analysis"
	"github.com/edp1096/toy-semi/pkg/chart"
	"github.com/edp1096/toy-semi/pkg/circuit"
	"github.com/edp1096/toy-semi/pkg/config"
	"github.com/edp1096/toy-semi/pkg/netlist"
)

var plotPath string // Chart output for sweeps, by extension

var runCmd = &cobra.Command{
	Use:   "run DECK",
	Short: "Evaluate a .cir or .yaml deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, err := config.LoadDeck(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if deck.Title != "" {
			fmt.Fprintf(out, "* %s\n", deck.Title)
		}

		if deck.Device != "" {
			if err := runDevice(out, deck); err != nil {
				return err
			}
		}
		if len(deck.Elements) > 0 {
			return runCircuit(out, deck)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&plotPath, "plot", "", "Write sweep results to a chart (.png, .svg or .pdf)")
}

func runDevice(out io.Writer, deck *netlist.Deck) error {
	dev, err := deck.Build()
	if err != nil {
		return err
	}

	if deck.Sweep == nil {
		printQuantities(out, dev, deck.Prints)
		return nil
	}
	if len(deck.Prints) == 0 {
		return fmt.Errorf("sweep of %s needs quantities to print", deck.Sweep.Name)
	}

	s, err := analysis.NewQuantitySweep(dev, deck.Sweep.Name, deck.Sweep.Start, deck.Sweep.Stop, deck.Sweep.Points, deck.Prints)
	if err != nil {
		return err
	}
	if err := s.Execute(); err != nil {
		return err
	}
	printSweep(out, s)

	if plotPath == "" {
		return nil
	}
	f, err := chart.FromResults(s.GetResults(), s.Name, s.Outputs...)
	if err != nil {
		return err
	}
	f.Title = deck.Title
	return f.Save(plotPath, 6*vg.Inch, 4*vg.Inch)
}

func runCircuit(out io.Writer, deck *netlist.Deck) error {
	ckt, err := circuit.FromDeck(deck)
	if err != nil {
		return err
	}
	defer ckt.Destroy()

	var analyzer analysis.Analysis
	switch deck.Analysis {
	case netlist.AnalysisDC:
		param := deck.DCParam
		analyzer, err = analysis.NewDCSweep(
			[]string{param.Source},
			[]float64{param.Start},
			[]float64{param.Stop},
			[]float64{param.Increment},
		)
		if err != nil {
			return err
		}
	default:
		if deck.Analysis == netlist.AnalysisNone {
			logrus.Info("no analysis requested, running .op")
		}
		analyzer = analysis.NewOP()
	}

	if err := analyzer.Setup(ckt); err != nil {
		return fmt.Errorf("analysis setup failed: %w", err)
	}
	if err := analyzer.Execute(); err != nil {
		return fmt.Errorf("analysis execution failed: %w", err)
	}
	results := analyzer.GetResults()
	printResults(out, results)

	if plotPath == "" || deck.Sweep != nil || deck.Analysis != netlist.AnalysisDC {
		return nil
	}
	voltages, _ := splitNames(results)
	f, err := chart.FromResults(results, "SWEEP1", voltages...)
	if err != nil {
		return err
	}
	f.Title = deck.Title
	f.XLabel = strings.ToUpper(deck.DCParam.Source)
	f.YLabel = "V"
	return f.Save(plotPath, 6*vg.Inch, 4*vg.Inch)
}
