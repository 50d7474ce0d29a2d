package analysis

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-semi/pkg/circuit"
)

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Circuit     *circuit.Circuit
	results     map[string][]float64 // key: variable name, value: result by sweep point
	convergence struct {
		maxIter int
		abstol  float64
		reltol  float64
		gmin    float64
	}
}

func NewBaseAnalysis() *BaseAnalysis {
	ba := &BaseAnalysis{results: make(map[string][]float64)}

	ba.convergence.maxIter = 100
	ba.convergence.abstol = 1e-12
	ba.convergence.reltol = 1e-6
	ba.convergence.gmin = 1e-12

	return ba
}

func (a *BaseAnalysis) CheckConvergence(oldSol, newSol []float64) bool {
	if len(oldSol) != len(newSol) {
		return false
	}

	for i := 1; i < len(newSol); i++ {
		diff := math.Abs(newSol[i] - oldSol[i])
		tol := a.convergence.reltol*math.Max(math.Abs(newSol[i]), math.Abs(oldSol[i])) + a.convergence.abstol
		if diff > tol {
			return false
		}
	}
	return true
}

// doNRiter runs Newton iterations from the elements' present linearization
// points until two successive solutions agree.
func (a *BaseAnalysis) doNRiter(gmin float64, maxIter int) error {
	ckt := a.Circuit
	mat := ckt.GetMatrix()
	status := &circuit.Status{Mode: circuit.OperatingPointAnalysis, Gmin: gmin}

	var oldSolution []float64
	for iter := range maxIter {
		mat.Clear()

		// First iteration have no previous solution so, skip
		if iter > 0 {
			if err := ckt.UpdateNonlinearVoltages(oldSolution); err != nil {
				return fmt.Errorf("updating nonlinear voltages: %w", err)
			}
		}

		if err := ckt.Stamp(status); err != nil {
			return fmt.Errorf("stamping error: %w", err)
		}
		mat.LoadGmin(gmin)
		logrus.Trace(mat)

		if err := mat.Solve(); err != nil {
			return fmt.Errorf("matrix solve error: %w", err)
		}

		solution := mat.Solution()
		if iter > 0 && a.CheckConvergence(oldSolution, solution) {
			logrus.Debugf("newton converged in %d iterations (gmin=%g)", iter+1, gmin)
			return ckt.UpdateNonlinearVoltages(solution)
		}

		if oldSolution == nil {
			oldSolution = make([]float64, len(solution))
		}
		copy(oldSolution, solution)
	}

	return fmt.Errorf("failed to converge in %d iterations", maxIter)
}

// solve tries plain Newton first and falls back to gmin stepping.
func (a *BaseAnalysis) solve() error {
	err := a.doNRiter(0, a.convergence.maxIter)
	if err == nil {
		return nil
	}
	logrus.Debugf("plain newton failed (%v), stepping gmin", err)

	numGminSteps := 10
	startGmin := float64(a.Circuit.GetMatrix().Size) * 0.001
	gmin := startGmin

	for i := 0; i <= numGminSteps; i++ {
		if err := a.doNRiter(gmin, a.convergence.maxIter); err != nil {
			return fmt.Errorf("gmin stepping failed at %g: %w", gmin, err)
		}
		gmin /= 10
	}

	if err := a.doNRiter(0, a.convergence.maxIter); err != nil {
		return fmt.Errorf("final solution failed with zero gmin: %w", err)
	}
	return nil
}

func (a *BaseAnalysis) store(name string, value float64) {
	a.results[name] = append(a.results[name], value)
}

func (a *BaseAnalysis) StoreResult(sweep map[string]float64, solution map[string]float64) {
	for name, value := range sweep {
		a.store(name, value)
	}
	for name, value := range solution {
		a.store(name, value)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}
