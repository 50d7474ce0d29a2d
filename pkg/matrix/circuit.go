package matrix

import (
	"fmt"
	"strings"

	"github.com/edp1096/sparse"
	"github.com/sirupsen/logrus"
)

// CircuitMatrix is a real MNA system with 1-based node and branch rows.
// Stamps collect in a staging table; each Solve loads them into a fresh
// sparse matrix, so pivot ordering always matches the present values.
type CircuitMatrix struct {
	Size     int
	config   *sparse.Configuration
	stamps   [][]float64
	rhs      []float64
	solution []float64
}

func NewMatrix(size int) (*CircuitMatrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("creating %dx%d matrix: size must be positive", size, size)
	}

	stamps := make([][]float64, size+1)
	for i := range stamps {
		stamps[i] = make([]float64, size+1)
	}

	return &CircuitMatrix{
		Size: size,
		config: &sparse.Configuration{
			Real:           true,
			Expandable:     true,
			ModifiedNodal:  true,
			TiesMultiplier: 5,
			PrinterWidth:   140,
		},
		stamps:   stamps,
		rhs:      make([]float64, size+1),
		solution: make([]float64, size+1),
	}, nil
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		logrus.Warnf("matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, m.Size)
		return
	}
	m.stamps[i][j] += value
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if i <= 0 || i > m.Size {
		logrus.Warnf("rhs index out of bounds (i=%d, size=%d)", i, m.Size)
		return
	}
	m.rhs[i] += value
}

func (m *CircuitMatrix) LoadGmin(gmin float64) {
	for i := 1; i <= m.Size; i++ {
		m.stamps[i][i] += gmin
	}
}

func (m *CircuitMatrix) Clear() {
	for i := range m.stamps {
		clear(m.stamps[i])
	}
	clear(m.rhs)
}

func (m *CircuitMatrix) Solve() error {
	mat, err := sparse.Create(int64(m.Size), m.config)
	if err != nil {
		return fmt.Errorf("creating %dx%d matrix: %w", m.Size, m.Size, err)
	}
	defer mat.Destroy()

	for i := 1; i <= m.Size; i++ {
		for j := 1; j <= m.Size; j++ {
			if v := m.stamps[i][j]; v != 0 {
				mat.GetElement(int64(i), int64(j)).Real += v
			}
		}
	}

	if err := mat.Factor(); err != nil {
		return fmt.Errorf("matrix factorization failed: %w", err)
	}

	solution, err := mat.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %w", err)
	}
	m.solution = solution
	return nil
}

func (m *CircuitMatrix) Element(i, j int) float64 {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return 0
	}
	return m.stamps[i][j]
}

func (m *CircuitMatrix) RHS() []float64 {
	return m.rhs
}

func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

// String renders the staged system one equation per row, for trace logging.
func (m *CircuitMatrix) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "circuit equations (%dx%d):\n", m.Size, m.Size)
	for i := 1; i <= m.Size; i++ {
		row := false
		for j := 1; j <= m.Size; j++ {
			if v := m.stamps[i][j]; v != 0 {
				fmt.Fprintf(&b, "  %+g*x%d", v, j)
				row = true
			}
		}
		if row {
			fmt.Fprintf(&b, " = %g\n", m.rhs[i])
		}
	}
	return b.String()
}

func (m *CircuitMatrix) Destroy() {
	m.stamps = nil
}
