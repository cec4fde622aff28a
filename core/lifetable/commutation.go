package lifetable

import (
	"math"

	"github.com/mfigueroa/lifecast/internal/contract"
)

// Commutation holds the classical commutation columns for a life table at a
// fixed interest rate. Discounting is anchored at the table's first age, so
// D at the first age equals the survivor count there.
type Commutation struct {
	Table    *Table
	Interest float64
	D        []float64 // Discounted survivors, v^t * Lx
	N        []float64 // Backward cumulative sum of D
	C        []float64 // Discounted deaths, v^(t+1) * Dx
	M        []float64 // Backward cumulative sum of C
}

// NewCommutation computes the commutation columns from a table and an annual
// effective interest rate.
func NewCommutation(t *Table, interest float64) (*Commutation, error) {
	if interest <= -1 {
		return nil, contract.ConfigErrorf("interest rate %g implies non-positive discounting", interest)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	n := t.NAges()
	v := 1 / (1 + interest)
	c := &Commutation{
		Table:    t,
		Interest: interest,
		D:        make([]float64, n),
		N:        make([]float64, n),
		C:        make([]float64, n),
		M:        make([]float64, n),
	}
	for i := range n {
		vt := math.Pow(v, float64(i))
		c.D[i] = vt * t.Lx[i]
		c.C[i] = vt * v * t.Dx[i]
	}
	c.N[n-1] = c.D[n-1]
	c.M[n-1] = c.C[n-1]
	for i := n - 2; i >= 0; i-- {
		c.N[i] = c.N[i+1] + c.D[i]
		c.M[i] = c.M[i+1] + c.C[i]
	}
	return c, nil
}

func (c *Commutation) ageIndex(age int) (int, error) {
	return c.Table.ageIndex(age)
}
