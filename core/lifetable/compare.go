package lifetable

import (
	"math"

	"github.com/mfigueroa/lifecast/internal/contract"
)

// Comparison lines up two tables over their overlapping ages. Ratios and
// differences exclude the last overlapping age when both tables close there,
// since a forced terminal probability of 1 carries no information.
type Comparison struct {
	Ages       []int
	BaseQx     []float64
	OtherQx    []float64
	Ratio      []float64 // other / base
	Difference []float64 // other - base
	RMSE       float64   // Root mean squared q difference over the overlap
}

// Compare aligns other against base over their common ages.
func Compare(base, other *Table) (*Comparison, error) {
	baseIdx := make(map[int]int, base.NAges())
	for i, a := range base.Ages {
		baseIdx[a] = i
	}

	cmp := &Comparison{}
	for j, a := range other.Ages {
		i, ok := baseIdx[a]
		if !ok {
			continue
		}
		// Skip ages where either table is terminal.
		if base.Qx[i] == 1 || other.Qx[j] == 1 {
			continue
		}
		cmp.Ages = append(cmp.Ages, a)
		cmp.BaseQx = append(cmp.BaseQx, base.Qx[i])
		cmp.OtherQx = append(cmp.OtherQx, other.Qx[j])
		cmp.Ratio = append(cmp.Ratio, other.Qx[j]/base.Qx[i])
		cmp.Difference = append(cmp.Difference, other.Qx[j]-base.Qx[i])
	}
	if len(cmp.Ages) == 0 {
		return nil, contract.ValidationErrorf("tables share no comparable ages")
	}

	var sumSq float64
	for _, d := range cmp.Difference {
		sumSq += d * d
	}
	cmp.RMSE = math.Sqrt(sumSq / float64(len(cmp.Difference)))
	return cmp, nil
}
