package lifetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueroa/lifecast/internal/contract"
)

// premiumTable builds the three-age table used across the pricing tests:
// survivors 1000, 900, 720.
func premiumTable(t *testing.T) *Table {
	t.Helper()
	table, err := FromDeathProbabilities([]int{60, 61, 62}, []float64{0.1, 0.2, 1.0}, 1000)
	require.NoError(t, err)
	return table
}

// TestCommutationZeroInterest checks the columns against hand-computed
// values; at zero interest they reduce to survivor and death counts.
func TestCommutationZeroInterest(t *testing.T) {
	comm, err := NewCommutation(premiumTable(t), 0)
	require.NoError(t, err)

	assert.InDelta(t, 1000, comm.D[0], 1e-9)
	assert.InDelta(t, 900, comm.D[1], 1e-9)
	assert.InDelta(t, 720, comm.D[2], 1e-9)
	assert.InDelta(t, 2620, comm.N[0], 1e-9)
	assert.InDelta(t, 100, comm.C[0], 1e-9)
	assert.InDelta(t, 1000, comm.M[0], 1e-9) // all 1000 lives die eventually
}

// TestPremiumsZeroInterest checks the classical identities without
// discounting.
func TestPremiumsZeroInterest(t *testing.T) {
	comm, err := NewCommutation(premiumTable(t), 0)
	require.NoError(t, err)

	whole, err := comm.WholeLife(60)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, whole, 1e-12) // certain death, no discounting

	term, err := comm.TermInsurance(60, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.28, term, 1e-12) // (100+180)/1000

	pure, err := comm.PureEndowment(60, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.72, pure, 1e-12) // 720/1000

	endow, err := comm.Endowment(60, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, endow, 1e-12) // term + pure endowment

	annuity, err := comm.AnnuityDue(60)
	require.NoError(t, err)
	assert.InDelta(t, 2.62, annuity, 1e-12)

	tempAnnuity, err := comm.TemporaryAnnuityDue(60, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.9, tempAnnuity, 1e-12)

	net, err := comm.NetAnnualPremium(60, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.28/1.9, net, 1e-12)
}

// TestDiscountingLowersSinglePremiums checks that positive interest reduces
// every present value.
func TestDiscountingLowersSinglePremiums(t *testing.T) {
	table := premiumTable(t)
	flat, err := NewCommutation(table, 0)
	require.NoError(t, err)
	disc, err := NewCommutation(table, 0.05)
	require.NoError(t, err)

	wholeFlat, _ := flat.WholeLife(60)
	wholeDisc, err := disc.WholeLife(60)
	require.NoError(t, err)
	assert.Less(t, wholeDisc, wholeFlat)

	annFlat, _ := flat.AnnuityDue(60)
	annDisc, err := disc.AnnuityDue(60)
	require.NoError(t, err)
	assert.Less(t, annDisc, annFlat)
}

// TestPremiumErrors checks age and term guards.
func TestPremiumErrors(t *testing.T) {
	comm, err := NewCommutation(premiumTable(t), 0.05)
	require.NoError(t, err)

	_, err = comm.WholeLife(50)
	assert.ErrorIs(t, err, contract.ErrValidation)

	_, err = comm.TermInsurance(60, 0)
	assert.ErrorIs(t, err, contract.ErrConfig)

	// Term running past the table end.
	_, err = comm.TermInsurance(60, 10)
	assert.ErrorIs(t, err, contract.ErrValidation)

	_, err = NewCommutation(premiumTable(t), -1.5)
	assert.ErrorIs(t, err, contract.ErrConfig)
}
