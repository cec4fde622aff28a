package lifetable

import "github.com/mfigueroa/lifecast/internal/contract"

// Net single premiums and net annual premiums per unit sum assured, all
// expressed through commutation columns. Benefits pay at the end of the year
// of death; annuities are due (paid at the start of each year).

// WholeLife returns the net single premium for whole-life insurance issued
// at the given age.
func (c *Commutation) WholeLife(age int) (float64, error) {
	i, err := c.ageIndex(age)
	if err != nil {
		return 0, err
	}
	return c.M[i] / c.D[i], nil
}

// TermInsurance returns the net single premium for an n-year term insurance.
func (c *Commutation) TermInsurance(age, years int) (float64, error) {
	i, j, err := c.spanIndex(age, years)
	if err != nil {
		return 0, err
	}
	return (c.M[i] - c.M[j]) / c.D[i], nil
}

// PureEndowment returns the net single premium for a payment contingent on
// surviving n years.
func (c *Commutation) PureEndowment(age, years int) (float64, error) {
	i, j, err := c.spanIndex(age, years)
	if err != nil {
		return 0, err
	}
	return c.D[j] / c.D[i], nil
}

// Endowment returns the net single premium for an n-year endowment, the sum
// of the term insurance and the pure endowment.
func (c *Commutation) Endowment(age, years int) (float64, error) {
	i, j, err := c.spanIndex(age, years)
	if err != nil {
		return 0, err
	}
	return (c.M[i] - c.M[j] + c.D[j]) / c.D[i], nil
}

// AnnuityDue returns the expected present value of a whole-life annuity-due
// of 1 per year.
func (c *Commutation) AnnuityDue(age int) (float64, error) {
	i, err := c.ageIndex(age)
	if err != nil {
		return 0, err
	}
	return c.N[i] / c.D[i], nil
}

// TemporaryAnnuityDue returns the expected present value of an n-year
// temporary annuity-due of 1 per year.
func (c *Commutation) TemporaryAnnuityDue(age, years int) (float64, error) {
	i, j, err := c.spanIndex(age, years)
	if err != nil {
		return 0, err
	}
	return (c.N[i] - c.N[j]) / c.D[i], nil
}

// NetAnnualPremium returns the level annual premium for an n-year term
// insurance funded by an n-year temporary annuity-due.
func (c *Commutation) NetAnnualPremium(age, years int) (float64, error) {
	single, err := c.TermInsurance(age, years)
	if err != nil {
		return 0, err
	}
	annuity, err := c.TemporaryAnnuityDue(age, years)
	if err != nil {
		return 0, err
	}
	if annuity == 0 {
		return 0, contract.NumericErrorf("zero annuity value at age %d over %d years", age, years)
	}
	return single / annuity, nil
}

// spanIndex resolves the issue age and the age n years later to table
// indexes, checking that both lie inside the table.
func (c *Commutation) spanIndex(age, years int) (int, int, error) {
	if years <= 0 {
		return 0, 0, contract.ConfigErrorf("term of %d years is not positive", years)
	}
	i, err := c.ageIndex(age)
	if err != nil {
		return 0, 0, err
	}
	j, err := c.ageIndex(age + years)
	if err != nil {
		return 0, 0, err
	}
	return i, j, nil
}
