package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/pgcledger/internal/tax"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y, m, dd int) time.Time { return time.Date(y, time.Month(m), dd, 0, 0, 0, 0, time.UTC) }

func TestComputeBaseSalaryOnly(t *testing.T) {
	emp := Employee{ID: "e1", Name: "Ana", BaseSalary: d("150000"), FoodSubsidy: d("10000"), TransportSubsidy: d("5000"), Active: true}
	s := Compute(emp, nil, 2024, 3, tax.Default())

	assert.True(t, s.Gross.Equal(d("150000")))
	assert.True(t, s.INSS.Equal(d("4500")))
	assert.True(t, s.IRT.Equal(d("5915")))
	assert.True(t, s.Subsidies.Equal(d("15000")))
	assert.True(t, s.EmployerINSS.Equal(d("12000")))
	assert.True(t, s.Net.Equal(d("154585")), s.Net.String())
	assert.Empty(t, s.TransactionIDs)
}

func TestComputeWithTransactions(t *testing.T) {
	emp := Employee{ID: "e1", Name: "Ana", BaseSalary: d("150000"), Active: true}
	txns := []HrTransaction{
		{ID: "t1", EmployeeID: "e1", Type: TxBonus, Amount: d("20000"), Date: day(2024, 3, 5)},
		{ID: "t2", EmployeeID: "e1", Type: TxAllowance, Amount: d("10000"), Date: day(2024, 3, 6)},
		{ID: "t3", EmployeeID: "e1", Type: TxAbsence, Amount: d("5000"), Date: day(2024, 3, 7)},
		{ID: "t4", EmployeeID: "e1", Type: TxAdvance, Amount: d("30000"), Date: day(2024, 3, 8)},
		{ID: "t5", EmployeeID: "e1", Type: TxBonus, Amount: d("99999"), Date: day(2024, 4, 1)},
		{ID: "t6", EmployeeID: "e1", Type: TxBonus, Amount: d("99999"), Date: day(2024, 3, 1), Processed: true},
		{ID: "t7", EmployeeID: "e2", Type: TxBonus, Amount: d("99999"), Date: day(2024, 3, 1)},
	}
	s := Compute(emp, txns, 2024, 3, nil)

	assert.True(t, s.Gross.Equal(d("175000")))
	assert.True(t, s.Advances.Equal(d("30000")))
	assert.Equal(t, []string{"t1", "t2", "t3", "t4"}, s.TransactionIDs)

	inss := tax.INSS(d("175000"))
	irt := tax.IRT(d("175000"), inss)
	expected := d("175000").Sub(inss).Sub(irt).Sub(d("30000"))
	assert.True(t, s.Net.Equal(expected))

	again := Compute(emp, txns, 2024, 3, nil)
	assert.Equal(t, s, again)
	assert.False(t, txns[0].Processed)
}

func TestNetNeverExceedsGrossPlusSubsidies(t *testing.T) {
	for _, base := range []string{"0", "1", "99999", "100000", "150000", "250000", "1000000", "12000000"} {
		emp := Employee{ID: "e", Name: "x", BaseSalary: d(base), OtherSubsidy: d("2500")}
		s := Compute(emp, nil, 2024, 1, nil)
		assert.True(t, s.Net.LessThanOrEqual(s.Gross.Add(s.Subsidies)), base)
		assert.True(t, s.Net.Equal(s.Gross.Add(s.Subsidies).Sub(s.INSS).Sub(s.IRT).Sub(s.Advances)), base)
	}
}

func TestPreview(t *testing.T) {
	employees := []Employee{
		{ID: "e1", Name: "Ana", BaseSalary: d("150000"), Active: true},
		{ID: "e2", Name: "Rui", BaseSalary: d("250000"), Active: true},
		{ID: "e3", Name: "Inactivo", BaseSalary: d("500000")},
	}
	run, err := Preview(employees, nil, 2024, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, RunPreview, run.Status)
	require.Len(t, run.Slips, 2)
	assert.True(t, run.Totals.Gross.Equal(d("400000")))
	assert.True(t, run.Totals.INSS.Equal(d("12000")))

	_, err = Preview(employees, nil, 2024, 13, nil)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestHrTransactionValidate(t *testing.T) {
	tx := HrTransaction{Type: "TIP", Amount: d("1")}
	assert.ErrorIs(t, tx.Validate(), ErrInvalidType)
	tx = HrTransaction{Type: TxBonus, Amount: d("0")}
	assert.ErrorIs(t, tx.Validate(), ErrNegativeAmount)
	tx = HrTransaction{Type: TxBonus, Amount: d("1")}
	assert.NoError(t, tx.Validate())
}
