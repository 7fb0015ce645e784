package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/simonvc/pgcledger/internal/ledger"
	"github.com/simonvc/pgcledger/internal/payroll"
	"github.com/simonvc/pgcledger/internal/vat"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func readRows(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0], excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

func TestBalancete(t *testing.T) {
	b := ledger.BuildBalancete(2024, 1, 12, ledger.DefaultChart(), nil, []ledger.AccountTotal{
		{Code: "43.1", Debit: d("100")},
		{Code: "51", Credit: d("100")},
	})
	var buf bytes.Buffer
	require.NoError(t, Balancete(&buf, b))

	rows := readRows(t, &buf)
	assert.Equal(t, "Balancete 2024, meses 01 a 12", rows[0][0])
	assert.Equal(t, "Conta", rows[2][0])
	assert.Equal(t, "4", rows[3][0])
	last := rows[len(rows)-1]
	assert.Equal(t, "Total", last[0])
	assert.Equal(t, "100", last[4])
}

func TestExtract(t *testing.T) {
	ex := ledger.BuildExtract(ledger.Account{Code: "43.1", Description: "Banco"}, 2024,
		[]ledger.OpeningBalance{{AccountCode: "43.1", Year: 2024, Debit: d("50")}},
		[]ledger.ExtractLine{{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Description: "Depósito", AccountCode: "43.1", Debit: d("25")}})
	var buf bytes.Buffer
	require.NoError(t, Extract(&buf, ex))

	rows := readRows(t, &buf)
	require.Len(t, rows, 6)
	assert.Equal(t, ledger.OpeningDescription, rows[3][1])
	assert.Equal(t, "75", rows[4][5])
}

func TestPayrollAndVAT(t *testing.T) {
	run, err := payroll.Preview([]payroll.Employee{{ID: "e", Name: "Ana", BaseSalary: d("150000"), Active: true}}, nil, 2024, 3, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Payroll(&buf, run))
	rows := readRows(t, &buf)
	assert.Equal(t, "Ana", rows[3][0])

	buf.Reset()
	require.NoError(t, VAT(&buf, []vat.Settlement{{Year: 2024, Month: 3, Balance: d("10"), Label: vat.LabelPayable}}))
	rows = readRows(t, &buf)
	assert.Equal(t, "2024-03", rows[3][0])
	assert.Equal(t, vat.LabelPayable, rows[3][8])
}
