package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeVouchers map[string]bool

func (f fakeVouchers) Contains(name string) bool { return f[name] }

func strPtr(s string) *string { return &s }

func TestPaymentsWorkbook(t *testing.T) {
	castigo := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []PaymentRow{
		{
			DNI: "11111111", Name: "Ana Torres", Number: "C-001", PortfolioName: "CARTERA A", PortfolioID: 4,
			Principal: decimal.NewFromInt(1000), TotalDebt: decimal.NewFromInt(1500), WriteOffDate: &castigo,
			AdvisorDNI: "44444444", AdvisorName: "Carla Ruiz",
			Amount: decimal.RequireFromString("150.50"), PaymentDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			PaymentMethod: "EFECTIVO", Voucher: strPtr("recibo 1.pdf"),
		},
		{DNI: "22222222", Number: "C-002", Voucher: strPtr("../../etc/passwd")},
		{DNI: "33333333", Number: "C-003"},
	}

	f, err := PaymentsWorkbook(rows, "http://localhost:4000/", fakeVouchers{"recibo 1.pdf": true})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, PaymentsSheet, f.GetSheetName(0))

	header, err := f.GetCellValue(PaymentsSheet, "Q1")
	require.NoError(t, err)
	assert.Equal(t, "VOUCHER", header)

	v, err := f.GetCellValue(PaymentsSheet, "Q2")
	require.NoError(t, err)
	assert.Equal(t, "MOSTRAR", v)

	ok, link, err := f.GetCellHyperLink(PaymentsSheet, "Q2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:4000/api/reportes/voucher/recibo%201.pdf", link)

	for _, cell := range []string{"Q3", "Q4"} {
		v, err := f.GetCellValue(PaymentsSheet, cell)
		require.NoError(t, err)
		assert.Equal(t, "-", v, cell)

		ok, _, err := f.GetCellHyperLink(PaymentsSheet, cell)
		require.NoError(t, err)
		assert.False(t, ok, cell)
	}

	paid, err := f.GetCellValue(PaymentsSheet, "O2")
	require.NoError(t, err)
	assert.Equal(t, "10/03/2024", paid)

	amount, err := f.GetCellValue(PaymentsSheet, "N2")
	require.NoError(t, err)
	assert.Equal(t, "150.50", amount)

	emptyDate, err := f.GetCellValue(PaymentsSheet, "K3")
	require.NoError(t, err)
	assert.Equal(t, "", emptyDate)
}

func TestClientWorkbook(t *testing.T) {
	paid := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := []ClientAssignmentRow{
		{ClientID: 1, DNI: "11111111", Name: "Ana Torres", Number: "C-001",
			AdvisorName: strPtr("Carla Ruiz"), Amount: decimal.NewNullDecimal(decimal.NewFromInt(100)), PaymentDate: &paid},
		{ClientID: 1, DNI: "11111111", Name: "Ana Torres", Number: "C-002"},
	}

	f, err := ClientWorkbook(rows)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(ClientSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "ID Cliente", got[0][0])
	assert.Equal(t, "Voucher", got[0][19])
	assert.Equal(t, "Carla Ruiz", got[1][15])
	assert.Equal(t, "100", got[1][16])
	assert.Equal(t, "C-002", got[2][5])
}
