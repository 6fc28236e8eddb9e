package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook arma un .xlsx en memoria con la primera fila como encabezado.
func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadRowsXLSXKeepsRawValues(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"DNI", "NOMBRE Y APELLIDOS", "FECHA CASTIGO", "CAPITAL"},
		{"12345678", "Ana Torres", 44927, 1500.5},
	})

	rows, err := ReadRows(bytes.NewReader(data), "padron.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"DNI", "NOMBRE Y APELLIDOS", "FECHA CASTIGO", "CAPITAL"}, rows[0])
	assert.Equal(t, "44927", rows[1][2])
	assert.Equal(t, "1500.5", rows[1][3])
}

func TestReadRowsCSVSemicolon(t *testing.T) {
	csv := "\xef\xbb\xbfDNI;NOMBRE Y APELLIDOS;CAPITAL\n12345678;Ana Torres;1.500,50\n\n;;\n87654321;Luis Paz;200\n"

	rows, err := ReadRows(strings.NewReader(csv), "padron.CSV")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "DNI", rows[0][0])
	assert.Equal(t, "1.500,50", rows[1][2])
	assert.Equal(t, "Luis Paz", rows[2][1])
}

func TestReadRowsCSVComma(t *testing.T) {
	rows, err := ReadRows(strings.NewReader("DNI,NOMBRES\n1,\"Paz, Luis\"\n"), "a.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Paz, Luis", rows[1][1])
}

func TestReadRowsErrors(t *testing.T) {
	_, err := ReadRows(strings.NewReader("x"), "padron.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadRows(strings.NewReader("\n\n"), "vacio.csv")
	assert.ErrorIs(t, err, ErrEmptySheet)

	_, err = ReadRows(strings.NewReader("no es un zip"), "roto.xlsx")
	assert.Error(t, err)
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("a.XLSX"))
	assert.True(t, SupportedExtension("a.xls"))
	assert.True(t, SupportedExtension("a.csv"))
	assert.False(t, SupportedExtension("a.txt"))
}
