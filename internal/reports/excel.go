package reports

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	PaymentsSheet = "Pagos"
	ClientSheet   = "Cliente y Asignaciones"

	voucherLabel = "MOSTRAR"
	dateFormat   = "dd/mm/yyyy"
	amountFormat = "#,##0.00"
)

// VoucherChecker indica si un voucher existe dentro de la carpeta de vouchers.
type VoucherChecker interface {
	Contains(name string) bool
}

type column struct {
	header string
	width  float64
}

var paymentColumnsXLSX = []column{
	{"DNI", 12},
	{"NOMBRES COMPLETOS", 25},
	{"CUENTA", 15},
	{"CAMPAÑA", 15},
	{"CARTERA", 15},
	{"ID CARTERA", 12},
	{"SUB CARTERA", 15},
	{"PRODUCTO", 15},
	{"CAPITAL", 12},
	{"DEUDA TOTAL", 12},
	{"FECHA CASTIGO", 15},
	{"DNI ASESOR", 12},
	{"NOMBRE ASESOR", 20},
	{"IMPORTE", 12},
	{"FECHA PAGO", 12},
	{"TIPO PAGO", 12},
	{"VOUCHER", 15},
}

var clientColumnsXLSX = []column{
	{"ID Cliente", 10},
	{"DNI", 12},
	{"Nombres", 25},
	{"Dirección", 25},
	{"ID Cuenta", 10},
	{"Número de Cuenta", 18},
	{"Campaña", 15},
	{"Cartera", 15},
	{"Tipo Cartera", 14},
	{"Sub Cartera", 15},
	{"Producto", 15},
	{"Capital", 12},
	{"Deuda Total", 12},
	{"Fecha Castigo", 14},
	{"DNI Asesor", 12},
	{"Nombre Asesor", 20},
	{"Importe", 12},
	{"Fecha Pago", 12},
	{"Tipo Pago", 12},
	{"Voucher", 40},
}

type styles struct {
	header  int
	date    int
	amount  int
	link    int
	noValue int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error

	dateFmt, amountFmt := dateFormat, amountFormat
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: center,
	}); err != nil {
		return s, err
	}
	if s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return s, err
	}
	if s.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt}); err != nil {
		return s, err
	}
	if s.link, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Underline: "single"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"0070C0"}},
		Alignment: center,
		Border: []excelize.Border{
			{Type: "top", Color: "000000", Style: 1},
			{Type: "left", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	}); err != nil {
		return s, err
	}
	if s.noValue, err = f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{Horizontal: "center"}}); err != nil {
		return s, err
	}
	return s, nil
}

// newSheet crea el libro con una sola hoja, encabezado y anchos de columna.
func newSheet(name string, cols []column) (*excelize.File, styles, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		_ = f.Close()
		return nil, styles{}, err
	}

	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, styles{}, err
	}

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c.header
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(name, colName, colName, c.width); err != nil {
			_ = f.Close()
			return nil, styles{}, err
		}
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		_ = f.Close()
		return nil, styles{}, err
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(name, "A1", last, st.header); err != nil {
		_ = f.Close()
		return nil, styles{}, err
	}
	return f, st, nil
}

// rowWriter escribe celdas de una fila con su estilo.
type rowWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *rowWriter) set(col int, value interface{}, style int) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		w.err = err
		return
	}
	if w.err = w.f.SetCellValue(w.sheet, cell, value); w.err != nil {
		return
	}
	if style != 0 {
		w.err = w.f.SetCellStyle(w.sheet, cell, cell, style)
	}
}

func (w *rowWriter) date(col int, t *time.Time, style int) {
	if t == nil || t.IsZero() {
		w.set(col, "", 0)
		return
	}
	w.set(col, *t, style)
}

func (w *rowWriter) amount(col int, d decimal.Decimal, style int) {
	w.set(col, d.InexactFloat64(), style)
}

// PaymentsWorkbook arma pagos.xlsx. La columna VOUCHER lleva un enlace
// MOSTRAR a baseURL/api/reportes/voucher/<nombre> solo si el archivo existe
// dentro de la carpeta de vouchers; en otro caso "-".
func PaymentsWorkbook(rows []PaymentRow, baseURL string, vouchers VoucherChecker) (*excelize.File, error) {
	f, st, err := newSheet(PaymentsSheet, paymentColumnsXLSX)
	if err != nil {
		return nil, err
	}

	baseURL = strings.TrimRight(baseURL, "/")
	for i, r := range rows {
		w := &rowWriter{f: f, sheet: PaymentsSheet, row: i + 2}
		w.set(1, r.DNI, 0)
		w.set(2, r.Name, 0)
		w.set(3, r.Number, 0)
		w.set(4, r.Campaign, 0)
		w.set(5, r.PortfolioName, 0)
		w.set(6, r.PortfolioID, 0)
		w.set(7, r.SubPortfolio, 0)
		w.set(8, r.Product, 0)
		w.amount(9, r.Principal, st.amount)
		w.amount(10, r.TotalDebt, st.amount)
		w.date(11, r.WriteOffDate, st.date)
		w.set(12, r.AdvisorDNI, 0)
		w.set(13, r.AdvisorName, 0)
		w.amount(14, r.Amount, st.amount)
		w.date(15, &r.PaymentDate, st.date)
		w.set(16, r.PaymentMethod, 0)
		if w.err == nil {
			w.err = writeVoucherLink(f, i+2, r.Voucher, baseURL, vouchers, st)
		}
		if w.err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("fila %d: %w", i+2, w.err)
		}
	}
	return f, nil
}

func writeVoucherLink(f *excelize.File, row int, voucher *string, baseURL string, vouchers VoucherChecker, st styles) error {
	cell, err := excelize.CoordinatesToCellName(len(paymentColumnsXLSX), row)
	if err != nil {
		return err
	}

	name := ""
	if voucher != nil {
		name = path.Base(strings.ReplaceAll(strings.TrimSpace(*voucher), `\`, "/"))
	}
	if name == "" || name == "." || name == "/" || vouchers == nil || !vouchers.Contains(name) {
		if err := f.SetCellValue(PaymentsSheet, cell, "-"); err != nil {
			return err
		}
		return f.SetCellStyle(PaymentsSheet, cell, cell, st.noValue)
	}

	link := baseURL + "/api/reportes/voucher/" + url.PathEscape(name)
	if err := f.SetCellValue(PaymentsSheet, cell, voucherLabel); err != nil {
		return err
	}
	display, tooltip := voucherLabel, name
	if err := f.SetCellHyperLink(PaymentsSheet, cell, link, "External", excelize.HyperlinkOpts{
		Display: &display,
		Tooltip: &tooltip,
	}); err != nil {
		return err
	}
	return f.SetCellStyle(PaymentsSheet, cell, cell, st.link)
}

// ClientWorkbook arma cliente_<id>.xlsx con una fila por cuenta y pago.
func ClientWorkbook(rows []ClientAssignmentRow) (*excelize.File, error) {
	f, st, err := newSheet(ClientSheet, clientColumnsXLSX)
	if err != nil {
		return nil, err
	}

	for i, r := range rows {
		w := &rowWriter{f: f, sheet: ClientSheet, row: i + 2}
		w.set(1, r.ClientID, 0)
		w.set(2, r.DNI, 0)
		w.set(3, r.Name, 0)
		w.set(4, r.Address, 0)
		w.set(5, r.AccountID, 0)
		w.set(6, r.Number, 0)
		w.set(7, r.Campaign, 0)
		w.set(8, r.PortfolioName, 0)
		w.set(9, r.PortfolioType, 0)
		w.set(10, r.SubPortfolio, 0)
		w.set(11, r.Product, 0)
		w.amount(12, r.Principal, st.amount)
		w.amount(13, r.TotalDebt, st.amount)
		w.date(14, r.WriteOffDate, st.date)
		w.set(15, deref(r.AdvisorDNI), 0)
		w.set(16, deref(r.AdvisorName), 0)
		if r.Amount.Valid {
			w.amount(17, r.Amount.Decimal, st.amount)
		}
		w.date(18, r.PaymentDate, st.date)
		w.set(19, deref(r.PaymentMethod), 0)
		w.set(20, deref(r.Voucher), 0)
		if w.err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("fila %d: %w", i+2, w.err)
		}
	}
	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
