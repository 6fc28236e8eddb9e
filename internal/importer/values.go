package importer

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const maxDNILength = 8

// serial de 9999-12-31 en el sistema de fechas 1900
const maxExcelSerial = 2958465

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
}

// NormalizeDNI recorta espacios y deja como máximo 8 caracteres.
func NormalizeDNI(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= maxDNILength {
		return s
	}
	return string([]rune(s)[:maxDNILength])
}

// ParseDate acepta seriales de Excel y fechas en texto; si no reconoce
// el valor devuelve nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 || serial > maxExcelSerial {
			return nil
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		return dateOnly(t)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t)
		}
	}
	return nil
}

func dateOnly(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// ParseDecimal tolera "S/. 1,234.50", "1.234,50", "1.234.567" y "1500,5";
// si no puede interpretar el valor devuelve cero.
//
// El último separador es decimal cuando le siguen uno, dos o más de tres
// dígitos (valores crudos de Excel); con exactamente tres es de miles.
func ParseDecimal(s string) decimal.Decimal {
	s = strings.TrimLeftFunc(strings.TrimSpace(s), func(r rune) bool {
		return !unicode.IsDigit(r) && r != '-' && r != '+'
	})

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.Zero
	}

	if p := strings.LastIndexAny(clean, ",."); p >= 0 {
		intPart, frac := clean[:p], clean[p+1:]
		intPart = strings.NewReplacer(",", "", ".", "").Replace(intPart)
		if len(frac) == 3 {
			clean = intPart + frac
		} else {
			clean = intPart + "." + frac
		}
		clean = strings.TrimSuffix(clean, ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}

// parseOptionalDecimal devuelve nil cuando la celda está vacía.
func parseOptionalDecimal(s string) *decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d := ParseDecimal(s)
	return &d
}
