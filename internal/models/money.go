package models

import "github.com/shopspring/decimal"

func init() {
	// montos como número en JSON, igual que los devolvía la API anterior
	decimal.MarshalJSONWithoutQuotes = true
}
