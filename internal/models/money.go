package models

import "github.com/shopspring/decimal"

func init() {
	// Monetary fields are rendered as JSON numbers rather than strings.
	decimal.MarshalJSONWithoutQuotes = true
}
