// Package domain holds the core value types shared by the catalog, the
// rate-resolution engine and the conversion controller.
//
// Invariants:
//   - Currency IDs are canonical lowercase identifiers ("bitcoin", "usd").
//   - An ExchangeRate is always strictly positive; a zero or negative rate is
//     a resolution failure, never a value.
package domain

// Currency is identity and display metadata for a single currency.
// Instances are immutable once constructed and cached by the catalog for the
// process lifetime.
type Currency struct {
	ID      string `json:"id"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	IsFiat  bool   `json:"is_fiat"`
	IconURL string `json:"icon_url,omitempty"`
}

// IsCrypto reports whether the currency is a cryptocurrency. Fiat and crypto
// are mutually exclusive classifications.
func (c Currency) IsCrypto() bool {
	return !c.IsFiat
}
