package sim

import "github.com/shopspring/decimal"

// Treasury is the government sink for existence and transaction taxes.
// Amounts are accumulated in decimal so that long runs do not drift.
type Treasury struct {
	existence   map[CompanyID]decimal.Decimal
	transaction map[CompanyID]decimal.Decimal
}

// TaxTotals summarises what a run paid to the treasury.
type TaxTotals struct {
	Existence   float64
	Transaction float64
}

// Total returns existence plus transaction tax.
func (t TaxTotals) Total() float64 { return t.Existence + t.Transaction }

// NewTreasury creates an empty treasury.
func NewTreasury() *Treasury {
	return &Treasury{
		existence:   make(map[CompanyID]decimal.Decimal),
		transaction: make(map[CompanyID]decimal.Decimal),
	}
}

// CollectExistenceTax records a per-tick existence charge. Nil-safe.
func (t *Treasury) CollectExistenceTax(c CompanyID, amount float64) {
	if t == nil {
		return
	}
	t.existence[c] = t.existence[c].Add(decimal.NewFromFloat(amount))
}

// CollectTransactionTax records the tax on an accepted offer. Nil-safe.
func (t *Treasury) CollectTransactionTax(c CompanyID, amount float64) {
	if t == nil {
		return
	}
	t.transaction[c] = t.transaction[c].Add(decimal.NewFromFloat(amount))
}

// PaidBy returns the taxes paid by one company.
func (t *Treasury) PaidBy(c CompanyID) TaxTotals {
	if t == nil {
		return TaxTotals{}
	}
	return TaxTotals{
		Existence:   t.existence[c].InexactFloat64(),
		Transaction: t.transaction[c].InexactFloat64(),
	}
}

// Totals returns the taxes collected from all companies.
func (t *Treasury) Totals() TaxTotals {
	if t == nil {
		return TaxTotals{}
	}
	var ex, tr decimal.Decimal
	for _, v := range t.existence {
		ex = ex.Add(v)
	}
	for _, v := range t.transaction {
		tr = tr.Add(v)
	}
	return TaxTotals{Existence: ex.InexactFloat64(), Transaction: tr.InexactFloat64()}
}
