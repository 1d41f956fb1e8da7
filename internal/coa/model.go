package coa

import "time"

// FundamentalType enumerates the five top-level accounting classifications.
type FundamentalType string

const (
	TypeAsset     FundamentalType = "ASSET"
	TypeLiability FundamentalType = "LIABILITY"
	TypeEquity    FundamentalType = "EQUITY"
	TypeRevenue   FundamentalType = "REVENUE"
	TypeExpense   FundamentalType = "EXPENSE"
)

// AccountKind distinguishes structural group accounts from postable leaves.
type AccountKind string

const (
	KindGroup  AccountKind = "GROUP"
	KindDetail AccountKind = "DETAIL"
)

// OpeningBalance seeds an account's ledger before any postings.
type OpeningBalance struct {
	Debit  float64
	Credit float64
}

// Net returns the debit-normal opening balance.
func (b OpeningBalance) Net() float64 {
	return b.Debit - b.Credit
}

// Account models one chart of accounts node. Children keep insertion order;
// display order is not recomputed from codes.
type Account struct {
	Code       string
	Name       string
	Kind       AccountKind
	Type       FundamentalType
	ParentCode string
	Opening    OpeningBalance
	IsActive   bool
	Children   []*Account
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsDetail reports whether postings may reference the account.
func (a *Account) IsDetail() bool {
	return a != nil && a.Kind == KindDetail
}

// typeForDigit maps a top-level code's leading digit to its classification.
func typeForDigit(d byte) (FundamentalType, bool) {
	switch d {
	case '1':
		return TypeAsset, true
	case '2':
		return TypeLiability, true
	case '3':
		return TypeEquity, true
	case '4':
		return TypeRevenue, true
	case '5':
		return TypeExpense, true
	default:
		return "", false
	}
}
