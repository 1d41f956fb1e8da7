package ledger

import (
	"math"
	"sort"

	"github.com/meridian-books/meridian-books/internal/coa"
)

// balanceEpsilon absorbs float accumulation noise when comparing totals.
const balanceEpsilon = 1e-6

// TrialBalanceRow is one account's accumulated debit and credit, opening
// included.
type TrialBalanceRow struct {
	Code   string
	Name   string
	Type   coa.FundamentalType
	Debit  float64
	Credit float64
}

// TrialBalance is the aggregated report. IsBalanced surfaces whether total
// debits equal total credits; an imbalance is a data-integrity signal the
// caller must see, never something to paper over here.
type TrialBalance struct {
	Rows        []TrialBalanceRow
	TotalDebit  float64
	TotalCredit float64
	ByType      map[coa.FundamentalType]float64
	IsBalanced  bool
}

// AggregateTrialBalance rolls derived ledgers up into the trial balance and
// the five fundamental-type summaries. Accounts with zero cumulative debit
// and credit are omitted. Asset and Expense net as debit minus credit;
// Liability, Equity and Revenue net as credit minus debit.
func AggregateTrialBalance(ledgers map[string]*AccountLedger, tree *coa.Tree) TrialBalance {
	tb := TrialBalance{
		ByType: map[coa.FundamentalType]float64{
			coa.TypeAsset:     0,
			coa.TypeLiability: 0,
			coa.TypeEquity:    0,
			coa.TypeRevenue:   0,
			coa.TypeExpense:   0,
		},
	}
	codes := make([]string, 0, len(ledgers))
	for code := range ledgers {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		led := ledgers[code]
		debit := led.Opening.Debit + led.Debit
		credit := led.Opening.Credit + led.Credit
		if debit == 0 && credit == 0 {
			continue
		}
		ft := led.Type
		if resolved, err := tree.Classify(code); err == nil {
			ft = resolved
		}
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			Code:   code,
			Name:   led.Name,
			Type:   ft,
			Debit:  debit,
			Credit: credit,
		})
		tb.TotalDebit += debit
		tb.TotalCredit += credit
		switch ft {
		case coa.TypeAsset, coa.TypeExpense:
			tb.ByType[ft] += debit - credit
		default:
			tb.ByType[ft] += credit - debit
		}
	}
	tb.IsBalanced = math.Abs(tb.TotalDebit-tb.TotalCredit) < balanceEpsilon
	return tb
}
