// Package ledger derives per-account ledgers and the trial balance from a
// chart of accounts snapshot plus a stream of journal voucher postings. All
// derivations are pure: same inputs, same output, no hidden state.
package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Posting is one debit or credit line of a journal voucher.
type Posting struct {
	VoucherID     uuid.UUID
	VoucherNumber int64
	Date          time.Time
	Description   string
	AccountCode   string
	Debit         float64
	Credit        float64
}

// OneSided reports whether exactly one of debit/credit is set and positive.
// A line carrying both sides, neither, or a negative amount is invalid input.
func (p Posting) OneSided() bool {
	if p.Debit < 0 || p.Credit < 0 {
		return false
	}
	return (p.Debit > 0) != (p.Credit > 0)
}

// SortPostings orders postings chronologically, ties broken by voucher
// number ascending. Running balances are order-dependent, so every
// derivation sorts with exactly this rule to stay reproducible.
func SortPostings(postings []Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		if !postings[i].Date.Equal(postings[j].Date) {
			return postings[i].Date.Before(postings[j].Date)
		}
		return postings[i].VoucherNumber < postings[j].VoucherNumber
	})
}
