package ledger

import (
	"fmt"
	"time"

	"github.com/meridian-books/meridian-books/internal/coa"
)

// WarningKind labels non-fatal derivation findings.
type WarningKind string

const (
	// WarnDanglingPosting marks a posting whose account is unknown or a group.
	WarnDanglingPosting WarningKind = "DANGLING_POSTING"
	// WarnInvalidLine marks a posting that is not one-sided.
	WarnInvalidLine WarningKind = "INVALID_LINE"
)

// Warning reports a posting the derivation had to skip. Warnings ride
// alongside the partial result; one bad posting never aborts the rest.
type Warning struct {
	Kind    WarningKind
	Posting Posting
	Reason  string
}

// Entry is one ledger line with the running balance after applying it.
type Entry struct {
	Date          time.Time
	VoucherNumber int64
	Description   string
	Debit         float64
	Credit        float64
	Balance       float64
}

// AccountLedger is one detail account's derived ledger.
type AccountLedger struct {
	Code    string
	Name    string
	Type    coa.FundamentalType
	Opening coa.OpeningBalance
	Entries []Entry
	// Debit/Credit accumulate posted amounts only; opening is kept apart.
	Debit   float64
	Credit  float64
	Closing float64
}

// DeriveOptions narrows a derivation run.
type DeriveOptions struct {
	// AccountCodes restricts derivation to these detail accounts. Empty
	// means every detail account in the tree.
	AccountCodes []string
	// AsOf drops postings dated strictly after the cutoff. Zero means no cut.
	AsOf time.Time
}

// Derive folds postings into per-account ledgers. Each detail account starts
// from opening debit minus opening credit; postings apply in date order with
// voucher-number tiebreak, balance moving by debit minus credit. Postings
// referencing unknown or group accounts are skipped and reported.
func Derive(tree *coa.Tree, postings []Posting, opts DeriveOptions) (map[string]*AccountLedger, []Warning) {
	ledgers := make(map[string]*AccountLedger)
	wanted := make(map[string]bool, len(opts.AccountCodes))
	for _, code := range opts.AccountCodes {
		wanted[code] = true
	}
	for _, acc := range tree.Flatten() {
		if !acc.IsDetail() {
			continue
		}
		if len(wanted) > 0 && !wanted[acc.Code] {
			continue
		}
		ledgers[acc.Code] = &AccountLedger{
			Code:    acc.Code,
			Name:    acc.Name,
			Type:    acc.Type,
			Opening: acc.Opening,
			Closing: acc.Opening.Net(),
		}
	}

	ordered := make([]Posting, len(postings))
	copy(ordered, postings)
	SortPostings(ordered)

	var warnings []Warning
	for _, p := range ordered {
		if !opts.AsOf.IsZero() && p.Date.After(opts.AsOf) {
			continue
		}
		if !p.OneSided() {
			warnings = append(warnings, Warning{
				Kind:    WarnInvalidLine,
				Posting: p,
				Reason:  "line must carry exactly one positive side",
			})
			continue
		}
		target, ok := tree.Lookup(p.AccountCode)
		if !ok {
			warnings = append(warnings, Warning{
				Kind:    WarnDanglingPosting,
				Posting: p,
				Reason:  fmt.Sprintf("account %s does not exist", p.AccountCode),
			})
			continue
		}
		if !target.IsDetail() {
			warnings = append(warnings, Warning{
				Kind:    WarnDanglingPosting,
				Posting: p,
				Reason:  fmt.Sprintf("account %s is a group account", p.AccountCode),
			})
			continue
		}
		led, ok := ledgers[p.AccountCode]
		if !ok {
			// Filtered out by AccountCodes; valid posting, just not requested.
			continue
		}
		led.Debit += p.Debit
		led.Credit += p.Credit
		led.Closing += p.Debit - p.Credit
		led.Entries = append(led.Entries, Entry{
			Date:          p.Date,
			VoucherNumber: p.VoucherNumber,
			Description:   p.Description,
			Debit:         p.Debit,
			Credit:        p.Credit,
			Balance:       led.Closing,
		})
	}
	return ledgers, warnings
}
