package reports

import (
	"sort"
	"time"

	"github.com/meridian-books/meridian-books/internal/aging"
	"github.com/meridian-books/meridian-books/internal/ledger"
)

// TrialBalanceView is the JSON/export shape of the trial balance report.
type TrialBalanceView struct {
	Tenant      string             `json:"tenant"`
	AsOf        string             `json:"as_of,omitempty"`
	Rows        []TrialBalanceRow  `json:"rows"`
	TotalDebit  float64            `json:"total_debit"`
	TotalCredit float64            `json:"total_credit"`
	ByType      map[string]float64 `json:"by_type"`
	IsBalanced  bool               `json:"is_balanced"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// TrialBalanceRow is one report line.
type TrialBalanceRow struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Debit  float64 `json:"debit"`
	Credit float64 `json:"credit"`
}

// LedgerEntryView is one ledger line with its running balance.
type LedgerEntryView struct {
	Date          string  `json:"date"`
	VoucherNumber int64   `json:"voucher_number"`
	Description   string  `json:"description,omitempty"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
	Balance       float64 `json:"balance"`
}

// AccountLedgerView is one account's ledger section.
type AccountLedgerView struct {
	Code    string            `json:"code"`
	Name    string            `json:"name"`
	Type    string            `json:"type"`
	Opening float64           `json:"opening"`
	Entries []LedgerEntryView `json:"entries"`
	Debit   float64           `json:"debit"`
	Credit  float64           `json:"credit"`
	Closing float64           `json:"closing"`
}

// GeneralLedgerView is the JSON/export shape of the general ledger report.
type GeneralLedgerView struct {
	Tenant   string              `json:"tenant"`
	AsOf     string              `json:"as_of,omitempty"`
	Accounts []AccountLedgerView `json:"accounts"`
	Warnings []string            `json:"warnings,omitempty"`
}

// AgingRow is one party's outstanding amounts by overdue bucket.
type AgingRow struct {
	Party      string  `json:"party"`
	Current    float64 `json:"current"`
	Days31to60 float64 `json:"days_31_to_60"`
	Days61to90 float64 `json:"days_61_to_90"`
	Days90Plus float64 `json:"days_90_plus"`
	Total      float64 `json:"total"`
}

// AgingView is the JSON/export shape of the AR/AP aging report.
type AgingView struct {
	Tenant string     `json:"tenant"`
	Type   string     `json:"type"`
	AsOf   string     `json:"as_of"`
	Rows   []AgingRow `json:"rows"`
	Totals AgingRow   `json:"totals"`
}

func formatAsOf(asOf time.Time) string {
	if asOf.IsZero() {
		return ""
	}
	return asOf.Format("2006-01-02")
}

func toTrialBalanceView(tenant string, asOf time.Time, tb ledger.TrialBalance, warnings []ledger.Warning) *TrialBalanceView {
	view := &TrialBalanceView{
		Tenant:      tenant,
		AsOf:        formatAsOf(asOf),
		Rows:        make([]TrialBalanceRow, 0, len(tb.Rows)),
		TotalDebit:  tb.TotalDebit,
		TotalCredit: tb.TotalCredit,
		ByType:      make(map[string]float64, len(tb.ByType)),
		IsBalanced:  tb.IsBalanced,
	}
	for _, row := range tb.Rows {
		view.Rows = append(view.Rows, TrialBalanceRow{
			Code:   row.Code,
			Name:   row.Name,
			Type:   string(row.Type),
			Debit:  row.Debit,
			Credit: row.Credit,
		})
	}
	for ft, net := range tb.ByType {
		view.ByType[string(ft)] = net
	}
	view.Warnings = warningStrings(warnings)
	return view
}

func toGeneralLedgerView(tenant string, asOf time.Time, ledgers map[string]*ledger.AccountLedger, warnings []ledger.Warning) *GeneralLedgerView {
	codes := make([]string, 0, len(ledgers))
	for code := range ledgers {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	view := &GeneralLedgerView{
		Tenant:   tenant,
		AsOf:     formatAsOf(asOf),
		Accounts: make([]AccountLedgerView, 0, len(codes)),
	}
	for _, code := range codes {
		led := ledgers[code]
		section := AccountLedgerView{
			Code:    led.Code,
			Name:    led.Name,
			Type:    string(led.Type),
			Opening: led.Opening.Net(),
			Entries: make([]LedgerEntryView, 0, len(led.Entries)),
			Debit:   led.Debit,
			Credit:  led.Credit,
			Closing: led.Closing,
		}
		for _, e := range led.Entries {
			section.Entries = append(section.Entries, LedgerEntryView{
				Date:          e.Date.Format("2006-01-02"),
				VoucherNumber: e.VoucherNumber,
				Description:   e.Description,
				Debit:         e.Debit,
				Credit:        e.Credit,
				Balance:       e.Balance,
			})
		}
		view.Accounts = append(view.Accounts, section)
	}
	view.Warnings = warningStrings(warnings)
	return view
}

func toAgingView(tenant, invoiceType string, asOf time.Time, buckets map[string]aging.Buckets) *AgingView {
	parties := make([]string, 0, len(buckets))
	for party := range buckets {
		parties = append(parties, party)
	}
	sort.Strings(parties)

	view := &AgingView{
		Tenant: tenant,
		Type:   invoiceType,
		AsOf:   asOf.Format("2006-01-02"),
		Rows:   make([]AgingRow, 0, len(parties)),
	}
	for _, party := range parties {
		b := buckets[party]
		row := AgingRow{
			Party:      party,
			Current:    b.Current,
			Days31to60: b.Days31to60,
			Days61to90: b.Days61to90,
			Days90Plus: b.Days90Plus,
			Total:      b.Total,
		}
		view.Rows = append(view.Rows, row)
		view.Totals.Current += row.Current
		view.Totals.Days31to60 += row.Days31to60
		view.Totals.Days61to90 += row.Days61to90
		view.Totals.Days90Plus += row.Days90Plus
		view.Totals.Total += row.Total
	}
	view.Totals.Party = "TOTAL"
	return view
}

func warningStrings(warnings []ledger.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, string(w.Kind)+": "+w.Reason)
	}
	return out
}
