// Package aging buckets outstanding invoices by how far past due they are
// at a reference date. The classification is pure and deterministic: no
// clock reads, no mutation of its inputs.
package aging

import "time"

// UnassignedParty groups invoices whose party could not be resolved.
// They are reported under this reserved key rather than dropped.
const UnassignedParty = "unassigned"

// Invoice is the read-only input to the classifier. DueAt wins when set;
// otherwise the due date derives from InvoiceDate plus TermDays.
type Invoice struct {
	Number      string
	Party       string
	AccountCode string
	Amount      float64
	InvoiceDate time.Time
	DueAt       time.Time
	TermDays    int
}

// DueDate resolves the effective due date.
func (i Invoice) DueDate() time.Time {
	if !i.DueAt.IsZero() {
		return i.DueAt
	}
	return i.InvoiceDate.AddDate(0, 0, i.TermDays)
}

// Buckets holds one party's outstanding amounts by overdue band.
type Buckets struct {
	Current    float64
	Days31to60 float64
	Days61to90 float64
	Days90Plus float64
	Total      float64
}

// DaysOverdue returns whole days between due date and the reference date,
// on calendar dates. Both sides are truncated to midnight UTC so the time
// of day never shifts an invoice across a bucket boundary. Not-yet-due
// invoices yield a negative count.
func DaysOverdue(due, asOf time.Time) int {
	return int(midnightUTC(asOf).Sub(midnightUTC(due)).Hours() / 24)
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Classify groups invoices per party into overdue buckets. Bucket bounds
// are inclusive: up to 30 days overdue (or not yet due) is Current, 31-60,
// 61-90, beyond that 90+.
func Classify(invoices []Invoice, asOf time.Time) map[string]Buckets {
	out := make(map[string]Buckets)
	for _, inv := range invoices {
		party := inv.Party
		if party == "" {
			party = UnassignedParty
		}
		b := out[party]
		switch days := DaysOverdue(inv.DueDate(), asOf); {
		case days <= 30:
			b.Current += inv.Amount
		case days <= 60:
			b.Days31to60 += inv.Amount
		case days <= 90:
			b.Days61to90 += inv.Amount
		default:
			b.Days90Plus += inv.Amount
		}
		b.Total += inv.Amount
		out[party] = b
	}
	return out
}
