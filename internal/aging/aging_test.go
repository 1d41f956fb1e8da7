package aging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifyBucketBoundaries(t *testing.T) {
	asOf := date(2024, time.May, 1)
	invoices := []Invoice{
		{Number: "INV-1", Party: "Acme", Amount: 100, DueAt: date(2024, time.April, 20)},    // 11 days
		{Number: "INV-2", Party: "Acme", Amount: 200, DueAt: date(2024, time.March, 20)},    // 42 days
		{Number: "INV-3", Party: "Acme", Amount: 300, DueAt: date(2024, time.February, 20)}, // 71 days
		{Number: "INV-4", Party: "Acme", Amount: 400, DueAt: date(2024, time.January, 1)},   // 121 days
	}

	result := Classify(invoices, asOf)
	acme := result["Acme"]
	require.Equal(t, 100.0, acme.Current)
	require.Equal(t, 200.0, acme.Days31to60)
	require.Equal(t, 300.0, acme.Days61to90)
	require.Equal(t, 400.0, acme.Days90Plus)
	require.Equal(t, 1000.0, acme.Total)
}

func TestClassifyExactEdges(t *testing.T) {
	asOf := date(2024, time.May, 1)
	cases := []struct {
		name   string
		due    time.Time
		bucket func(Buckets) float64
	}{
		{"due today is current", asOf, func(b Buckets) float64 { return b.Current }},
		{"not yet due is current", date(2024, time.June, 1), func(b Buckets) float64 { return b.Current }},
		{"exactly 30 is current", date(2024, time.April, 1), func(b Buckets) float64 { return b.Current }},
		{"31 starts the second bucket", date(2024, time.March, 31), func(b Buckets) float64 { return b.Days31to60 }},
		{"exactly 60 stays in second", date(2024, time.March, 2), func(b Buckets) float64 { return b.Days31to60 }},
		{"exactly 90 stays in third", date(2024, time.February, 1), func(b Buckets) float64 { return b.Days61to90 }},
		{"91 lands in 90 plus", date(2024, time.January, 31), func(b Buckets) float64 { return b.Days90Plus }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Classify([]Invoice{{Party: "P", Amount: 50, DueAt: tc.due}}, asOf)
			require.Equal(t, 50.0, tc.bucket(result["P"]), "due %s", tc.due)
		})
	}
}

func TestClassifyTimeOfDayDoesNotShiftBuckets(t *testing.T) {
	asOf := time.Date(2024, time.May, 1, 23, 59, 0, 0, time.UTC)
	due := time.Date(2024, time.April, 1, 0, 1, 0, 0, time.UTC)
	// Calendar distance is exactly 30 days regardless of clock times.
	require.Equal(t, 30, DaysOverdue(due, asOf))

	result := Classify([]Invoice{{Party: "P", Amount: 10, DueAt: due}}, asOf)
	require.Equal(t, 10.0, result["P"].Current)
}

func TestClassifyDerivesDueDateFromTerms(t *testing.T) {
	asOf := date(2024, time.May, 1)
	inv := Invoice{
		Party:       "Globex",
		Amount:      75,
		InvoiceDate: date(2024, time.February, 1),
		TermDays:    30, // due 2024-03-02, 60 days overdue
	}
	result := Classify([]Invoice{inv}, asOf)
	require.Equal(t, 75.0, result["Globex"].Days31to60)
}

func TestClassifyGroupsUnresolvedPartiesUnderReservedKey(t *testing.T) {
	asOf := date(2024, time.May, 1)
	invoices := []Invoice{
		{Party: "", Amount: 40, DueAt: date(2024, time.April, 30)},
		{Party: "", Amount: 60, DueAt: date(2024, time.January, 1)},
	}
	result := Classify(invoices, asOf)
	require.Len(t, result, 1)
	unassigned := result[UnassignedParty]
	require.Equal(t, 40.0, unassigned.Current)
	require.Equal(t, 60.0, unassigned.Days90Plus)
	require.Equal(t, 100.0, unassigned.Total)
}

func TestClassifyIsDeterministic(t *testing.T) {
	asOf := date(2024, time.May, 1)
	invoices := []Invoice{
		{Party: "A", Amount: 1, DueAt: date(2024, time.April, 1)},
		{Party: "B", Amount: 2, DueAt: date(2024, time.March, 1)},
	}
	require.Equal(t, Classify(invoices, asOf), Classify(invoices, asOf))
}
