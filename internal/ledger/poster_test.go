package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-books/meridian-books/internal/coa"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func testTree(t *testing.T) *coa.Tree {
	t.Helper()
	tree, err := coa.BuildTree("primary", []coa.Account{
		{Code: "1000", Name: "Assets", Kind: coa.KindGroup},
		{Code: "1100", Name: "Cash", Kind: coa.KindDetail, ParentCode: "1000", Opening: coa.OpeningBalance{Debit: 1000}},
		{Code: "1200", Name: "Receivables", Kind: coa.KindDetail, ParentCode: "1000"},
		{Code: "4000", Name: "Revenue", Kind: coa.KindGroup},
		{Code: "4100", Name: "Sales", Kind: coa.KindDetail, ParentCode: "4000"},
	})
	require.NoError(t, err)
	return tree
}

func TestDeriveRunningBalance(t *testing.T) {
	tree := testTree(t)
	postings := []Posting{
		// Supplied out of order on purpose; derivation must sort.
		{VoucherNumber: 2, Date: day(2), AccountCode: "1100", Credit: 500},
		{VoucherNumber: 1, Date: day(1), AccountCode: "1100", Debit: 200},
	}

	ledgers, warnings := Derive(tree, postings, DeriveOptions{})
	require.Empty(t, warnings)

	cash := ledgers["1100"]
	require.NotNil(t, cash)
	require.Len(t, cash.Entries, 2)
	require.Equal(t, 1200.0, cash.Entries[0].Balance)
	require.Equal(t, 700.0, cash.Entries[1].Balance)
	require.Equal(t, 700.0, cash.Closing)
	require.Equal(t, 200.0, cash.Debit)
	require.Equal(t, 500.0, cash.Credit)
}

func TestDeriveIsIdempotent(t *testing.T) {
	tree := testTree(t)
	postings := []Posting{
		{VoucherNumber: 1, Date: day(1), AccountCode: "1100", Debit: 200},
		{VoucherNumber: 1, Date: day(1), AccountCode: "4100", Credit: 200},
		{VoucherNumber: 2, Date: day(2), AccountCode: "1100", Credit: 500},
		{VoucherNumber: 2, Date: day(2), AccountCode: "1200", Debit: 500},
	}

	first, firstWarnings := Derive(tree, postings, DeriveOptions{})
	second, secondWarnings := Derive(tree, postings, DeriveOptions{})
	require.Equal(t, first, second)
	require.Equal(t, firstWarnings, secondWarnings)
	// The caller's slice must not have been reordered in place.
	require.Equal(t, int64(1), postings[0].VoucherNumber)
}

func TestDeriveTiesBrokenByVoucherNumber(t *testing.T) {
	tree := testTree(t)
	postings := []Posting{
		{VoucherNumber: 9, Date: day(5), AccountCode: "1100", Credit: 100},
		{VoucherNumber: 3, Date: day(5), AccountCode: "1100", Debit: 400},
	}

	ledgers, _ := Derive(tree, postings, DeriveOptions{})
	cash := ledgers["1100"]
	require.Equal(t, int64(3), cash.Entries[0].VoucherNumber)
	require.Equal(t, 1400.0, cash.Entries[0].Balance)
	require.Equal(t, int64(9), cash.Entries[1].VoucherNumber)
	require.Equal(t, 1300.0, cash.Entries[1].Balance)
}

func TestDeriveDanglingPostingIsNonFatal(t *testing.T) {
	tree := testTree(t)
	postings := []Posting{
		{VoucherNumber: 1, Date: day(1), AccountCode: "1100", Debit: 200},
		{VoucherNumber: 1, Date: day(1), AccountCode: "7777", Credit: 200},
		{VoucherNumber: 2, Date: day(2), AccountCode: "1000", Debit: 50}, // group account
	}

	ledgers, warnings := Derive(tree, postings, DeriveOptions{})

	require.Len(t, warnings, 2)
	require.Equal(t, WarnDanglingPosting, warnings[0].Kind)
	require.Equal(t, "7777", warnings[0].Posting.AccountCode)
	require.Equal(t, WarnDanglingPosting, warnings[1].Kind)
	require.Equal(t, "1000", warnings[1].Posting.AccountCode)

	// The good posting still landed.
	require.Equal(t, 1200.0, ledgers["1100"].Closing)
}

func TestDeriveRejectsTwoSidedAndEmptyLines(t *testing.T) {
	tree := testTree(t)
	postings := []Posting{
		{VoucherNumber: 1, Date: day(1), AccountCode: "1100", Debit: 100, Credit: 100},
		{VoucherNumber: 2, Date: day(2), AccountCode: "1100"},
	}

	ledgers, warnings := Derive(tree, postings, DeriveOptions{})
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		require.Equal(t, WarnInvalidLine, w.Kind)
	}
	require.Empty(t, ledgers["1100"].Entries)
	require.Equal(t, 1000.0, ledgers["1100"].Closing)
}

func TestDeriveAsOfCutoff(t *testing.T) {
	tree := testTree(t)
	postings := []Posting{
		{VoucherNumber: 1, Date: day(1), AccountCode: "1100", Debit: 200},
		{VoucherNumber: 2, Date: day(20), AccountCode: "1100", Credit: 500},
	}

	ledgers, _ := Derive(tree, postings, DeriveOptions{AsOf: day(10)})
	cash := ledgers["1100"]
	require.Len(t, cash.Entries, 1)
	require.Equal(t, 1200.0, cash.Closing)
}

func TestDeriveAccountFilter(t *testing.T) {
	tree := testTree(t)
	postings := []Posting{
		{VoucherNumber: 1, Date: day(1), AccountCode: "1100", Debit: 200},
		{VoucherNumber: 1, Date: day(1), AccountCode: "4100", Credit: 200},
	}

	ledgers, warnings := Derive(tree, postings, DeriveOptions{AccountCodes: []string{"4100"}})
	require.Empty(t, warnings)
	require.Len(t, ledgers, 1)
	require.NotNil(t, ledgers["4100"])
	require.Equal(t, -200.0, ledgers["4100"].Closing)
}
