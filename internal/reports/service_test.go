package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-books/meridian-books/internal/aging"
	"github.com/meridian-books/meridian-books/internal/coa"
	"github.com/meridian-books/meridian-books/internal/invoices"
	"github.com/meridian-books/meridian-books/internal/ledger"
)

type stubCharts struct {
	tree  *coa.Tree
	calls int
}

func (s *stubCharts) Snapshot(ctx context.Context, tenant string) (*coa.Tree, error) {
	s.calls++
	return s.tree, nil
}

type stubPostings struct {
	postings []ledger.Posting
	calls    int
}

func (s *stubPostings) Postings(ctx context.Context, tenant string) ([]ledger.Posting, error) {
	s.calls++
	return s.postings, nil
}

type stubAging struct {
	buckets map[string]aging.Buckets
	calls   int
}

func (s *stubAging) Aging(ctx context.Context, tenant string, invoiceType invoices.InvoiceType, asOf time.Time) (map[string]aging.Buckets, error) {
	s.calls++
	return s.buckets, nil
}

func reportTree(t *testing.T) *coa.Tree {
	t.Helper()
	tree := coa.NewTree("primary")
	cash, err := tree.Add(coa.AddInput{ParentCode: "1000", Name: "Cash", Opening: coa.OpeningBalance{Debit: 500}})
	if err != nil {
		t.Fatalf("add cash: %v", err)
	}
	if cash.Code != "10001" {
		t.Fatalf("unexpected cash code %s", cash.Code)
	}
	if _, err := tree.Add(coa.AddInput{ParentCode: "3000", Name: "Share Capital", Opening: coa.OpeningBalance{Credit: 500}}); err != nil {
		t.Fatalf("add equity: %v", err)
	}
	if _, err := tree.Add(coa.AddInput{ParentCode: "4000", Name: "Sales"}); err != nil {
		t.Fatalf("add sales: %v", err)
	}
	return tree
}

func newTestService(t *testing.T, charts *stubCharts, postings *stubPostings, agingPort *stubAging) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(charts, postings, agingPort, cache, nil)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func samplePostings() []ledger.Posting {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return []ledger.Posting{
		{VoucherNumber: 1, Date: date, AccountCode: "10001", Debit: 200},
		{VoucherNumber: 1, Date: date, AccountCode: "40001", Credit: 200},
	}
}

func TestTrialBalanceCaches(t *testing.T) {
	charts := &stubCharts{tree: reportTree(t)}
	postings := &stubPostings{postings: samplePostings()}
	svc, cleanup := newTestService(t, charts, postings, &stubAging{})
	defer cleanup()

	ctx := context.Background()
	view, err := svc.TrialBalance(ctx, "primary", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.IsBalanced {
		t.Fatalf("expected balanced trial balance, totals %.2f / %.2f", view.TotalDebit, view.TotalCredit)
	}
	if view.TotalDebit != 700 {
		t.Fatalf("expected total debit 700 got %.2f", view.TotalDebit)
	}

	again, err := svc.TrialBalance(ctx, "primary", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charts.calls != 1 || postings.calls != 1 {
		t.Fatalf("expected a single build, got charts=%d postings=%d", charts.calls, postings.calls)
	}
	if again.TotalDebit != view.TotalDebit {
		t.Fatalf("cached payload diverged: %.2f vs %.2f", again.TotalDebit, view.TotalDebit)
	}
}

func TestBumpInvalidatesCachedReports(t *testing.T) {
	charts := &stubCharts{tree: reportTree(t)}
	postings := &stubPostings{postings: samplePostings()}
	svc, cleanup := newTestService(t, charts, postings, &stubAging{})
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.TrialBalance(ctx, "primary", time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Bump(ctx); err != nil {
		t.Fatalf("bump: %v", err)
	}
	if _, err := svc.TrialBalance(ctx, "primary", time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charts.calls != 2 {
		t.Fatalf("expected rebuild after bump, got %d builds", charts.calls)
	}
}

func TestGeneralLedgerFilterBypassesCache(t *testing.T) {
	charts := &stubCharts{tree: reportTree(t)}
	postings := &stubPostings{postings: samplePostings()}
	svc, cleanup := newTestService(t, charts, postings, &stubAging{})
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		view, err := svc.GeneralLedger(ctx, "primary", []string{"10001"}, time.Time{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(view.Accounts) != 1 || view.Accounts[0].Code != "10001" {
			t.Fatalf("expected only the cash ledger, got %+v", view.Accounts)
		}
		if view.Accounts[0].Closing != 700 {
			t.Fatalf("expected closing 700 got %.2f", view.Accounts[0].Closing)
		}
	}
	if charts.calls != 2 {
		t.Fatalf("filtered ledgers must not be cached, got %d builds", charts.calls)
	}
}

func TestAgingRequiresAsOf(t *testing.T) {
	svc, cleanup := newTestService(t, &stubCharts{tree: reportTree(t)}, &stubPostings{}, &stubAging{})
	defer cleanup()

	if _, err := svc.Aging(context.Background(), "primary", invoices.TypeSale, time.Time{}); err == nil {
		t.Fatal("expected error for zero as-of date")
	}
}

func TestAgingViewIncludesTotals(t *testing.T) {
	agingPort := &stubAging{buckets: map[string]aging.Buckets{
		"Acme":   {Current: 100, Days31to60: 50, Total: 150},
		"Globex": {Days90Plus: 900, Total: 900},
	}}
	svc, cleanup := newTestService(t, &stubCharts{tree: reportTree(t)}, &stubPostings{}, agingPort)
	defer cleanup()

	asOf := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	view, err := svc.Aging(context.Background(), "primary", invoices.TypeSale, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Rows) != 2 {
		t.Fatalf("expected 2 rows got %d", len(view.Rows))
	}
	if view.Rows[0].Party != "Acme" || view.Rows[1].Party != "Globex" {
		t.Fatalf("expected rows sorted by party, got %+v", view.Rows)
	}
	if view.Totals.Total != 1050 || view.Totals.Days90Plus != 900 {
		t.Fatalf("unexpected totals %+v", view.Totals)
	}
	if view.AsOf != "2024-05-01" {
		t.Fatalf("unexpected as-of %q", view.AsOf)
	}
}

func TestServiceWithoutRedisStillBuilds(t *testing.T) {
	charts := &stubCharts{tree: reportTree(t)}
	postings := &stubPostings{postings: samplePostings()}
	svc := NewService(charts, postings, &stubAging{}, NewCache(nil, time.Minute), nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		view, err := svc.TrialBalance(ctx, "primary", time.Time{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !view.IsBalanced {
			t.Fatal("expected balanced trial balance")
		}
	}
	if charts.calls != 2 {
		t.Fatalf("nil cache must rebuild each time, got %d builds", charts.calls)
	}
}
