// Package reports assembles the derived financial reports: trial balance,
// general ledger and AR/AP aging. It glues the pure derivation packages to
// chart snapshots, the posting stream, the Redis cache and exports.
package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/meridian-books/meridian-books/internal/aging"
	"github.com/meridian-books/meridian-books/internal/coa"
	"github.com/meridian-books/meridian-books/internal/invoices"
	"github.com/meridian-books/meridian-books/internal/ledger"
	"github.com/meridian-books/meridian-books/internal/observability"
)

// ChartPort supplies immutable tree snapshots for derivation.
type ChartPort interface {
	Snapshot(ctx context.Context, tenant string) (*coa.Tree, error)
}

// PostingsPort supplies the tenant's journal posting stream.
type PostingsPort interface {
	Postings(ctx context.Context, tenant string) ([]ledger.Posting, error)
}

// AgingPort buckets outstanding invoices by party.
type AgingPort interface {
	Aging(ctx context.Context, tenant string, invoiceType invoices.InvoiceType, asOf time.Time) (map[string]aging.Buckets, error)
}

// Service derives reports on demand, coalescing identical concurrent
// requests and caching results until the next mutation bump.
type Service struct {
	charts   ChartPort
	postings PostingsPort
	aging    AgingPort
	cache    *Cache
	metrics  *observability.Metrics
	group    singleflight.Group
}

// NewService builds Service instance. Cache and metrics may be nil.
func NewService(charts ChartPort, postings PostingsPort, agingPort AgingPort, cache *Cache, metrics *observability.Metrics) *Service {
	return &Service{
		charts:   charts,
		postings: postings,
		aging:    agingPort,
		cache:    cache,
		metrics:  metrics,
	}
}

// Bump invalidates cached reports. Mutating services call this after a
// successful write.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) observe(report, outcome string, started time.Time) {
	s.metrics.ObserveReportBuild(report, outcome, time.Since(started))
}

// singleflightJSON coalesces concurrent builds of the same cache key, then
// serves each caller from the cached JSON payload.
func (s *Service) singleflightJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		return nil, s.cache.FetchJSON(ctx, key, dest, loader)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		if res.Shared {
			// Another caller populated dest for its own struct; read back
			// from the cache so every caller gets the payload.
			return s.cache.FetchJSON(ctx, key, dest, loader)
		}
		return nil
	}
}

// TrialBalance derives (or serves cached) the tenant's trial balance.
func (s *Service) TrialBalance(ctx context.Context, tenant string, asOf time.Time) (*TrialBalanceView, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "tb", tenant, formatAsOf(asOf))
	if err != nil {
		return nil, err
	}
	var view TrialBalanceView
	err = s.singleflightJSON(ctx, key, &view, func(ctx context.Context) (interface{}, error) {
		started := time.Now()
		built, err := s.buildTrialBalance(ctx, tenant, asOf)
		if err != nil {
			s.observe("trial_balance", "error", started)
			return nil, err
		}
		s.observe("trial_balance", "build", started)
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *Service) buildTrialBalance(ctx context.Context, tenant string, asOf time.Time) (*TrialBalanceView, error) {
	tree, postings, err := s.inputs(ctx, tenant)
	if err != nil {
		return nil, err
	}
	ledgers, warnings := ledger.Derive(tree, postings, ledger.DeriveOptions{AsOf: asOf})
	tb := ledger.AggregateTrialBalance(ledgers, tree)
	return toTrialBalanceView(tenant, asOf, tb, warnings), nil
}

// GeneralLedger derives per-account ledgers, optionally restricted to the
// given account codes. Filtered requests bypass the cache; the unfiltered
// report is cached like the others.
func (s *Service) GeneralLedger(ctx context.Context, tenant string, accountCodes []string, asOf time.Time) (*GeneralLedgerView, error) {
	if len(accountCodes) > 0 {
		tree, postings, err := s.inputs(ctx, tenant)
		if err != nil {
			return nil, err
		}
		ledgers, warnings := ledger.Derive(tree, postings, ledger.DeriveOptions{AccountCodes: accountCodes, AsOf: asOf})
		return toGeneralLedgerView(tenant, asOf, ledgers, warnings), nil
	}
	key, err := s.cache.BuildKey(ctx, "reports", "gl", tenant, formatAsOf(asOf))
	if err != nil {
		return nil, err
	}
	var view GeneralLedgerView
	err = s.singleflightJSON(ctx, key, &view, func(ctx context.Context) (interface{}, error) {
		started := time.Now()
		tree, postings, err := s.inputs(ctx, tenant)
		if err != nil {
			s.observe("general_ledger", "error", started)
			return nil, err
		}
		ledgers, warnings := ledger.Derive(tree, postings, ledger.DeriveOptions{AsOf: asOf})
		s.observe("general_ledger", "build", started)
		return toGeneralLedgerView(tenant, asOf, ledgers, warnings), nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Aging derives (or serves cached) the receivable or payable aging table.
func (s *Service) Aging(ctx context.Context, tenant string, invoiceType invoices.InvoiceType, asOf time.Time) (*AgingView, error) {
	if asOf.IsZero() {
		return nil, fmt.Errorf("reports: aging requires an as-of date")
	}
	key, err := s.cache.BuildKey(ctx, "reports", "aging", tenant, string(invoiceType), formatAsOf(asOf))
	if err != nil {
		return nil, err
	}
	var view AgingView
	err = s.singleflightJSON(ctx, key, &view, func(ctx context.Context) (interface{}, error) {
		started := time.Now()
		buckets, err := s.aging.Aging(ctx, tenant, invoiceType, asOf)
		if err != nil {
			s.observe("aging", "error", started)
			return nil, err
		}
		s.observe("aging", "build", started)
		return toAgingView(tenant, string(invoiceType), asOf, buckets), nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *Service) inputs(ctx context.Context, tenant string) (*coa.Tree, []ledger.Posting, error) {
	tree, err := s.charts.Snapshot(ctx, tenant)
	if err != nil {
		return nil, nil, err
	}
	postings, err := s.postings.Postings(ctx, tenant)
	if err != nil {
		return nil, nil, err
	}
	return tree, postings, nil
}
