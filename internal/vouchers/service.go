package vouchers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-books/meridian-books/internal/coa"
	"github.com/meridian-books/meridian-books/internal/ledger"
)

// RepositoryPort defines data access for vouchers.
type RepositoryPort interface {
	CreateVoucher(ctx context.Context, input CreateInput) (*Voucher, error)
	ListVouchers(ctx context.Context, tenant string) ([]Voucher, error)
	// ListPostings flattens voucher lines into ledger postings for a tenant.
	ListPostings(ctx context.Context, tenant string) ([]ledger.Posting, error)
	// HasPostings reports whether any voucher line references the account.
	HasPostings(ctx context.Context, tenant, accountCode string) (bool, error)
}

// AccountResolver resolves a code to a detail account within a tenant's
// chart. Implemented by the accounts service; a small port keeps the two
// modules decoupled.
type AccountResolver interface {
	ResolveDetail(ctx context.Context, tenant, code string) (*coa.Account, error)
}

// CacheBumper invalidates derived report caches after a mutation.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// CreateInput carries a voucher submission.
type CreateInput struct {
	Tenant      string
	Date        time.Time
	Description string
	Lines       []Line
	CreatedAt   time.Time
}

// Service handles journal voucher business logic.
type Service struct {
	repo     RepositoryPort
	accounts AccountResolver
	bumper   CacheBumper
	now      func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, accounts AccountResolver) *Service {
	return &Service{repo: repo, accounts: accounts, now: time.Now}
}

// SetCacheBumper attaches report cache invalidation. Wired after
// construction because the reports service depends on this one.
func (s *Service) SetCacheBumper(bumper CacheBumper) {
	s.bumper = bumper
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates and persists a voucher. Every line must be one-sided,
// debits must equal credits across the voucher, and each line must hit an
// existing detail account. The voucher is rejected whole on any failure.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Voucher, error) {
	if err := ValidateLines(input.Lines); err != nil {
		return nil, err
	}
	for _, line := range input.Lines {
		acc, err := s.accounts.ResolveDetail(ctx, input.Tenant, line.AccountCode)
		if err != nil {
			return nil, err
		}
		if !acc.IsDetail() {
			return nil, fmt.Errorf("%w: %s is a group account", coa.ErrUnknownAccount, line.AccountCode)
		}
	}
	if input.Date.IsZero() {
		input.Date = s.now()
	}
	input.CreatedAt = s.now()
	voucher, err := s.repo.CreateVoucher(ctx, input)
	if err != nil {
		return nil, err
	}
	if s.bumper != nil {
		// Invalidation failure only means reports serve slightly stale
		// data until the cache TTL expires.
		_ = s.bumper.Bump(ctx)
	}
	return voucher, nil
}

// List returns a tenant's vouchers.
func (s *Service) List(ctx context.Context, tenant string) ([]Voucher, error) {
	return s.repo.ListVouchers(ctx, tenant)
}

// Postings returns the tenant's full posting stream for ledger derivation.
func (s *Service) Postings(ctx context.Context, tenant string) ([]ledger.Posting, error) {
	return s.repo.ListPostings(ctx, tenant)
}

// HasPostings reports whether the account has any ledger activity. The
// accounts service uses this as its delete/update guard.
func (s *Service) HasPostings(ctx context.Context, tenant, accountCode string) (bool, error) {
	return s.repo.HasPostings(ctx, tenant, accountCode)
}

// PostingsFromVoucher expands a stored voucher into ledger posting lines.
func PostingsFromVoucher(v Voucher) []ledger.Posting {
	postings := make([]ledger.Posting, 0, len(v.Lines))
	for _, l := range v.Lines {
		postings = append(postings, ledger.Posting{
			VoucherID:     v.ID,
			VoucherNumber: v.Number,
			Date:          v.Date,
			Description:   v.Description,
			AccountCode:   l.AccountCode,
			Debit:         l.Debit,
			Credit:        l.Credit,
		})
	}
	return postings
}

// newVoucherID is split out so repositories share one ID scheme.
func newVoucherID() uuid.UUID {
	return uuid.New()
}
