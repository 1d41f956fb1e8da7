package invoices

import (
	"context"
	"time"

	"github.com/meridian-books/meridian-books/internal/aging"
)

// RepositoryPort defines data access for invoices.
type RepositoryPort interface {
	CreateInvoice(ctx context.Context, input CreateInput) (*Invoice, error)
	ListInvoices(ctx context.Context, tenant string, filter ListFilter) ([]Invoice, error)
}

// CacheBumper invalidates derived report caches after a mutation.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service handles receivable and payable invoice logic.
type Service struct {
	repo   RepositoryPort
	bumper CacheBumper
	now    func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
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

// Create validates and stores an invoice.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Invoice, error) {
	if input.Type != TypeSale && input.Type != TypePurchase {
		return nil, ErrInvalidType
	}
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	now := s.now()
	if input.InvoiceDate.IsZero() {
		input.InvoiceDate = now
	}
	input.CreatedAt = now
	input.UpdatedAt = now
	invoice, err := s.repo.CreateInvoice(ctx, input)
	if err != nil {
		return nil, err
	}
	if s.bumper != nil {
		// Invalidation failure only means aging reports serve stale data
		// until the cache TTL expires.
		_ = s.bumper.Bump(ctx)
	}
	return invoice, nil
}

// List returns a tenant's invoices, optionally filtered by type.
func (s *Service) List(ctx context.Context, tenant string, filter ListFilter) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx, tenant, filter)
}

// Aging buckets the tenant's outstanding invoices of one type by party.
// Paid and void invoices never age.
func (s *Service) Aging(ctx context.Context, tenant string, invoiceType InvoiceType, asOf time.Time) (map[string]aging.Buckets, error) {
	if invoiceType != TypeSale && invoiceType != TypePurchase {
		return nil, ErrInvalidType
	}
	outstanding, err := s.repo.ListInvoices(ctx, tenant, ListFilter{Type: invoiceType, OutstandingOnly: true})
	if err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	input := make([]aging.Invoice, 0, len(outstanding))
	for _, inv := range outstanding {
		if inv.Status != StatusOpen {
			continue
		}
		input = append(input, aging.Invoice{
			Number:      inv.Number,
			Party:       inv.Party,
			AccountCode: inv.AccountCode,
			Amount:      inv.Amount,
			InvoiceDate: inv.InvoiceDate,
			DueAt:       inv.DueAt,
			TermDays:    inv.TermDays,
		})
	}
	return aging.Classify(input, asOf), nil
}
