package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-books/meridian-books/internal/aging"
)

type memoryInvoiceRepo struct {
	invoices []Invoice
	nextID   int64
}

func (r *memoryInvoiceRepo) CreateInvoice(ctx context.Context, input CreateInput) (*Invoice, error) {
	r.nextID++
	inv := Invoice{
		ID:          r.nextID,
		Tenant:      input.Tenant,
		Number:      input.Number,
		Type:        input.Type,
		Party:       input.Party,
		AccountCode: input.AccountCode,
		Amount:      input.Amount,
		Status:      StatusOpen,
		InvoiceDate: input.InvoiceDate,
		DueAt:       input.DueAt,
		TermDays:    input.TermDays,
		CreatedAt:   input.CreatedAt,
		UpdatedAt:   input.UpdatedAt,
	}
	r.invoices = append(r.invoices, inv)
	return &inv, nil
}

func (r *memoryInvoiceRepo) ListInvoices(ctx context.Context, tenant string, filter ListFilter) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		if inv.Tenant != tenant {
			continue
		}
		if filter.Type != "" && inv.Type != filter.Type {
			continue
		}
		if filter.OutstandingOnly && inv.Status != StatusOpen {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func may(d int) time.Time {
	return time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&memoryInvoiceRepo{})

	_, err := svc.Create(context.Background(), CreateInput{Type: "WEIRD", Amount: 10})
	require.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.Create(context.Background(), CreateInput{Type: TypeSale, Amount: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)

	inv, err := svc.Create(context.Background(), CreateInput{
		Tenant: "primary", Number: "SI-1", Type: TypeSale, Party: "Acme", Amount: 100,
	})
	require.NoError(t, err)
	require.Equal(t, StatusOpen, inv.Status)
	require.False(t, inv.InvoiceDate.IsZero())
}

func TestAgingUsesOnlyOpenInvoicesOfRequestedType(t *testing.T) {
	repo := &memoryInvoiceRepo{}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		Tenant: "primary", Number: "SI-1", Type: TypeSale, Party: "Acme", Amount: 100,
		DueAt: may(1).AddDate(0, 0, -42),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{
		Tenant: "primary", Number: "PI-1", Type: TypePurchase, Party: "Globex", Amount: 500,
		DueAt: may(1).AddDate(0, 0, -42),
	})
	require.NoError(t, err)

	// Paid invoices never age.
	repo.invoices = append(repo.invoices, Invoice{
		Tenant: "primary", Number: "SI-2", Type: TypeSale, Party: "Acme", Amount: 999,
		Status: StatusPaid, DueAt: may(1).AddDate(0, 0, -200),
	})

	result, err := svc.Aging(context.Background(), "primary", TypeSale, may(1))
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, 100.0, result["Acme"].Days31to60)
	require.Equal(t, 100.0, result["Acme"].Total)
}

func TestAgingGroupsMissingPartyUnderUnassigned(t *testing.T) {
	repo := &memoryInvoiceRepo{}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		Tenant: "primary", Number: "SI-9", Type: TypeSale, Amount: 77,
		DueAt: may(1),
	})
	require.NoError(t, err)

	result, err := svc.Aging(context.Background(), "primary", TypeSale, may(1))
	require.NoError(t, err)
	require.Equal(t, 77.0, result[aging.UnassignedParty].Current)
}

func TestAgingRejectsUnknownType(t *testing.T) {
	svc := NewService(&memoryInvoiceRepo{})
	_, err := svc.Aging(context.Background(), "primary", "VOID", may(1))
	require.ErrorIs(t, err, ErrInvalidType)
}
