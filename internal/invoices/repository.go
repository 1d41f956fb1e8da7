package invoices

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the Postgres-backed invoice repository.
func NewRepository(pool *pgxpool.Pool) RepositoryPort {
	return &repository{pool: pool}
}

func (r *repository) CreateInvoice(ctx context.Context, input CreateInput) (*Invoice, error) {
	inv := Invoice{
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
	err := r.pool.QueryRow(ctx,
		`INSERT INTO invoices
		   (tenant, number, type, party, account_code, amount, status, invoice_date, due_at, term_days, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '0001-01-01'::timestamptz), $10, $11, $12)
		 RETURNING id`,
		inv.Tenant, inv.Number, string(inv.Type), inv.Party, inv.AccountCode, inv.Amount,
		string(inv.Status), inv.InvoiceDate, inv.DueAt, inv.TermDays, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repository) ListInvoices(ctx context.Context, tenant string, filter ListFilter) ([]Invoice, error) {
	var sb strings.Builder
	sb.WriteString(
		`SELECT id, tenant, number, type, party, account_code, amount, status,
		        invoice_date, COALESCE(due_at, '0001-01-01'::timestamptz), term_days, created_at, updated_at
		 FROM invoices
		 WHERE tenant = $1`)
	args := []any{tenant}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		sb.WriteString(` AND type = $2`)
	}
	if filter.OutstandingOnly {
		sb.WriteString(` AND status = 'OPEN'`)
	}
	sb.WriteString(` ORDER BY invoice_date, number`)

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		var inv Invoice
		var typ, status string
		if err := rows.Scan(&inv.ID, &inv.Tenant, &inv.Number, &typ, &inv.Party, &inv.AccountCode,
			&inv.Amount, &status, &inv.InvoiceDate, &inv.DueAt, &inv.TermDays,
			&inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		inv.Type = InvoiceType(typ)
		inv.Status = InvoiceStatus(status)
		out = append(out, inv)
	}
	return out, rows.Err()
}
