package vouchers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-books/meridian-books/internal/ledger"
	"github.com/meridian-books/meridian-books/internal/platform/db"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the Postgres-backed voucher repository.
func NewRepository(pool *pgxpool.Pool) RepositoryPort {
	return &repository{pool: pool}
}

func (r *repository) CreateVoucher(ctx context.Context, input CreateInput) (*Voucher, error) {
	voucher := &Voucher{
		ID:          newVoucherID(),
		Tenant:      input.Tenant,
		Date:        input.Date,
		Description: input.Description,
		Lines:       input.Lines,
		CreatedAt:   input.CreatedAt,
	}
	err := db.WithTx(ctx, r.pool, pgx.ReadCommitted, func(tx pgx.Tx) error {
		// Per-tenant sequential numbering; the advisory lock serialises
		// writers for the tenant until commit. Read committed so the MAX
		// read after the lock sees the previous writer's commit.
		if _, err := tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtext('vouchers:' || $1))`, input.Tenant); err != nil {
			return fmt.Errorf("vouchers: acquire number lock: %w", err)
		}
		row := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(number), 0) + 1 FROM journal_vouchers WHERE tenant = $1`,
			input.Tenant)
		if err := row.Scan(&voucher.Number); err != nil {
			return fmt.Errorf("vouchers: next number: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO journal_vouchers (id, tenant, number, date, description, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			voucher.ID, voucher.Tenant, voucher.Number, voucher.Date, voucher.Description, voucher.CreatedAt); err != nil {
			return fmt.Errorf("vouchers: insert voucher: %w", err)
		}
		for i, line := range voucher.Lines {
			if _, err := tx.Exec(ctx,
				`INSERT INTO journal_voucher_lines (voucher_id, line_no, account_code, debit, credit)
				 VALUES ($1, $2, $3, $4, $5)`,
				voucher.ID, i+1, line.AccountCode, line.Debit, line.Credit); err != nil {
				return fmt.Errorf("vouchers: insert line %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return voucher, nil
}

func (r *repository) ListVouchers(ctx context.Context, tenant string) ([]Voucher, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT v.id, v.number, v.tenant, v.date, v.description, v.created_at,
		        l.account_code, l.debit, l.credit
		 FROM journal_vouchers v
		 JOIN journal_voucher_lines l ON l.voucher_id = v.id
		 WHERE v.tenant = $1
		 ORDER BY v.date, v.number, l.line_no`, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Voucher
	index := make(map[int64]int)
	for rows.Next() {
		var v Voucher
		var line Line
		if err := rows.Scan(&v.ID, &v.Number, &v.Tenant, &v.Date, &v.Description, &v.CreatedAt,
			&line.AccountCode, &line.Debit, &line.Credit); err != nil {
			return nil, err
		}
		if i, ok := index[v.Number]; ok {
			out[i].Lines = append(out[i].Lines, line)
			continue
		}
		v.Lines = []Line{line}
		index[v.Number] = len(out)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repository) ListPostings(ctx context.Context, tenant string) ([]ledger.Posting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT v.id, v.number, v.date, v.description, l.account_code, l.debit, l.credit
		 FROM journal_vouchers v
		 JOIN journal_voucher_lines l ON l.voucher_id = v.id
		 WHERE v.tenant = $1
		 ORDER BY v.date, v.number, l.line_no`, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postings []ledger.Posting
	for rows.Next() {
		var p ledger.Posting
		if err := rows.Scan(&p.VoucherID, &p.VoucherNumber, &p.Date, &p.Description,
			&p.AccountCode, &p.Debit, &p.Credit); err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

func (r *repository) HasPostings(ctx context.Context, tenant, accountCode string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM journal_voucher_lines l
		   JOIN journal_vouchers v ON v.id = l.voucher_id
		   WHERE v.tenant = $1 AND l.account_code = $2)`,
		tenant, accountCode).Scan(&exists)
	return exists, err
}
