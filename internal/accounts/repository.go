package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-books/meridian-books/internal/coa"
)

const uniqueViolation = "23505"

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the Postgres-backed chart repository.
func NewRepository(pool *pgxpool.Pool) RepositoryPort {
	return &repository{pool: pool}
}

func (r *repository) ListAccounts(ctx context.Context, tenant string) ([]coa.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT code, name, kind, parent_code, opening_debit, opening_credit, is_active, created_at, updated_at
		 FROM accounts
		 WHERE tenant = $1
		 ORDER BY sort_order, code`, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []coa.Account
	for rows.Next() {
		var a coa.Account
		var kind string
		var parent *string
		if err := rows.Scan(&a.Code, &a.Name, &kind, &parent,
			&a.Opening.Debit, &a.Opening.Credit, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Kind = coa.AccountKind(kind)
		if parent != nil {
			a.ParentCode = *parent
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) InsertAccount(ctx context.Context, tenant string, a coa.Account) error {
	var parent *string
	if a.ParentCode != "" {
		parent = &a.ParentCode
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts
		   (tenant, code, name, kind, parent_code, opening_debit, opening_credit, is_active, sort_order, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		   COALESCE((SELECT MAX(sort_order) + 1 FROM accounts WHERE tenant = $1), 1), $9, $10)`,
		tenant, a.Code, a.Name, string(a.Kind), parent,
		a.Opening.Debit, a.Opening.Credit, a.IsActive, a.CreatedAt, a.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *repository) UpdateAccount(ctx context.Context, tenant string, a coa.Account) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts
		 SET name = $3, kind = $4, opening_debit = $5, opening_credit = $6, is_active = $7, updated_at = $8
		 WHERE tenant = $1 AND code = $2`,
		tenant, a.Code, a.Name, string(a.Kind), a.Opening.Debit, a.Opening.Credit, a.IsActive, a.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", coa.ErrUnknownAccount, a.Code)
	}
	return nil
}

func (r *repository) DeleteAccounts(ctx context.Context, tenant string, codes []string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM accounts WHERE tenant = $1 AND code = ANY($2)`, tenant, codes)
	return err
}

// mapUniqueViolation turns Postgres duplicate-key errors into the engine's
// taxonomy so handlers respond with a conflict instead of a 500.
func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "name") {
			return fmt.Errorf("%w: %s", coa.ErrDuplicateName, pgErr.Detail)
		}
		return fmt.Errorf("%w: %s", coa.ErrDuplicateCode, pgErr.Detail)
	}
	return err
}
