package vouchers

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-books/meridian-books/internal/vouchers/vouchererrors"
)

// Validation errors reported before a voucher is accepted. A voucher that
// fails any of these is rejected whole; nothing is persisted.
var (
	// ErrUnbalancedVoucher indicates total debits do not equal total credits.
	ErrUnbalancedVoucher = vouchererrors.ErrUnbalancedVoucher
	// ErrInvalidLine indicates a line that is not exactly one-sided.
	ErrInvalidLine = vouchererrors.ErrInvalidLine
	// ErrEmptyVoucher indicates a voucher without lines.
	ErrEmptyVoucher = errors.New("vouchers: at least one line required")
)

const balanceEpsilon = 1e-6

// Line is one debit or credit of a journal voucher.
type Line struct {
	AccountCode string
	Debit       float64
	Credit      float64
}

// Voucher is a posted journal voucher. Number is sequential per tenant and
// used as the tiebreak when ledger derivation orders postings.
type Voucher struct {
	ID          uuid.UUID
	Number      int64
	Tenant      string
	Date        time.Time
	Description string
	Lines       []Line
	CreatedAt   time.Time
}

// TotalDebit sums the voucher's debit side.
func (v Voucher) TotalDebit() float64 {
	var sum float64
	for _, l := range v.Lines {
		sum += l.Debit
	}
	return sum
}

// TotalCredit sums the voucher's credit side.
func (v Voucher) TotalCredit() float64 {
	var sum float64
	for _, l := range v.Lines {
		sum += l.Credit
	}
	return sum
}

// ValidateLines checks line shape and the per-voucher balance invariant.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return ErrEmptyVoucher
	}
	var debit, credit float64
	for _, l := range lines {
		if l.Debit < 0 || l.Credit < 0 {
			return ErrInvalidLine
		}
		if (l.Debit > 0) == (l.Credit > 0) {
			return ErrInvalidLine
		}
		debit += l.Debit
		credit += l.Credit
	}
	if math.Abs(debit-credit) >= balanceEpsilon {
		return ErrUnbalancedVoucher
	}
	return nil
}
