// Package vouchererrors holds voucher validation sentinels in a leaf
// package so platform/httpx can map them without importing vouchers.
package vouchererrors

import "errors"

// Validation errors reported before a voucher is accepted. A voucher that
// fails any of these is rejected whole; nothing is persisted.
var (
	// ErrUnbalancedVoucher indicates total debits do not equal total credits.
	ErrUnbalancedVoucher = errors.New("vouchers: debits and credits do not balance")
	// ErrInvalidLine indicates a line that is not exactly one-sided.
	ErrInvalidLine = errors.New("vouchers: line must carry exactly one positive side")
)
