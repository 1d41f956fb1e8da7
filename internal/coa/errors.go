package coa

import "errors"

// Structural errors returned by tree mutations. A mutation that fails with
// any of these has not been applied, even partially.
var (
	// ErrInvalidPrefix indicates an empty code prefix passed to the allocator.
	ErrInvalidPrefix = errors.New("coa: invalid code prefix")
	// ErrDuplicateCode indicates the account code already exists.
	ErrDuplicateCode = errors.New("coa: duplicate account code")
	// ErrDuplicateName indicates the account name already exists (case-insensitive).
	ErrDuplicateName = errors.New("coa: duplicate account name")
	// ErrInvalidName indicates an empty or blank account name.
	ErrInvalidName = errors.New("coa: invalid account name")
	// ErrUnknownParent indicates the parent code resolves to no account.
	ErrUnknownParent = errors.New("coa: unknown parent account")
	// ErrUnknownAccount indicates the code resolves to no account.
	ErrUnknownAccount = errors.New("coa: unknown account")
	// ErrImmutableField indicates an attempt to change code or parent.
	ErrImmutableField = errors.New("coa: code and parent are immutable")
	// ErrHasChildren blocks deletion of a group with children unless cascading.
	ErrHasChildren = errors.New("coa: account has children")
	// ErrHasPostings blocks deletion or reclassification of an account with ledger activity.
	ErrHasPostings = errors.New("coa: account has postings")
	// ErrUnclassified indicates a root whose code does not map to a fundamental type.
	ErrUnclassified = errors.New("coa: account root has no recognizable type digit")
)
