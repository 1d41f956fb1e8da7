package invoices

import (
	"errors"
	"time"
)

// InvoiceType distinguishes receivables from payables.
type InvoiceType string

const (
	TypeSale     InvoiceType = "SALE"     // receivable
	TypePurchase InvoiceType = "PURCHASE" // payable
)

// InvoiceStatus enumerates invoice lifecycle values.
type InvoiceStatus string

const (
	StatusOpen InvoiceStatus = "OPEN"
	StatusPaid InvoiceStatus = "PAID"
	StatusVoid InvoiceStatus = "VOID"
)

var (
	// ErrInvalidType indicates an unrecognised invoice type.
	ErrInvalidType = errors.New("invoices: type must be SALE or PURCHASE")
	// ErrInvalidAmount indicates a non-positive invoice amount.
	ErrInvalidAmount = errors.New("invoices: amount must be positive")
)

// Invoice model. DueAt may be zero; the effective due date then derives
// from InvoiceDate plus TermDays.
type Invoice struct {
	ID          int64
	Tenant      string
	Number      string
	Type        InvoiceType
	Party       string
	AccountCode string
	Amount      float64
	Status      InvoiceStatus
	InvoiceDate time.Time
	DueAt       time.Time
	TermDays    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateInput for new invoices.
type CreateInput struct {
	Tenant      string
	Number      string
	Type        InvoiceType
	Party       string
	AccountCode string
	Amount      float64
	InvoiceDate time.Time
	DueAt       time.Time
	TermDays    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	Type            InvoiceType
	OutstandingOnly bool
}
