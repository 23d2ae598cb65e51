package model

import (
	"time"

	"github.com/driftwoodsurf/booking_server/internal/money"
)

type ExpenseCategory string

const (
	ExpenseCategoryEquipment ExpenseCategory = "equipment"
	ExpenseCategoryInsurance ExpenseCategory = "insurance"
	ExpenseCategoryMarketing ExpenseCategory = "marketing"
	ExpenseCategoryPermits   ExpenseCategory = "permits"
	ExpenseCategoryOther     ExpenseCategory = "other"
)

// Expense is a finance-side record. A refund expense reverses a previous
// one and must point at it; a regular expense must not carry a parent.
type Expense struct {
	ID              string          `json:"id"`
	Category        ExpenseCategory `json:"category"`
	Description     string          `json:"description"`
	SubtotalCents   money.Cents     `json:"subtotal_cents"`
	TaxCents        money.Cents     `json:"tax_cents"`
	FeeCents        money.Cents     `json:"fee_cents"`
	IsRefund        bool            `json:"is_refund"`
	ParentExpenseID *string         `json:"parent_expense_id"`
	Receipts        []Receipt       `json:"receipts,omitempty"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TotalCents is the full charge: subtotal plus tax plus fees.
func (e *Expense) TotalCents() money.Cents {
	return e.SubtotalCents.Add(e.TaxCents).Add(e.FeeCents)
}

// Receipt points at a stored file attached to an expense. File storage
// itself lives behind an external collaborator; only the reference is kept.
type Receipt struct {
	ID         string    `json:"id"`
	ExpenseID  string    `json:"expense_id"`
	StorageKey string    `json:"storage_key"`
	FileName   string    `json:"file_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// CreateExpenseInput is the admin-facing draft for a new expense.
type CreateExpenseInput struct {
	Category        ExpenseCategory `json:"category" validate:"required,oneof=equipment insurance marketing permits other"`
	Description     string          `json:"description" validate:"required"`
	SubtotalCents   money.Cents     `json:"subtotal_cents" validate:"min=0"`
	TaxCents        money.Cents     `json:"tax_cents" validate:"min=0"`
	FeeCents        money.Cents     `json:"fee_cents" validate:"min=0"`
	IsRefund        bool            `json:"is_refund"`
	ParentExpenseID *string         `json:"parent_expense_id"`
}
