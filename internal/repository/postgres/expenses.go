package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/repository"
)

const expenseColumns = `
	id, category, description, subtotal_cents, tax_cents, fee_cents,
	is_refund, parent_expense_id, deleted_at, created_at, updated_at
`

type ExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	query := `
		INSERT INTO expenses (
			id, category, description, subtotal_cents, tax_cents, fee_cents,
			is_refund, parent_expense_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		expense.ID,
		expense.Category,
		expense.Description,
		expense.SubtotalCents,
		expense.TaxCents,
		expense.FeeCents,
		expense.IsRefund,
		expense.ParentExpenseID,
	).Scan(&expense.CreatedAt, &expense.UpdatedAt)

	if err != nil {
		return translate("create expense", err)
	}

	return nil
}

func (r *ExpenseRepository) Get(ctx context.Context, id string) (*model.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	expense, err := scanExpense(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("get expense", err)
	}

	if err := r.loadReceipts(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (r *ExpenseRepository) List(ctx context.Context) ([]*model.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, translate("list expenses", err)
	}
	defer rows.Close()

	var expenses []*model.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, translate("scan expense", err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, nil
}

func (r *ExpenseRepository) AttachReceipt(ctx context.Context, receipt *model.Receipt) error {
	query := `
		INSERT INTO receipts (id, expense_id, storage_key, file_name)
		VALUES ($1, $2, $3, $4)
		RETURNING uploaded_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		receipt.ID,
		receipt.ExpenseID,
		receipt.StorageKey,
		receipt.FileName,
	).Scan(&receipt.UploadedAt)

	if err != nil {
		return translate("attach receipt", err)
	}

	return nil
}

func (r *ExpenseRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE expenses
		SET deleted_at = COALESCE(deleted_at, now()), updated_at = now()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return translate("soft delete expense", err)
	}
	if result.RowsAffected() == 0 {
		return translate("soft delete expense", pgx.ErrNoRows)
	}
	return nil
}

func (r *ExpenseRepository) loadReceipts(ctx context.Context, expense *model.Expense) error {
	query := `
		SELECT id, expense_id, storage_key, file_name, uploaded_at
		FROM receipts
		WHERE expense_id = $1
		ORDER BY uploaded_at
	`

	rows, err := r.pool.Query(ctx, query, expense.ID)
	if err != nil {
		return translate("load receipts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var receipt model.Receipt
		err := rows.Scan(&receipt.ID, &receipt.ExpenseID, &receipt.StorageKey, &receipt.FileName, &receipt.UploadedAt)
		if err != nil {
			return translate("scan receipt", err)
		}
		expense.Receipts = append(expense.Receipts, receipt)
	}

	return nil
}

func scanExpense(row pgx.Row) (*model.Expense, error) {
	var expense model.Expense
	err := row.Scan(
		&expense.ID,
		&expense.Category,
		&expense.Description,
		&expense.SubtotalCents,
		&expense.TaxCents,
		&expense.FeeCents,
		&expense.IsRefund,
		&expense.ParentExpenseID,
		&expense.DeletedAt,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

var _ repository.ExpenseStore = (*ExpenseRepository)(nil)
