package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/repository"
	"github.com/driftwoodsurf/booking_server/internal/repository/memory"
)

func newExpenseFixture(t *testing.T) *ExpenseService {
	t.Helper()
	store := memory.NewStore(nil)
	return NewExpenseService(store.Expenses(), zap.NewNop())
}

func expenseInput() model.CreateExpenseInput {
	return model.CreateExpenseInput{
		Category:      model.ExpenseCategoryEquipment,
		Description:   "three soft-top longboards",
		SubtotalCents: 90000,
		TaxCents:      4200,
		FeeCents:      1500,
	}
}

func TestCreateExpense(t *testing.T) {
	svc := newExpenseFixture(t)
	ctx := context.Background()

	expense, err := svc.CreateExpense(ctx, expenseInput())
	require.NoError(t, err)
	assert.NotEmpty(t, expense.ID)
	assert.EqualValues(t, 95700, expense.TotalCents())
	assert.False(t, expense.IsRefund)
	assert.Nil(t, expense.ParentExpenseID)
}

func TestCreateExpenseValidation(t *testing.T) {
	svc := newExpenseFixture(t)
	ctx := context.Background()

	t.Run("unknown category", func(t *testing.T) {
		input := expenseInput()
		input.Category = "snacks"
		_, err := svc.CreateExpense(ctx, input)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("missing description", func(t *testing.T) {
		input := expenseInput()
		input.Description = ""
		_, err := svc.CreateExpense(ctx, input)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("negative subtotal", func(t *testing.T) {
		input := expenseInput()
		input.SubtotalCents = -1
		_, err := svc.CreateExpense(ctx, input)
		assert.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestRefundLinkageRules(t *testing.T) {
	svc := newExpenseFixture(t)
	ctx := context.Background()

	parent, err := svc.CreateExpense(ctx, expenseInput())
	require.NoError(t, err)

	t.Run("refund without parent", func(t *testing.T) {
		input := expenseInput()
		input.IsRefund = true
		_, err := svc.CreateExpense(ctx, input)
		assert.ErrorIs(t, err, model.ErrRefundParentRequired)
	})

	t.Run("parent on a non-refund", func(t *testing.T) {
		input := expenseInput()
		input.ParentExpenseID = &parent.ID
		_, err := svc.CreateExpense(ctx, input)
		assert.ErrorIs(t, err, model.ErrRefundParentForbidden)
	})

	t.Run("refund with missing parent", func(t *testing.T) {
		input := expenseInput()
		input.IsRefund = true
		missing := "33333333-3333-3333-3333-333333333333"
		input.ParentExpenseID = &missing
		_, err := svc.CreateExpense(ctx, input)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("valid refund", func(t *testing.T) {
		input := expenseInput()
		input.IsRefund = true
		input.ParentExpenseID = &parent.ID
		refund, err := svc.CreateExpense(ctx, input)
		require.NoError(t, err)
		assert.True(t, refund.IsRefund)
		require.NotNil(t, refund.ParentExpenseID)
		assert.Equal(t, parent.ID, *refund.ParentExpenseID)

		t.Run("refund of a refund", func(t *testing.T) {
			again := expenseInput()
			again.IsRefund = true
			again.ParentExpenseID = &refund.ID
			_, err := svc.CreateExpense(ctx, again)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	})
}

func TestAttachReceipt(t *testing.T) {
	svc := newExpenseFixture(t)
	ctx := context.Background()

	expense, err := svc.CreateExpense(ctx, expenseInput())
	require.NoError(t, err)

	receipt, err := svc.AttachReceipt(ctx, expense.ID, "receipts/2025/boards.pdf", "boards.pdf")
	require.NoError(t, err)
	assert.Equal(t, expense.ID, receipt.ExpenseID)

	got, err := svc.GetExpense(ctx, expense.ID)
	require.NoError(t, err)
	require.Len(t, got.Receipts, 1)
	assert.Equal(t, "boards.pdf", got.Receipts[0].FileName)

	_, err = svc.AttachReceipt(ctx, expense.ID, "", "boards.pdf")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestDeleteExpense(t *testing.T) {
	svc := newExpenseFixture(t)
	ctx := context.Background()

	expense, err := svc.CreateExpense(ctx, expenseInput())
	require.NoError(t, err)
	require.NoError(t, svc.DeleteExpense(ctx, expense.ID))

	listed, err := svc.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
