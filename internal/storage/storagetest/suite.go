// Package storagetest holds a behavioural suite every storage.Store must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// Run exercises newStore against the storage contract. newStore must return
// an empty store; it is called once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("categories ordered by type then title", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()
		mustCategory(t, s, "Salary", core.Income)
		mustCategory(t, s, "rent", core.Expense)
		mustCategory(t, s, "Food", core.Expense)

		got, err := s.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"Food", "rent", "Salary"}, titles(got))
	})

	t.Run("title lookup ignores case", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()
		food := mustCategory(t, s, "Food", core.Expense)

		got, err := s.FindCategoryByTitle(ctx, "FOOD")
		require.NoError(t, err)
		assert.Equal(t, food.ID, got.ID)

		_, err = s.FindCategoryByTitle(ctx, "Travel")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("duplicate title rejected", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()
		mustCategory(t, s, "Food", core.Expense)

		_, err := s.CreateCategory(ctx, core.Category{Title: "food", Type: core.Expense})
		assert.ErrorIs(t, err, storage.ErrDuplicate)

		mustCategory(t, s, "Épicerie", core.Expense)
		_, err = s.CreateCategory(ctx, core.Category{Title: "épicerie", Type: core.Expense})
		assert.ErrorIs(t, err, storage.ErrDuplicate)

		got, err := s.FindCategoryByTitle(ctx, "ÉPICERIE")
		require.NoError(t, err)
		assert.Equal(t, "Épicerie", got.Title)

		cats, err := s.ListCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, cats, 2)
	})

	t.Run("rename onto a non-ascii title rejected", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()
		mustCategory(t, s, "Über", core.Expense)
		c := mustCategory(t, s, "Other", core.Expense)

		c.Title = "über"
		assert.ErrorIs(t, s.UpdateCategory(ctx, c), storage.ErrDuplicate)
	})

	t.Run("update and get category", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()
		c := mustCategory(t, s, "Food", core.Expense)
		c.Icon = "🍔"
		c.Title = "Groceries"
		require.NoError(t, s.UpdateCategory(ctx, c))

		got, err := s.GetCategory(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c, got)

		err = s.UpdateCategory(ctx, core.Category{ID: 999, Title: "x", Type: core.Expense})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete restricted while referenced", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()
		food := mustCategory(t, s, "Food", core.Expense)
		tx := mustTransaction(t, s, food.ID, 20, core.NewDate(2025, 1, 10))

		has, err := s.CategoryHasTransactions(ctx, food.ID)
		require.NoError(t, err)
		assert.True(t, has)

		err = s.DeleteCategory(ctx, food.ID)
		assert.ErrorIs(t, err, storage.ErrInUse)
		_, err = s.GetCategory(ctx, food.ID)
		require.NoError(t, err)

		require.NoError(t, s.DeleteTransaction(ctx, tx.ID))
		require.NoError(t, s.DeleteCategory(ctx, food.ID))
		_, err = s.GetCategory(ctx, food.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.DeleteCategory(ctx, food.ID), storage.ErrNotFound)
	})

	t.Run("transaction requires existing category", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()
		_, err := s.CreateTransaction(ctx, core.Transaction{CategoryID: 42, Amount: 5, Date: core.NewDate(2025, 1, 1)})
		assert.ErrorIs(t, err, storage.ErrInvalidReference)
	})

	t.Run("transactions joined newest first", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()
		food := mustCategory(t, s, "Food", core.Expense)
		pay := mustCategory(t, s, "Salary", core.Income)
		a := mustTransaction(t, s, food.ID, 10, core.NewDate(2025, 1, 1))
		b := mustTransaction(t, s, pay.ID, 100, core.NewDate(2025, 1, 3))
		c := mustTransaction(t, s, food.ID, 30, core.NewDate(2025, 1, 3))

		all, err := s.ListTransactions(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{c.ID, b.ID, a.ID}, ids(all))
		assert.Equal(t, "Salary", all[1].Category.Title)
		assert.Equal(t, core.Income, all[1].Category.Type)

		recent, err := s.RecentTransactions(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{c.ID, b.ID}, ids(recent))

		got, err := s.GetTransaction(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Food", got.Category.Title)
		assert.True(t, got.Date.SameDay(core.NewDate(2025, 1, 1)))
	})

	t.Run("transactions between is inclusive", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()
		food := mustCategory(t, s, "Food", core.Expense)
		mustTransaction(t, s, food.ID, 1, core.NewDate(2025, 1, 1))
		in1 := mustTransaction(t, s, food.ID, 2, core.NewDate(2025, 1, 2))
		in2 := mustTransaction(t, s, food.ID, 3, core.NewDate(2025, 1, 8))
		mustTransaction(t, s, food.ID, 4, core.NewDate(2025, 1, 9))

		got, err := s.TransactionsBetween(ctx, core.NewDate(2025, 1, 2), core.NewDate(2025, 1, 8))
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{in1.ID, in2.ID}, ids(got))
	})

	t.Run("update and delete transaction", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()
		food := mustCategory(t, s, "Food", core.Expense)
		tx := mustTransaction(t, s, food.ID, 10, core.NewDate(2025, 1, 1))

		tx.Amount = 15
		tx.Note = "lunch"
		require.NoError(t, s.UpdateTransaction(ctx, tx))
		got, err := s.GetTransaction(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(15), got.Amount)
		assert.Equal(t, "lunch", got.Note)

		tx.CategoryID = 999
		assert.ErrorIs(t, s.UpdateTransaction(ctx, tx), storage.ErrInvalidReference)

		require.NoError(t, s.DeleteTransaction(ctx, tx.ID))
		_, err = s.GetTransaction(ctx, tx.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.DeleteTransaction(ctx, tx.ID), storage.ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(context.Background()))
	})
}

func mustCategory(t *testing.T, s storage.Store, title string, typ core.CategoryType) core.Category {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), core.Category{Title: title, Type: typ})
	require.NoError(t, err)
	require.NotZero(t, c.ID)
	return c
}

func mustTransaction(t *testing.T, s storage.Store, categoryID, amount int64, d core.Date) core.Transaction {
	t.Helper()
	tx, err := s.CreateTransaction(context.Background(), core.Transaction{CategoryID: categoryID, Amount: amount, Date: d})
	require.NoError(t, err)
	require.NotZero(t, tx.ID)
	return tx
}

func titles(cs []core.Category) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Title
	}
	return out
}

func ids(ts []core.TransactionWithCategory) []int64 {
	out := make([]int64, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}
