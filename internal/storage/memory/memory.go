// Package memory is an in-process storage.Store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

type Store struct {
	mu           sync.RWMutex
	categories   map[int64]core.Category
	transactions map[int64]core.Transaction
	nextCategory int64
	nextTx       int64
}

func New() *Store {
	return &Store{
		categories:   make(map[int64]core.Category),
		transactions: make(map[int64]core.Transaction),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return core.TitleKey(out[i].Title) < core.TitleKey(out[j].Title)
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) FindCategoryByTitle(_ context.Context, title string) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.findTitle(title, 0); ok {
		return c, nil
	}
	return core.Category{}, storage.ErrNotFound
}

// findTitle looks for a category other than exclude with the same title key.
func (s *Store) findTitle(title string, exclude int64) (core.Category, bool) {
	key := core.TitleKey(title)
	for _, c := range s.categories {
		if c.ID != exclude && core.TitleKey(c.Title) == key {
			return c, true
		}
	}
	return core.Category{}, false
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.findTitle(c.Title, 0); dup {
		return core.Category{}, storage.ErrDuplicate
	}
	s.nextCategory++
	c.ID = s.nextCategory
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[c.ID]; !ok {
		return storage.ErrNotFound
	}
	if _, dup := s.findTitle(c.Title, c.ID); dup {
		return storage.ErrDuplicate
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return storage.ErrNotFound
	}
	if s.referenced(id) {
		return storage.ErrInUse
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CategoryHasTransactions(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.referenced(id), nil
}

func (s *Store) referenced(categoryID int64) bool {
	for _, t := range s.transactions {
		if t.CategoryID == categoryID {
			return true
		}
	}
	return false
}

// joined returns transactions matching keep, joined and newest first.
func (s *Store) joined(keep func(core.Transaction) bool) []core.TransactionWithCategory {
	out := make([]core.TransactionWithCategory, 0, len(s.transactions))
	for _, t := range s.transactions {
		if keep != nil && !keep(t) {
			continue
		}
		out = append(out, core.TransactionWithCategory{Transaction: t, Category: s.categories[t.CategoryID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.SameDay(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Store) ListTransactions(_ context.Context) ([]core.TransactionWithCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.joined(nil), nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.TransactionWithCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return core.TransactionWithCategory{}, storage.ErrNotFound
	}
	return core.TransactionWithCategory{Transaction: t, Category: s.categories[t.CategoryID]}, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[t.CategoryID]; !ok {
		return core.Transaction{}, storage.ErrInvalidReference
	}
	s.nextTx++
	t.ID = s.nextTx
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[t.ID]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := s.categories[t.CategoryID]; !ok {
		return storage.ErrInvalidReference
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) TransactionsBetween(_ context.Context, from, to core.Date) ([]core.TransactionWithCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := core.Window{Start: from, End: to}
	return s.joined(func(t core.Transaction) bool { return w.Contains(t.Date) }), nil
}

func (s *Store) RecentTransactions(_ context.Context, limit int) ([]core.TransactionWithCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.joined(nil)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ storage.Store = (*Store)(nil)
