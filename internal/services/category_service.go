package services

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// DefaultCategories is the starter set inserted by Seed.
var DefaultCategories = []core.Category{
	{Title: "Salary", Icon: "💼", Type: core.Income},
	{Title: "Freelance", Icon: "🧾", Type: core.Income},
	{Title: "Food", Icon: "🍔", Type: core.Expense},
	{Title: "Rent", Icon: "🏠", Type: core.Expense},
	{Title: "Transport", Icon: "🚌", Type: core.Expense},
	{Title: "Health", Icon: "💊", Type: core.Expense},
	{Title: "Entertainment", Icon: "🎬", Type: core.Expense},
}

type CategoryService struct {
	repo        storage.CategoryRepository
	publisher   Publisher
	invalidator Invalidator
	logger      *log.Logger
}

// NewCategoryService wires the category use cases. publisher and invalidator
// may be nil.
func NewCategoryService(repo storage.CategoryRepository, publisher Publisher, invalidator Invalidator, logger *log.Logger) *CategoryService {
	return &CategoryService{
		repo:        repo,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentCategory),
	}
}

// List returns all categories ordered by type then title.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// Save creates the category when it has no id and updates it otherwise.
// Field problems and a clashing title come back as *core.ValidationError.
func (s *CategoryService) Save(ctx context.Context, c core.Category) (core.Category, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return c, err
	}

	existing, err := s.repo.FindCategoryByTitle(ctx, c.Title)
	switch {
	case err == nil && existing.ID != c.ID:
		return c, duplicateTitle()
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return c, fmt.Errorf("check category title: %w", err)
	}

	op := log.OpUpdate
	if c.IsNew() {
		op = log.OpCreate
		c, err = s.repo.CreateCategory(ctx, c)
	} else {
		err = s.repo.UpdateCategory(ctx, c)
	}
	if errors.Is(err, storage.ErrDuplicate) {
		return c, duplicateTitle()
	}
	if err != nil {
		return c, fmt.Errorf("save category: %w", err)
	}

	invalidate(ctx, s.invalidator)
	s.logger.InfoContext(ctx, "Category saved",
		log.NewFields().WithOperation(op).WithCategory(c.ID, c.Title, string(c.Type)).ToSlice()...)
	if op == log.OpUpdate {
		// Mirrored rows carry the category label and type.
		publish(ctx, s.publisher, s.logger, amqp.NewCategoryEvent(amqp.CategoryUpdated, c.ID))
	}
	return c, nil
}

func duplicateTitle() error {
	return core.NewFieldError(core.FieldTitle, core.MsgDuplicateTitle, core.ErrDuplicateTitle)
}

// Delete removes a category that no transaction references. Referenced
// categories yield core.ErrCategoryInUse and are left untouched.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}

	inUse, err := s.repo.CategoryHasTransactions(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if inUse {
		s.logger.DebugContext(ctx, "Refusing to delete referenced category", log.FieldCategoryID, id)
		return core.ErrCategoryInUse
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, storage.ErrInUse) {
			return core.ErrCategoryInUse
		}
		return fmt.Errorf("delete category %d: %w", id, err)
	}

	invalidate(ctx, s.invalidator)
	s.logger.InfoContext(ctx, "Category deleted",
		log.NewFields().WithOperation(log.OpDelete).WithCategory(id, "", "").ToSlice()...)
	return nil
}

// Seed inserts defaults when no category exists yet and reports how many
// were created.
func (s *CategoryService) Seed(ctx context.Context, defaults []core.Category) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, c := range defaults {
		if _, err := s.Save(ctx, c); err != nil {
			return i, fmt.Errorf("seed %q: %w", c.Title, err)
		}
	}
	return len(defaults), nil
}
