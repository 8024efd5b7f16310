// Package postgres implements storage.Store on PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

const joinedSelect = `t.id, t.category_id, t.amount, t.note, t.date,
	c.title AS category_title, c.icon AS category_icon, c.type AS category_type`

type Repository struct {
	db *gorm.DB
}

// Open migrates the schema and connects gorm to databaseURL.
func Open(databaseURL string) (*Repository, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	return NewRepository(db), nil
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm errors onto storage errors. fk is used for foreign key
// violations, which mean different things per call site.
func translate(err error, fk error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", fk, err)
	}
	return err
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	var rows []categoryRow
	if err := r.db.WithContext(ctx).Order("type").Order("title_key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var row categoryRow
	if err := r.db.WithContext(ctx).Take(&row, id).Error; err != nil {
		return core.Category{}, translate(err, storage.ErrInvalidReference)
	}
	return row.toCore(), nil
}

func (r *Repository) FindCategoryByTitle(ctx context.Context, title string) (core.Category, error) {
	var row categoryRow
	err := r.db.WithContext(ctx).
		Where("title_key = ?", core.TitleKey(title)).
		Take(&row).Error
	if err != nil {
		return core.Category{}, translate(err, storage.ErrInvalidReference)
	}
	return row.toCore(), nil
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row := fromCategory(c)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", translate(err, storage.ErrInvalidReference))
	}
	return row.toCore(), nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	res := r.db.WithContext(ctx).Model(&categoryRow{}).Where("id = ?", c.ID).Updates(map[string]any{
		"title":     c.Title,
		"title_key": core.TitleKey(c.Title),
		"icon":      c.Icon,
		"type":      string(c.Type),
	})
	if res.Error != nil {
		return fmt.Errorf("update category %d: %w", c.ID, translate(res.Error, storage.ErrInvalidReference))
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&categoryRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete category %d: %w", id, translate(res.Error, storage.ErrInUse))
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Repository) CategoryHasTransactions(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&transactionRow{}).Where("category_id = ?", id).Limit(1).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count transactions for category %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *Repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("transactions t").
		Select(joinedSelect).
		Joins("JOIN categories c ON c.id = t.category_id")
}

func (r *Repository) scanJoined(q *gorm.DB) ([]core.TransactionWithCategory, error) {
	var rows []joinedRow
	if err := q.Order("t.date DESC").Order("t.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]core.TransactionWithCategory, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.TransactionWithCategory, error) {
	out, err := r.scanJoined(r.joined(ctx))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id int64) (core.TransactionWithCategory, error) {
	out, err := r.scanJoined(r.joined(ctx).Where("t.id = ?", id))
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	if len(out) == 0 {
		return core.TransactionWithCategory{}, storage.ErrNotFound
	}
	return out[0], nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row := fromTransaction(t)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", translate(err, storage.ErrInvalidReference))
	}
	t.ID = row.ID
	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res := r.db.WithContext(ctx).Model(&transactionRow{}).Where("id = ?", t.ID).Updates(map[string]any{
		"category_id": t.CategoryID,
		"amount":      t.Amount,
		"note":        t.Note,
		"date":        t.Date.Time,
	})
	if res.Error != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, translate(res.Error, storage.ErrInvalidReference))
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&transactionRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete transaction %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Repository) TransactionsBetween(ctx context.Context, from, to core.Date) ([]core.TransactionWithCategory, error) {
	out, err := r.scanJoined(r.joined(ctx).Where("t.date BETWEEN ? AND ?", from.Time, to.Time))
	if err != nil {
		return nil, fmt.Errorf("transactions between %s and %s: %w", from, to, err)
	}
	return out, nil
}

func (r *Repository) RecentTransactions(ctx context.Context, limit int) ([]core.TransactionWithCategory, error) {
	out, err := r.scanJoined(r.joined(ctx).Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return out, nil
}

var _ storage.Store = (*Repository)(nil)
