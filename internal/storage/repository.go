package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"expensetracker/internal/core"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	selectCategory = `SELECT id, title, icon, type FROM categories`

	selectTransaction = `SELECT t.id, t.category_id, t.amount, t.note, t.date,
		c.id, c.title, c.icon, c.type
		FROM transactions t
		JOIN categories c ON c.id = t.category_id`

	newestFirst = ` ORDER BY t.date DESC, t.id DESC`
)

// SQLiteRepository is the default Store, backed by a single SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// dsn enables foreign key enforcement on every pooled connection.
func dsn(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// withTx runs fn inside a transaction, committing on success.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// constraintError maps SQLite constraint failures onto storage errors. fk is
// the error to use for foreign key violations, which differ by call site.
func constraintError(err error, fk error) error {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	code := se.Code()
	msg := se.Error()
	switch {
	case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(msg, "UNIQUE"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
		code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(msg, "FOREIGN KEY"):
		return fmt.Errorf("%w: %v", fk, err)
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (core.Category, error) {
	var c core.Category
	var typ string
	if err := s.Scan(&c.ID, &c.Title, &c.Icon, &typ); err != nil {
		return core.Category{}, err
	}
	c.Type = core.CategoryType(typ)
	return c, nil
}

func scanTransaction(s scanner) (core.TransactionWithCategory, error) {
	var t core.TransactionWithCategory
	var date, typ string
	if err := s.Scan(&t.ID, &t.CategoryID, &t.Amount, &t.Note, &date,
		&t.Category.ID, &t.Category.Title, &t.Category.Icon, &typ); err != nil {
		return core.TransactionWithCategory{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	t.Date = d
	t.Category.Type = core.CategoryType(typ)
	return t, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.TransactionWithCategory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.TransactionWithCategory
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, selectCategory+` ORDER BY type, title_key`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, selectCategory+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) FindCategoryByTitle(ctx context.Context, title string) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		selectCategory+` WHERE title_key = ? LIMIT 1`, core.TitleKey(title)))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("find category by title: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO categories (title, title_key, icon, type) VALUES (?, ?, ?, ?)`,
			c.Title, core.TitleKey(c.Title), c.Icon, string(c.Type))
		if err != nil {
			return constraintError(err, ErrInvalidReference)
		}
		c.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE categories SET title = ?, title_key = ?, icon = ?, type = ? WHERE id = ?`,
			c.Title, core.TitleKey(c.Title), c.Icon, string(c.Type), c.ID)
		if err != nil {
			return constraintError(err, ErrInvalidReference)
		}
		return requireAffected(res)
	})
	if err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return constraintError(err, ErrInUse)
		}
		return requireAffected(res)
	})
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) CategoryHasTransactions(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("count transactions for category %d: %w", id, err)
	}
	return exists, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.TransactionWithCategory, error) {
	out, err := r.queryTransactions(ctx, selectTransaction+newestFirst)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.TransactionWithCategory, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, selectTransaction+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionWithCategory{}, ErrNotFound
	}
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (category_id, amount, note, date) VALUES (?, ?, ?, ?)`,
			t.CategoryID, t.Amount, t.Note, t.Date.String())
		if err != nil {
			return constraintError(err, ErrInvalidReference)
		}
		t.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE transactions SET category_id = ?, amount = ?, note = ?, date = ? WHERE id = ?`,
			t.CategoryID, t.Amount, t.Note, t.Date.String(), t.ID)
		if err != nil {
			return constraintError(err, ErrInvalidReference)
		}
		return requireAffected(res)
	})
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) TransactionsBetween(ctx context.Context, from, to core.Date) ([]core.TransactionWithCategory, error) {
	out, err := r.queryTransactions(ctx,
		selectTransaction+` WHERE t.date BETWEEN ? AND ?`+newestFirst, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("transactions between %s and %s: %w", from, to, err)
	}
	return out, nil
}

func (r *SQLiteRepository) RecentTransactions(ctx context.Context, limit int) ([]core.TransactionWithCategory, error) {
	out, err := r.queryTransactions(ctx, selectTransaction+newestFirst+` LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return out, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
