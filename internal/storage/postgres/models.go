package postgres

import (
	"time"

	"expensetracker/internal/core"
)

type categoryRow struct {
	ID       int64  `gorm:"primaryKey"`
	Title    string `gorm:"size:50;not null"`
	TitleKey string `gorm:"column:title_key;not null"`
	Icon     string `gorm:"size:5;not null"`
	Type     string `gorm:"size:10;not null"`
}

func (categoryRow) TableName() string {
	return "categories"
}

type transactionRow struct {
	ID         int64     `gorm:"primaryKey"`
	CategoryID int64     `gorm:"not null"`
	Amount     int64     `gorm:"not null"`
	Note       string    `gorm:"size:75;not null"`
	Date       time.Time `gorm:"type:date;not null"`
}

func (transactionRow) TableName() string {
	return "transactions"
}

// joinedRow is the flat result of the transaction/category join.
type joinedRow struct {
	ID            int64
	CategoryID    int64
	Amount        int64
	Note          string
	Date          time.Time
	CategoryTitle string
	CategoryIcon  string
	CategoryType  string
}

func fromCategory(c core.Category) categoryRow {
	return categoryRow{ID: c.ID, Title: c.Title, TitleKey: core.TitleKey(c.Title), Icon: c.Icon, Type: string(c.Type)}
}

func (r categoryRow) toCore() core.Category {
	return core.Category{ID: r.ID, Title: r.Title, Icon: r.Icon, Type: core.CategoryType(r.Type)}
}

func fromTransaction(t core.Transaction) transactionRow {
	return transactionRow{ID: t.ID, CategoryID: t.CategoryID, Amount: t.Amount, Note: t.Note, Date: t.Date.Time}
}

func (r joinedRow) toCore() core.TransactionWithCategory {
	return core.TransactionWithCategory{
		Transaction: core.Transaction{
			ID:         r.ID,
			CategoryID: r.CategoryID,
			Amount:     r.Amount,
			Note:       r.Note,
			Date:       core.DateOf(r.Date),
		},
		Category: core.Category{
			ID:    r.CategoryID,
			Title: r.CategoryTitle,
			Icon:  r.CategoryIcon,
			Type:  core.CategoryType(r.CategoryType),
		},
	}
}
