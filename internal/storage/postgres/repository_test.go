package postgres

import (
	"errors"
	"os"
	"testing"

	"gorm.io/gorm"

	"expensetracker/internal/storage"
	"expensetracker/internal/storage/storagetest"
)

// Runs only when TEST_DATABASE_URL points at a disposable database.
func TestRepositoryContract(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	repo, err := Open(url)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	storagetest.Run(t, func(t *testing.T) storage.Store {
		if err := repo.db.Exec("TRUNCATE transactions, categories RESTART IDENTITY CASCADE").Error; err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return repo
	})
}

func TestTranslate(t *testing.T) {
	cases := []struct {
		in   error
		fk   error
		want error
	}{
		{gorm.ErrRecordNotFound, storage.ErrInUse, storage.ErrNotFound},
		{gorm.ErrDuplicatedKey, storage.ErrInUse, storage.ErrDuplicate},
		{gorm.ErrForeignKeyViolated, storage.ErrInUse, storage.ErrInUse},
		{gorm.ErrForeignKeyViolated, storage.ErrInvalidReference, storage.ErrInvalidReference},
	}
	for _, tc := range cases {
		if got := translate(tc.in, tc.fk); !errors.Is(got, tc.want) {
			t.Errorf("translate(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if err := translate(nil, storage.ErrInUse); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
