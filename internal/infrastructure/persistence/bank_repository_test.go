package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ordena/backend/internal/domain/directory"
	"github.com/ordena/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupBankTestDB creates an in-memory SQLite database for testing
func setupBankTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE banks (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			name TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE,
			active INTEGER NOT NULL DEFAULT 1
		)
	`).Error
	require.NoError(t, err)

	return db
}

func mustNewBank(t *testing.T, name, code string) *directory.Bank {
	bank, err := directory.NewBank(name, code)
	require.NoError(t, err)
	return bank
}

func TestGormBankRepository_SaveAndFindByID(t *testing.T) {
	db := setupBankTestDB(t)
	repo := NewGormBankRepository(db)
	ctx := context.Background()

	bank := mustNewBank(t, "Banesco", "0134")

	err := repo.Save(ctx, bank)
	require.NoError(t, err)

	retrieved, err := repo.FindByID(ctx, bank.ID)
	require.NoError(t, err)
	assert.Equal(t, bank.ID, retrieved.ID)
	assert.Equal(t, "Banesco", retrieved.Name)
	assert.Equal(t, "0134", retrieved.Code)
	assert.True(t, retrieved.Active)
}

func TestGormBankRepository_FindByID_NotFound(t *testing.T) {
	db := setupBankTestDB(t)
	repo := NewGormBankRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormBankRepository_Save_UpdatesExisting(t *testing.T) {
	db := setupBankTestDB(t)
	repo := NewGormBankRepository(db)
	ctx := context.Background()

	bank := mustNewBank(t, "Banco de Venezuela", "0102")
	require.NoError(t, repo.Save(ctx, bank))

	bank.Deactivate()
	require.NoError(t, repo.Save(ctx, bank))

	retrieved, err := repo.FindByID(ctx, bank.ID)
	require.NoError(t, err)
	assert.False(t, retrieved.Active)
}

func TestGormBankRepository_FindActive(t *testing.T) {
	db := setupBankTestDB(t)
	repo := NewGormBankRepository(db)
	ctx := context.Background()

	mercantil := mustNewBank(t, "Banco Mercantil", "0105")
	banesco := mustNewBank(t, "Banesco", "0134")
	closed := mustNewBank(t, "Banco Cerrado", "0199")
	closed.Deactivate()

	require.NoError(t, repo.Save(ctx, banesco))
	require.NoError(t, repo.Save(ctx, mercantil))
	require.NoError(t, repo.Save(ctx, closed))

	banks, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, banks, 2)

	// Ordered by name, inactive entries filtered out
	assert.Equal(t, "Banco Mercantil", banks[0].Name)
	assert.Equal(t, "Banesco", banks[1].Name)
}
