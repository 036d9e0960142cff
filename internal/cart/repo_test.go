package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMirrorTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS cart_lines (
  id TEXT PRIMARY KEY,
  owner_key TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_owner_product_variant
  ON cart_lines (owner_key, product_id, variant);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestUpsertLineOverwritesQuantity(t *testing.T) {
	db := setupMirrorTestDB(t)
	repo := NewMirrorRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertLine(ctx, "user-1", "p1", "Gold", 1))
	require.NoError(t, repo.UpsertLine(ctx, "user-1", "p1", "Gold", 4))

	lines, err := repo.ListLines(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestDeleteLineOnlyTargetsVariant(t *testing.T) {
	db := setupMirrorTestDB(t)
	repo := NewMirrorRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertLine(ctx, "user-1", "p1", "Gold", 1))
	require.NoError(t, repo.UpsertLine(ctx, "user-1", "p1", "Silver", 2))
	require.NoError(t, repo.DeleteLine(ctx, "user-1", "p1", "Gold"))

	lines, err := repo.ListLines(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Silver", lines[0].Variant)
}

func TestDeleteAllLinesScopedToOwner(t *testing.T) {
	db := setupMirrorTestDB(t)
	repo := NewMirrorRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertLine(ctx, "user-1", "p1", "", 1))
	require.NoError(t, repo.UpsertLine(ctx, "user-2", "p1", "", 1))
	require.NoError(t, repo.DeleteAllLines(ctx, "user-1"))

	gone, err := repo.ListLines(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := repo.ListLines(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
