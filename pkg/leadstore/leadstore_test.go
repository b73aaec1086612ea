package leadstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(DriverSQLite, ":memory:", Options{LogLevel: logger.Silent, MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewRepository(db)
}

func TestRepository_SaveAndRecent(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, &Lead{ID: "a", Email: "ann@acmecorp.com", CreatedAt: base}))
	require.NoError(t, repo.Save(ctx, &Lead{ID: "b", Email: "bob@acmecorp.com", CreatedAt: base.Add(time.Minute)}))

	leads, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "b", leads[0].ID)
	assert.Equal(t, "a", leads[1].ID)

	leads, err = repo.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestRepository_SaveRejectsDuplicates(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &Lead{ID: "dup"}))
	assert.Error(t, repo.Save(ctx, &Lead{ID: "dup"}))
	assert.Error(t, repo.Save(ctx, &Lead{}))
	assert.Error(t, repo.Save(ctx, nil))
}

func TestRepository_ByEmail(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &Lead{ID: "1", Email: "ann@acmecorp.com"}))
	require.NoError(t, repo.Save(ctx, &Lead{ID: "2", Email: "other@acmecorp.com"}))

	leads, err := repo.ByEmail(ctx, " ANN@acmecorp.com ")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "1", leads[0].ID)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "dsn", Options{})
	assert.Error(t, err)

	_, err = Open(DriverPostgres, "", Options{})
	assert.Error(t, err)
}
