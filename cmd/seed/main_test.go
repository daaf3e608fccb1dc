package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/matchboard/internal/config"
	"github.com/sakif/matchboard/internal/logger"
	"github.com/sakif/matchboard/internal/repository/sqlstore"
)

func TestRun_IsRepeatable(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.HTTP.Port = 3000
	cfg.DB.Driver = config.DriverSQLite
	cfg.DB.Path = filepath.Join(dir, "data", "seed.db")
	cfg.DB.PoolSize = 1
	cfg.ListMode = config.ListOpposite
	cfg.Images.Store = config.ImageStoreLocal
	cfg.Images.UploadDir = filepath.Join(dir, "uploads")
	cfg.Images.MaxUploadBytes = 1 << 20

	require.NoError(t, run(cfg, logger.Discard(), 4, 10, "seed.test"))
	require.NoError(t, run(cfg, logger.Discard(), 4, 0, "seed.test"))

	store, err := sqlstore.Open(config.DriverSQLite, cfg.DB.Path, 1)
	require.NoError(t, err)
	defer store.Close()

	users, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 4)

	females, err := store.ListByGender(context.Background(), "female")
	require.NoError(t, err)
	assert.Len(t, females, 2)
}
