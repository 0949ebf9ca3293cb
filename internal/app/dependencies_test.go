package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/cartstore/internal/service/inventory"
)

func TestInitStorage_Memory(t *testing.T) {
	t.Parallel()

	deps, err := initStorage(context.Background(), Config{StorageDriver: StorageDriverMemory}, log.WithField("test", "memory-storage"))
	require.NoError(t, err)
	require.NotNil(t, deps.storage)
	require.NoError(t, deps.storageCheck(context.Background()))
	require.NoError(t, deps.close())
}

func TestInitStorage_EmptyDriverDefaultsToMemory(t *testing.T) {
	t.Parallel()

	deps, err := initStorage(context.Background(), Config{}, log.WithField("test", "default-storage"))
	require.NoError(t, err)
	require.NotNil(t, deps.storage)
}

func TestInitStorage_File(t *testing.T) {
	t.Parallel()

	deps, err := initStorage(context.Background(), Config{
		StorageDriver: " File ",
		FileDir:       t.TempDir(),
	}, log.WithField("test", "file-storage"))
	require.NoError(t, err)

	require.NoError(t, deps.storage.Set("k", "v"))
	value, ok, err := deps.storage.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
	require.NoError(t, deps.storageCheck(context.Background()))
}

func TestInitStorage_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	deps, err := initStorage(context.Background(), Config{
		StorageDriver: StorageDriverRedis,
		RedisAddr:     mr.Addr(),
	}, log.WithField("test", "redis-storage"))
	require.NoError(t, err)
	defer func() { _ = deps.close() }()

	require.NoError(t, deps.storage.Set("cart", "[]"))
	assert.True(t, mr.Exists("cart"))
	require.NoError(t, deps.storageCheck(context.Background()))
}

func TestInitStorage_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := initStorage(context.Background(), Config{StorageDriver: StorageDriverPostgres}, log.WithField("test", "postgres-missing-dsn"))
	require.Error(t, err)
}

func TestInitStorage_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := initStorage(context.Background(), Config{StorageDriver: "sqlite"}, log.WithField("test", "unsupported-driver"))
	require.ErrorContains(t, err, "unsupported storage driver")
}

func TestInitRuntimeDependencies_DemoInventory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), DefaultConfig(), log.WithField("test", "demo-inventory"))
	require.NoError(t, err)

	stock, err := deps.inventory.GetStock(context.Background(), 1)
	require.NoError(t, err)
	assert.Positive(t, stock.Amount)

	product, err := deps.inventory.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, product.Title)
	require.NoError(t, deps.inventoryCheck(context.Background()))
}

func TestInitRuntimeDependencies_HTTPInventory(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.InventoryURL = "http://localhost:3333"

	deps, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "http-inventory"))
	require.NoError(t, err)
	assert.IsType(t, &inventory.RetryingClient{}, deps.inventory)
	require.NoError(t, deps.inventoryCheck(context.Background()))
}

func TestInitRuntimeDependencies_InvalidInventoryURL(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.InventoryURL = "://bad"

	_, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "bad-inventory"))
	require.Error(t, err)
}
