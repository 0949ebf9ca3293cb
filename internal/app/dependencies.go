package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
	"github.com/vladislavdragonenkov/cartstore/internal/health"
	"github.com/vladislavdragonenkov/cartstore/internal/service/inventory"
	"github.com/vladislavdragonenkov/cartstore/internal/storage/file"
	"github.com/vladislavdragonenkov/cartstore/internal/storage/memory"
	"github.com/vladislavdragonenkov/cartstore/internal/storage/postgres"
	"github.com/vladislavdragonenkov/cartstore/internal/storage/redis"
)

// runtimeDependencies — внешние зависимости корзины, выбранные по конфигурации.
type runtimeDependencies struct {
	storage        domain.PersistentStore
	storageCheck   health.CheckFunc
	inventory      domain.InventoryClient
	inventoryCheck health.CheckFunc
	closeFn        func() error
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	deps, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.InventoryURL) == "" {
		// NOTE: без адреса склада используется демо-каталог, только для локального запуска.
		logger.Warn("inventory url is not set, using demo inventory")
		deps.inventory = newDemoInventory()
		deps.inventoryCheck = func(context.Context) error { return nil }
		return deps, nil
	}

	client, err := inventory.NewClient(inventory.ClientConfig{
		BaseURL: cfg.InventoryURL,
		Timeout: cfg.InventoryTimeout,
	}, logger.WithField("component", "inventory-client"))
	if err != nil {
		_ = deps.close()
		return nil, fmt.Errorf("init inventory client: %w", err)
	}
	deps.inventory = inventory.NewRetryingClient(client, inventory.DefaultRetryConfig(), logger.WithField("component", "inventory-retry"))
	deps.inventoryCheck = client.Healthy

	return deps, nil
}

func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if driver == "" {
		driver = StorageDriverMemory
	}
	logger = logger.WithField("storage_driver", driver)

	switch driver {
	case StorageDriverMemory:
		store := memory.NewKVStore()
		logger.Info("using in-memory cart storage")
		return &runtimeDependencies{
			storage:      store,
			storageCheck: func(context.Context) error { return store.Ping() },
		}, nil

	case StorageDriverFile:
		store, err := file.Open(cfg.FileDir)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		logger.WithField("dir", cfg.FileDir).Info("using file cart storage")
		return &runtimeDependencies{
			storage:      store,
			storageCheck: func(context.Context) error { return store.Ping() },
		}, nil

	case StorageDriverRedis:
		store, err := redis.Open(ctx, cfg.RedisAddr, cfg.RedisTTL)
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		logger.WithField("addr", cfg.RedisAddr).Info("using redis cart storage")
		return &runtimeDependencies{
			storage:      store,
			storageCheck: func(context.Context) error { return store.Ping() },
			closeFn:      store.Close,
		}, nil

	case StorageDriverPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, errors.New("postgres storage requires dsn")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		logger.Info("using postgres cart storage")
		return &runtimeDependencies{
			storage:      store,
			storageCheck: store.Ping,
			closeFn:      store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func (d *runtimeDependencies) close() error {
	if d == nil || d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}

// newDemoInventory возвращает склад с несколькими товарами для локальной разработки.
func newDemoInventory() *inventory.MockService {
	svc := inventory.NewMockService()
	products := []struct {
		product domain.ProductInfo
		stock   int
	}{
		{domain.ProductInfo{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis1.jpg"}, 3},
		{domain.ProductInfo{ID: 2, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg"}, 5},
		{domain.ProductInfo{ID: 3, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis3.jpg"}, 2},
		{domain.ProductInfo{ID: 4, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis1.jpg"}, 1},
		{domain.ProductInfo{ID: 5, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg"}, 5},
		{domain.ProductInfo{ID: 6, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis3.jpg"}, 10},
	}
	for _, p := range products {
		svc.SetProduct(p.product)
		svc.SetStock(p.product.ID, p.stock)
	}
	return svc
}
