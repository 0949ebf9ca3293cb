package app

import (
	"time"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
	"github.com/vladislavdragonenkov/cartstore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/cartstore/internal/notify"
)

// Драйверы PersistentStore.
const (
	StorageDriverMemory   = "memory"
	StorageDriverFile     = "file"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска сервиса корзины.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       string
	StorageKey          string
	FileDir             string
	RedisAddr           string
	RedisTTL            time.Duration
	PostgresDSN         string
	PostgresAutoMigrate bool

	// InventoryURL пустой — используется встроенный демо-склад.
	InventoryURL     string
	InventoryTimeout time.Duration

	// KafkaBrokers через запятую; пустое значение отключает публикацию событий.
	KafkaBrokers            string
	KafkaCartTopic          string
	KafkaNotificationsTopic string

	NotificationFeedSize int
	RequestTimeout       time.Duration
	ShutdownTimeout      time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:                ":8080",
		GRPCAddr:                ":50051",
		MetricsAddr:             ":9090",
		StorageDriver:           StorageDriverMemory,
		StorageKey:              domain.DefaultStorageKey,
		FileDir:                 "./data",
		RedisAddr:               "localhost:6379",
		PostgresAutoMigrate:     true,
		InventoryTimeout:        5 * time.Second,
		KafkaCartTopic:          kafka.TopicCartEvents,
		KafkaNotificationsTopic: kafka.TopicNotifications,
		NotificationFeedSize:    notify.DefaultFeedSize,
		RequestTimeout:          10 * time.Second,
		ShutdownTimeout:         5 * time.Second,
	}
}
