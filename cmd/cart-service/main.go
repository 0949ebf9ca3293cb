package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartstore/internal/app"
	"github.com/vladislavdragonenkov/cartstore/internal/version"
)

const (
	envHTTPAddr                = "CART_HTTP_ADDR"
	envGRPCAddr                = "CART_GRPC_ADDR"
	envMetricsAddr             = "CART_METRICS_ADDR"
	envStorageDriver           = "CART_STORAGE_DRIVER"
	envStorageKey              = "CART_STORAGE_KEY"
	envFileDir                 = "CART_FILE_DIR"
	envRedisAddr               = "CART_REDIS_ADDR"
	envRedisTTL                = "CART_REDIS_TTL"
	envPostgresDSN             = "CART_POSTGRES_DSN"
	envPostgresAutoMigrate     = "CART_POSTGRES_AUTO_MIGRATE"
	envInventoryURL            = "CART_INVENTORY_URL"
	envInventoryTimeout        = "CART_INVENTORY_TIMEOUT"
	envKafkaBrokers            = "CART_KAFKA_BROKERS"
	envKafkaCartTopic          = "CART_KAFKA_CART_TOPIC"
	envKafkaNotificationsTopic = "CART_KAFKA_NOTIFICATIONS_TOPIC"
	envNotificationFeedSize    = "CART_NOTIFICATION_FEED_SIZE"
	envRequestTimeout          = "CART_REQUEST_TIMEOUT"
	envShutdownTimeout         = "CART_SHUTDOWN_TIMEOUT"
	envLogLevel                = "CART_LOG_LEVEL"
)

type envLookup func(string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	if raw, ok := lookup(envLogLevel); ok && strings.TrimSpace(raw) != "" {
		level, err := log.ParseLevel(strings.TrimSpace(raw))
		if err != nil {
			log.WithError(err).Warnf("invalid %s, using info", envLogLevel)
			return
		}
		log.SetLevel(level)
	}
}

// readConfigFromEnv формирует конфигурацию поверх DefaultConfig.
// Некорректные значения не роняют запуск: остаётся значение по умолчанию и возвращается предупреждение.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setDuration := func(key string, dst *time.Duration, valid func(time.Duration) bool, rule string) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		parsed, err := parseDuration(v, valid, rule)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", key, err))
			return
		}
		*dst = parsed
	}

	setString(envHTTPAddr, &cfg.HTTPAddr)
	setString(envGRPCAddr, &cfg.GRPCAddr)
	setString(envMetricsAddr, &cfg.MetricsAddr)
	setString(envStorageKey, &cfg.StorageKey)
	setString(envFileDir, &cfg.FileDir)
	setString(envRedisAddr, &cfg.RedisAddr)
	setString(envPostgresDSN, &cfg.PostgresDSN)
	setString(envInventoryURL, &cfg.InventoryURL)
	setString(envKafkaBrokers, &cfg.KafkaBrokers)
	setString(envKafkaCartTopic, &cfg.KafkaCartTopic)
	setString(envKafkaNotificationsTopic, &cfg.KafkaNotificationsTopic)

	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := lookup(envPostgresAutoMigrate); ok && strings.TrimSpace(v) != "" {
		parsed, err := parseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envPostgresAutoMigrate, err))
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}

	if v, ok := lookup(envNotificationFeedSize); ok && strings.TrimSpace(v) != "" {
		parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envNotificationFeedSize, err))
		} else {
			cfg.NotificationFeedSize = parsed
		}
	}

	positive := func(d time.Duration) bool { return d > 0 }
	setDuration(envRedisTTL, &cfg.RedisTTL, func(d time.Duration) bool { return d >= 0 }, "must be >= 0")
	setDuration(envInventoryTimeout, &cfg.InventoryTimeout, positive, "must be > 0")
	setDuration(envRequestTimeout, &cfg.RequestTimeout, positive, "must be > 0")
	setDuration(envShutdownTimeout, &cfg.ShutdownTimeout, positive, "must be > 0")

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %d %s", value, rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %s %s", value, rule)
	}
	return value, nil
}

func main() {
	setupLogger(os.LookupEnv)
	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(version.Fields()).WithFields(log.Fields{
		"http_addr":      cfg.HTTPAddr,
		"grpc_addr":      cfg.GRPCAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
	}).Info("запускаем CartService")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("CartService остановлен")
}
