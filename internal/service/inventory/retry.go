package inventory

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
)

// RetryConfig конфигурация повторов запросов к складу.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryingClient повторяет запросы, завершившиеся ErrInventoryTemporary.
// Неизвестный товар и отмена ctx не повторяются.
type RetryingClient struct {
	next   domain.InventoryClient
	config RetryConfig
	logger *log.Entry
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryingClient оборачивает клиент склада retry логикой.
func NewRetryingClient(next domain.InventoryClient, config RetryConfig, logger *log.Entry) *RetryingClient {
	if logger == nil {
		logger = log.New().WithField("component", "inventory-retry")
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}

	return &RetryingClient{
		next:   next,
		config: config,
		logger: logger,
		sleep:  sleepContext,
	}
}

// GetStock запрашивает остаток с повторами.
func (c *RetryingClient) GetStock(ctx context.Context, productID int64) (domain.StockInfo, error) {
	var stock domain.StockInfo
	err := c.executeWithRetry(ctx, "stock", productID, func() error {
		var err error
		stock, err = c.next.GetStock(ctx, productID)
		return err
	})
	return stock, err
}

// GetProduct запрашивает карточку товара с повторами.
func (c *RetryingClient) GetProduct(ctx context.Context, productID int64) (domain.ProductInfo, error) {
	var product domain.ProductInfo
	err := c.executeWithRetry(ctx, "product", productID, func() error {
		var err error
		product, err = c.next.GetProduct(ctx, productID)
		return err
	})
	return product, err
}

func (c *RetryingClient) executeWithRetry(ctx context.Context, lookup string, productID int64, fn func() error) error {
	delay := c.config.InitialDelay
	var err error

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			if attempt > 1 {
				c.logger.WithFields(log.Fields{
					"lookup":     lookup,
					"product_id": productID,
					"attempt":    attempt,
				}).Info("inventory lookup succeeded after retry")
			}
			return nil
		}
		if !shouldRetry(ctx, err) || attempt == c.config.MaxAttempts {
			return err
		}

		c.logger.WithFields(log.Fields{
			"lookup":     lookup,
			"product_id": productID,
			"attempt":    attempt,
			"delay":      delay,
		}).WithError(err).Debug("inventory lookup failed, retrying")

		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return err
		}

		// Экспоненциальная задержка с ограничением
		delay = time.Duration(float64(delay) * c.config.BackoffFactor)
		if c.config.MaxDelay > 0 && delay > c.config.MaxDelay {
			delay = c.config.MaxDelay
		}
	}

	return err
}

// shouldRetry повторяет только временные ошибки склада и только пока ctx вызывающего жив.
func shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil || isCallerCancellation(err) {
		return false
	}
	return errors.Is(err, domain.ErrInventoryTemporary)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ domain.InventoryClient = (*RetryingClient)(nil)
