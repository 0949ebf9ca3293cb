package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
)

// flakyInventory возвращает заданные ошибки по очереди, затем успех.
type flakyInventory struct {
	errs  []error
	calls int
}

func (f *flakyInventory) next() error {
	f.calls++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *flakyInventory) GetStock(_ context.Context, productID int64) (domain.StockInfo, error) {
	if err := f.next(); err != nil {
		return domain.StockInfo{}, err
	}
	return domain.StockInfo{ProductID: productID, Amount: 4}, nil
}

func (f *flakyInventory) GetProduct(_ context.Context, productID int64) (domain.ProductInfo, error) {
	if err := f.next(); err != nil {
		return domain.ProductInfo{}, err
	}
	return domain.ProductInfo{ID: productID, Title: "Shoe"}, nil
}

func newTestRetryingClient(next domain.InventoryClient, attempts int) (*RetryingClient, *[]time.Duration) {
	var delays []time.Duration
	c := NewRetryingClient(next, RetryConfig{
		MaxAttempts:   attempts,
		InitialDelay:  10 * time.Millisecond,
		MaxDelay:      15 * time.Millisecond,
		BackoffFactor: 2,
	}, loggerForTests())
	c.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return c, &delays
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Positive(t, cfg.InitialDelay)
	assert.Greater(t, cfg.BackoffFactor, 1.0)
}

func TestRetryingClient_RetriesTemporaryErrors(t *testing.T) {
	flaky := &flakyInventory{errs: []error{domain.ErrInventoryTemporary, domain.ErrInventoryTemporary}}
	client, delays := newTestRetryingClient(flaky, 3)

	stock, err := client.GetStock(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 4, stock.Amount)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 15 * time.Millisecond}, *delays)
}

func TestRetryingClient_GivesUpAfterMaxAttempts(t *testing.T) {
	flaky := &flakyInventory{errs: []error{domain.ErrInventoryTemporary, domain.ErrInventoryTemporary, domain.ErrInventoryTemporary}}
	client, _ := newTestRetryingClient(flaky, 2)

	_, err := client.GetProduct(context.Background(), 1)

	require.ErrorIs(t, err, domain.ErrInventoryTemporary)
	assert.Equal(t, 2, flaky.calls)
}

func TestRetryingClient_DoesNotRetryNotFound(t *testing.T) {
	flaky := &flakyInventory{errs: []error{domain.ErrProductNotFound}}
	client, delays := newTestRetryingClient(flaky, 3)

	_, err := client.GetStock(context.Background(), 1)

	require.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, 1, flaky.calls)
	assert.Empty(t, *delays)
}

func TestRetryingClient_StopsOnCancelledContext(t *testing.T) {
	flaky := &flakyInventory{errs: []error{domain.ErrInventoryTemporary, domain.ErrInventoryTemporary}}
	client, _ := newTestRetryingClient(flaky, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetStock(ctx, 1)

	require.ErrorIs(t, err, domain.ErrInventoryTemporary)
	assert.Equal(t, 1, flaky.calls)
}

func TestShouldRetry(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, shouldRetry(context.Background(), domain.ErrInventoryTemporary))
	assert.False(t, shouldRetry(context.Background(), domain.ErrProductNotFound))
	assert.False(t, shouldRetry(context.Background(), fmt.Errorf("GET /stock/1: %w", context.Canceled)))
	assert.False(t, shouldRetry(cancelled, domain.ErrInventoryTemporary))
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.True(t, errors.Is(sleepContext(ctx, time.Hour), context.Canceled))
}
