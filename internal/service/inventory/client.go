package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
)

const (
	defaultRequestTimeout  = 5 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
	maxResponseBytes       = 1 << 20
)

// ClientConfig описывает подключение к HTTP API склада.
type ClientConfig struct {
	// BaseURL — адрес API, например http://localhost:3333.
	BaseURL string
	// Timeout ограничивает один HTTP-запрос.
	Timeout time.Duration
	// BreakerFailures — сколько подряд временных ошибок размыкают circuit breaker.
	BreakerFailures uint32
	// BreakerTimeout — сколько breaker остаётся разомкнутым.
	BreakerTimeout time.Duration
}

// Client — InventoryClient поверх HTTP API склада:
// GET {base}/stock/{id} и GET {base}/products/{id}.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *log.Entry
}

// NewClient создаёт HTTP-клиент склада.
func NewClient(cfg ClientConfig, logger *log.Entry) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("inventory base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse inventory base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaultBreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaultBreakerTimeout
	}
	if logger == nil {
		logger = log.WithField("component", "inventory-client")
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "inventory",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Неизвестный товар — корректный ответ склада, а не сбой.
		// Отмена запроса вызывающей стороной тоже не говорит о состоянии склада.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrProductNotFound) || isCallerCancellation(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(log.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("inventory circuit breaker state changed")
		},
	})

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		logger:  logger,
	}, nil
}

// GetStock запрашивает текущий остаток товара.
func (c *Client) GetStock(ctx context.Context, productID int64) (domain.StockInfo, error) {
	var stock domain.StockInfo
	if err := c.getJSON(ctx, "stock", productID, &stock); err != nil {
		return domain.StockInfo{}, err
	}
	stock.ProductID = productID
	return stock, nil
}

// GetProduct запрашивает карточку товара.
func (c *Client) GetProduct(ctx context.Context, productID int64) (domain.ProductInfo, error) {
	var product domain.ProductInfo
	if err := c.getJSON(ctx, "products", productID, &product); err != nil {
		return domain.ProductInfo{}, err
	}
	product.ID = productID
	return product, nil
}

func (c *Client) getJSON(ctx context.Context, resource string, productID int64, out any) error {
	endpoint := c.baseURL.JoinPath(resource, strconv.FormatInt(productID, 10)).String()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, endpoint)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %s: %w", domain.ErrInventoryTemporary, resource, err)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %d: %w", resource, productID, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("GET %s: %w", endpoint, ctxErr)
		}
		return nil, fmt.Errorf("%w: GET %s: %w", domain.ErrInventoryTemporary, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("read %s: %w", endpoint, ctxErr)
		}
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrInventoryTemporary, endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("GET %s: %w", endpoint, domain.ErrProductNotFound)
	case resp.StatusCode != http.StatusOK:
		c.logger.WithFields(log.Fields{
			"url":    endpoint,
			"status": resp.StatusCode,
		}).Debug("unexpected inventory response")
		return nil, fmt.Errorf("%w: GET %s: status %d", domain.ErrInventoryTemporary, endpoint, resp.StatusCode)
	}

	return body, nil
}

// isCallerCancellation отличает отмену ctx вызывающего от таймаута самого HTTP-клиента:
// последний остаётся ErrInventoryTemporary и учитывается breaker.
func isCallerCancellation(err error) bool {
	if errors.Is(err, domain.ErrInventoryTemporary) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Healthy возвращает ошибку, пока circuit breaker разомкнут.
func (c *Client) Healthy(context.Context) error {
	if state := c.breaker.State(); state == gobreaker.StateOpen {
		return fmt.Errorf("%w: circuit breaker %s", domain.ErrInventoryTemporary, state)
	}
	return nil
}

var _ domain.InventoryClient = (*Client)(nil)
