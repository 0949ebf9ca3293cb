package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
)

// MockService — конфигурируемая заглушка InventoryClient для тестов и локального запуска.
type MockService struct {
	mu       sync.Mutex
	stocks   map[int64]int
	products map[int64]domain.ProductInfo

	StockErr   error
	ProductErr error

	StockCalls   int
	ProductCalls int
}

// NewMockService возвращает пустой склад: любой запрос вернёт ErrProductNotFound.
func NewMockService() *MockService {
	return &MockService{
		stocks:   make(map[int64]int),
		products: make(map[int64]domain.ProductInfo),
	}
}

// SetStock задаёт остаток товара.
func (m *MockService) SetStock(productID int64, amount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stocks[productID] = amount
}

// SetProduct регистрирует карточку товара.
func (m *MockService) SetProduct(product domain.ProductInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
}

// GetStock возвращает настроенный остаток или ошибку и считает вызовы.
func (m *MockService) GetStock(_ context.Context, productID int64) (domain.StockInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StockCalls++
	if m.StockErr != nil {
		return domain.StockInfo{}, m.StockErr
	}
	amount, ok := m.stocks[productID]
	if !ok {
		return domain.StockInfo{}, fmt.Errorf("stock %d: %w", productID, domain.ErrProductNotFound)
	}
	return domain.StockInfo{ProductID: productID, Amount: amount}, nil
}

// GetProduct возвращает настроенную карточку или ошибку и считает вызовы.
func (m *MockService) GetProduct(_ context.Context, productID int64) (domain.ProductInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ProductCalls++
	if m.ProductErr != nil {
		return domain.ProductInfo{}, m.ProductErr
	}
	product, ok := m.products[productID]
	if !ok {
		return domain.ProductInfo{}, fmt.Errorf("product %d: %w", productID, domain.ErrProductNotFound)
	}
	return product, nil
}

// Calls возвращает счётчики вызовов под блокировкой.
func (m *MockService) Calls() (stock, product int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StockCalls, m.ProductCalls
}

var _ domain.InventoryClient = (*MockService)(nil)
