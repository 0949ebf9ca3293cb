package domain

import "context"

// InventoryClient — read-only доступ к складу и каталогу.
type InventoryClient interface {
	// GetStock возвращает текущий остаток товара.
	GetStock(ctx context.Context, productID int64) (StockInfo, error)
	// GetProduct возвращает карточку товара.
	GetProduct(ctx context.Context, productID int64) (ProductInfo, error)
}

// PersistentStore — синхронное key-value хранилище для сериализованной корзины.
type PersistentStore interface {
	// Get возвращает значение и ok=false, если ключа нет.
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Notifier — канал пользовательских уведомлений (toast). Fire-and-forget.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// CommitListener получает снимок корзины после каждого успешного commit.
type CommitListener interface {
	CartCommitted(cart Cart)
}

// CommitListenerFunc позволяет использовать функцию как CommitListener.
type CommitListenerFunc func(cart Cart)

// CartCommitted вызывает f(cart).
func (f CommitListenerFunc) CartCommitted(cart Cart) {
	f(cart)
}

// Тексты уведомлений, которые видит пользователь.
const (
	MsgProductAdded       = "Product added to cart"
	MsgProductOutOfStock  = "Product out of stock"
	MsgAddFailed          = "Failed to add product"
	MsgRemoveFailed       = "Failed to remove product"
	MsgAmountOutOfStock   = "Requested quantity is out of stock"
	MsgUpdateAmountFailed = "Failed to update product amount"
)
