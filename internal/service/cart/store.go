package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
	"github.com/vladislavdragonenkov/cartstore/internal/metrics"
)

const (
	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update"

	lookupStock   = "stock"
	lookupProduct = "product"

	outcomeOK        = "ok"
	outcomeIgnored   = "ignored"
	outcomeDelegated = "delegated"
)

// Store владеет корзиной: все мутации проходят через проверку остатков
// и синхронно записываются в PersistentStore до публикации нового состояния.
//
// Ошибки операций не возвращаются вызывающему: они логируются, считаются
// в метриках и уходят пользователю через Notifier.
type Store struct {
	storage   domain.PersistentStore
	inventory domain.InventoryClient
	notifier  domain.Notifier
	key       string
	logger    *log.Entry
	metrics   *metrics.CartMetrics
	listeners []domain.CommitListener
	commits   *commitQueue

	mu   sync.RWMutex
	cart domain.Cart
}

// Option настраивает Store при создании.
type Option func(*Store)

// WithStorageKey задаёт ключ корзины в хранилище.
func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithMetrics подключает Prometheus-метрики.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithCommitListener добавляет получателя снимков после commit.
// Listeners вызываются вне блокировки корзины, в отдельной горутине,
// строго в порядке commit. Store.Close дожидается доставки.
func WithCommitListener(l domain.CommitListener) Option {
	return func(s *Store) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// NewStore создаёт хранилище корзины и загружает сохранённое состояние.
// Отсутствующий ключ означает пустую корзину; повреждённое значение — ошибку.
func NewStore(
	storage domain.PersistentStore,
	inventory domain.InventoryClient,
	notifier domain.Notifier,
	logger *log.Entry,
	opts ...Option,
) (*Store, error) {
	if storage == nil {
		return nil, errors.New("cart: persistent store is required")
	}
	if inventory == nil {
		return nil, errors.New("cart: inventory client is required")
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = log.New().WithField("component", "cart-store")
	}

	s := &Store{
		storage:   storage,
		inventory: inventory,
		notifier:  notifier,
		key:       domain.DefaultStorageKey,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	cart, err := s.load()
	if err != nil {
		return nil, err
	}
	s.cart = cart
	s.metrics.SetCartSize(len(cart), cart.Units())
	if len(s.listeners) > 0 {
		s.commits = newCommitQueue(s.listeners)
	}

	s.logger.WithFields(log.Fields{
		"storage_key": s.key,
		"line_items":  len(cart),
	}).Info("cart loaded")

	return s, nil
}

func (s *Store) load() (domain.Cart, error) {
	raw, ok, err := s.storage.Get(s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: load %q: %w", domain.ErrStorage, s.key, err)
	}
	if !ok {
		return domain.Cart{}, nil
	}
	return domain.UnmarshalCart(raw)
}

// Close доставляет listeners оставшиеся снимки и останавливает очередь.
// Commit после Close сохраняется, но listeners его уже не получают.
func (s *Store) Close() {
	if s.commits != nil {
		s.commits.close()
	}
}

// Cart возвращает снимок корзины. Изменения снимка не влияют на Store.
func (s *Store) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// AddProduct добавляет одну единицу товара. Если товар уже в корзине,
// операция сводится к UpdateProductAmount с количеством +1.
func (s *Store) AddProduct(ctx context.Context, productID int64) {
	logger := s.logger.WithFields(log.Fields{"operation": opAdd, "product_id": productID})

	stock, err := s.getStock(ctx, productID)
	if err != nil {
		s.fail(opAdd, logger, err, domain.MsgAddFailed)
		return
	}
	if stock.Amount <= 0 {
		s.fail(opAdd, logger, fmt.Errorf("%w: product %d", domain.ErrOutOfStock, productID), domain.MsgProductOutOfStock)
		return
	}

	current := s.Cart()
	if i := current.Find(productID); i >= 0 {
		s.metrics.RecordOperation(opAdd, outcomeDelegated)
		s.UpdateProductAmount(ctx, productID, current[i].Amount+1)
		return
	}

	product, err := s.getProduct(ctx, productID)
	if err != nil {
		s.fail(opAdd, logger, err, domain.MsgAddFailed)
		return
	}

	item := domain.NewLineItem(product, 1)
	item.ID = productID

	err = s.commit(func(cart domain.Cart) (domain.Cart, error) {
		if cart.Contains(productID) {
			return nil, fmt.Errorf("%w: product %d", domain.ErrAlreadyInCart, productID)
		}
		return cart.With(item), nil
	})
	if err != nil {
		s.fail(opAdd, logger, err, domain.MsgAddFailed)
		return
	}

	s.metrics.RecordOperation(opAdd, outcomeOK)
	logger.Debug("product added")
	s.notifier.Success(domain.MsgProductAdded)
}

// RemoveProduct удаляет позицию целиком. Успех не сопровождается уведомлением.
func (s *Store) RemoveProduct(productID int64) {
	logger := s.logger.WithFields(log.Fields{"operation": opRemove, "product_id": productID})

	err := s.commit(func(cart domain.Cart) (domain.Cart, error) {
		if !cart.Contains(productID) {
			return nil, fmt.Errorf("%w: product %d", domain.ErrNotInCart, productID)
		}
		return cart.Without(productID), nil
	})
	if err != nil {
		s.fail(opRemove, logger, err, domain.MsgRemoveFailed)
		return
	}

	s.metrics.RecordOperation(opRemove, outcomeOK)
	logger.Debug("product removed")
}

// UpdateProductAmount выставляет количество товара после проверки остатка.
// amount < 1 молча игнорируется.
func (s *Store) UpdateProductAmount(ctx context.Context, productID int64, amount int) {
	logger := s.logger.WithFields(log.Fields{"operation": opUpdate, "product_id": productID, "amount": amount})

	if amount < 1 {
		s.metrics.RecordOperation(opUpdate, outcomeIgnored)
		logger.Debug("amount below one ignored")
		return
	}

	stock, err := s.getStock(ctx, productID)
	if err != nil {
		s.fail(opUpdate, logger, err, domain.MsgUpdateAmountFailed)
		return
	}
	if amount > stock.Amount {
		err := fmt.Errorf("%w: product %d requested %d, available %d", domain.ErrOutOfStock, productID, amount, stock.Amount)
		s.fail(opUpdate, logger, err, domain.MsgAmountOutOfStock)
		return
	}

	// Отсутствие позиции здесь означает, что её удалили между чтением и commit.
	err = s.commit(func(cart domain.Cart) (domain.Cart, error) {
		if !cart.Contains(productID) {
			return nil, fmt.Errorf("%w: product %d", domain.ErrNotInCart, productID)
		}
		return cart.WithAmount(productID, amount), nil
	})
	if err != nil {
		s.fail(opUpdate, logger, err, domain.MsgUpdateAmountFailed)
		return
	}

	s.metrics.RecordOperation(opUpdate, outcomeOK)
	logger.Debug("product amount updated")
}

// commit вычисляет новую корзину из текущей, пишет её в хранилище
// и только после успешной записи публикует как текущее состояние.
func (s *Store) commit(mutate func(domain.Cart) (domain.Cart, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := mutate(s.cart)
	if err != nil {
		return err
	}

	raw, err := domain.MarshalCart(next)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if err := s.storage.Set(s.key, raw); err != nil {
		return fmt.Errorf("%w: save %q: %w", domain.ErrStorage, s.key, err)
	}

	s.cart = next
	s.metrics.RecordCommit(len(next), next.Units())
	// Постановка в очередь под s.mu сохраняет порядок commit.
	if s.commits != nil && !s.commits.push(next.Clone()) {
		s.logger.WithField("storage_key", s.key).Debug("store closed, commit not delivered to listeners")
	}

	return nil
}

func (s *Store) getStock(ctx context.Context, productID int64) (domain.StockInfo, error) {
	start := time.Now()
	stock, err := s.inventory.GetStock(ctx, productID)
	s.metrics.RecordLookupDuration(lookupStock, time.Since(start))
	if err != nil {
		return domain.StockInfo{}, fmt.Errorf("%w: stock %d: %w", domain.ErrLookupFailure, productID, err)
	}
	return stock, nil
}

func (s *Store) getProduct(ctx context.Context, productID int64) (domain.ProductInfo, error) {
	start := time.Now()
	product, err := s.inventory.GetProduct(ctx, productID)
	s.metrics.RecordLookupDuration(lookupProduct, time.Since(start))
	if err != nil {
		return domain.ProductInfo{}, fmt.Errorf("%w: product %d: %w", domain.ErrLookupFailure, productID, err)
	}
	return product, nil
}

// fail фиксирует неуспешную операцию: лог, метрика и уведомление пользователю.
func (s *Store) fail(operation string, logger *log.Entry, err error, message string) {
	kind := domain.Kind(err)
	s.metrics.RecordOperation(operation, kind)

	entry := logger.WithError(err).WithField("kind", kind)
	switch kind {
	case "out_of_stock", "not_in_cart":
		entry.Info("cart operation rejected")
	default:
		entry.Warn("cart operation failed")
	}

	s.notifier.Error(message)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
