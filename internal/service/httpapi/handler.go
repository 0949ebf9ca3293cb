// Package httpapi — HTTP-интерфейс корзины для клиентов.
//
// Исход операций с корзиной никогда не превращается в HTTP-ошибку: ответ
// всегда содержит текущую корзину, а об отказах клиент узнаёт из /notifications.
// 400 возвращается только на некорректный запрос.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
	"github.com/vladislavdragonenkov/cartstore/internal/notify"
)

const (
	defaultRequestTimeout = 10 * time.Second
	maxBodyBytes          = 1 << 16
	requestIDHeader       = "X-Request-ID"
)

// CartService — операции корзины, которые обслуживает API.
type CartService interface {
	Cart() domain.Cart
	AddProduct(ctx context.Context, productID int64)
	RemoveProduct(productID int64)
	UpdateProductAmount(ctx context.Context, productID int64, amount int)
}

// NotificationSource отдаёт последние уведомления пользователю.
type NotificationSource interface {
	Recent() []notify.Notification
}

// CartResponse — тело ответа с корзиной.
type CartResponse struct {
	Items domain.Cart `json:"items"`
}

// NotificationsResponse — тело ответа /notifications.
type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}

// AddItemRequest — тело POST /cart/items.
type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
}

// UpdateAmountRequest — тело PUT /cart/items/{productID}.
type UpdateAmountRequest struct {
	Amount *int `json:"amount"`
}

// ErrorResponse — тело ответа 4xx.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Handler связывает маршруты с операциями корзины.
type Handler struct {
	cart          CartService
	notifications NotificationSource
	logger        *log.Entry
	timeout       time.Duration
}

// NewHandler создаёт HTTP handler. notifications может быть nil, тогда /notifications отдаёт пустой список.
func NewHandler(cart CartService, notifications NotificationSource, logger *log.Entry, timeout time.Duration) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Handler{
		cart:          cart,
		notifications: notifications,
		logger:        logger,
		timeout:       timeout,
	}
}

// Routes возвращает роутер с middleware и трассировкой otelhttp.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(h.logRequests)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.UpdateAmount)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
	r.Get("/notifications", h.ListNotifications)

	return otelhttp.NewHandler(r, "cart-api")
}

// GetCart отдаёт текущую корзину.
func (h *Handler) GetCart(w http.ResponseWriter, _ *http.Request) {
	h.respondCart(w)
}

// AddItem добавляет одну единицу товара.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	ctx, cancel := h.operationContext(r)
	defer cancel()

	h.cart.AddProduct(ctx, req.ProductID)
	h.respondCart(w)
}

// UpdateAmount выставляет количество товара. amount < 1 допустим и ничего не меняет.
func (h *Handler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateAmountRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Amount == nil {
		respondError(w, http.StatusBadRequest, "invalid_amount", "amount is required")
		return
	}

	ctx, cancel := h.operationContext(r)
	defer cancel()

	h.cart.UpdateProductAmount(ctx, productID, *req.Amount)
	h.respondCart(w)
}

// RemoveItem удаляет позицию.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	h.cart.RemoveProduct(productID)
	h.respondCart(w)
}

// ListNotifications отдаёт последние уведомления от старых к новым.
func (h *Handler) ListNotifications(w http.ResponseWriter, _ *http.Request) {
	items := []notify.Notification{}
	if h.notifications != nil {
		items = append(items, h.notifications.Recent()...)
	}
	respondJSON(w, http.StatusOK, NotificationsResponse{Notifications: items})
}

// operationContext ограничивает обращения корзины к складу. Ответ пишется
// после операции в любом случае: по таймауту клиент получает корзину как есть.
func (h *Handler) operationContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *Handler) respondCart(w http.ResponseWriter) {
	items := h.cart.Cart()
	if items == nil {
		items = domain.Cart{}
	}
	respondJSON(w, http.StatusOK, CartResponse{Items: items})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		h.logger.WithError(err).Debug("invalid request body")
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productID must be a positive integer")
		return 0, false
	}
	return productID, true
}

// requestID проставляет X-Request-ID, генерируя UUID, если клиент его не передал.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": ww.Header().Get(requestIDHeader),
		}).Debug("http request")
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
