package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	EventTypeCartCommitted EventType = "cart.committed"
	EventTypeNotification  EventType = "cart.notification"
)

// Topics для Kafka
const (
	TopicCartEvents    = "cart.events"
	TopicNotifications = "cart.notifications"
)

// CartEvent — снимок корзины после commit.
type CartEvent struct {
	EventID    string            `json:"event_id"`
	EventType  EventType         `json:"event_type"`
	StorageKey string            `json:"storage_key"`
	Items      []domain.LineItem `json:"items"`
	LineItems  int               `json:"line_items"`
	Units      int               `json:"units"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NotificationEvent — пользовательское уведомление.
type NotificationEvent struct {
	EventID    string    `json:"event_id"`
	EventType  EventType `json:"event_type"`
	StorageKey string    `json:"storage_key"`
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewCartEvent создает событие commit корзины.
func NewCartEvent(storageKey string, cart domain.Cart) *CartEvent {
	items := []domain.LineItem(cart)
	if items == nil {
		items = []domain.LineItem{}
	}
	return &CartEvent{
		EventID:    uuid.NewString(),
		EventType:  EventTypeCartCommitted,
		StorageKey: storageKey,
		Items:      items,
		LineItems:  len(cart),
		Units:      cart.Units(),
		Timestamp:  time.Now().UTC(),
	}
}

// NewNotificationEvent создает событие уведомления.
func NewNotificationEvent(storageKey, level, message string) *NotificationEvent {
	return &NotificationEvent{
		EventID:    uuid.NewString(),
		EventType:  EventTypeNotification,
		StorageKey: storageKey,
		Level:      level,
		Message:    message,
		Timestamp:  time.Now().UTC(),
	}
}
