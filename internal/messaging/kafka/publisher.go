package kafka

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
)

// eventPublisher — то, что нужно от Producer; позволяет подменять его в тестах.
type eventPublisher interface {
	PublishEvent(topic string, key string, event any) error
}

// CartPublisher публикует снимки корзины после commit и пользовательские
// уведомления. Ошибки Kafka только логируются: commit к этому моменту уже
// записан в PersistentStore.
type CartPublisher struct {
	producer           eventPublisher
	storageKey         string
	cartTopic          string
	notificationsTopic string
	logger             *log.Entry
}

// NewCartPublisher создаёт publisher. Пустые topic заменяются значениями по умолчанию.
func NewCartPublisher(producer *Producer, storageKey, cartTopic, notificationsTopic string, logger *log.Entry) *CartPublisher {
	return newCartPublisher(producer, storageKey, cartTopic, notificationsTopic, logger)
}

func newCartPublisher(producer eventPublisher, storageKey, cartTopic, notificationsTopic string, logger *log.Entry) *CartPublisher {
	if cartTopic == "" {
		cartTopic = TopicCartEvents
	}
	if notificationsTopic == "" {
		notificationsTopic = TopicNotifications
	}
	if logger == nil {
		logger = log.WithField("component", "kafka-cart-publisher")
	}
	return &CartPublisher{
		producer:           producer,
		storageKey:         storageKey,
		cartTopic:          cartTopic,
		notificationsTopic: notificationsTopic,
		logger:             logger,
	}
}

// CartCommitted публикует событие cart.committed.
func (p *CartPublisher) CartCommitted(cart domain.Cart) {
	event := NewCartEvent(p.storageKey, cart)
	if err := p.producer.PublishEvent(p.cartTopic, p.storageKey, event); err != nil {
		p.logger.WithError(err).WithField("event_id", event.EventID).Warn("failed to publish cart event")
	}
}

func (p *CartPublisher) Success(message string) {
	p.publishNotification("success", message)
}

func (p *CartPublisher) Error(message string) {
	p.publishNotification("error", message)
}

func (p *CartPublisher) publishNotification(level, message string) {
	event := NewNotificationEvent(p.storageKey, level, message)
	if err := p.producer.PublishEvent(p.notificationsTopic, p.storageKey, event); err != nil {
		p.logger.WithError(err).WithField("event_id", event.EventID).Warn("failed to publish notification")
	}
}

var (
	_ domain.CommitListener = (*CartPublisher)(nil)
	_ domain.Notifier       = (*CartPublisher)(nil)
)
