package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
)

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, log.WithField("component", "kafka-producer-test"))

	// Проверяем, что в Kafka уходит JSON снимка корзины
	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event CartEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeCartCommitted || event.LineItems != 1 || event.Units != 2 {
			t.Errorf("unexpected event: %+v", event)
		}
		return nil
	})

	event := NewCartEvent(domain.DefaultStorageKey, domain.Cart{{ID: 1, Title: "Shoe", Amount: 2}})
	if err := producer.PublishEvent(TopicCartEvents, domain.DefaultStorageKey, event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewNotificationEvent(domain.DefaultStorageKey, "error", domain.MsgAddFailed)
	if err := producer.PublishEvent(TopicNotifications, domain.DefaultStorageKey, event); err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_MarshalError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	if err := producer.PublishEvent(TopicCartEvents, "k", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}

	if err := producer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewCartEvent(t *testing.T) {
	cart := domain.Cart{{ID: 1, Amount: 2}, {ID: 2, Amount: 3}}

	event := NewCartEvent("key", cart)

	if event.EventType != EventTypeCartCommitted {
		t.Errorf("expected event type %s, got %s", EventTypeCartCommitted, event.EventType)
	}
	if event.EventID == "" {
		t.Error("event id should be set")
	}
	if event.StorageKey != "key" {
		t.Errorf("expected storage key key, got %s", event.StorageKey)
	}
	if event.LineItems != 2 || event.Units != 5 {
		t.Errorf("unexpected sizes: line_items=%d units=%d", event.LineItems, event.Units)
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}

func TestNewCartEvent_EmptyCartHasItemsArray(t *testing.T) {
	event := NewCartEvent("key", nil)

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["items"].([]any); !ok {
		t.Errorf("expected items array, got %v", decoded["items"])
	}
}

func TestNewNotificationEvent(t *testing.T) {
	event := NewNotificationEvent("key", "success", domain.MsgProductAdded)

	if event.EventType != EventTypeNotification {
		t.Errorf("expected event type %s, got %s", EventTypeNotification, event.EventType)
	}
	if event.Level != "success" || event.Message != domain.MsgProductAdded {
		t.Errorf("unexpected notification: %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
}
