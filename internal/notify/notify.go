// Package notify содержит реализации domain.Notifier: пользовательские
// уведомления (toast) об исходе операций с корзиной.
package notify

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
)

// Level — тип уведомления.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification — одно отправленное уведомление.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// LogNotifier пишет уведомления в лог.
type LogNotifier struct {
	logger *log.Entry
}

// NewLogNotifier создаёт notifier поверх logrus.
func NewLogNotifier(logger *log.Entry) *LogNotifier {
	if logger == nil {
		logger = log.WithField("component", "notifier")
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(message string) {
	n.logger.WithField("notification", LevelSuccess).Info(message)
}

func (n *LogNotifier) Error(message string) {
	n.logger.WithField("notification", LevelError).Warn(message)
}

// Multi рассылает уведомление всем вложенным notifier по порядку.
type Multi []domain.Notifier

func (m Multi) Success(message string) {
	for _, n := range m {
		if n != nil {
			n.Success(message)
		}
	}
}

func (m Multi) Error(message string) {
	for _, n := range m {
		if n != nil {
			n.Error(message)
		}
	}
}

// Feed хранит последние уведомления в кольцевом буфере ограниченного размера.
type Feed struct {
	mu    sync.RWMutex
	items []Notification
	next  int
	full  bool
	now   func() time.Time
}

// DefaultFeedSize — размер буфера по умолчанию.
const DefaultFeedSize = 50

// NewFeed создаёт буфер на size уведомлений (size <= 0 — DefaultFeedSize).
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{
		items: make([]Notification, size),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (f *Feed) Success(message string) { f.push(LevelSuccess, message) }

func (f *Feed) Error(message string) { f.push(LevelError, message) }

func (f *Feed) push(level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items[f.next] = Notification{Level: level, Message: message, At: f.now()}
	f.next = (f.next + 1) % len(f.items)
	if f.next == 0 {
		f.full = true
	}
}

// Recent возвращает уведомления от старых к новым.
func (f *Feed) Recent() []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.full {
		out := make([]Notification, f.next)
		copy(out, f.items[:f.next])
		return out
	}

	out := make([]Notification, 0, len(f.items))
	out = append(out, f.items[f.next:]...)
	return append(out, f.items[:f.next]...)
}

// Recorder запоминает все уведомления; используется в тестах.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Success(message string) { r.add(LevelSuccess, message) }

func (r *Recorder) Error(message string) { r.add(LevelError, message) }

func (r *Recorder) add(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, Message: message})
}

// All возвращает копию записанных уведомлений.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Reset очищает записи.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

var (
	_ domain.Notifier = (*LogNotifier)(nil)
	_ domain.Notifier = Multi(nil)
	_ domain.Notifier = (*Feed)(nil)
	_ domain.Notifier = (*Recorder)(nil)
)
