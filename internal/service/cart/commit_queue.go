package cart

import (
	"sync"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
)

// commitQueue доставляет снимки listeners в отдельной горутине в порядке commit.
// Очередь не ограничена: commit никогда не ждёт медленного listener.
type commitQueue struct {
	listeners []domain.CommitListener

	mu      sync.Mutex
	cond    *sync.Cond
	pending []domain.Cart
	closed  bool
	done    chan struct{}
}

func newCommitQueue(listeners []domain.CommitListener) *commitQueue {
	q := &commitQueue{
		listeners: listeners,
		done:      make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// push ставит снимок в очередь. После close снимки отбрасываются.
func (q *commitQueue) push(snapshot domain.Cart) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.pending = append(q.pending, snapshot)
	q.cond.Signal()
	return true
}

func (q *commitQueue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, snapshot := range batch {
			for _, l := range q.listeners {
				l.CartCommitted(snapshot.Clone())
			}
		}
	}
}

// close дожидается доставки всего, что было поставлено до вызова.
func (q *commitQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()

	<-q.done
}
