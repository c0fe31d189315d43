package cart

import "sync"

// eventQueue ordena la publicación de eventos por sesión.
// El turno se toma dentro de la transacción con el carrito ya bloqueado, así que
// el orden de los turnos de una sesión es el orden de sus commits.
type eventQueue struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{tails: map[string]chan struct{}{}}
}

type eventTurn struct {
	queue *eventQueue
	key   string
	prev  <-chan struct{}
	done  chan struct{}
}

func (q *eventQueue) take(sessionKey string) *eventTurn {
	q.mu.Lock()
	defer q.mu.Unlock()
	t := &eventTurn{queue: q, key: sessionKey, prev: q.tails[sessionKey], done: make(chan struct{})}
	q.tails[sessionKey] = t.done
	return t
}

// release espera a que publiquen las mutaciones anteriores de la sesión,
// ejecuta fn (nil tras un rollback) y cede el turno a la siguiente.
func (t *eventTurn) release(fn func()) {
	if t == nil {
		return
	}
	if t.prev != nil {
		<-t.prev
	}
	if fn != nil {
		fn()
	}
	close(t.done)

	t.queue.mu.Lock()
	if t.queue.tails[t.key] == t.done {
		delete(t.queue.tails, t.key)
	}
	t.queue.mu.Unlock()
}
