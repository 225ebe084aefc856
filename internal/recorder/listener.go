package recorder

import (
	"github.com/google/uuid"
)

// Tick is one row of samples, as appended to the session by a single poll.
type Tick struct {
	Index  int
	Time   float64
	Values map[string]float64
}

// TickListener receives every tick on the polling goroutine. It must return
// quickly. A listener may Subscribe or Unsubscribe, which takes effect from the
// next tick.
type TickListener func(Tick)

func (r *Recorder) Subscribe(fn TickListener) uuid.UUID {
	id := uuid.New()

	r.listenersMutex.Lock()
	defer r.listenersMutex.Unlock()

	r.listeners[id] = fn

	return id
}

func (r *Recorder) Unsubscribe(id uuid.UUID) {
	r.listenersMutex.Lock()
	defer r.listenersMutex.Unlock()

	delete(r.listeners, id)
}

func (r *Recorder) notify(tick Tick) {
	r.listenersMutex.RLock()
	listeners := make([]TickListener, 0, len(r.listeners))

	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}

	r.listenersMutex.RUnlock()

	for _, fn := range listeners {
		fn(tick)
	}
}
