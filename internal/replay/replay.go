// Package replay plays a recorded session back as a live telemetry source.
package replay

import (
	"math"
	"sort"
	"sync"
	"time"

	"justapengu.in/irtl/pkg/session"
)

// Source serves the sample of a recorded session whose timestamp matches the
// time elapsed since Startup. After the last sample it either reports no
// values or, when looping, starts again from the beginning.
type Source struct {
	session *session.Session
	times   []float64
	loop    bool
	now     func() time.Time

	mutex   sync.Mutex
	started time.Time
}

func New(s *session.Session, loop bool) *Source {
	var times []float64

	if clock, ok := s.Channel(session.TimeChannel); ok {
		times = clock.Data
	}

	return &Source{
		session: s,
		times:   times,
		loop:    loop,
		now:     time.Now,
	}
}

func Open(path string, loop bool) (*Source, error) {
	s, err := session.Load(path)

	if err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return New(s, loop), nil
}

// Startup restarts playback from the first sample. It fails for an empty session.
func (r *Source) Startup() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.started = r.now()

	return len(r.times) > 0
}

func (r *Source) Value(name string) (float64, bool) {
	series, ok := r.session.Channel(name)

	if !ok {
		return 0, false
	}

	row := r.row()

	if row < 0 || row >= len(series.Data) {
		return 0, false
	}

	return series.Data[row], true
}

func (r *Source) row() int {
	r.mutex.Lock()
	started := r.started
	r.mutex.Unlock()

	if started.IsZero() || len(r.times) == 0 {
		return -1
	}

	elapsed := r.now().Sub(started).Seconds()
	first, last := r.times[0], r.times[len(r.times)-1]

	if r.loop && last > first {
		elapsed = math.Mod(elapsed, last-first)
	}

	elapsed += first

	if elapsed > last {
		return -1
	}

	// index of the last sample at or before elapsed
	return sort.Search(len(r.times), func(i int) bool {
		return r.times[i] > elapsed
	}) - 1
}
