package recorder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"justapengu.in/irtl/pkg/channels"
	"justapengu.in/irtl/pkg/session"
)

var (
	ErrSourceUnavailable = errors.New("recorder: telemetry source unavailable, is the simulator running?")
	ErrAlreadyRecording  = errors.New("recorder: already recording")
	ErrNotRecording      = errors.New("recorder: not recording")
	ErrFlushFailed       = errors.New("recorder: could not save session")
)

// Recorder polls a Source at a fixed interval and buffers one sample per
// channel per tick. The buffer belongs to the polling goroutine while
// recording and is written to a session file when recording stops.
type Recorder struct {
	config  Config
	source  Source
	logger  logrus.FieldLogger
	metrics *Metrics
	now     func() time.Time

	active []channels.Definition

	// mutex serialises Start and Stop. recording is also read by Recording
	// from any goroutine, including tick listeners while Stop waits on the loop.
	mutex     sync.Mutex
	recording int32
	cfn       context.CancelFunc
	group     *errgroup.Group

	session *session.Session
	clock   *session.ChannelSeries
	series  []*session.ChannelSeries
	samples int

	listenersMutex sync.RWMutex
	listeners      map[uuid.UUID]TickListener
}

func New(config Config, table channels.Table, source Source, logger logrus.FieldLogger, metrics *Metrics) *Recorder {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}

	if config.OutputDir == "" {
		config.OutputDir = "."
	}

	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	r := &Recorder{
		config:    config,
		source:    source,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
		listeners: make(map[uuid.UUID]TickListener),
	}

	r.active = r.resolveChannels(table)
	r.reset()

	return r
}

func (r *Recorder) resolveChannels(table channels.Table) []channels.Definition {
	active, unknown := table.Resolve(r.config.Channels)

	for _, name := range unknown {
		r.logger.Warnf("Channel '%s' is not defined by the simulator and will not be recorded", name)
	}

	seen := make(map[string]bool)
	var deduped []channels.Definition

	for _, def := range active {
		if !seen[def.Name] && def.Name != session.TimeChannel {
			seen[def.Name] = true
			deduped = append(deduped, def)
		}
	}

	for _, name := range MandatoryChannels {
		if seen[name] {
			continue
		}

		def, ok := table.Lookup(name)

		if !ok {
			if name != channels.LapNumber {
				continue
			}

			def = channels.Definition{Name: name}
		}

		seen[name] = true
		deduped = append(deduped, def)
	}

	return deduped
}

// Channels returns the definitions of every channel that is recorded, excluding time.
func (r *Recorder) Channels() []channels.Definition {
	return append([]channels.Definition(nil), r.active...)
}

func (r *Recorder) Interval() time.Duration {
	return r.config.Interval
}

func (r *Recorder) Recording() bool {
	return atomic.LoadInt32(&r.recording) == 1
}

func (r *Recorder) reset() {
	r.session = session.New()
	r.clock, _ = r.session.Channel(session.TimeChannel)
	r.series = make([]*session.ChannelSeries, 0, len(r.active))

	for _, def := range r.active {
		r.series = append(r.series, r.session.Add(def))
	}

	r.samples = 0
}

// Start begins recording a new session. It returns as soon as the polling
// goroutine is running.
func (r *Recorder) Start(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.Recording() {
		return ErrAlreadyRecording
	}

	if !r.source.Startup() {
		return ErrSourceUnavailable
	}

	r.reset()

	ctx, r.cfn = context.WithCancel(ctx)
	r.group, ctx = errgroup.WithContext(ctx)
	r.group.Go(func() error {
		return r.loop(ctx)
	})

	atomic.StoreInt32(&r.recording, 1)
	r.metrics.recording.Set(1)

	r.logger.Infof("Recording %d channels every %s", len(r.active), r.config.Interval)

	return nil
}

func (r *Recorder) loop(ctx context.Context) error {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debugf("Stopping polling loop after %d ticks", r.samples)
			return nil
		case <-ticker.C:
			r.Poll()
		}
	}
}

// Poll reads every active channel once and appends the samples to the
// session. It is called by the polling loop while recording; callers driving
// their own clock may call it directly while the recorder is not recording.
func (r *Recorder) Poll() {
	tick := Tick{
		Index:  r.samples,
		Time:   float64(r.samples) * r.config.Interval.Seconds(),
		Values: make(map[string]float64, len(r.series)),
	}

	for _, series := range r.series {
		value, ok := r.source.Value(series.Name)

		if ok && (math.IsNaN(value) || math.IsInf(value, 0)) {
			ok = false
		}

		if !ok {
			r.metrics.unavailable.WithLabelValues(series.Name).Inc()
		}

		if !ok || value == 0 {
			value = r.config.Sentinel
		}

		series.Data = append(series.Data, value)
		tick.Values[series.Name] = value
	}

	r.clock.Data = append(r.clock.Data, tick.Time)
	r.samples++
	r.metrics.ticks.Inc()

	r.notify(tick)
}

// Stop ends the recording, waits for the in-flight tick to complete, and
// saves the session. The buffered session is discarded whether or not it
// could be saved.
func (r *Recorder) Stop() (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.Recording() {
		return "", ErrNotRecording
	}

	atomic.StoreInt32(&r.recording, 0)
	r.cfn()

	if err := r.group.Wait(); err != nil {
		r.logger.WithError(err).Error("Polling loop exited with an error")
	}

	r.metrics.recording.Set(0)

	return r.flush()
}

func (r *Recorder) flush() (string, error) {
	s := r.session
	r.reset()

	s.Round(r.config.Precision)

	path, err := r.save(s)

	if err != nil {
		r.metrics.flushFailures.Inc()
		return "", fmt.Errorf("%w: %s: %v", ErrFlushFailed, path, err)
	}

	r.metrics.sessionsSaved.Inc()
	r.logger.Infof("Telemetry data saved to %s (%d samples)", path, s.Len())

	return path, nil
}

// save writes s to a new file in the output directory. Sessions stopped within
// the same second are kept side by side.
func (r *Recorder) save(s *session.Session) (string, error) {
	stoppedAt := r.now()

	if err := os.MkdirAll(r.config.OutputDir, 0755); err != nil {
		return r.config.OutputDir, err
	}

	path, err := session.Create(r.config.OutputDir, stoppedAt, s)

	if err != nil {
		return filepath.Join(r.config.OutputDir, session.Filename(stoppedAt)), err
	}

	info, err := os.Stat(path)

	if err != nil {
		return path, err
	}

	if !info.Mode().IsRegular() {
		return path, fmt.Errorf("%s is not a regular file", path)
	}

	return path, nil
}
