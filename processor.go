package irtl

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"justapengu.in/irtl/pkg/channels"
	"justapengu.in/irtl/pkg/session"
)

var (
	ErrNotFound         = errors.New("irtl: session file not found")
	ErrMalformedSession = errors.New("irtl: malformed session")
	ErrLapOutOfRange    = errors.New("irtl: lap out of range")
)

const (
	percentUnit  = "%"
	maxLapNumber = 1 << 53
)

// LapBounds are the first and last sample indices of a lap. Both are inclusive.
type LapBounds struct {
	// Number is the normalised value of the lap channel for this lap.
	Number int
	Start  int
	End    int
}

func (l LapBounds) Samples() int {
	return l.End - l.Start + 1
}

// Processor answers queries about a recorded session, lap by lap. The session
// is frozen once loaded.
type Processor struct {
	session *session.Session
	laps    []LapBounds
}

// NewProcessor loads the session file at path and indexes its laps.
func NewProcessor(path string) (*Processor, error) {
	info, err := os.Stat(path)

	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	s, err := session.Load(path)

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSession, path, err)
	}

	return NewSessionProcessor(s)
}

// NewSessionProcessor indexes the laps of s. The processor takes ownership of
// s: the lap channel is normalised in place.
func NewSessionProcessor(s *session.Session) (*Processor, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}

	lap, ok := s.Channel(channels.LapNumber)

	if !ok {
		return nil, fmt.Errorf("%w: missing %q channel", ErrMalformedSession, channels.LapNumber)
	}

	NormaliseLaps(lap.Data)

	return &Processor{
		session: s,
		laps:    IndexLaps(lap.Data),
	}, nil
}

// NormaliseLaps shifts lap numbers so that the first sample is lap 1. This
// corrects for recordings that started part way through a session, or before
// the first lap was started.
func NormaliseLaps(laps []float64) {
	if len(laps) == 0 || laps[0] == 1 {
		return
	}

	offset := laps[0] - 1

	for i := range laps {
		laps[i] -= offset
	}
}

// IndexLaps finds, for each lap number recorded, in increasing order, the
// first and last sample carrying that number. Laps are then made contiguous:
// every lap starts one sample after the previous lap ends, and the final lap
// runs to the last sample. A lap number whose samples all fall inside the
// previous lap produces no lap.
func IndexLaps(laps []float64) []LapBounds {
	if len(laps) == 0 {
		return nil
	}

	first := make(map[int]int)
	last := make(map[int]int)
	var numbers []int

	for i, v := range laps {
		// not a lap number, and out of range for int
		if math.IsNaN(v) || math.Abs(v) >= maxLapNumber {
			continue
		}

		number := int(math.Round(v))

		if number < 1 {
			continue
		}

		if _, ok := first[number]; !ok {
			first[number] = i
			numbers = append(numbers, number)
		}

		last[number] = i
	}

	sort.Ints(numbers)

	var bounds []LapBounds

	for _, number := range numbers {
		lap := LapBounds{Number: number, Start: 0, End: last[number]}

		if len(bounds) > 0 {
			lap.Start = bounds[len(bounds)-1].End + 1
		}

		if lap.End < lap.Start {
			continue
		}

		bounds = append(bounds, lap)
	}

	if len(bounds) > 0 {
		bounds[len(bounds)-1].End = len(laps) - 1
	}

	return bounds
}

func (p *Processor) NumLaps() int {
	return len(p.laps)
}

func (p *Processor) Laps() []LapBounds {
	return append([]LapBounds(nil), p.laps...)
}

// Lap returns the bounds of a lap. Laps are numbered from 1.
func (p *Processor) Lap(lap int) (LapBounds, error) {
	if lap < 1 || lap > len(p.laps) {
		return LapBounds{}, fmt.Errorf("%w: lap %d requested, session has %d laps", ErrLapOutOfRange, lap, len(p.laps))
	}

	return p.laps[lap-1], nil
}

// Samples is the number of samples in the session.
func (p *Processor) Samples() int {
	return p.session.Len()
}

// Channels lists every channel in the session, including time.
func (p *Processor) Channels() []string {
	return p.session.Names()
}

func (p *Processor) Channel(name string) (channels.Definition, bool) {
	series, ok := p.session.Channel(name)

	if !ok {
		return channels.Definition{}, false
	}

	return series.Definition(), true
}

// ChannelData returns the whole series of a channel, or false if the channel
// was not recorded. The returned slice must not be modified.
func (p *Processor) ChannelData(name string) ([]float64, bool) {
	series, ok := p.session.Channel(name)

	if !ok {
		return nil, false
	}

	return series.Data, true
}

// ChannelDataForLap returns a channel's samples over one lap, or false if the
// channel was not recorded. The returned slice must not be modified.
func (p *Processor) ChannelDataForLap(name string, lap int) ([]float64, bool, error) {
	series, ok := p.session.Channel(name)

	if !ok {
		return nil, false, nil
	}

	bounds, err := p.Lap(lap)

	if err != nil {
		return nil, true, err
	}

	return series.Data[bounds.Start : bounds.End+1], true, nil
}

// LapData slices every channel over one lap. Channels measured in percent are
// scaled by 100 for presentation.
func (p *Processor) LapData(lap int) (map[string]*session.ChannelSeries, error) {
	bounds, err := p.Lap(lap)

	if err != nil {
		return nil, err
	}

	data := make(map[string]*session.ChannelSeries)

	for _, name := range p.session.Names() {
		series, _ := p.session.Channel(name)

		data[name] = scaledSlice(series, bounds.Start, bounds.End)
	}

	return data, nil
}

// LapTime is the time elapsed between the first and last samples of a lap, in seconds.
func (p *Processor) LapTime(lap int) (float64, error) {
	bounds, err := p.Lap(lap)

	if err != nil {
		return 0, err
	}

	clock, _ := p.session.Channel(session.TimeChannel)

	return clock.Data[bounds.End] - clock.Data[bounds.Start], nil
}

// BestLap returns the lap number and time of the fastest lap. The first and
// last laps of a recording are usually partial and are not considered.
func (p *Processor) BestLap() (int, float64, bool) {
	best, bestTime := 0, math.Inf(1)

	for lap := 2; lap < len(p.laps); lap++ {
		lapTime, err := p.LapTime(lap)

		if err != nil {
			continue
		}

		if lapTime < bestTime {
			best, bestTime = lap, lapTime
		}
	}

	if best == 0 {
		return 0, 0, false
	}

	return best, bestTime, true
}

// StintData is a channel over every lap of the session, scaled like LapData.
func (p *Processor) StintData(name string) (*session.ChannelSeries, bool) {
	series, ok := p.session.Channel(name)

	if !ok {
		return nil, false
	}

	if len(p.laps) == 0 {
		return scaledSlice(series, 0, -1), true
	}

	return scaledSlice(series, p.laps[0].Start, p.laps[len(p.laps)-1].End), true
}

func scaledSlice(series *session.ChannelSeries, start, end int) *session.ChannelSeries {
	data := make([]float64, end-start+1)
	copy(data, series.Data[start:end+1])

	if series.Unit == percentUnit {
		for i := range data {
			data[i] *= 100
		}
	}

	return &session.ChannelSeries{
		Name:        series.Name,
		Description: series.Description,
		Unit:        series.Unit,
		Data:        data,
	}
}
