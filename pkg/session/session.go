package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"justapengu.in/irtl/pkg/channels"
)

// TimeChannel holds the synthetic session clock, in seconds.
const TimeChannel = "time"

var ErrSeriesLengthMismatch = errors.New("session: channel series lengths differ")

// ChannelSeries is a named telemetry time series.
type ChannelSeries struct {
	Name        string    `json:"-"`
	Description string    `json:"desc"`
	Unit        string    `json:"unit"`
	Data        []float64 `json:"data"`
}

func (c *ChannelSeries) Definition() channels.Definition {
	return channels.Definition{
		Name:        c.Name,
		Description: c.Description,
		Unit:        c.Unit,
	}
}

// Session is one complete recording: every channel series, keyed by name, in
// the order the channels were added. A new Session always contains the time channel.
type Session struct {
	order  []string
	series map[string]*ChannelSeries
}

func New() *Session {
	s := &Session{
		series: make(map[string]*ChannelSeries),
	}

	s.Add(channels.Definition{Name: TimeChannel, Description: "Session time", Unit: "s"})

	return s
}

// Add registers a channel and returns its series. Adding a channel that
// already exists returns the existing series untouched.
func (s *Session) Add(def channels.Definition) *ChannelSeries {
	if series, ok := s.series[def.Name]; ok {
		return series
	}

	series := &ChannelSeries{
		Name:        def.Name,
		Description: def.Description,
		Unit:        def.Unit,
		Data:        []float64{},
	}

	s.series[def.Name] = series
	s.order = append(s.order, def.Name)

	return series
}

func (s *Session) Channel(name string) (*ChannelSeries, bool) {
	series, ok := s.series[name]

	return series, ok
}

// Names returns channel names in insertion order.
func (s *Session) Names() []string {
	return append([]string(nil), s.order...)
}

// Len is the number of samples recorded, i.e. the length of the time channel.
func (s *Session) Len() int {
	if t, ok := s.series[TimeChannel]; ok {
		return len(t.Data)
	}

	return 0
}

// Validate checks that every channel series has as many samples as the time channel.
func (s *Session) Validate() error {
	if _, ok := s.series[TimeChannel]; !ok {
		return fmt.Errorf("session: missing %q channel", TimeChannel)
	}

	n := s.Len()

	for _, name := range s.order {
		if l := len(s.series[name].Data); l != n {
			return fmt.Errorf("%w: %s has %d samples, %s has %d", ErrSeriesLengthMismatch, name, l, TimeChannel, n)
		}
	}

	return nil
}

// Round rounds every sample of every channel to the given number of decimal places.
func (s *Session) Round(precision int) {
	if precision < 0 {
		return
	}

	scale := math.Pow(10, float64(precision))

	for _, series := range s.series {
		for i, v := range series.Data {
			series.Data[i] = math.Round(v*scale) / scale
		}
	}
}

// MarshalJSON writes the session as a single object keyed by channel name,
// preserving channel order.
func (s *Session) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, name := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(name)

		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(s.series[name])

		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (s *Session) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()

	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("session: expected object, got %v", tok)
	}

	s.order = nil
	s.series = make(map[string]*ChannelSeries)

	for dec.More() {
		tok, err := dec.Token()

		if err != nil {
			return err
		}

		name, ok := tok.(string)

		if !ok {
			return fmt.Errorf("session: expected channel name, got %v", tok)
		}

		var series ChannelSeries

		if err := dec.Decode(&series); err != nil {
			return fmt.Errorf("session: channel %s: %w", name, err)
		}

		series.Name = name

		if series.Data == nil {
			series.Data = []float64{}
		}

		if _, exists := s.series[name]; !exists {
			s.order = append(s.order, name)
		}

		s.series[name] = &series
	}

	_, err = dec.Token()

	return err
}
