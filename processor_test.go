package irtl

import (
	"errors"
	"io/ioutil"
	"math"
	"path/filepath"
	"testing"

	"justapengu.in/irtl/pkg/channels"
	"justapengu.in/irtl/pkg/session"
)

// testSession builds a session sampled every 0.1s with the given lap channel.
// Throttle and RPM are derived from the sample index.
func testSession(laps []float64) *session.Session {
	s := session.New()

	clock, _ := s.Channel(session.TimeChannel)
	lap := s.Add(channels.Definition{Name: channels.LapNumber, Description: "Laps"})
	throttle := s.Add(channels.Definition{Name: "Throttle", Description: "0=off", Unit: "%"})
	rpm := s.Add(channels.Definition{Name: "RPM", Description: "Engine", Unit: "revs/min"})

	for i, v := range laps {
		clock.Data = append(clock.Data, math.Round(float64(i)*0.1*1000)/1000)
		lap.Data = append(lap.Data, v)
		throttle.Data = append(throttle.Data, float64(i)/10)
		rpm.Data = append(rpm.Data, float64(1000+i))
	}

	return s
}

func writeTestSession(t *testing.T, s *session.Session) string {
	path := filepath.Join(t.TempDir(), "iRTL_02-09-2023_21-10-28.json")

	if err := session.Save(path, s); err != nil {
		t.Fatal(err)
	}

	return path
}

func newTestProcessor(t *testing.T, laps []float64) *Processor {
	p, err := NewProcessor(writeTestSession(t, testSession(laps)))

	if err != nil {
		t.Fatal(err)
	}

	return p
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func TestNormaliseLaps(t *testing.T) {
	tests := map[string]struct {
		laps     []float64
		expected []float64
	}{
		"Joined mid session": {laps: []float64{3, 3, 3, 4, 4, 5}, expected: []float64{1, 1, 1, 2, 2, 3}},
		"Started on lap 1":   {laps: []float64{1, 1, 2}, expected: []float64{1, 1, 2}},
		"Started on lap 0":   {laps: []float64{0, 0, 1, 2}, expected: []float64{1, 1, 2, 3}},
		"Empty":              {laps: []float64{}, expected: []float64{}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			NormaliseLaps(test.laps)

			if !floatsEqual(test.laps, test.expected) {
				t.Errorf("Expected %v, got %v", test.expected, test.laps)
			}
		})
	}
}

func TestIndexLaps(t *testing.T) {
	tests := map[string]struct {
		laps     []float64
		expected []LapBounds
	}{
		"Contiguous": {
			laps:     []float64{1, 1, 1, 2, 2, 3},
			expected: []LapBounds{{1, 0, 2}, {2, 3, 4}, {3, 5, 5}},
		},
		"Single lap": {
			laps:     []float64{1, 1, 1},
			expected: []LapBounds{{1, 0, 2}},
		},
		"Sentinel between laps goes to the next lap": {
			laps:     []float64{1, 1, 0, 2, 2},
			expected: []LapBounds{{1, 0, 1}, {2, 2, 4}},
		},
		"Lap number skipped": {
			laps:     []float64{1, 1, 3, 3},
			expected: []LapBounds{{1, 0, 1}, {3, 2, 3}},
		},
		"Lap number goes backwards": {
			laps:     []float64{1, 1, 2, 2, 1, 2, 3},
			expected: []LapBounds{{1, 0, 4}, {2, 5, 5}, {3, 6, 6}},
		},
		"Lap swallowed by previous lap": {
			laps:     []float64{1, 2, 1, 3},
			expected: []LapBounds{{1, 0, 2}, {3, 3, 3}},
		},
		"Trailing sentinels belong to the last lap": {
			laps:     []float64{1, 2, 2, 0, 0},
			expected: []LapBounds{{1, 0, 0}, {2, 1, 4}},
		},
		"Corrupt lap number": {
			laps:     []float64{1, 1, 2, 1e13},
			expected: []LapBounds{{1, 0, 1}, {2, 2, 2}, {10000000000000, 3, 3}},
		},
		"Not a number": {
			laps:     []float64{1, math.NaN(), 2, 2, math.Inf(1)},
			expected: []LapBounds{{1, 0, 0}, {2, 1, 4}},
		},
		"Empty": {
			laps:     nil,
			expected: nil,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			bounds := IndexLaps(test.laps)

			if len(bounds) != len(test.expected) {
				t.Fatalf("Expected %v, got %v", test.expected, bounds)
			}

			for i := range bounds {
				if bounds[i] != test.expected[i] {
					t.Errorf("Expected %v, got %v", test.expected, bounds)
					break
				}
			}

			if len(bounds) > 0 {
				// every sample belongs to exactly one lap
				covered := 0

				for _, lap := range bounds {
					covered += lap.Samples()
				}

				if covered != len(test.laps) {
					t.Errorf("Expected laps to cover %d samples, covered %d", len(test.laps), covered)
				}
			}
		})
	}
}

func TestNewProcessor(t *testing.T) {
	p := newTestProcessor(t, []float64{3, 3, 3, 4, 4, 5})

	if p.NumLaps() != 3 {
		t.Fatalf("Expected 3 laps, got %d", p.NumLaps())
	}

	laps, _ := p.ChannelData(channels.LapNumber)

	if expected := []float64{1, 1, 1, 2, 2, 3}; !floatsEqual(laps, expected) {
		t.Errorf("Expected normalised laps %v, got %v", expected, laps)
	}

	if p.Samples() != 6 {
		t.Errorf("Expected 6 samples, got %d", p.Samples())
	}

	expectedChannels := []string{session.TimeChannel, channels.LapNumber, "Throttle", "RPM"}

	if names := p.Channels(); len(names) != len(expectedChannels) {
		t.Errorf("Expected channels %v, got %v", expectedChannels, names)
	}

	if def, ok := p.Channel("Throttle"); !ok || def.Unit != "%" {
		t.Errorf("Unexpected Throttle definition: %+v", def)
	}
}

func TestNewProcessorErrors(t *testing.T) {
	dir := t.TempDir()

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)

		if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		return path
	}

	noLap := session.New()
	noLap.Add(channels.Definition{Name: "RPM"})

	tests := map[string]struct {
		path     string
		expected error
	}{
		"Missing file": {
			path:     filepath.Join(dir, "missing.json"),
			expected: ErrNotFound,
		},
		"Directory": {
			path:     dir,
			expected: ErrNotFound,
		},
		"Invalid JSON": {
			path:     writeFile("invalid.json", `{"time": {"desc": "Session time", `),
			expected: ErrMalformedSession,
		},
		"Not an object": {
			path:     writeFile("array.json", `[1, 2, 3]`),
			expected: ErrMalformedSession,
		},
		"Mismatched lengths": {
			path:     writeFile("mismatch.json", `{"time":{"desc":"","unit":"s","data":[0,0.1]},"Lap":{"desc":"","unit":"","data":[1]}}`),
			expected: ErrMalformedSession,
		},
		"Missing lap channel": {
			path:     writeTestSession(t, noLap),
			expected: ErrMalformedSession,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewProcessor(test.path)

			if !errors.Is(err, test.expected) {
				t.Errorf("Expected %v, got %v", test.expected, err)
			}
		})
	}
}

func TestEmptySession(t *testing.T) {
	p := newTestProcessor(t, nil)

	if p.NumLaps() != 0 {
		t.Errorf("Expected no laps, got %d", p.NumLaps())
	}

	if _, err := p.LapData(1); !errors.Is(err, ErrLapOutOfRange) {
		t.Errorf("Expected ErrLapOutOfRange, got %v", err)
	}

	stint, ok := p.StintData("RPM")

	if !ok || len(stint.Data) != 0 {
		t.Errorf("Expected empty stint data, got %v", stint)
	}

	if _, _, ok := p.BestLap(); ok {
		t.Error("Expected no best lap")
	}
}

func TestChannelData(t *testing.T) {
	p := newTestProcessor(t, []float64{1, 1, 2, 2, 2})

	if _, ok := p.ChannelData("Nonexistent"); ok {
		t.Error("Expected unknown channel to be absent")
	}

	rpm, ok := p.ChannelData("RPM")

	if !ok || len(rpm) != 5 {
		t.Fatalf("Expected 5 RPM samples, got %v", rpm)
	}

	lap, ok, err := p.ChannelDataForLap("RPM", 2)

	if err != nil || !ok {
		t.Fatal(ok, err)
	}

	if expected := []float64{1002, 1003, 1004}; !floatsEqual(lap, expected) {
		t.Errorf("Expected %v, got %v", expected, lap)
	}

	if _, ok, err := p.ChannelDataForLap("Nonexistent", 1); ok || err != nil {
		t.Errorf("Expected unknown channel to be absent, got %v %v", ok, err)
	}

	if _, _, err := p.ChannelDataForLap("RPM", 3); !errors.Is(err, ErrLapOutOfRange) {
		t.Errorf("Expected ErrLapOutOfRange, got %v", err)
	}
}

func TestLapData(t *testing.T) {
	p := newTestProcessor(t, []float64{3, 3, 3, 4, 4, 5})

	for _, lap := range []int{0, -1, 4, 99} {
		if _, err := p.LapData(lap); !errors.Is(err, ErrLapOutOfRange) {
			t.Errorf("Lap %d: expected ErrLapOutOfRange, got %v", lap, err)
		}
	}

	data, err := p.LapData(2)

	if err != nil {
		t.Fatal(err)
	}

	if len(data) != 4 {
		t.Errorf("Expected every channel to be sliced, got %d", len(data))
	}

	throttle := data["Throttle"]

	if expected := []float64{30, 40}; !floatsEqual(throttle.Data, expected) {
		t.Errorf("Expected percentages to be scaled, got %v", throttle.Data)
	}

	if expected := []float64{1003, 1004}; !floatsEqual(data["RPM"].Data, expected) {
		t.Errorf("Expected RPM to be unscaled, got %v", data["RPM"].Data)
	}

	// slices are copies
	throttle.Data[0] = -1

	raw, _ := p.ChannelData("Throttle")

	if raw[3] != 0.3 {
		t.Errorf("Expected session data to be unchanged, got %v", raw[3])
	}
}

func TestLapTime(t *testing.T) {
	p := newTestProcessor(t, []float64{1, 1, 1, 2, 2, 2, 2, 3, 3, 3})

	tests := map[int]float64{
		1: 0.2,
		2: 0.3,
		3: 0.2,
	}

	for lap, expected := range tests {
		lapTime, err := p.LapTime(lap)

		if err != nil {
			t.Fatal(err)
		}

		if math.Abs(lapTime-expected) > 1e-9 {
			t.Errorf("Lap %d: expected %v, got %v", lap, expected, lapTime)
		}
	}

	if _, err := p.LapTime(4); !errors.Is(err, ErrLapOutOfRange) {
		t.Errorf("Expected ErrLapOutOfRange, got %v", err)
	}
}

func TestBestLap(t *testing.T) {
	p := newTestProcessor(t, []float64{1, 2, 2, 2, 3, 3, 4, 4, 4, 5})

	lap, lapTime, ok := p.BestLap()

	if !ok || lap != 3 || math.Abs(lapTime-0.1) > 1e-9 {
		t.Errorf("Expected lap 3 in 0.1s, got lap %d in %v (%v)", lap, lapTime, ok)
	}

	if _, _, ok := newTestProcessor(t, []float64{1, 1, 2, 2}).BestLap(); ok {
		t.Error("Expected no complete laps")
	}
}

func TestStintData(t *testing.T) {
	p := newTestProcessor(t, []float64{1, 1, 2, 2, 3})

	stint, ok := p.StintData("Throttle")

	if !ok {
		t.Fatal("Expected Throttle stint data")
	}

	if expected := []float64{0, 10, 20, 30, 40}; !floatsEqual(stint.Data, expected) {
		t.Errorf("Expected %v, got %v", expected, stint.Data)
	}

	if _, ok := p.StintData("Nonexistent"); ok {
		t.Error("Expected unknown channel to be absent")
	}
}
