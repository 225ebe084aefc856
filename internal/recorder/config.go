package recorder

import (
	"time"

	"justapengu.in/irtl/pkg/channels"
)

const (
	DefaultRate      = 30
	DefaultInterval  = time.Second / DefaultRate
	DefaultPrecision = 3
	DefaultSentinel  = 0
)

// MandatoryChannels are recorded regardless of the user's channel selection.
// LapNumber is required for lap segmentation; the others are kept when the
// simulator defines them.
var MandatoryChannels = []string{channels.LapNumber, "LapDist", "LapDistPct"}

type Config struct {
	// Interval between polls. The session clock advances by exactly this much per sample.
	Interval time.Duration
	// Channels selected by the user. Names the simulator does not define are dropped.
	Channels []string
	// Precision is the number of decimal places samples are rounded to when saved.
	Precision int
	// Sentinel is recorded in place of a value the simulator did not return.
	Sentinel float64
	// OutputDir is where session files are written.
	OutputDir string
}

func DefaultConfig() Config {
	return Config{
		Interval:  DefaultInterval,
		Precision: DefaultPrecision,
		Sentinel:  DefaultSentinel,
		OutputDir: ".",
	}
}
