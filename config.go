package irtl

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cj123/ini"
	"gopkg.in/yaml.v2"

	"justapengu.in/irtl/internal/recorder"
	"justapengu.in/irtl/pkg/channels"
)

const (
	DefaultConfigPath         = "irtl.yml"
	DefaultChannelDefinitions = "data/irsdk_vars.txt"

	iniRecorderSection = "RECORDER"
)

type Config struct {
	Recorder RecorderConfig `json:"recorder" yaml:"recorder"`

	// ChannelDefinitions is the path of the simulator's variable dump.
	ChannelDefinitions string `json:"channel_definitions" yaml:"channel_definitions"`
	// MetricsFile, if set, receives the recorder's metrics in the Prometheus text format after each recording.
	MetricsFile string `json:"metrics_file" yaml:"metrics_file"`
}

type RecorderConfig struct {
	// RateHz is the polling rate. Interval takes precedence if both are set.
	RateHz   float64       `json:"rate_hz" yaml:"rate_hz" ini:"RATE_HZ"`
	Interval time.Duration `json:"interval" yaml:"interval" ini:"INTERVAL"`

	Precision int     `json:"precision" yaml:"precision" ini:"PRECISION"`
	Sentinel  float64 `json:"sentinel" yaml:"sentinel" ini:"SENTINEL"`
	OutputDir string  `json:"output_dir" yaml:"output_dir" ini:"OUTPUT_DIR"`

	// Categories of the channel catalogue to record, plus any individual Channels.
	Categories []string `json:"categories" yaml:"categories" ini:"CATEGORIES" delim:","`
	Channels   []string `json:"channels" yaml:"channels" ini:"CHANNELS" delim:","`
}

func DefaultConfig() *Config {
	var categories []string

	for _, category := range channels.Categories {
		categories = append(categories, category.String())
	}

	return &Config{
		Recorder: RecorderConfig{
			RateHz:     recorder.DefaultRate,
			Precision:  recorder.DefaultPrecision,
			Sentinel:   recorder.DefaultSentinel,
			OutputDir:  ".",
			Categories: categories,
		},
		ChannelDefinitions: DefaultChannelDefinitions,
	}
}

// ReadConfig reads a YAML config, or an INI config if the path ends in .ini.
// Values missing from the file keep their defaults, and a missing file gives
// the default config.
func ReadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	b, err := ioutil.ReadFile(path)

	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	} else if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".ini") {
		err = config.readINI(b)
	} else {
		err = yaml.Unmarshal(b, config)
	}

	if err != nil {
		return nil, fmt.Errorf("irtl: could not read config %s: %w", path, err)
	}

	return config, nil
}

func (c *Config) readINI(b []byte) error {
	i, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
	}, b)

	if err != nil {
		return err
	}

	section, err := i.GetSection(iniRecorderSection)

	if err != nil {
		return err
	}

	if err := section.MapTo(&c.Recorder); err != nil {
		return err
	}

	c.ChannelDefinitions = section.Key("CHANNEL_DEFINITIONS").MustString(c.ChannelDefinitions)
	c.MetricsFile = section.Key("METRICS_FILE").MustString(c.MetricsFile)

	return nil
}

func (c RecorderConfig) PollInterval() (time.Duration, error) {
	switch {
	case c.Interval > 0:
		return c.Interval, nil
	case c.RateHz > 0:
		return time.Duration(float64(time.Second) / c.RateHz), nil
	case c.Interval < 0 || c.RateHz < 0:
		return 0, fmt.Errorf("irtl: invalid polling rate %v / interval %s", c.RateHz, c.Interval)
	default:
		return recorder.DefaultInterval, nil
	}
}

// SelectedChannels expands the configured categories into catalogue channel
// names, followed by the individually configured channels.
func (c RecorderConfig) SelectedChannels() ([]string, error) {
	var names []string

	for _, name := range c.Categories {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}

		category, err := channels.ParseCategory(name)

		if err != nil {
			return nil, err
		}

		names = append(names, category.Channels()...)
	}

	for _, name := range c.Channels {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	return names, nil
}

// RecorderConfig converts the config into the recorder's own configuration.
func (c *Config) RecorderConfig() (recorder.Config, error) {
	interval, err := c.Recorder.PollInterval()

	if err != nil {
		return recorder.Config{}, err
	}

	names, err := c.Recorder.SelectedChannels()

	if err != nil {
		return recorder.Config{}, err
	}

	return recorder.Config{
		Interval:  interval,
		Channels:  names,
		Precision: c.Recorder.Precision,
		Sentinel:  c.Recorder.Sentinel,
		OutputDir: c.Recorder.OutputDir,
	}, nil
}
