package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"justapengu.in/irtl/internal/recorder"
	"justapengu.in/irtl/internal/replay"
	"justapengu.in/irtl/pkg/channels"
)

var (
	replayPath  string
	replayLoop  bool
	outputDir   string
	rateHz      float64
	channelList []string
	metricsFile string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a telemetry session",
	Long: `Start recording telemetry and keep recording until 'q' is entered or the
process is interrupted. The session is then saved to the output directory.`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVar(&replayPath, "replay", "", "replay a saved session as the telemetry source")
	recordCmd.Flags().BoolVar(&replayLoop, "loop", false, "loop the replayed session")
	recordCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory sessions are saved to")
	recordCmd.Flags().Float64Var(&rateHz, "rate", 0, "polling rate in Hz")
	recordCmd.Flags().StringSliceVar(&channelList, "channels", nil, "channels to record in addition to the configured categories")
	recordCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write recorder metrics to this file when recording stops")
}

func runRecord(cmd *cobra.Command, args []string) error {
	config, err := readConfig()

	if err != nil {
		return err
	}

	if outputDir != "" {
		config.Recorder.OutputDir = outputDir
	}

	if rateHz > 0 {
		config.Recorder.RateHz = rateHz
		config.Recorder.Interval = 0
	}

	if len(channelList) > 0 {
		config.Recorder.Channels = append(config.Recorder.Channels, channelList...)
	}

	if metricsFile != "" {
		config.MetricsFile = metricsFile
	}

	table, err := channels.ReadDefinitions(config.ChannelDefinitions)

	if err != nil {
		return err
	}

	recorderConfig, err := config.RecorderConfig()

	if err != nil {
		return err
	}

	source, err := openSource()

	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	rec := recorder.New(recorderConfig, table, source, logger, recorder.NewMetrics(reg))

	id := rec.Subscribe(progressLogger(rec.Interval()))
	defer rec.Unsubscribe(id)

	ctx, cfn := context.WithCancel(context.Background())
	defer cfn()

	if err := rec.Start(ctx); err != nil {
		return err
	}

	fmt.Println("Recording. Enter 'q' to stop.")

	waitForStop(os.Stdin)

	path, err := rec.Stop()

	if config.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(config.MetricsFile, reg); err != nil {
			logger.WithError(err).Errorf("Could not write metrics to %s", config.MetricsFile)
		}
	}

	if err != nil {
		return err
	}

	fmt.Printf("Session saved to %s\n", path)

	return nil
}

func openSource() (recorder.Source, error) {
	if replayPath == "" {
		return nil, fmt.Errorf("%w: no simulator binding is available on this platform, use --replay", recorder.ErrSourceUnavailable)
	}

	logger.Infof("Replaying session %s", replayPath)

	source, err := replay.Open(replayPath, replayLoop)

	if err != nil {
		return nil, err
	}

	return source, nil
}

// progressLogger logs the current lap roughly once a second.
func progressLogger(interval time.Duration) recorder.TickListener {
	every := int(time.Second / interval)

	if every < 1 {
		every = 1
	}

	return func(tick recorder.Tick) {
		if tick.Index%every != 0 {
			return
		}

		logger.Debugf("Lap %v, %d samples, %.1fs", tick.Values[channels.LapNumber], tick.Index+1, tick.Time)
	}
}

// waitForStop blocks until a line reading 'q' is entered on in, or the
// process is interrupted.
func waitForStop(in io.Reader) {
	quit := make(chan struct{})

	go func() {
		scanner := bufio.NewScanner(in)

		for scanner.Scan() {
			if strings.EqualFold(strings.TrimSpace(scanner.Text()), "q") {
				close(quit)
				return
			}
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)

	select {
	case <-quit:
	case <-c:
		logger.Infof("Interrupted, stopping recording")
	}
}
