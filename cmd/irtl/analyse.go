package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"justapengu.in/irtl"
	"justapengu.in/irtl/pkg/channels"
)

var lapsCmd = &cobra.Command{
	Use:   "laps <session>",
	Short: "List the laps of a recorded session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := irtl.NewProcessor(args[0])

		if err != nil {
			return err
		}

		return irtl.WriteLapReport(os.Stdout, p)
	},
}

var (
	plotLap    int
	plotOutput string
	plotWidth  int
	plotHeight int
)

var plotCmd = &cobra.Command{
	Use:   "plot <session> <channel>",
	Short: "Plot a channel against time as a PNG",
	Long: `Plot a channel of a recorded session against time, either over a single lap
with --lap or over every lap of the session.`,
	Args: cobra.ExactArgs(2),
	RunE: runPlot,
}

func init() {
	plotCmd.Flags().IntVar(&plotLap, "lap", 0, "lap to plot, starting from 1. Plots the whole session if unset")
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "", "output file, defaults to <channel>.png")
	plotCmd.Flags().IntVar(&plotWidth, "width", irtl.DefaultPlotWidth, "image width")
	plotCmd.Flags().IntVar(&plotHeight, "height", irtl.DefaultPlotHeight, "image height")
}

func runPlot(cmd *cobra.Command, args []string) error {
	sessionPath, channel := args[0], args[1]

	p, err := irtl.NewProcessor(sessionPath)

	if err != nil {
		return err
	}

	output := plotOutput

	if output == "" {
		output = channel

		if plotLap > 0 {
			output += "_lap" + strconv.Itoa(plotLap)
		}

		output += ".png"
	}

	f, err := os.Create(output)

	if err != nil {
		return err
	}

	opts := irtl.PlotOptions{Width: plotWidth, Height: plotHeight}

	if plotLap > 0 {
		err = p.PlotLap(f, channel, plotLap, opts)
	} else {
		err = p.PlotStint(f, channel, opts)
	}

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(output)
		return err
	}

	fmt.Printf("Plot saved to %s\n", output)

	return nil
}

var wrapWidth uint

var channelsCmd = &cobra.Command{
	Use:   "channels [category...]",
	Short: "List the channels the simulator defines, by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := readConfig()

		if err != nil {
			return err
		}

		table, err := channels.ReadDefinitions(config.ChannelDefinitions)

		if err != nil {
			return err
		}

		categories := channels.Categories

		if len(args) > 0 {
			categories = nil

			for _, arg := range args {
				category, err := channels.ParseCategory(arg)

				if err != nil {
					return err
				}

				categories = append(categories, category)
			}
		}

		return channels.WriteCatalogue(os.Stdout, table, categories, wrapWidth)
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions [dir]",
	Short: "List recorded sessions, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := readConfig()

		if err != nil {
			return err
		}

		dir := config.Recorder.OutputDir

		if len(args) > 0 {
			dir = args[0]
		}

		files, err := irtl.FindSessions(dir)

		if err != nil {
			return err
		}

		return irtl.WriteSessionList(os.Stdout, files, time.Now())
	},
}

func init() {
	channelsCmd.Flags().UintVar(&wrapWidth, "width", 80, "wrap channel lists to this width")
}
