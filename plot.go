package irtl

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"justapengu.in/irtl/pkg/session"
)

var ErrNotEnoughSamples = errors.New("irtl: not enough samples to plot")

const (
	DefaultPlotWidth  = 1280
	DefaultPlotHeight = 480
)

type PlotOptions struct {
	Width  int
	Height int
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Width <= 0 {
		o.Width = DefaultPlotWidth
	}

	if o.Height <= 0 {
		o.Height = DefaultPlotHeight
	}

	return o
}

// PlotLap renders a channel against time over one lap as a PNG. The time axis
// starts from zero at the beginning of the lap.
func (p *Processor) PlotLap(w io.Writer, channel string, lap int, opts PlotOptions) error {
	data, err := p.LapData(lap)

	if err != nil {
		return err
	}

	series, ok := data[channel]

	if !ok {
		return fmt.Errorf("%w: channel %s", ErrNotFound, channel)
	}

	lapTime, err := p.LapTime(lap)

	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s, lap %d (%s)", channel, lap, FormatLapTime(lapTime))

	return renderPlot(w, title, series, relativeTimes(data[session.TimeChannel].Data), opts)
}

// PlotStint renders a channel against session time over every lap as a PNG.
func (p *Processor) PlotStint(w io.Writer, channel string, opts PlotOptions) error {
	series, ok := p.StintData(channel)

	if !ok {
		return fmt.Errorf("%w: channel %s", ErrNotFound, channel)
	}

	clock, _ := p.StintData(session.TimeChannel)

	title := fmt.Sprintf("%s, %d laps", channel, p.NumLaps())

	return renderPlot(w, title, series, clock.Data, opts)
}

func relativeTimes(times []float64) []float64 {
	out := make([]float64, len(times))

	for i, v := range times {
		out[i] = v - times[0]
	}

	return out
}

func renderPlot(w io.Writer, title string, series *session.ChannelSeries, times []float64, opts PlotOptions) error {
	if len(series.Data) < 2 {
		return fmt.Errorf("%w: %s has %d", ErrNotEnoughSamples, series.Name, len(series.Data))
	}

	opts = opts.withDefaults()

	yName := series.Name

	if series.Unit != "" {
		yName = fmt.Sprintf("%s (%s)", series.Name, series.Unit)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis: chart.XAxis{Name: "Time (s)"},
		YAxis: chart.YAxis{Name: yName, Range: flatRange(series.Data)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    series.Name,
				XValues: times,
				YValues: series.Data,
			},
		},
	}

	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// flatRange pads the y axis of a constant series, which would otherwise have
// a zero range.
func flatRange(data []float64) chart.Range {
	for _, v := range data[1:] {
		if v != data[0] {
			return nil
		}
	}

	return &chart.ContinuousRange{Min: data[0] - 1, Max: data[0] + 1}
}
