package irtl

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/fatih/color"
	"github.com/hako/durafmt"

	"justapengu.in/irtl/pkg/session"
)

var bestLapColour = color.New(color.FgGreen, color.Bold)

// FormatLapTime formats a lap time in seconds as m:ss.SSS.
func FormatLapTime(seconds float64) string {
	d := time.Duration(math.Round(seconds*1000)) * time.Millisecond
	minutes := d / time.Minute
	d -= minutes * time.Minute

	return fmt.Sprintf("%d:%06.3f", minutes, d.Seconds())
}

// SessionDuration is the time between the first and last samples of the session.
func (p *Processor) SessionDuration() time.Duration {
	clock, ok := p.ChannelData(session.TimeChannel)

	if !ok || len(clock) == 0 {
		return 0
	}

	return time.Duration((clock[len(clock)-1] - clock[0]) * float64(time.Second))
}

// WriteLapReport writes a table of every lap in the session with its sample
// count and lap time. The fastest complete lap is highlighted.
func WriteLapReport(w io.Writer, p *Processor) error {
	_, err := fmt.Fprintf(w, "%d laps, %d samples over %s\n\n", p.NumLaps(), p.Samples(), durafmt.Parse(p.SessionDuration().Round(time.Millisecond)))

	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%4s  %8s  %10s\n", "Lap", "Samples", "Time"); err != nil {
		return err
	}

	best, _, _ := p.BestLap()

	for i, lap := range p.Laps() {
		number := i + 1

		lapTime, err := p.LapTime(number)

		if err != nil {
			return err
		}

		line := fmt.Sprintf("%4d  %8d  %10s", number, lap.Samples(), FormatLapTime(lapTime))

		if number == best {
			line = bestLapColour.Sprint(line + "  (best)")
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
