package recorder

// Source is the simulator's telemetry API.
type Source interface {
	// Startup connects to the simulator and reports whether telemetry is available.
	Startup() bool
	// Value returns the current value of a channel, or false if the simulator has none.
	Value(name string) (float64, bool)
}
