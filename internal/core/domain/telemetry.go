package domain

// LogLevel is the severity of a message attached to a telemetry vertex.
// Values mirror the slog levels.
type LogLevel int

const (
	// LogLevelDebug is debug verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo is informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn is warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError is error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the upper-case level name.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// VertexName returns the telemetry vertex name used for compiling a batch.
func VertexName(b Batch) string {
	switch {
	case b.Cyclic:
		return "compile batch [" + b.String() + "]"
	case len(b.Units) == 1:
		return "compile " + b.Units[0].String()
	default:
		return "compile"
	}
}
