package gortspws

// LogLevel is a log level.
type LogLevel int

// Log levels.
const (
	LogLevelDebug LogLevel = iota + 1
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var logLevelLabels = map[LogLevel]string{
	LogLevelDebug: "DEB",
	LogLevelInfo:  "INF",
	LogLevelWarn:  "WAR",
	LogLevelError: "ERR",
}

// String implements fmt.Stringer.
func (l LogLevel) String() string {
	if s, ok := logLevelLabels[l]; ok {
		return s
	}
	return "unknown"
}
