package utils

import (
	"fmt"
	"log/slog"
	"strings"
)

// ParseLogLevel accepts debug, info, warn or error in any case.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}

	return l, nil
}
