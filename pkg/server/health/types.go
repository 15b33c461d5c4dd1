package health

import "log/slog"

type (
	Handler struct {
		loggerLevel *slog.LevelVar
		logger      *slog.Logger
		apiKey      string
	}

	LogLevelRequest struct {
		LogLevel string `json:"log_level"`
	}

	LogLevelResponse struct {
		LogLevel string `json:"log_level"`
	}
)
