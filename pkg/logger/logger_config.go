package logger

import "github.com/rs/zerolog"

type LoggerConfigJson struct {
	LogLevel string `json:"log_level"`
}

type LoggerConfig struct {
	LogLevel zerolog.Level
}

// ConvertToDomain falls back to info when the level string is empty or unknown.
func (lcj LoggerConfigJson) ConvertToDomain() LoggerConfig {
	level, err := zerolog.ParseLevel(lcj.LogLevel)
	if err != nil || lcj.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return LoggerConfig{LogLevel: level}
}
