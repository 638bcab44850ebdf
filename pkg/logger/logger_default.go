package logger

import "sync"

type LoggerArg struct {
	Key   string
	Value string
}

type GlobalLoggerConfig struct {
	Args   []LoggerArg
	Config *LoggerConfig
}

type contextKey string

// RequestIDKey is the context key the request-id middleware stores the id under.
const RequestIDKey contextKey = "request_id"

var (
	defaultLogger     *Logger
	onceLogger        sync.Once
	initializedLogger bool
)

func InitDefaultLogger(config GlobalLoggerConfig) {
	onceLogger.Do(func() {
		if config.Config != nil {
			defaultLogger = NewFromConfig(*config.Config)
		} else {
			defaultLogger = New()
		}
		for _, arg := range config.Args {
			defaultLogger = defaultLogger.WithField(arg.Key, arg.Value)
		}

		initializedLogger = true
	})
}

func Default() *Logger {
	if !initializedLogger {
		panic("Default logger not initialized: call InitDefaultLogger() first")
	}
	return defaultLogger
}
