package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"learnsol-identity/pkg/logger"
	logger_message "learnsol-identity/pkg/utilities/logger"
	"learnsol-identity/pkg/utilities/timeutil"
)

const sinkPublishTimeout = 2 * time.Second

func CreateRabbitmqLoggerSink(publisher IRabbitmqPublisher) logger.SinkFunc {
	return func(msg string, level zerolog.Level, timestamp timeutil.TimeUTC) {
		loggerMessage := logger_message.LoggerMessage{
			Level:     level.String(),
			Message:   msg,
			Timestamp: timestamp,
		}

		ctx, cancel := context.WithTimeout(context.Background(), sinkPublishTimeout)
		defer cancel()

		if err := publisher.Publish(ctx, loggerMessage); err != nil {
			// the logger itself would recurse into this sink
			fmt.Printf("Failed to publish log message to RabbitMQ: %v\n", err)
		}
	}
}
