package rabbitmq

import "context"

type WorkerService interface {
	GetServiceName() string
	StartService(ctx context.Context) error
}
