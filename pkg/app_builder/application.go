package appbuilder

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/cors"

	"learnsol-identity/pkg/logger"
	"learnsol-identity/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

type Application struct {
	Logger         *logger.Logger
	Addr           string
	AllowedOrigins []string
	Conn           *amqp.Connection
	WorkerServices []rabbitmq.WorkerService
	Engine         *gin.Engine
}

// Handler wraps the engine with CORS. Credentials are allowed so the session cookie travels.
func (a *Application) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   a.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(a.Engine)
}

// Start runs workers and the HTTP server until SIGINT/SIGTERM.
func (a *Application) Start() {
	a.Logger.Info("Starting Application runtime...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, ws := range a.WorkerServices {
		a.Logger.Infof("Starting %s WorkerService", ws.GetServiceName())
		go func(ws rabbitmq.WorkerService) {
			if err := ws.StartService(ctx); err != nil {
				a.Logger.Errorf(err, "WorkerService %s stopped", ws.GetServiceName())
			}
		}(ws)
	}

	server := &http.Server{
		Addr:              a.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.Logger.Infof("REST API is now listening on: %s", a.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Fatal(err, "REST API server failed")
		}
	}()

	<-ctx.Done()
	a.Logger.Info("Shutting down Application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error(err, "Graceful shutdown failed")
	}
	if a.Conn != nil {
		_ = a.Conn.Close()
	}
}
