package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"learnsol-identity/docs"
	"learnsol-identity/internal/app/audit"
	"learnsol-identity/internal/app/binding"
	"learnsol-identity/internal/app/config"
	"learnsol-identity/internal/app/database"
	"learnsol-identity/internal/app/gateway"
	"learnsol-identity/internal/app/handlers"
	"learnsol-identity/internal/app/metrics"
	"learnsol-identity/internal/app/tokens"
	appbuilder "learnsol-identity/pkg/app_builder"
	"learnsol-identity/pkg/logger"
	"learnsol-identity/pkg/rabbitmq"
	"learnsol-identity/pkg/rest"
)

const logPublisherAlias rabbitmq.PublisherAlias = "LogPublisher"

type identityBuilder = appbuilder.AppBuilder[config.IdentityConfigJson, config.IdentityConfig]

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the audit worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	builder := appbuilder.New[config.IdentityConfigJson, config.IdentityConfig]().
		InitLogger(logger.GlobalLoggerConfig{Args: []logger.LoggerArg{{Key: "service", Value: serviceName}}}).
		ResolveEnvironment().
		LoadConfig(configPath).
		WithOption(database.ConnectToDatabase[config.IdentityConfigJson, config.IdentityConfig]).
		InitRabbitmqConnection().
		InitRabbitmqRegistries().
		WithOption(addRabbitmqLogSink)

	authHandler, workers, err := wire(ctx, builder)
	if err != nil {
		builder.Logger.Error(err, "Failed to wire identity service")
		return err
	}

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", builder.Config.GetRestApiPort())

	builder.
		AddWorkerServices(workers...).
		AddGinMiddleware(
			rest.NewMiddleware(rest.AllGroups, rest.RequestIDMiddleware()),
			rest.NewMiddleware(rest.AllGroups, rest.RequestLoggerMiddleware(builder.Logger)),
		).
		AddGinRoutes(authHandler.Routes()...).
		AddSwagger().
		AddMetrics().
		InitGinRouter().
		Build().
		Start()
	return nil
}

func addRabbitmqLogSink(a *identityBuilder) {
	publisher := rabbitmq.GetPublisher(logPublisherAlias)
	if publisher == nil {
		return
	}
	logger.AddSinkToLoggerInstance(a.Logger, rabbitmq.CreateRabbitmqLoggerSink(publisher))
}

// wire builds the verifier, gateway and binding service from config. Binding
// events go through RabbitMQ when a publisher is configured and straight to
// the audit table otherwise.
func wire(ctx context.Context, a *identityBuilder) (*handlers.AuthHandler, []rabbitmq.WorkerService, error) {
	authConf := a.Config.GetAuthConfig()

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, nil, err
	}

	verifier, err := newTokenVerifier(ctx, authConf, a.Logger, m)
	if err != nil {
		return nil, nil, err
	}

	gw := gateway.New(verifier,
		gateway.WithCredentialSources(gateway.BearerHeader{}, gateway.Cookie{Name: authConf.CookieName}),
		gateway.WithLogger(a.Logger),
	)

	db := database.GetDatabaseConnection()
	auditService := audit.NewService(audit.NewRepository(db))

	var (
		events  = audit.NewDirectPublisher(auditService)
		workers []rabbitmq.WorkerService
	)
	if publisher := rabbitmq.GetPublisher(binding.BindingEventPublisherAlias); publisher != nil {
		a.Logger.Info("Publishing binding events to Rabbitmq")
		events = binding.NewRabbitmqEventPublisher(publisher)
	}
	if a.Conn != nil {
		if consumer := rabbitmq.GetConsumer(audit.BindingEventConsumerAlias); consumer != nil {
			workers = append(workers, audit.NewAuditSinkWorker(auditService, consumer, a.Logger))
		}
	}

	if auditConf := a.Config.GetAuditConfig(); auditConf.Retention > 0 {
		workers = append(workers, audit.NewAuditRetentionWorker(auditService, auditConf.Retention, auditConf.PruneSchedule, a.Logger))
	}

	service := binding.NewService(binding.NewRepository(db),
		binding.WithEventPublisher(events),
		binding.WithLogger(a.Logger),
		binding.WithMetrics(m),
	)

	handler := handlers.NewAuthHandler(service, gw, verifier,
		handlers.WithAuditService(auditService),
		handlers.WithSessionCookie(gateway.SessionCookie{
			Name:   authConf.CookieName,
			Secure: !a.Config.IsDevelopment(),
		}),
		handlers.WithLogger(a.Logger),
	)
	return handler, workers, nil
}

func newTokenVerifier(ctx context.Context, conf config.AuthConfig, l *logger.Logger, m *metrics.Metrics) (*tokens.Verifier, error) {
	alg, err := tokens.ParseAlgorithm(conf.Algorithm)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: conf.FetchTimeout}
	jwksURL := conf.JwksURL
	if jwksURL == "" {
		if conf.Issuer == "" {
			return nil, errors.New("auth config needs jwks_url or issuer")
		}
		l.Infof("Discovering key set from issuer %s", conf.Issuer)
		if jwksURL, err = tokens.DiscoverJWKSURL(ctx, conf.Issuer, client); err != nil {
			return nil, err
		}
	}
	l.Infof("Verifying %s tokens against %s", alg, jwksURL)

	keys, err := tokens.NewRemoteKeySet(ctx, jwksURL,
		tokens.WithMinRefreshInterval(conf.MinRefresh),
		tokens.WithHTTPClient(client),
	)
	if err != nil {
		return nil, err
	}

	return tokens.NewVerifier(keys,
		tokens.WithAlgorithm(alg),
		tokens.WithIssuer(conf.Issuer),
		tokens.WithAudience(conf.Audience),
		tokens.WithAcceptableSkew(conf.AcceptableSkew),
		tokens.WithLogger(l),
		tokens.WithMetrics(m),
	), nil
}
