package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"cinepay/auth"
	"cinepay/payment"
	"cinepay/service"
	"cinepay/tracing"
)

type opts struct {
	Addr           string `long:"addr" env:"ADDR" default:":8080" description:"HTTP listen address"`
	BackendURL     string `long:"backend-url" env:"BACKEND_URL" required:"true" description:"Cinema backend base URL"`
	APIToken       string `long:"api-token" env:"API_TOKEN" description:"Bearer token for the cinema backend"`
	RedisAddr      string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address for the event bus"`
	PostgresURL    string `long:"postgres-url" env:"POSTGRES_URL" required:"true" description:"Postgres connection string for the payment journal"`
	JaegerEndpoint string `long:"jaeger-endpoint" env:"JAEGER_ENDPOINT" default:"http://localhost:14268/api/traces" description:"Jaeger collector endpoint"`

	PollInterval    time.Duration `long:"poll-interval" env:"POLL_INTERVAL" default:"3s" description:"Delay between payment verification attempts"`
	PollMaxAttempts int           `long:"poll-max-attempts" env:"POLL_MAX_ATTEMPTS" default:"20" description:"Verification attempts before the confirmation window expires"`
	PollInitGrace   time.Duration `long:"poll-init-grace" env:"POLL_INIT_GRACE" default:"1500ms" description:"Grace period before the first verification attempt"`
}

func main() {
	var options opts
	if _, err := flags.Parse(&options); err != nil {
		os.Exit(1)
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tp := tracing.ConfigureTraceProvider(options.JaegerEndpoint)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logrus.WithError(err).Error("failed to shutdown trace provider")
		}
	}()

	traceDB, err := otelsql.Open("postgres", options.PostgresURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to postgres")
	}
	database := sqlx.NewDb(traceDB, "postgres")
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: options.RedisAddr,
	})
	defer redisClient.Close()

	svc := service.New(
		options.Addr,
		database,
		redisClient,
		options.BackendURL,
		auth.StaticTokenProvider(options.APIToken),
		payment.Config{
			Interval:    options.PollInterval,
			MaxAttempts: options.PollMaxAttempts,
			InitGrace:   options.PollInitGrace,
		},
	)

	if err := svc.Run(ctx); err != nil {
		logrus.WithError(err).Fatal("service stopped")
	}
}
