package service

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cinepay/auth"
	"cinepay/booking"
	"cinepay/db"
	"cinepay/db/payments"
	"cinepay/gateway"
	"cinepay/http"
	"cinepay/payment"
	"cinepay/pubsub"
	"cinepay/pubsub/bus"
	"cinepay/pubsub/event"
)

type Service struct {
	db              *sqlx.DB
	watermillRouter *message.Router
	httpServer      *http.Server
	sessions        *payment.Coordinator
}

func New(
	addr string,
	database *sqlx.DB,
	redisClient *redis.Client,
	backendURL string,
	tokens auth.TokenProvider,
	pollConfig payment.Config,
) Service {
	journal := payments.NewPostgresRepository(database)

	watermillLogger := pubsub.NewLogrusLogger(logrus.NewEntry(logrus.StandardLogger()))

	redisPublisher := pubsub.NewRedisPublisher(redisClient, watermillLogger)

	eventBus, err := bus.NewEventBus(redisPublisher)
	if err != nil {
		panic(fmt.Errorf("failed to create event bus: %w", err))
	}

	eventsHandler := event.NewHandler(journal)
	eventProcessorConfig := event.NewProcessorConfig(redisClient, watermillLogger)

	watermillRouter, err := pubsub.NewWatermillRouter(
		eventProcessorConfig,
		eventsHandler,
		watermillLogger,
	)
	if err != nil {
		panic(fmt.Errorf("failed to create watermill router: %w", err))
	}

	apiClient := gateway.NewClient(backendURL, tokens)
	bookingsClient := gateway.NewBookingsClient(apiClient)
	paymentsClient := gateway.NewPaymentsClient(apiClient)

	sessions := payment.NewCoordinator(pollConfig, eventBus)

	bookingService := booking.NewService(
		bookingsClient,
		paymentsClient,
		sessions,
		tokens,
		eventBus,
	)

	httpServer := http.NewServer(
		addr,
		bookingService,
		bookingsClient,
		paymentsClient,
		journal,
	)

	return Service{
		db:              database,
		watermillRouter: watermillRouter,
		httpServer:      httpServer,
		sessions:        sessions,
	}
}

func (s Service) Run(ctx context.Context) error {
	if err := db.InitializeDatabaseSchema(s.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	defer s.sessions.Shutdown()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		// the HTTP server reports healthy only once the router consumes events
		<-s.watermillRouter.Running()

		return s.httpServer.Run(ctx)
	})

	return g.Wait()
}
