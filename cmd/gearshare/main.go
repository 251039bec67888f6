package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gearshare/internal/app/commands"
	conditionapp "gearshare/internal/app/handlers/condition"
	depositapp "gearshare/internal/app/handlers/deposit"
	disputeapp "gearshare/internal/app/handlers/dispute"
	gamificationapp "gearshare/internal/app/handlers/gamification"
	itemapp "gearshare/internal/app/handlers/item"
	rentalapp "gearshare/internal/app/handlers/rental"
	reviewapp "gearshare/internal/app/handlers/review"
	"gearshare/internal/app/middleware"
	appoutbox "gearshare/internal/app/outbox"
	"gearshare/internal/app/policies"
	"gearshare/internal/app/queries"
	"gearshare/internal/app/schedule"
	authsvc "gearshare/internal/app/services/auth"
	"gearshare/internal/app/uow"
	"gearshare/internal/infra/broker/kafka"
	"gearshare/internal/infra/config"
	mongodb "gearshare/internal/infra/db/mongo"
	ginserver "gearshare/internal/infra/http/gin"
	"gearshare/internal/infra/notify"
	"gearshare/internal/infra/obs"
	infraoutbox "gearshare/internal/infra/outbox"
	"gearshare/internal/infra/security"
	"gearshare/internal/infra/storage/memory"
	"gearshare/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	memoryMode := false
	if err != nil {
		logger.Warn("using in-memory fallback configuration", "error", err)
		memoryMode = true
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.NotifyTopic = getenv("NOTIFY_TOPIC", "notifications")
		cfg.DepositSweepSpec = getenv("DEPOSIT_SWEEP_SPEC", "@every 5m")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(cfg, memoryMode, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	app.scheduler.Start()
	defer app.scheduler.Stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "memory_mode", memoryMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers  ginserver.Handlers
	worker    *infraoutbox.Worker
	scheduler *schedule.Scheduler
	ready     func() error
	closers   []func() error
}

func (a *application) close(logger *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err)
		}
	}
}

func buildApplication(cfg config.Config, memoryMode bool, logger *slog.Logger) (*application, error) {
	app := &application{
		ready: func() error { return nil },
	}

	var (
		uowFactory  uow.UoWFactory
		outboxStore appoutbox.Outbox
		idStore     middleware.IdempotencyStore
		notifier    policies.Notifier
		evidence    policies.EvidenceStore
	)

	if memoryMode {
		uowFactory = memory.NewFactory()
		outboxStore = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
		evidence = s3.NoopUploader{}
	} else {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Close(closeCtx)
		})
		db := client.DB
		uowFactory = mongodb.Factory{
			DB:            db,
			ItemRepo:      mongodb.NewItemRepository(db),
			RentalRepo:    mongodb.NewRentalRepository(db),
			ConditionRepo: mongodb.NewConditionRepository(db),
			DisputeRepo:   mongodb.NewDisputeRepository(db),
			DepositRepo:   mongodb.NewDepositRepository(db),
			ProfileRepo:   mongodb.NewProfileRepository(db),
			ReviewRepo:    mongodb.NewReviewRepository(db),
		}
		idStore = mongodb.NewIdempotencyStore(db)
		store := infraoutbox.NewStore(db)
		outboxStore = store
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, producer.Close)
		notifier = &notify.KafkaNotifier{Producer: producer, Topic: cfg.NotifyTopic}
		app.worker = &infraoutbox.Worker{
			Store:       store,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}

		uploader, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Warn("s3 uploader unavailable, photo uploads disabled", "error", err)
			evidence = s3.NoopUploader{}
		} else {
			evidence = uploader
		}
	}

	authService := &authsvc.Service{
		Users:     memory.NewUserRepository(),
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{},
		Tokens:    security.RandomTokenGenerator{},
		Logger:    logger,
	}

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()

	commands.RegisterHandler(commandBus, itemapp.CreateItemCommand{}.Key(), &itemapp.CreateItemHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})
	commands.RegisterHandler(commandBus, itemapp.UploadPhotoCommand{}.Key(), &itemapp.UploadPhotoHandler{
		Store: evidence,
	})
	commands.RegisterHandler(commandBus, rentalapp.SubmitRentalCommand{}.Key(), &rentalapp.SubmitRentalHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})
	commands.RegisterHandler(commandBus, rentalapp.SetRentalStatusCommand{}.Key(), &rentalapp.SetRentalStatusHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Notifier:   notifier,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, conditionapp.CreateReportCommand{}.Key(), &conditionapp.CreateReportHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler(commandBus, conditionapp.VerifyReportCommand{}.Key(), &conditionapp.VerifyReportHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler(commandBus, disputeapp.OpenDisputeCommand{}.Key(), &disputeapp.OpenDisputeHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Notifier:   notifier,
		Logger:     logger,
	})
	moderation := &disputeapp.ModerationHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Notifier:   notifier,
		Logger:     logger,
	}
	commands.RegisterHandler(commandBus, disputeapp.StartReviewCommand{}.Key(), disputeapp.StartReviewHandler{ModerationHandler: moderation})
	commands.RegisterHandler(commandBus, disputeapp.ResolveDisputeCommand{}.Key(), disputeapp.ResolveDisputeHandler{ModerationHandler: moderation})
	commands.RegisterHandler(commandBus, disputeapp.CloseDisputeCommand{}.Key(), disputeapp.CloseDisputeHandler{ModerationHandler: moderation})
	commands.RegisterHandler(commandBus, disputeapp.AddMessageCommand{}.Key(), &disputeapp.AddMessageHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler(commandBus, depositapp.SettleHoldsCommand{}.Key(), &depositapp.SettleHoldsHandler{
		UoWFactory: uowFactory,
		Notifier:   notifier,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, reviewapp.SubmitReviewCommand{}.Key(), &reviewapp.SubmitReviewHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})

	queries.RegisterHandler(queryBus, itemapp.SearchItemsQuery{}.Key(), &itemapp.SearchItemsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, itemapp.GetItemQuery{}.Key(), &itemapp.GetItemHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, rentalapp.ListRentalsQuery{}.Key(), &rentalapp.ListRentalsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, rentalapp.GetRentalQuery{}.Key(), &rentalapp.GetRentalHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, conditionapp.ListReportsQuery{}.Key(), &conditionapp.ListReportsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, disputeapp.ListDisputesQuery{}.Key(), &disputeapp.ListDisputesHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, disputeapp.GetDisputeQuery{}.Key(), &disputeapp.GetDisputeHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, depositapp.GetHoldQuery{}.Key(), &depositapp.GetHoldHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, gamificationapp.GetProfileQuery{}.Key(), &gamificationapp.GetProfileHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, reviewapp.ListReviewsQuery{}.Key(), &reviewapp.ListReviewsHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(idStore, nil, ginserver.Sentinels()...),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryValidation(middleware.SelfValidator{}),
	)

	app.scheduler = schedule.New(logger)
	if err := app.scheduler.Add(cfg.DepositSweepSpec, "deposit_sweep", func(ctx context.Context) error {
		res, err := commands.Dispatch[depositapp.SettleHoldsCommand, *depositapp.SettleHoldsResult](ctx, commandBusWithMiddleware, depositapp.SettleHoldsCommand{})
		if err != nil {
			return err
		}
		if res.Released > 0 || res.Forfeited > 0 {
			logger.Info("deposit sweep settled holds", "released", res.Released, "forfeited", res.Forfeited)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	app.handlers = ginserver.Handlers{
		Auth: ginserver.AuthHandler{Service: authService, Logger: logger},
		Item: ginserver.ItemHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Rental: ginserver.RentalHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Condition: ginserver.ConditionHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Dispute: ginserver.DisputeHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Deposit: ginserver.DepositHandler{
			Queries: queryBusWithMiddleware,
		},
		Review: ginserver.ReviewHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Profile: ginserver.ProfileHandler{
			Queries: queryBusWithMiddleware,
		},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}
	return app, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
