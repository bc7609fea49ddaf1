package main

import (
	bookinghandler "rentwheels/internal/bookings/handler"
	bookingrepository "rentwheels/internal/bookings/repository"
	bookingservice "rentwheels/internal/bookings/service"
	bookingvalidator "rentwheels/internal/bookings/validator"
	carhandler "rentwheels/internal/cars/handler"
	carrepository "rentwheels/internal/cars/repository"
	carservice "rentwheels/internal/cars/service"
	carvalidator "rentwheels/internal/cars/validator"
	"rentwheels/internal/events"
	userhandler "rentwheels/internal/users/handler"
	userrepository "rentwheels/internal/users/repository"
	userservice "rentwheels/internal/users/service"
	uservalidator "rentwheels/internal/users/validator"
	"rentwheels/pkg/app"
	"rentwheels/pkg/config"
	"rentwheels/pkg/contracts"
	mongotx "rentwheels/pkg/db/mongo"
	"rentwheels/pkg/kafka"
	kafka_config "rentwheels/pkg/kafka/config"
	kafka_middleware "rentwheels/pkg/kafka/middleware"
)

const ServiceName = "rentwheels"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting RentWheels service")
	publisher, metrics := initPublisher(cfg)
	handlers := initHandlers(cfg, publisher)

	serverApp := app.NewApplication(cfg, publisher)
	serverApp.SetApp(handlers...)
	serverApp.Run()

	if metrics != nil {
		snapshot := metrics.Snapshot()
		cfg.Log.Info("Event publishing summary",
			"published", snapshot.Published,
			"failed", snapshot.Failed,
			"avg_duration", snapshot.AvgPublishDuration,
		)
	}
}

func initPublisher(cfg *config.Config) (events.Publisher, *kafka_middleware.PublishMetrics) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, domain events will not be published")
		return events.NewNoopPublisher(), nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	metrics := kafka_middleware.NewPublishMetrics()
	producer.Use(metrics.Middleware())

	cfg.Log.Info("Kafka event publisher initialized", "topic", producer.Topic())
	publisher := events.NewAsyncPublisher(
		events.NewKafkaPublisher(producer),
		cfg.Log,
		cfg.EventQueueSize,
		cfg.EventPublishTimeout,
	)
	return publisher, metrics
}

func initHandlers(cfg *config.Config, publisher events.Publisher) []contracts.Handler {
	txManager := mongotx.NewManager(cfg.Client.Mongo, cfg.MongoTransactionsEnabled)

	carRepo := carrepository.NewMongoCarRepository(cfg)
	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg, txManager)
	userRepo := userrepository.NewMongoUserRepository(cfg)

	listingService := carservice.NewListingService(carRepo, cfg)
	carService := carservice.NewCarService(carRepo, carvalidator.NewCarValidator(cfg.Log), publisher, cfg)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		carRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	userService := userservice.NewUserService(userRepo, uservalidator.NewUserValidator(cfg.Log), publisher, cfg)

	cfg.Log.Info("Services initialized",
		"database", cfg.MongoDatabaseName,
		"transactions", txManager.Transactional(),
	)

	return []contracts.Handler{
		carhandler.NewCarHandler(listingService, carService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		userhandler.NewUserHandler(userService, cfg.Log),
	}
}
