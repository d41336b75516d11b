package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"smartmarkers-service/internal/app/config"
	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/delivery/http/middlewares"
	"smartmarkers-service/internal/app/delivery/http/routers"
	"smartmarkers-service/internal/app/drivers/database"
	"smartmarkers-service/internal/app/drivers/logger"
	"smartmarkers-service/internal/app/drivers/messaging"
	"smartmarkers-service/internal/app/drivers/storage"
	"smartmarkers-service/internal/app/services/core/janitor"
	"smartmarkers-service/internal/app/services/core/reports"
	"smartmarkers-service/internal/app/services/core/sessions"
	"smartmarkers-service/internal/app/services/fhir_spark/bundle"
	"smartmarkers-service/internal/app/services/fhir_spark/profiles"
	"smartmarkers-service/internal/app/services/fhir_spark/questionnaires"
	"smartmarkers-service/internal/app/services/fhir_spark/search"
	"smartmarkers-service/internal/app/services/instruments"
	"smartmarkers-service/internal/app/services/shared/adaptiveengine"
	"smartmarkers-service/internal/app/services/shared/devicesource"
	"smartmarkers-service/internal/app/services/shared/jwtmanager"
	"smartmarkers-service/internal/app/services/shared/locker"
	"smartmarkers-service/internal/app/services/shared/redis"
	"smartmarkers-service/internal/app/services/shared/sessioncache"
	minioStorage "smartmarkers-service/internal/app/services/shared/storage"
	"smartmarkers-service/internal/app/services/shared/submissionqueue"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewZapLogger(driverConfig, internalConfig)

	mongoDB := database.NewMongoDB(driverConfig, internalConfig, log)
	redisClient := database.NewRedisClient(driverConfig, log)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig, log)
	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		Logger:         log,
		RabbitMQ:       rabbitMQ,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}
	err := bootstrapingTheApp(bootstrap)
	if err != nil {
		log.Fatal("Failed to bootstrap the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", internalConfig.App.Address, internalConfig.App.Port),
		Handler:           chiRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server started", zap.String("address", server.Addr))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	err = bootstrap.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Failed to release drivers", zap.Error(err))
	}

	log.Info("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) error {
	internalConfig := bootstrap.InternalConfig
	log := bootstrap.Logger
	httpClient := &http.Client{Timeout: time.Duration(internalConfig.Submission.RequestTimeoutInSecs) * time.Second}

	// Redis
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockerService := locker.NewLockService(redisRepository, log)
	sessionCache := sessioncache.NewSessionCache(
		redisRepository,
		time.Duration(internalConfig.Session.TTLInMinutes)*time.Minute,
		log,
	)

	// FHIR server
	fhirBaseURL := internalConfig.FHIR.BaseUrl
	fhirToken := internalConfig.FHIR.Token
	bundleFhirClient := bundle.NewBundleFhirClient(fhirBaseURL, fhirToken, float64(internalConfig.Submission.RatePerSecond), httpClient, log)
	questionnaireFhirClient := questionnaires.NewQuestionnaireFhirClient(fhirBaseURL, fhirToken, httpClient, log)
	profileFhirClient := profiles.NewProfileFhirClient(fhirBaseURL, fhirToken, httpClient, log)
	searchFhirClient := search.NewSearchFhirClient(fhirBaseURL, fhirToken, httpClient, log)

	// Instruments
	adaptiveEngineClient := adaptiveengine.NewAdaptiveEngineClient(
		internalConfig.Adaptive.BaseUrl,
		internalConfig.Adaptive.Username,
		internalConfig.Adaptive.Password,
		httpClient,
		log,
	)
	deviceReadingClient := devicesource.NewDeviceReadingClient(internalConfig.Device.Token, httpClient, log)
	instrumentFactory := instruments.NewFactory(questionnaireFhirClient, searchFhirClient, adaptiveEngineClient, deviceReadingClient)

	// Reports
	minioClient := storage.NewMinio(bootstrap.DriverConfig, internalConfig, log)
	submissionArchive := minioStorage.NewMinioStorage(minioClient, internalConfig.Minio.BucketName, log)

	var eventPublisher contracts.SubmissionEventPublisher
	if bootstrap.RabbitMQ != nil {
		queueService, err := submissionqueue.NewService(bootstrap.RabbitMQ, log)
		if err != nil {
			return err
		}
		eventPublisher = queueService
	}

	submissionLogRepository := reports.NewSubmissionLogMongoRepository(bootstrap.MongoDB, internalConfig.MongoDB.DbName)
	reportsUsecase := reports.NewReportsUsecase(submissionLogRepository, submissionArchive, eventPublisher, log)

	// Verification tokens
	var tokens sessions.VerificationTokens
	if internalConfig.Verification.JWTKey != "" {
		jwtManager, err := jwtmanager.NewJWTManager(
			internalConfig.Verification.JWTAlg,
			internalConfig.Verification.JWTKey,
			time.Duration(internalConfig.Verification.TokenTTLInMinutes)*time.Minute,
			log,
		)
		if err != nil {
			return err
		}
		tokens = jwtManager
	} else {
		log.Warn("VERIFICATION_JWT_KEY not set, verified sessions can only be left with their passcode")
	}

	// Sessions
	sessionUsecase := sessions.NewSessionUsecase(
		instrumentFactory,
		profileFhirClient,
		bundleFhirClient,
		reportsUsecase,
		sessionCache,
		lockerService,
		tokens,
		internalConfig,
		log,
	)
	sessionController := sessions.NewSessionController(log, sessionUsecase, internalConfig)

	// Janitor
	janitorWorker := janitor.NewWorker(log, internalConfig, sessionUsecase)
	janitorWorker.Start(context.Background())
	bootstrap.WorkerStop = janitorWorker.Stop

	// Middlewares
	middlewares := middlewares.NewMiddlewares(log, internalConfig)

	routers.SetupRoutes(bootstrap.Router, internalConfig, middlewares, sessionController)
	return nil
}
