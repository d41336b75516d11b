package config

import (
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			Username: utils.GetEnvString("MONGODB_USERNAME", ""),
			Password: utils.GetEnvString("MONGODB_PASSWORD", ""),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Minio: Minio{
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Username: utils.GetEnvString("MINIO_USERNAME", "minioadmin"),
			Password: utils.GetEnvString("MINIO_PASSWORD", "minioadmin"),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "development"),
			Port:                       utils.GetEnvString("APP_PORT", "8080"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1.0"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "0.0.0.0"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "/api"),
			CorsAllowedOrigins:         utils.GetEnvString("APP_CORS_ALLOWED_ORIGINS", "*"),
			APIKey:                     utils.GetEnvString("APP_API_KEY", ""),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 100),
			MaxSessionCreatesPerMinute: utils.GetEnvInt("APP_MAX_SESSION_CREATES_PER_MINUTE", 30),
			ShutdownTimeout:            utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			RequestTimeoutInSeconds:    utils.GetEnvInt("APP_REQUEST_TIMEOUT_IN_SECONDS", 30),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 6),
		},
		FHIR: FHIR{
			BaseUrl:    utils.GetEnvString("FHIR_BASE_URL", "http://localhost:5555/fhir"),
			ServerName: utils.GetEnvString("FHIR_SERVER_NAME", constvars.DEFAULT_FHIR_SERVER_NAME),
			Token:      utils.GetEnvString("FHIR_ACCESS_TOKEN", ""),
		},
		Session: Session{
			TTLInMinutes:      utils.GetEnvInt("SESSION_TTL_IN_MINUTES", constvars.DEFAULT_SESSION_TTL_IN_MINUTES),
			JanitorCronSpec:   utils.GetEnvString("SESSION_JANITOR_CRON_SPEC", constvars.DEFAULT_SESSION_JANITOR_CRON_SPEC),
			PrepareTimeoutSec: utils.GetEnvInt("SESSION_PREPARE_TIMEOUT_IN_SECONDS", 20),
		},
		Verification: Verification{
			JWTAlg:            utils.GetEnvString("VERIFICATION_JWT_ALG", "ES256"),
			JWTKey:            utils.GetEnvString("VERIFICATION_JWT_KEY", ""),
			TokenTTLInMinutes: utils.GetEnvInt("VERIFICATION_TOKEN_TTL_IN_MINUTES", constvars.DEFAULT_SESSION_TTL_IN_MINUTES),
		},
		Submission: Submission{
			RatePerSecond:        utils.GetEnvInt("SUBMISSION_RATE_PER_SECOND", 5),
			LockTTLInSeconds:     utils.GetEnvInt("SUBMISSION_LOCK_TTL_IN_SECONDS", constvars.DEFAULT_SUBMISSION_LOCK_TTL),
			RequestTimeoutInSecs: utils.GetEnvInt("SUBMISSION_REQUEST_TIMEOUT_IN_SECONDS", 30),
		},
		Adaptive: AdaptiveEngine{
			BaseUrl:  utils.GetEnvString("ADAPTIVE_ENGINE_BASE_URL", "https://www.assessmentcenter.net/ac_api/2014-01"),
			Username: utils.GetEnvString("ADAPTIVE_ENGINE_USERNAME", ""),
			Password: utils.GetEnvString("ADAPTIVE_ENGINE_PASSWORD", ""),
		},
		Device: DeviceSource{
			Token: utils.GetEnvString("DEVICE_SOURCE_TOKEN", ""),
		},
		MongoDB: AppMongoDB{
			DbName: utils.GetEnvString("MONGODB_DB_NAME", "smartmarkers"),
		},
		Minio: AppMinio{
			BucketName: utils.GetEnvString("MINIO_BUCKET_NAME", "submissions"),
		},
	}
}
