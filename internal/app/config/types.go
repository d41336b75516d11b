package config

type (
	InternalConfig struct {
		App          App
		FHIR         FHIR
		Session      Session
		Verification Verification
		Submission   Submission
		Adaptive     AdaptiveEngine
		Device       DeviceSource
		MongoDB      AppMongoDB
		Minio        AppMinio
	}

	DriverConfig struct {
		MongoDB  MongoDB
		Redis    Redis
		Logger   Logger
		RabbitMQ RabbitMQ
		Minio    Minio
	}

	App struct {
		Env                        string
		Port                       string
		Version                    string
		Address                    string
		EndpointPrefix             string
		CorsAllowedOrigins         string
		APIKey                     string
		MaxRequests                int
		MaxSessionCreatesPerMinute int
		ShutdownTimeout            int
		RequestTimeoutInSeconds    int
		MaxTimeRequestsPerSeconds  int
		RequestBodyLimitInMegabyte int
	}

	FHIR struct {
		BaseUrl    string
		ServerName string
		Token      string
	}

	Session struct {
		TTLInMinutes      int
		JanitorCronSpec   string
		PrepareTimeoutSec int
	}

	Verification struct {
		JWTAlg            string
		JWTKey            string
		TokenTTLInMinutes int
	}

	Submission struct {
		RatePerSecond        int
		LockTTLInSeconds     int
		RequestTimeoutInSecs int
	}

	AdaptiveEngine struct {
		BaseUrl  string
		Username string
		Password string
	}

	DeviceSource struct {
		Token string
	}

	AppMongoDB struct {
		DbName string
	}

	AppMinio struct {
		BucketName string
	}

	MongoDB struct {
		Port     string
		Host     string
		Username string
		Password string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
	}
	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
	RabbitMQ struct {
		Port     string
		Host     string
		Username string
		Password string
	}
	Minio struct {
		Port     string
		Host     string
		Username string
		Password string
		UseSSL   bool
	}
)
