package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	IdentityModeJWT    = "jwt"
	IdentityModeGoTrue = "gotrue"
	IdentityModeOIDC   = "oidc"

	StorageBackendMinio = "minio"
	StorageBackendGCS   = "gcs"
	StorageBackendNone  = "none"

	MQBackendPubSub   = "pubsub"
	MQBackendRabbitMQ = "rabbitmq"
	MQBackendKafka    = "kafka"
	MQBackendNone     = "none"
)

// Default cookie-name patterns probed for a session token, in order.
// The first matches the provider client's per-project session cookie,
// the second its legacy access-token cookie.
var defaultSessionCookies = []string{"sb-*-auth-token", "sb-access-token"}

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Identity   IdentityConfig
	Storage    StorageConfig
	MQ         MQConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Telemetry  TelemetryConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// IdentityConfig selects and configures the identity provider client.
type IdentityConfig struct {
	Mode           string
	BaseURL        string
	AnonKey        string
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	OIDCIssuerURL  string
	SessionCookies []string
}

type StorageConfig struct {
	Backend       string
	PublicBaseURL string
	Minio         MinioConfig
	GCS           GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

type MQConfig struct {
	Backend        string
	ContactChannel string
	PubSub         PubSubConfig
	RabbitMQ       RabbitMQConfig
	Kafka          KafkaConfig
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig bounds contact form submissions per client address.
type RateLimitConfig struct {
	ContactMax    int
	ContactWindow time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "portfolio"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "portfolio_db"),
		UseSSL:   getEnvBool("DB_SSL", false),
	}

	identityConfig := IdentityConfig{
		Mode:           strings.ToLower(getEnv("IDENTITY_MODE", IdentityModeGoTrue)),
		BaseURL:        strings.TrimRight(getEnv("IDENTITY_URL", ""), "/"),
		AnonKey:        getEnv("IDENTITY_ANON_KEY", ""),
		JWTSecret:      getEnv("IDENTITY_JWT_SECRET", ""),
		JWTIssuer:      getEnv("IDENTITY_JWT_ISSUER", ""),
		JWTAudience:    getEnv("IDENTITY_JWT_AUDIENCE", "authenticated"),
		OIDCIssuerURL:  getEnv("IDENTITY_OIDC_ISSUER", ""),
		SessionCookies: getEnvList("IDENTITY_SESSION_COOKIES", defaultSessionCookies),
	}

	storageConfig := StorageConfig{
		Backend:       strings.ToLower(getEnv("STORAGE_BACKEND", StorageBackendNone)),
		PublicBaseURL: strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", ""), "/"),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "portfolio"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
	}

	mqConfig := MQConfig{
		Backend:        strings.ToLower(getEnv("MQ_BACKEND", MQBackendNone)),
		ContactChannel: getEnv("MQ_CONTACT_CHANNEL", "contact-submitted"),
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", 10),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", nil),
			GroupID: getEnv("KAFKA_GROUP_ID", "portfolio-worker"),
		},
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		Identity:   identityConfig,
		Storage:    storageConfig,
		MQ:         mqConfig,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			ContactMax:    getEnvInt("CONTACT_RATE_LIMIT", 5),
			ContactWindow: getEnvDuration("CONTACT_RATE_WINDOW", time.Hour),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "portfolio-apiserver"),
		},
	}
}

// Validate reports settings that are missing for the selected backends.
func (c Config) Validate() error {
	var errs []error

	switch c.Identity.Mode {
	case IdentityModeJWT:
		if c.Identity.JWTSecret == "" {
			errs = append(errs, errors.New("IDENTITY_JWT_SECRET is required for jwt identity mode"))
		}
	case IdentityModeGoTrue:
		if c.Identity.BaseURL == "" {
			errs = append(errs, errors.New("IDENTITY_URL is required for gotrue identity mode"))
		}
	case IdentityModeOIDC:
		if c.Identity.OIDCIssuerURL == "" {
			errs = append(errs, errors.New("IDENTITY_OIDC_ISSUER is required for oidc identity mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown IDENTITY_MODE %q", c.Identity.Mode))
	}

	switch c.Storage.Backend {
	case StorageBackendMinio, StorageBackendGCS, StorageBackendNone:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}

	switch c.MQ.Backend {
	case MQBackendPubSub, MQBackendRabbitMQ, MQBackendNone:
	case MQBackendKafka:
		if len(c.MQ.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required for kafka mq backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MQ_BACKEND %q", c.MQ.Backend))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(valueStr)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
