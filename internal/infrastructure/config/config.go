package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Accordous/bb-client/pkg/bbapi"
	"github.com/Accordous/bb-client/pkg/kafka"
	"github.com/Accordous/bb-client/pkg/tlsutil"
)

// Config holds all daemon configuration loaded from environment variables.
type Config struct {
	HTTPPort  int
	TLS       ServerTLSConfig
	BB        BBConfig
	Redis     RedisConfig
	Kafka     kafka.Config
	Telemetry TelemetryConfig
	LogLevel  string
	LogFormat string
}

// ServerTLSConfig enables HTTPS on the webhook listener when both files are
// set. ClientCAFile additionally requires client certificates.
type ServerTLSConfig struct {
	CertFile     string
	KeyFile      string
	ClientCAFile string
}

func (c ServerTLSConfig) Enabled() bool { return c.CertFile != "" && c.KeyFile != "" }

// BBConfig configures the billing API client used to enrich notifications.
type BBConfig struct {
	Environment  string
	BaseURL      string
	TokenURL     string
	AppKey       string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	TLS          tlsutil.ClientOptions
}

// Enabled reports whether API credentials were supplied.
func (c BBConfig) Enabled() bool { return c.ClientID != "" }

// Credentials returns the OAuth credentials for the configured environment.
func (c BBConfig) Credentials() bbapi.Credentials {
	return bbapi.Credentials{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
	}
}

// RedisConfig points the token cache at a shared Redis. Without an address
// tokens are cached in memory.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
	SampleRatio  float64
}

// Validate checks required configuration values.
func (c Config) Validate() error {
	var errs []error
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d is out of range", c.HTTPPort))
	}
	if err := c.Kafka.Validate(); err != nil {
		errs = append(errs, err)
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if c.BB.Environment != "sandbox" && c.BB.Environment != "production" {
		errs = append(errs, fmt.Errorf("BB_ENVIRONMENT must be sandbox or production, got %q", c.BB.Environment))
	}
	if c.BB.Enabled() {
		if err := c.BB.Credentials().Validate(); err != nil {
			errs = append(errs, err)
		}
		if c.BB.AppKey == "" {
			errs = append(errs, errors.New("BB_APP_KEY is required when BB_CLIENT_ID is set"))
		}
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	env := getEnv("BB_ENVIRONMENT", "sandbox")
	baseURL, tokenURL := bbapi.SandboxBaseURL, bbapi.SandboxTokenURL
	if env == "production" {
		baseURL, tokenURL = bbapi.ProductionBaseURL, bbapi.ProductionTokenURL
	}

	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		TLS: ServerTLSConfig{
			CertFile:     getEnv("TLS_CERT_FILE", ""),
			KeyFile:      getEnv("TLS_KEY_FILE", ""),
			ClientCAFile: getEnv("TLS_CLIENT_CA_FILE", ""),
		},
		BB: BBConfig{
			Environment:  env,
			BaseURL:      getEnv("BB_BASE_URL", baseURL),
			TokenURL:     getEnv("BB_OAUTH_URL", tokenURL),
			AppKey:       getEnv("BB_APP_KEY", ""),
			ClientID:     getEnv("BB_CLIENT_ID", ""),
			ClientSecret: getEnv("BB_CLIENT_SECRET", ""),
			Timeout:      getEnvDuration("BB_TIMEOUT", 30*time.Second),
			TLS: tlsutil.ClientOptions{
				CAFile:             getEnv("BB_CA_FILE", ""),
				CertFile:           getEnv("BB_CERT_FILE", ""),
				KeyFile:            getEnv("BB_KEY_FILE", ""),
				InsecureSkipVerify: getEnvBool("BB_INSECURE_SKIP_VERIFY", false),
			},
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", ""),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", bbapi.DefaultRedisPrefix),
		},
		Kafka: kafka.Config{
			Brokers:       getEnvList("KAFKA_BROKERS", "localhost:9092"),
			ClientID:      getEnv("KAFKA_CLIENT_ID", "cobrancad"),
			TLS:           getEnvBool("KAFKA_TLS", false),
			SASLEnabled:   getEnvBool("KAFKA_SASL_ENABLED", false),
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "cobrancad"),
			SampleRatio:  getEnvFloat("OTEL_SAMPLE_RATIO", 1),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key, defaultVal string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultVal), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
