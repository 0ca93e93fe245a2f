package app

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/clinireason-backend/internal/data/db"
	"github.com/yungbote/clinireason-backend/internal/observability"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

type Config struct {
	Port    string
	LogMode string
	Log     logger.Options

	DB db.Config

	JWTSecretKey string
	CORSOrigins  []string
	RegionsFile  string

	Generator GeneratorConfig

	RedisAddr     string
	RedisPassword string
	RedisChannel  string

	MetricsEnabled bool
	Otel           observability.OtelConfig
}

type GeneratorConfig struct {
	Provider          string
	Timeout           time.Duration
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAITemperature *float64
	GeminiAPIKey      string
	GeminiModel       string
}

// newViper reads an optional config.yaml and lets the environment override it.
func newViper(paths ...string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("LOG_REDACTION_ENABLED", true)
	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_NAME", "clinireason")
	v.SetDefault("SQLITE_PATH", "clinireason.db")
	v.SetDefault("GENERATOR_PROVIDER", "openai")
	v.SetDefault("GENERATION_TIMEOUT_SECONDS", 90)
	v.SetDefault("OPENAI_MODEL", "gpt-4.1-mini")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("REDIS_CHANNEL", "clinireason:sse")
	v.SetDefault("OTEL_SERVICE_NAME", "clinireason")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
	return v
}

func LoadConfig(paths ...string) (Config, error) {
	if len(paths) == 0 {
		paths = []string{"./configs", "."}
	}
	v := newViper(paths...)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}
	return configFrom(v), nil
}

func configFrom(v *viper.Viper) Config {
	cfg := Config{
		Port:    v.GetString("PORT"),
		LogMode: v.GetString("LOG_MODE"),
		Log: logger.Options{
			Redact:   v.GetBool("LOG_REDACTION_ENABLED"),
			HashSalt: v.GetString("LOG_HASH_SALT"),
		},
		DB: db.Config{
			Driver:           v.GetString("DB_DRIVER"),
			PostgresHost:     v.GetString("POSTGRES_HOST"),
			PostgresPort:     v.GetString("POSTGRES_PORT"),
			PostgresUser:     v.GetString("POSTGRES_USER"),
			PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
			PostgresName:     v.GetString("POSTGRES_NAME"),
			PostgresSSLMode:  v.GetString("POSTGRES_SSLMODE"),
			SQLitePath:       v.GetString("SQLITE_PATH"),
		},
		JWTSecretKey: v.GetString("JWT_SECRET_KEY"),
		CORSOrigins:  splitList(v.GetString("CORS_ORIGINS")),
		RegionsFile:  v.GetString("REGIONS_FILE"),
		Generator: GeneratorConfig{
			Provider:      strings.ToLower(strings.TrimSpace(v.GetString("GENERATOR_PROVIDER"))),
			Timeout:       time.Duration(v.GetInt("GENERATION_TIMEOUT_SECONDS")) * time.Second,
			OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
			OpenAIBaseURL: v.GetString("OPENAI_BASE_URL"),
			OpenAIModel:   v.GetString("OPENAI_MODEL"),
			GeminiAPIKey:  v.GetString("GEMINI_API_KEY"),
			GeminiModel:   v.GetString("GEMINI_MODEL"),
		},
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisChannel:   v.GetString("REDIS_CHANNEL"),
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
		Otel: observability.OtelConfig{
			Enabled:     v.GetBool("OTEL_ENABLED"),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Environment: v.GetString("OTEL_ENVIRONMENT"),
			Version:     v.GetString("OTEL_SERVICE_VERSION"),
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Headers:     observability.ParseHeaders(v.GetString("OTEL_EXPORTER_OTLP_HEADERS")),
			Insecure:    v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
			SampleRatio: v.GetFloat64("OTEL_SAMPLE_RATIO"),
		},
	}
	if v.IsSet("OPENAI_TEMPERATURE") {
		t := v.GetFloat64("OPENAI_TEMPERATURE")
		cfg.Generator.OpenAITemperature = &t
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
