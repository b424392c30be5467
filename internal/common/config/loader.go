package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// applies environment overrides and validates the result.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile reads a single YAML file, still honouring env overrides.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env", // test/e2e
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that are conventionally passed as plain env vars.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = os.Getenv("DB_USER")
	}
	if cfg.Database.Postgres.Password == "" {
		cfg.Database.Postgres.Password = os.Getenv("DB_PASSWORD")
	}
	if cfg.Database.Redis.Password == "" {
		cfg.Database.Redis.Password = os.Getenv("REDIS_PASSWORD")
	}
	if cfg.Sink.HTTP.URL == "" {
		cfg.Sink.HTTP.URL = os.Getenv("PROFILE_SINK_URL")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "mobile-forms"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if cfg.Server.SessionTTL == 0 {
		cfg.Server.SessionTTL = 1800000
	}

	if cfg.Form.Locale == "" {
		cfg.Form.Locale = "ru"
	}

	if cfg.Sink.Kind == "" {
		cfg.Sink.Kind = SinkLog
	}
	if cfg.Sink.HTTP.Timeout == 0 {
		cfg.Sink.HTTP.Timeout = 10000
	}
	if cfg.Sink.Postgres.Table == "" {
		cfg.Sink.Postgres.Table = "profiles"
	}
	if cfg.Sink.Elasticsearch.Index == "" {
		cfg.Sink.Elasticsearch.Index = "profiles"
	}
	if cfg.Sink.Zeebe.ProcessID == "" {
		cfg.Sink.Zeebe.ProcessID = "profile-onboarding"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.APIs.Posts.BaseURL == "" {
		cfg.APIs.Posts.BaseURL = "https://jsonplaceholder.typicode.com"
	}
	if cfg.APIs.Posts.Timeout == 0 {
		cfg.APIs.Posts.Timeout = 10000
	}
	if cfg.APIs.Posts.UserID == 0 {
		cfg.APIs.Posts.UserID = 1
	}

	if cfg.Cache.PostsTTL == 0 {
		cfg.Cache.PostsTTL = 60000
	}

	if cfg.Notifications.Email.Subject == "" {
		cfg.Notifications.Email.Subject = "Профиль сохранён"
	}
	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "eu-central-1"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	kind := cfg.Sink.Kind
	needsBroker := cfg.Camunda.Enabled || kind == SinkZeebe

	return validation.Errors{
		"server.addr": validation.Validate(cfg.Server.Addr, validation.Required),
		"form.locale": validation.Validate(cfg.Form.Locale, validation.In("ru", "en")),
		"sink.kind": validation.Validate(kind,
			validation.Required,
			validation.In(SinkLog, SinkHTTP, SinkPostgres, SinkElasticsearch, SinkZeebe),
		),
		"sink.http.url": validation.Validate(cfg.Sink.HTTP.URL,
			validation.When(kind == SinkHTTP, validation.Required),
			is.URL,
		),
		"database.postgres.host": validation.Validate(cfg.Database.Postgres.Host,
			validation.When(kind == SinkPostgres, validation.Required),
		),
		"database.postgres.database": validation.Validate(cfg.Database.Postgres.Database,
			validation.When(kind == SinkPostgres, validation.Required),
		),
		"database.postgres.user": validation.Validate(cfg.Database.Postgres.User,
			validation.When(kind == SinkPostgres, validation.Required),
		),
		"database.elasticsearch.url": validation.Validate(cfg.Database.Elasticsearch.GetURL(),
			validation.When(kind == SinkElasticsearch, validation.Required),
		),
		"database.redis.address": validation.Validate(cfg.Database.Redis.Address,
			validation.When(cfg.Cache.Enabled, validation.Required),
		),
		"camunda.broker_address": validation.Validate(cfg.Camunda.BrokerAddress,
			validation.When(needsBroker, validation.Required),
		),
		"apis.posts.base_url": validation.Validate(cfg.APIs.Posts.BaseURL, validation.Required, is.URL),
		"notifications.email.from_email": validation.Validate(cfg.Notifications.Email.FromEmail,
			validation.When(cfg.Notifications.Email.Enabled, validation.Required),
			is.EmailFormat,
		),
		"logging.level": validation.Validate(cfg.Logging.Level, validation.In("debug", "info", "warn", "error")),
	}.Filter()
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
