package hermes

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lunagic/hermes/hermesservices/cache"
	"github.com/lunagic/hermes/hermesservices/database"
	"github.com/lunagic/hermes/hermesservices/mailer"
	"github.com/lunagic/hermes/hermesservices/queue"
	"github.com/lunagic/hermes/hermesservices/storage"
	"github.com/lunagic/hermes/hermesservices/vault"
	"github.com/spf13/viper"
)

// AppConfig keys double as environment variable names, e.g. MYSQL_HOST.
type AppConfig struct {
	// App
	AppKey      string `mapstructure:"app_key"`
	AppLogLevel string `mapstructure:"app_log_level"`
	// App Drivers
	AppDriverCache       string `mapstructure:"app_driver_cache"`
	AppDriverDatabase    string `mapstructure:"app_driver_database"`
	AppDriverMailer      string `mapstructure:"app_driver_mailer"`
	AppDriverSchemaCache string `mapstructure:"app_driver_schema_cache"`
	AppDriverStorage     string `mapstructure:"app_driver_storage"`
	AppDriverQueue       string `mapstructure:"app_driver_queue"`
	// Site
	SiteBaseURL      string        `mapstructure:"site_base_url"`
	SiteSearchPath   string        `mapstructure:"site_search_path"`
	SiteReferer      string        `mapstructure:"site_referer"`
	SiteUserAgent    string        `mapstructure:"site_user_agent"`
	SiteCookieFile   string        `mapstructure:"site_cookie_file"`
	SiteCookieSealed bool          `mapstructure:"site_cookie_sealed"`
	SiteTimeout      time.Duration `mapstructure:"site_timeout"`
	// Scrape
	ScrapeStartPage        int           `mapstructure:"scrape_start_page"`
	ScrapePagesPerWorkbook int           `mapstructure:"scrape_pages_per_workbook"`
	ScrapeLastPage         int           `mapstructure:"scrape_last_page"`
	ScrapeMaxBatches       int           `mapstructure:"scrape_max_batches"`
	ScrapePageDelay        time.Duration `mapstructure:"scrape_page_delay"`
	ScrapeBatchDelay       time.Duration `mapstructure:"scrape_batch_delay"`
	ScrapeFailureDelay     time.Duration `mapstructure:"scrape_failure_delay"`
	ScrapeInterval         time.Duration `mapstructure:"scrape_interval"`
	ScrapeLeaseSettle      time.Duration `mapstructure:"scrape_lease_settle"`
	ScrapeNotifyTo         string        `mapstructure:"scrape_notify_to"`
	ScrapeWorkbookDir      string        `mapstructure:"scrape_workbook_dir"`
	ScrapeVehicleTable     string        `mapstructure:"scrape_vehicle_table"`
	ScrapeQueueName        string        `mapstructure:"scrape_queue_name"`
	// Services
	AmazonS3AccessKeyID     string        `mapstructure:"amazon_s3_access_key_id"`
	AmazonS3AccessKeySecret string        `mapstructure:"amazon_s3_access_key_secret"`
	AmazonS3Bucket          string        `mapstructure:"amazon_s3_bucket"`
	AmazonS3Endpoint        string        `mapstructure:"amazon_s3_endpoint"`
	AmazonS3Prefix          string        `mapstructure:"amazon_s3_prefix"`
	AmazonS3Region          string        `mapstructure:"amazon_s3_region"`
	CacheDir                string        `mapstructure:"cache_dir"`
	LocalStorageDir         string        `mapstructure:"local_storage_dir"`
	MySQLHost               string        `mapstructure:"mysql_host"`
	MySQLName               string        `mapstructure:"mysql_name"`
	MySQLPass               string        `mapstructure:"mysql_pass"`
	MySQLPort               int           `mapstructure:"mysql_port"`
	MySQLUser               string        `mapstructure:"mysql_user"`
	MySQLCharset            string        `mapstructure:"mysql_charset"`
	PostgresHost            string        `mapstructure:"postgres_host"`
	PostgresName            string        `mapstructure:"postgres_name"`
	PostgresPass            string        `mapstructure:"postgres_pass"`
	PostgresPort            int           `mapstructure:"postgres_port"`
	PostgresUser            string        `mapstructure:"postgres_user"`
	RabbitMQHost            string        `mapstructure:"rabbitmq_host"`
	RabbitMQPass            string        `mapstructure:"rabbitmq_pass"`
	RabbitMQPort            int           `mapstructure:"rabbitmq_port"`
	RabbitMQUser            string        `mapstructure:"rabbitmq_user"`
	RedisHost               string        `mapstructure:"redis_host"`
	RedisNumber             int           `mapstructure:"redis_number"`
	RedisPass               string        `mapstructure:"redis_pass"`
	RedisPort               int           `mapstructure:"redis_port"`
	RedisUser               string        `mapstructure:"redis_user"`
	SchemaCacheDir          string        `mapstructure:"schema_cache_dir"`
	SchemaTTL               time.Duration `mapstructure:"schema_ttl"`
	SMTPHost                string        `mapstructure:"smtp_host"`
	SMTPName                string        `mapstructure:"smtp_name"`
	SMTPPass                string        `mapstructure:"smtp_pass"`
	SMTPPort                int           `mapstructure:"smtp_port"`
	SMTPUser                string        `mapstructure:"smtp_user"`
	SQLitePath              string        `mapstructure:"sqlite_path"`
}

func NewConfig() AppConfig {
	return AppConfig{
		AppLogLevel:            "info",
		AppDriverCache:         "memory",
		AppDriverDatabase:      "mysql",
		AppDriverMailer:        "none",
		AppDriverSchemaCache:   "file",
		AppDriverStorage:       "none",
		AppDriverQueue:         "none",
		SiteBaseURL:            "http://www.loji.com",
		SiteSearchPath:         "/vehicleteam/search",
		SiteReferer:            "http://www.loji.com/logistics/search",
		SiteUserAgent:          "Mozilla/5.0 (Windows NT 6.3) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/51.0.2704.106 Safari/537.36",
		SiteCookieFile:         "demo/luoji_cookie.json",
		SiteTimeout:            30 * time.Second,
		ScrapeStartPage:        1,
		ScrapePagesPerWorkbook: 200,
		ScrapeLastPage:         0,
		ScrapeMaxBatches:       19,
		ScrapePageDelay:        500 * time.Millisecond,
		ScrapeBatchDelay:       2 * time.Second,
		ScrapeFailureDelay:     10 * time.Second,
		ScrapeInterval:         6 * time.Hour,
		ScrapeLeaseSettle:      3 * time.Second,
		ScrapeWorkbookDir:      "Excel",
		ScrapeVehicleTable:     "vehicle",
		ScrapeQueueName:        "hermes.vehicles",
		CacheDir:               filepath.Join(os.TempDir(), "hermes-cache"),
		LocalStorageDir:        "published",
		MySQLCharset:           "utf8mb4",
		MySQLHost:              "127.0.0.1",
		MySQLPort:              3306,
		PostgresHost:           "127.0.0.1",
		PostgresPort:           5432,
		RabbitMQHost:           "127.0.0.1",
		RabbitMQPort:           5672,
		RedisHost:              "127.0.0.1",
		RedisPort:              6379,
		SchemaCacheDir:         filepath.Join(os.TempDir(), "hermes-schema"),
		SchemaTTL:              database.DefaultSchemaTTL,
		SMTPHost:               "127.0.0.1",
		SMTPPort:               1025,
		SQLitePath:             "hermes.sqlite",
	}
}

// LoadConfig layers NewConfig, an optional config file, .env and .env.local,
// and the environment, in increasing priority. An empty configFile looks for
// hermes.{yaml,json,toml} in the working directory.
func LoadConfig(configFile string) (AppConfig, error) {
	if err := loadDotEnv(); err != nil {
		return AppConfig{}, err
	}

	v := viper.New()

	defaults := NewConfig()
	defaultsValue := reflect.ValueOf(defaults)
	for i := range defaultsValue.NumField() {
		key := defaultsValue.Type().Field(i).Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		v.SetDefault(key, defaultsValue.Field(i).Interface())
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("hermes")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("reading config: %w", err)
		}
	}

	config := AppConfig{}
	if err := v.Unmarshal(&config); err != nil {
		return AppConfig{}, fmt.Errorf("decoding config: %w", err)
	}

	return config, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}

	if err := godotenv.Overload(".env.local"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env.local: %w", err)
	}

	return nil
}

func (config AppConfig) Logger() *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(config.AppLogLevel)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func (config AppConfig) Site() SiteConfig {
	return SiteConfig{
		BaseURL:    config.SiteBaseURL,
		SearchPath: config.SiteSearchPath,
		Referer:    config.SiteReferer,
		UserAgent:  config.SiteUserAgent,
		CookieFile: config.SiteCookieFile,
		CookieKey:  config.siteCookieKey(),
		Timeout:    config.SiteTimeout,
	}
}

func (config AppConfig) siteCookieKey() string {
	if !config.SiteCookieSealed {
		return ""
	}

	return config.AppKey
}

// Vault seals and opens secrets with APP_KEY.
func (config AppConfig) Vault() (vault.Vault, error) {
	return vault.New([]byte(config.AppKey))
}

func (config AppConfig) Scrape() ScrapeConfig {
	return ScrapeConfig{
		StartPage:        config.ScrapeStartPage,
		PagesPerWorkbook: config.ScrapePagesPerWorkbook,
		LastPage:         config.ScrapeLastPage,
		MaxBatches:       config.ScrapeMaxBatches,
		PageDelay:        config.ScrapePageDelay,
		BatchDelay:       config.ScrapeBatchDelay,
		FailureDelay:     config.ScrapeFailureDelay,
		WorkbookDir:      config.ScrapeWorkbookDir,
	}
}

func (config AppConfig) cacheDriver(name string, directory string, prefix string) (cache.Driver, error) {
	switch name {
	case "file":
		return cache.NewDriverFile(directory)
	case "memory":
		return cache.NewDriverMemory()
	case "redis":
		return cache.NewDriverRedis(cache.DriverRedisConfig{
			Host:   config.RedisHost,
			Port:   config.RedisPort,
			User:   config.RedisUser,
			Pass:   config.RedisPass,
			Number: config.RedisNumber,
			Prefix: prefix,
		})
	}

	return nil, fmt.Errorf("invalid cache driver: %s", name)
}

// Cache holds the scrape schedule lease. Use redis when several hosts
// watch the same site.
func (config AppConfig) Cache() (cache.Driver, error) {
	return config.cacheDriver(config.AppDriverCache, config.CacheDir, "hermes:")
}

func (config AppConfig) SchemaCache() (cache.Driver, error) {
	driver, err := config.cacheDriver(config.AppDriverSchemaCache, config.SchemaCacheDir, "hermes:schema:")
	if err != nil {
		return nil, fmt.Errorf("schema cache: %w", err)
	}

	return driver, nil
}

// Mailer returns nil when scrape summaries are not mailed.
func (config AppConfig) Mailer() (mailer.Driver, error) {
	switch config.AppDriverMailer {
	case "none", "":
		return nil, nil
	case "smtp":
		return mailer.NewDriverSMTP(mailer.DriverSMTPConfig{
			Host: config.SMTPHost,
			Port: config.SMTPPort,
			User: config.SMTPUser,
			Pass: config.SMTPPass,
			Name: config.SMTPName,
		})
	}

	return nil, fmt.Errorf("invalid mailer driver: %s", config.AppDriverMailer)
}

// Database builds the service with the schema cache and logger wired in.
func (config AppConfig) Database(configFuncs ...database.ServiceConfigFunc) (*database.Service, error) {
	schemaCache, err := config.SchemaCache()
	if err != nil {
		return nil, err
	}

	configFuncs = append([]database.ServiceConfigFunc{database.WithSchemaCache(schemaCache)}, configFuncs...)

	switch config.AppDriverDatabase {
	case "sqlite":
		return database.New(
			database.NewDriverSQLite(config.SQLitePath),
			configFuncs...,
		)
	case "postgres":
		return database.New(
			database.NewDriverPostgres(database.DriverPostgresConfig{
				Host: config.PostgresHost,
				Port: config.PostgresPort,
				User: config.PostgresUser,
				Pass: config.PostgresPass,
				Name: config.PostgresName,
			}),
			configFuncs...,
		)
	case "mysql":
		return database.New(
			database.NewDriverMySQL(database.DriverMySQLConfig{
				Host:    config.MySQLHost,
				Port:    config.MySQLPort,
				User:    config.MySQLUser,
				Pass:    config.MySQLPass,
				Name:    config.MySQLName,
				Charset: config.MySQLCharset,
			}),
			configFuncs...,
		)
	}

	return nil, fmt.Errorf("invalid database driver: %s", config.AppDriverDatabase)
}

// Storage returns nil when publishing is disabled.
func (config AppConfig) Storage() (storage.Driver, error) {
	switch config.AppDriverStorage {
	case "none", "":
		return nil, nil
	case "local":
		return storage.NewDriverLocal(config.LocalStorageDir)
	case "s3":
		return storage.NewDriverS3(storage.S3Config{
			Endpoint:        config.AmazonS3Endpoint,
			Region:          config.AmazonS3Region,
			Bucket:          config.AmazonS3Bucket,
			Prefix:          config.AmazonS3Prefix,
			AccessKeyID:     config.AmazonS3AccessKeyID,
			AccessKeySecret: config.AmazonS3AccessKeySecret,
		})
	}

	return nil, fmt.Errorf("invalid storage driver: %s", config.AppDriverStorage)
}

// Queue returns nil when fan-out is disabled.
func (config AppConfig) Queue() (queue.Driver, error) {
	switch config.AppDriverQueue {
	case "none", "":
		return nil, nil
	case "memory":
		return queue.NewDriverMemory()
	case "rabbitmq":
		return queue.NewDriverRabbitMQ(queue.DriverRabbitMQConfig{
			Host: config.RabbitMQHost,
			Port: config.RabbitMQPort,
			User: config.RabbitMQUser,
			Pass: config.RabbitMQPass,
		})
	}

	return nil, fmt.Errorf("invalid queue driver: %s", config.AppDriverQueue)
}
