package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Application struct {
	Name        string
	Environment string
	Port        int
	Timeout     time.Duration
	Debug       bool
	BaseURL     string
}

type CORS struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	MaxAge           int
	AllowCredentials bool
}

type Postgres struct {
	DSN string
}

type Redis struct {
	Address  string
	Password string
	DB       int
}

type Kafka struct {
	BootstrapServers string
}

type Xendit struct {
	BaseURL            string
	SecretKey          string
	CallbackToken      string
	SuccessRedirectURL string
	FailureRedirectURL string
}

type Webhook struct {
	OrderURL    string
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

type Order struct {
	StrictItems bool
	Currency    string
}

type Jaeger struct {
	Endpoint string
}

type Session struct {
	TTL time.Duration
}

type Config struct {
	Application Application
	CORS        CORS
	Postgres    Postgres
	Redis       Redis
	Kafka       Kafka
	Xendit      Xendit
	Webhook     Webhook
	Order       Order
	Jaeger      Jaeger
	Session     Session
}

var (
	once sync.Once
	c    *Config
)

func Get() *Config {
	once.Do(func() {
		v := viper.New()
		v.SetEnvPrefix("CATALOG_HOTEL")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		v.SetDefault("application.name", "catalog-hotel")
		v.SetDefault("application.environment", "development")
		v.SetDefault("application.port", 8080)
		v.SetDefault("application.timeout", "30s")
		v.SetDefault("application.debug", false)
		v.SetDefault("application.baseurl", "http://localhost:8080")

		v.SetDefault("cors.allowedorigins", []string{"*"})
		v.SetDefault("cors.allowedmethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
		v.SetDefault("cors.allowedheaders", []string{"Content-Type", "Authorization", "X-Stay-Token"})
		v.SetDefault("cors.exposedheaders", []string{})
		v.SetDefault("cors.maxage", 3600)
		v.SetDefault("cors.allowcredentials", true)

		v.SetDefault("redis.address", "localhost:6379")
		v.SetDefault("redis.db", 0)

		v.SetDefault("kafka.bootstrapservers", "localhost:9092")

		v.SetDefault("xendit.baseurl", "https://api.xendit.co")

		v.SetDefault("webhook.maxattempts", 3)
		v.SetDefault("webhook.retrydelay", "2s")
		v.SetDefault("webhook.timeout", "10s")

		v.SetDefault("order.strictitems", false)
		v.SetDefault("order.currency", "IDR")

		v.SetDefault("jaeger.endpoint", "http://localhost:14268/api/traces")

		v.SetDefault("session.ttl", "30m")

		c = &Config{
			Application: Application{
				Name:        v.GetString("application.name"),
				Environment: v.GetString("application.environment"),
				Port:        v.GetInt("application.port"),
				Timeout:     v.GetDuration("application.timeout"),
				Debug:       v.GetBool("application.debug"),
				BaseURL:     v.GetString("application.baseurl"),
			},
			CORS: CORS{
				AllowedOrigins:   v.GetStringSlice("cors.allowedorigins"),
				AllowedMethods:   v.GetStringSlice("cors.allowedmethods"),
				AllowedHeaders:   v.GetStringSlice("cors.allowedheaders"),
				ExposedHeaders:   v.GetStringSlice("cors.exposedheaders"),
				MaxAge:           v.GetInt("cors.maxage"),
				AllowCredentials: v.GetBool("cors.allowcredentials"),
			},
			Postgres: Postgres{
				DSN: v.GetString("postgres.dsn"),
			},
			Redis: Redis{
				Address:  v.GetString("redis.address"),
				Password: v.GetString("redis.password"),
				DB:       v.GetInt("redis.db"),
			},
			Kafka: Kafka{
				BootstrapServers: v.GetString("kafka.bootstrapservers"),
			},
			Xendit: Xendit{
				BaseURL:            v.GetString("xendit.baseurl"),
				SecretKey:          v.GetString("xendit.secretkey"),
				CallbackToken:      v.GetString("xendit.callbacktoken"),
				SuccessRedirectURL: v.GetString("xendit.successredirecturl"),
				FailureRedirectURL: v.GetString("xendit.failureredirecturl"),
			},
			Webhook: Webhook{
				OrderURL:    v.GetString("webhook.orderurl"),
				MaxAttempts: v.GetInt("webhook.maxattempts"),
				RetryDelay:  v.GetDuration("webhook.retrydelay"),
				Timeout:     v.GetDuration("webhook.timeout"),
			},
			Order: Order{
				StrictItems: v.GetBool("order.strictitems"),
				Currency:    v.GetString("order.currency"),
			},
			Jaeger: Jaeger{
				Endpoint: v.GetString("jaeger.endpoint"),
			},
			Session: Session{
				TTL: v.GetDuration("session.ttl"),
			},
		}
	})

	return c
}

// Validate checks the keys the service cannot run without. Missing keys are
// reported all at once so an operator fixes them in a single pass.
func (c *Config) Validate() error {
	var missing []string

	if c.Postgres.DSN == "" {
		missing = append(missing, "CATALOG_HOTEL_POSTGRES_DSN")
	}
	if c.Xendit.SecretKey == "" {
		missing = append(missing, "CATALOG_HOTEL_XENDIT_SECRETKEY")
	}
	if c.Xendit.CallbackToken == "" {
		missing = append(missing, "CATALOG_HOTEL_XENDIT_CALLBACKTOKEN")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}
