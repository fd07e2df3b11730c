// Package config provides the structures and loader for the application
// configuration.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the top-level application configuration.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	RabbitMQConnection      string `yaml:"rabbitmq_connection"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Billing                 `yaml:"billing"`
	Instagram               `yaml:"instagram"`
	SMTP                    `yaml:"smtp"`
	TrialDays               int `yaml:"trial_days" env-default:"14"`
}

// HTTPServer holds the HTTP listener settings.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection holds the redis client settings.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken holds the session-token settings.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Billing holds the billing-provider credentials.
type Billing struct {
	BillingAPIURL        string        `yaml:"api_url" env-default:"https://api.stripe.com/v1"`
	BillingSecretKey     string        `yaml:"secret_key" env:"BILLING_SECRET_KEY"`
	BillingWebhookSecret string        `yaml:"webhook_secret" env:"BILLING_WEBHOOK_SECRET"`
	BillingPriceID       string        `yaml:"price_id"`
	BillingTimeout       time.Duration `yaml:"timeout" env-default:"10s"`
}

// Instagram holds the Graph API credentials and webhook verification
// token.
type Instagram struct {
	GraphAPIURL      string        `yaml:"graph_api_url" env-default:"https://graph.instagram.com"`
	IGAppID          string        `yaml:"app_id"`
	IGAppSecret      string        `yaml:"app_secret" env:"IG_APP_SECRET"`
	IGVerifyToken    string        `yaml:"verify_token" env:"IG_VERIFY_TOKEN"`
	IGRequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
}

// SMTP holds the outgoing-mail settings for the notifier.
type SMTP struct {
	SMTPHost string `yaml:"host"`
	SMTPPort string `yaml:"port"`
	SMTPUser string `yaml:"user"`
	SMTPPass string `yaml:"pass" env:"SMTP_PASS"`
}

// MustLoad reads the configuration from the file named by CONFIG_PATH
// and terminates the process when it cannot.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
