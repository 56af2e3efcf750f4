package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type PaymentConfig struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	PaymentDB  `yaml:"payment_db"`
	LogConfig  `yaml:"log_config"`
	Kafka      `yaml:"kafka"`
	Webhook    `yaml:"webhook"`
	Admission  `yaml:"admission"`
	Orders     `yaml:"orders"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type PaymentDB struct {
	Dsn            string `yaml:"dsn" env:"PAYMENT_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
}

type Kafka struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"payment-events"`
}

type Webhook struct {
	// AllowUnverified disables signature verification. It is honored only
	// when Env is local or dev; production startup fails if a secret is
	// missing regardless of this flag.
	AllowUnverified bool          `yaml:"allow_unverified" env-default:"false"`
	ProcessTimeout  time.Duration `yaml:"process_timeout" env-default:"5s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env-default:"65536"`
}

type Admission struct {
	Auth            ClassLimit `yaml:"auth"`
	WebhookClass    ClassLimit `yaml:"webhook"`
	PaymentMutation ClassLimit `yaml:"payment_mutation"`
	General         ClassLimit `yaml:"general"`
}

type ClassLimit struct {
	Capacity int           `yaml:"capacity" env-default:"60"`
	Window   time.Duration `yaml:"window" env-default:"1m"`
}

type Orders struct {
	PendingTTL time.Duration `yaml:"pending_ttl" env-default:"30m"`
}

func MustLoad() *PaymentConfig {
	configPath := os.Getenv("PAYMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg PaymentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}

func (c *PaymentConfig) Production() bool {
	return c.Env != "local" && c.Env != "dev"
}
