package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	S3       S3Config
	Auth     AuthConfig
	Proctor  ProctorConfig
}

type ServerConfig struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`
	GRPCPort string `env:"GRPC_PORT" envDefault:"50055"`
	// Where the client is sent after a blocked or disqualified session.
	HomePath string `env:"HOME_PATH" envDefault:"/"`
}

type DBConfig struct {
	Driver   string `env:"DB_DRIVER" envDefault:"postgres"`
	Host     string `env:"DB_HOST" envDefault:"postgres"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"proctor"`
	Password string `env:"DB_PASSWORD" envDefault:"proctor_password"`
	DBName   string `env:"DB_NAME" envDefault:"proctor"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	// Path is only used by the sqlite driver.
	Path string `env:"DB_PATH" envDefault:"proctor.db"`
}

type RedisConfig struct {
	Host     string        `env:"REDIS_HOST" envDefault:"redis"`
	Port     string        `env:"REDIS_PORT" envDefault:"6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"PROGRESS_CACHE_TTL" envDefault:"24h"`
}

type RabbitMQConfig struct {
	Enabled  bool   `env:"RABBITMQ_ENABLED" envDefault:"true"`
	Host     string `env:"RABBITMQ_HOST" envDefault:"rabbitmq"`
	Port     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	User     string `env:"RABBITMQ_USER" envDefault:"guest"`
	Password string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
}

type S3Config struct {
	Enabled   bool   `env:"S3_ENABLED" envDefault:"true"`
	Endpoint  string `env:"S3_ENDPOINT" envDefault:"minio:9000"`
	AccessKey string `env:"S3_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string `env:"S3_SECRET_KEY" envDefault:"minioadmin"`
	UseSSL    bool   `env:"S3_USE_SSL" envDefault:"false"`
	Bucket    string `env:"S3_BUCKET" envDefault:"integrity-reports"`
}

type AuthConfig struct {
	JWTSecret          string `env:"JWT_SECRET" envDefault:"change-me"`
	TrustGatewayHeader bool   `env:"TRUST_GATEWAY_HEADER" envDefault:"false"`
}

type ProctorConfig struct {
	TabSwitchLimit      int           `env:"TAB_SWITCH_LIMIT" envDefault:"1"`
	DevToolsLimit       int           `env:"DEVTOOLS_LIMIT" envDefault:"2"`
	MultiFaceSeconds    int           `env:"MULTI_FACE_SECONDS" envDefault:"10"`
	NoFaceSeconds       int           `env:"NO_FACE_SECONDS" envDefault:"15"`
	RedirectDelay       time.Duration `env:"REDIRECT_DELAY" envDefault:"8s"`
	CameraPromptTimeout time.Duration `env:"CAMERA_PROMPT_TIMEOUT" envDefault:"0s"`
	CameraWidth         int           `env:"CAMERA_WIDTH" envDefault:"640"`
	CameraHeight        int           `env:"CAMERA_HEIGHT" envDefault:"480"`
	FaceProvider        string        `env:"FACE_PROVIDER" envDefault:"simulated"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DB.Driver)
	}
	switch c.Proctor.FaceProvider {
	case "simulated", "reported":
	default:
		return fmt.Errorf("unsupported FACE_PROVIDER %q (want simulated or reported)", c.Proctor.FaceProvider)
	}
	if c.Proctor.TabSwitchLimit < 1 || c.Proctor.DevToolsLimit < 1 {
		return fmt.Errorf("violation limits must be at least 1")
	}
	if c.Proctor.MultiFaceSeconds < 1 || c.Proctor.NoFaceSeconds < 1 {
		return fmt.Errorf("face anomaly windows must be at least 1 second")
	}
	return nil
}

func (c *DBConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
