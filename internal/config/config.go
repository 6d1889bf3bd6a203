package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Debug     bool      `yaml:"debug" env:"DEBUG"`
	Server    Server    `yaml:"server"`
	DB        DB        `yaml:"db"`
	Redis     Redis     `yaml:"redis"`
	Auth      Auth      `yaml:"auth"`
	Limiter   Limiter   `yaml:"limiter"`
	Tasks     Tasks     `yaml:"tasks"`
	Reconcile Reconcile `yaml:"reconcile"`
	Compat    Compat    `yaml:"compat"`
	CORS      CORS      `yaml:"cors"`
}

type Server struct {
	Port string `yaml:"port" env:"PORT" env-default:"8000"`
	Host string `yaml:"host" env:"HOST" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type DB struct {
	Driver          string        `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Dsn             string        `yaml:"dsn" env:"DB_DSN"`
	MaxConns        int           `yaml:"max_conns" env-default:"25"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"10m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env-default:"5s"`
	// TitleCollation is applied to ORDER BY title. Empty uses the database default.
	TitleCollation string `yaml:"title_collation" env:"DB_TITLE_COLLATION"`
	SkipMigrations bool   `yaml:"skip_migrations" env:"DB_SKIP_MIGRATIONS"`
}

type Redis struct {
	Enabled      bool          `yaml:"enabled" env:"REDIS_ENABLED"`
	Addr         string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db" env-default:"0"`
	TTL          time.Duration `yaml:"ttl" env-default:"10m"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"500ms"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"500ms"`
}

type Auth struct {
	PrivateKeyPath string        `yaml:"private_key_path" env:"AUTH_PRIVATE_KEY_PATH" env-required:"true"`
	PublicKeyPath  string        `yaml:"public_key_path" env:"AUTH_PUBLIC_KEY_PATH"`
	TokenTTL       time.Duration `yaml:"token_ttl" env-default:"24h"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled"`
	Rps     float64 `yaml:"rps" env-default:"20"`
	Burst   int     `yaml:"burst" env-default:"5"`
}

type Tasks struct {
	Workers   int `yaml:"workers" env-default:"3"`
	QueueSize int `yaml:"queue_size" env-default:"100"`
}

type Reconcile struct {
	OnStartup bool `yaml:"on_startup" env:"RECONCILE_ON_STARTUP"`
	// Interval between periodic runs. Zero disables them.
	Interval time.Duration `yaml:"interval" env-default:"0s"`
}

type Compat struct {
	// NotFoundAsBadRequest answers missing entities with 400 instead of 404.
	NotFoundAsBadRequest bool `yaml:"not_found_as_bad_request" env:"COMPAT_NOT_FOUND_AS_BAD_REQUEST"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// MustLoad reads .env (if any) into the environment, then the YAML file at
// configPath with environment overrides. An empty configPath falls back to CONFIG_PATH.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		return nil, errors.New("config path is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s not found", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.Dsn == "" {
			return errors.New("db.dsn is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown db.driver %q", c.DB.Driver)
	}
	if c.Tasks.Workers < 1 {
		return errors.New("tasks.workers must be positive")
	}
	return nil
}
