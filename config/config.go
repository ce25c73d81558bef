package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Logger    LoggerConfig    `envconfig:"LOGGER"`
	Postgres  PostgresConfig  `envconfig:"POSTGRES"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Kafka     KafkaConfig     `envconfig:"KAFKA"`
	Inventory InventoryConfig `envconfig:"INVENTORY"`
	Route     RouteConfig     `envconfig:"ROUTE"`
}

type ServerConfig struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr string `envconfig:"GRPC_ADDR" default:":8082"`
}

type LoggerConfig struct {
	Level             string `envconfig:"LEVEL" default:"debug"`
	Encoding          string `envconfig:"ENCODING" default:"console"`
	DisableCaller     bool   `envconfig:"DISABLE_CALLER" default:"false"`
	DisableStacktrace bool   `envconfig:"DISABLE_STACKTRACE" default:"true"`
}

type PostgresConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            string        `envconfig:"PORT" default:"5432"`
	User            string        `envconfig:"USER" default:"blueice"`
	Password        string        `envconfig:"PASSWORD" default:"blueice"`
	DBName          string        `envconfig:"DB" default:"blueice"`
	SSLMode         string        `envconfig:"SSLMODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"5m"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME" default:"1m"`
}

// RedisConfig leaves Addr empty to run without the stats cache and route lock.
type RedisConfig struct {
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// KafkaConfig leaves Brokers empty to run without the order listener and movement events.
type KafkaConfig struct {
	Brokers        []string `envconfig:"BROKERS" default:"localhost:9092"`
	OrdersTopic    string   `envconfig:"ORDERS_TOPIC" default:"orders.events"`
	MovementsTopic string   `envconfig:"MOVEMENTS_TOPIC" default:"inventory.movements"`
	GroupID        string   `envconfig:"GROUP_ID" default:"blueice-inventory"`
}

type InventoryConfig struct {
	MaxRetries    int           `envconfig:"MAX_RETRIES" default:"3"`
	RetryBackoff  time.Duration `envconfig:"RETRY_BACKOFF" default:"50ms"`
	StatsCacheTTL time.Duration `envconfig:"STATS_CACHE_TTL" default:"30s"`
	AdminRoles    []string      `envconfig:"ADMIN_ROLES" default:"ADMIN,SUPER_ADMIN"`
}

type RouteConfig struct {
	DefaultLat      float64 `envconfig:"DEFAULT_LAT" default:"31.5204"`
	DefaultLng      float64 `envconfig:"DEFAULT_LNG" default:"74.3587"`
	UnlocatedPolicy string  `envconfig:"UNLOCATED_POLICY" default:"keep"`
}

func LoadEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}
