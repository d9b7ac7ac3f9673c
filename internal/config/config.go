package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config stores service settings.
type Config struct {
	Port      int       `koanf:"port"`
	Storage   string    `koanf:"storage"`
	DB        DB        `koanf:"db"`
	Dispatch  Dispatch  `koanf:"dispatch"`
	Kafka     Kafka     `koanf:"kafka"`
	Notify    Notify    `koanf:"notify"`
	Influx    Influx    `koanf:"influx"`
	RateLimit RateLimit `koanf:"rate_limit"`
	Pprof     Pprof     `koanf:"pprof"`
	Log       Log       `koanf:"log"`
}

// DB stores Postgres connection settings.
type DB struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Pass     string `koanf:"password"`
	Name     string `koanf:"name"`
	MaxConns int32  `koanf:"max_conns"`
}

// DSN returns a postgres:// connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Pass),
		Host:   net.JoinHostPort(d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	if d.MaxConns > 0 {
		q.Set("pool_max_conns", fmt.Sprint(d.MaxConns))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Dispatch tunes the dispatch coordinator and its background loops.
type Dispatch struct {
	SearchRadiusKm   float64       `koanf:"search_radius_km"`
	PollInterval     time.Duration `koanf:"poll_interval"`
	ReassignDelay    time.Duration `koanf:"reassign_delay"`
	AcceptTimeout    time.Duration `koanf:"accept_timeout"`
	MaxAttempts      int           `koanf:"max_attempts"`
	SweepInterval    time.Duration `koanf:"sweep_interval"`
	SweepBatch       int           `koanf:"sweep_batch"`
	OperationTimeout time.Duration `koanf:"operation_timeout"`
	AverageSpeedKmh  float64       `koanf:"average_speed_kmh"`
}

// Kafka stores broker and topic settings. Empty Brokers disables Kafka.
type Kafka struct {
	Brokers      []string `koanf:"brokers"`
	GroupID      string   `koanf:"group_id"`
	OrdersTopic  string   `koanf:"orders_topic"`
	PayoutsTopic string   `koanf:"payouts_topic"`
}

// Notify configures the driver notification transports. Empty URLs disable a transport.
type Notify struct {
	AMQPURL         string        `koanf:"amqp_url"`
	AMQPExchange    string        `koanf:"amqp_exchange"`
	MQTTBroker      string        `koanf:"mqtt_broker"`
	MQTTClientID    string        `koanf:"mqtt_client_id"`
	MQTTUsername    string        `koanf:"mqtt_username"`
	MQTTPassword    string        `koanf:"mqtt_password"`
	MQTTTopicPrefix string        `koanf:"mqtt_topic_prefix"`
	MQTTQoS         int           `koanf:"mqtt_qos"`
	WebSocket       bool          `koanf:"websocket"`
	RetryAttempts   int           `koanf:"retry_attempts"`
	RetryBaseDelay  time.Duration `koanf:"retry_base_delay"`
	RetryMaxDelay   time.Duration `koanf:"retry_max_delay"`
}

// Influx stores the location telemetry endpoint. Empty URL disables it.
type Influx struct {
	URL    string `koanf:"url"`
	Token  string `koanf:"token"`
	Org    string `koanf:"org"`
	Bucket string `koanf:"bucket"`
}

// RateLimit stores per-client token bucket settings.
type RateLimit struct {
	Enabled    bool          `koanf:"enabled"`
	Rate       float64       `koanf:"rate"`
	Burst      int           `koanf:"burst"`
	TTL        time.Duration `koanf:"ttl"`
	MaxBuckets int           `koanf:"max_buckets"`
}

// Pprof configures the profiling listener. Empty Addr disables it.
type Pprof struct {
	Addr string `koanf:"addr"`
	User string `koanf:"user"`
	Pass string `koanf:"password"`
}

// Log stores logger settings.
type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads configuration in order: .env (if present) → CONFIG_FILE yaml → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := parseFlags(&cfg, os.Args[1:]); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("CONFIG_FILE %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("CONFIG_FILE %s: decode: %w", path, err)
	}
	return nil
}

func parseFlags(cfg *Config, args []string) error {
	fs := pflag.CommandLine
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "storage backend: postgres or memory")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format: json or console")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}

// Validate checks ranges that the service cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("invalid STORAGE %q: want postgres or memory", c.Storage)
	}
	d := c.Dispatch
	if d.SearchRadiusKm <= 0 {
		return fmt.Errorf("DISPATCH_SEARCH_RADIUS_KM must be positive, got %v", d.SearchRadiusKm)
	}
	if d.MaxAttempts <= 0 {
		return fmt.Errorf("DISPATCH_MAX_ATTEMPTS must be positive, got %d", d.MaxAttempts)
	}
	for name, v := range map[string]time.Duration{
		"DISPATCH_POLL_INTERVAL":     d.PollInterval,
		"DISPATCH_REASSIGN_DELAY":    d.ReassignDelay,
		"DISPATCH_ACCEPT_TIMEOUT":    d.AcceptTimeout,
		"DISPATCH_SWEEP_INTERVAL":    d.SweepInterval,
		"DISPATCH_OPERATION_TIMEOUT": d.OperationTimeout,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, v)
		}
	}
	if c.Notify.MQTTQoS < 0 || c.Notify.MQTTQoS > 2 {
		return fmt.Errorf("NOTIFY_MQTT_QOS must be 0, 1 or 2, got %d", c.Notify.MQTTQoS)
	}
	return nil
}
