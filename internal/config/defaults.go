package config

import "time"

const defaultPort = 8080

const defaultStorage = StoragePostgres

var defaultDB = DB{
	Host:     "127.0.0.1",
	Port:     "5432",
	User:     "myuser",
	Pass:     "mypassword",
	Name:     "test_db",
	MaxConns: 10,
}

var defaultDispatch = Dispatch{
	SearchRadiusKm:   5,
	PollInterval:     30 * time.Second,
	ReassignDelay:    5 * time.Second,
	AcceptTimeout:    30 * time.Second,
	MaxAttempts:      10,
	SweepInterval:    time.Second,
	SweepBatch:       100,
	OperationTimeout: 3 * time.Second,
	AverageSpeedKmh:  20,
}

var defaultKafka = Kafka{
	GroupID:      "service-dispatch",
	OrdersTopic:  "orders",
	PayoutsTopic: "payouts",
}

var defaultNotify = Notify{
	AMQPExchange:    "dispatch.notifications",
	MQTTClientID:    "service-dispatch",
	MQTTTopicPrefix: "dispatch",
	MQTTQoS:         1,
	WebSocket:       true,
	RetryAttempts:   3,
	RetryBaseDelay:  100 * time.Millisecond,
	RetryMaxDelay:   2 * time.Second,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       5,
	Burst:      10,
	TTL:        time.Minute,
	MaxBuckets: 10000,
}

var defaultLog = Log{
	Level:  "info",
	Format: "json",
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultDispatch returns the default dispatch tuning.
func DefaultDispatch() Dispatch {
	return defaultDispatch
}

// DefaultKafka returns the default kafka settings. Brokers are empty, so Kafka is off.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultNotify returns the default notification settings.
func DefaultNotify() Notify {
	return defaultNotify
}

// DefaultRateLimit returns the default rate limit settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

// DefaultLog returns the default log settings.
func DefaultLog() Log {
	return defaultLog
}

// Default returns a full configuration with every default applied.
func Default() Config {
	return Config{
		Port:      defaultPort,
		Storage:   defaultStorage,
		DB:        DefaultDB(),
		Dispatch:  DefaultDispatch(),
		Kafka:     DefaultKafka(),
		Notify:    DefaultNotify(),
		RateLimit: DefaultRateLimit(),
		Log:       DefaultLog(),
	}
}
