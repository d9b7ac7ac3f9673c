package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func envString(name string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = n
	return nil
}

func envInt32(name string, dst *int32) error {
	n := int(*dst)
	if err := envInt(name, &n); err != nil {
		return err
	}
	*dst = int32(n)
	return nil
}

func envFloat(name string, dst *float64) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = f
	return nil
}

func envBool(name string, dst *bool) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = b
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = d
	return nil
}

func envList(name string, dst *[]string) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return
	}
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func applyEnv(cfg *Config) error {
	envString("STORAGE", &cfg.Storage)

	envString("POSTGRES_HOST", &cfg.DB.Host)
	envString("POSTGRES_PORT", &cfg.DB.Port)
	envString("POSTGRES_USER", &cfg.DB.User)
	envString("POSTGRES_PASSWORD", &cfg.DB.Pass)
	envString("POSTGRES_DB", &cfg.DB.Name)
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		return fmt.Errorf("invalid POSTGRES_PORT %q: %w", cfg.DB.Port, err)
	}

	envList("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	envString("KAFKA_GROUP_ID", &cfg.Kafka.GroupID)
	envString("KAFKA_ORDERS_TOPIC", &cfg.Kafka.OrdersTopic)
	envString("KAFKA_PAYOUTS_TOPIC", &cfg.Kafka.PayoutsTopic)

	envString("NOTIFY_AMQP_URL", &cfg.Notify.AMQPURL)
	envString("NOTIFY_AMQP_EXCHANGE", &cfg.Notify.AMQPExchange)
	envString("NOTIFY_MQTT_BROKER", &cfg.Notify.MQTTBroker)
	envString("NOTIFY_MQTT_CLIENT_ID", &cfg.Notify.MQTTClientID)
	envString("NOTIFY_MQTT_USERNAME", &cfg.Notify.MQTTUsername)
	envString("NOTIFY_MQTT_PASSWORD", &cfg.Notify.MQTTPassword)
	envString("NOTIFY_MQTT_TOPIC_PREFIX", &cfg.Notify.MQTTTopicPrefix)

	envString("INFLUX_URL", &cfg.Influx.URL)
	envString("INFLUX_TOKEN", &cfg.Influx.Token)
	envString("INFLUX_ORG", &cfg.Influx.Org)
	envString("INFLUX_BUCKET", &cfg.Influx.Bucket)

	envString("PPROF_ADDR", &cfg.Pprof.Addr)
	envString("PPROF_USER", &cfg.Pprof.User)
	envString("PPROF_PASSWORD", &cfg.Pprof.Pass)

	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("LOG_FORMAT", &cfg.Log.Format)

	steps := []func() error{
		func() error { return envInt("PORT", &cfg.Port) },
		func() error { return envInt32("POSTGRES_MAX_CONNS", &cfg.DB.MaxConns) },

		func() error { return envFloat("DISPATCH_SEARCH_RADIUS_KM", &cfg.Dispatch.SearchRadiusKm) },
		func() error { return envDuration("DISPATCH_POLL_INTERVAL", &cfg.Dispatch.PollInterval) },
		func() error { return envDuration("DISPATCH_REASSIGN_DELAY", &cfg.Dispatch.ReassignDelay) },
		func() error { return envDuration("DISPATCH_ACCEPT_TIMEOUT", &cfg.Dispatch.AcceptTimeout) },
		func() error { return envInt("DISPATCH_MAX_ATTEMPTS", &cfg.Dispatch.MaxAttempts) },
		func() error { return envDuration("DISPATCH_SWEEP_INTERVAL", &cfg.Dispatch.SweepInterval) },
		func() error { return envInt("DISPATCH_SWEEP_BATCH", &cfg.Dispatch.SweepBatch) },
		func() error { return envDuration("DISPATCH_OPERATION_TIMEOUT", &cfg.Dispatch.OperationTimeout) },
		func() error { return envFloat("DISPATCH_AVERAGE_SPEED_KMH", &cfg.Dispatch.AverageSpeedKmh) },

		func() error { return envInt("NOTIFY_MQTT_QOS", &cfg.Notify.MQTTQoS) },
		func() error { return envBool("NOTIFY_WEBSOCKET", &cfg.Notify.WebSocket) },
		func() error { return envInt("NOTIFY_RETRY_ATTEMPTS", &cfg.Notify.RetryAttempts) },
		func() error { return envDuration("NOTIFY_RETRY_BASE_DELAY", &cfg.Notify.RetryBaseDelay) },
		func() error { return envDuration("NOTIFY_RETRY_MAX_DELAY", &cfg.Notify.RetryMaxDelay) },

		func() error { return envBool("RATE_LIMIT_ENABLED", &cfg.RateLimit.Enabled) },
		func() error { return envFloat("RATE_LIMIT_RATE", &cfg.RateLimit.Rate) },
		func() error { return envInt("RATE_LIMIT_BURST", &cfg.RateLimit.Burst) },
		func() error { return envDuration("RATE_LIMIT_TTL", &cfg.RateLimit.TTL) },
		func() error { return envInt("RATE_LIMIT_MAX_BUCKETS", &cfg.RateLimit.MaxBuckets) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
