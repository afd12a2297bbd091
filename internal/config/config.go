package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Bus          BusConfig          `yaml:"bus"`
	Provisioning ProvisioningConfig `yaml:"provisioning"`
	Router       RouterConfig       `yaml:"router"`
	Health       HealthConfig       `yaml:"health"`
	Dedup        DedupConfig        `yaml:"dedup"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Log          LogConfig          `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"SERVER_MAX_BODY_BYTES"   env-default:"1048576"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// Bus drivers.
const (
	BusDriverPubSub = "pubsub"
	BusDriverKafka  = "kafka"
)

// BusConfig selects and configures the message bus.
type BusConfig struct {
	Driver string       `yaml:"driver" env:"BUS_DRIVER" env-default:"pubsub"`
	PubSub PubSubConfig `yaml:"pubsub"`
	Kafka  KafkaConfig  `yaml:"kafka"`
}

// PubSubConfig holds Google Cloud Pub/Sub settings.
type PubSubConfig struct {
	ProjectID    string `yaml:"project_id"    env:"PUBSUB_PROJECT_ID"`
	EmulatorHost string `yaml:"emulator_host" env:"PUBSUB_EMULATOR_HOST"`
}

// KafkaConfig holds Kafka settings.
type KafkaConfig struct {
	Brokers           []string      `yaml:"brokers"            env:"KAFKA_BROKERS"            env-separator:","`
	ClientID          string        `yaml:"client_id"          env:"KAFKA_CLIENT_ID"          env-default:"agentrouter"`
	Partitions        int32         `yaml:"partitions"         env:"KAFKA_PARTITIONS"         env-default:"3"`
	ReplicationFactor int16         `yaml:"replication_factor" env:"KAFKA_REPLICATION_FACTOR" env-default:"1"`
	ProducerTimeout   time.Duration `yaml:"producer_timeout"   env:"KAFKA_PRODUCER_TIMEOUT"   env-default:"10s"`
}

// ProvisioningConfig holds bus resource provisioning settings.
type ProvisioningConfig struct {
	ConsumerGroup string        `yaml:"consumer_group" env:"PROVISIONING_CONSUMER_GROUP" env-default:"main-consumer"`
	Timeout       time.Duration `yaml:"timeout"        env:"PROVISIONING_TIMEOUT"        env-default:"30s"`
}

// RouterConfig bounds the blocking steps of message routing.
type RouterConfig struct {
	LookupTimeout  time.Duration `yaml:"lookup_timeout"  env:"ROUTER_LOOKUP_TIMEOUT"  env-default:"2s"`
	PublishTimeout time.Duration `yaml:"publish_timeout" env:"ROUTER_PUBLISH_TIMEOUT" env-default:"10s"`
}

// Health report ordering policies.
const (
	HealthPolicyReceiptOrder    = "receipt_order"
	HealthPolicyLatestTimestamp = "latest_timestamp"
)

// HealthConfig holds health reconciliation settings.
type HealthConfig struct {
	Policy string `yaml:"policy" env:"HEALTH_POLICY" env-default:"receipt_order"`
}

// DedupConfig holds optional sender-side deduplication settings.
type DedupConfig struct {
	Enabled       bool          `yaml:"enabled"        env:"DEDUP_ENABLED"        env-default:"false"`
	RedisAddr     string        `yaml:"redis_addr"     env:"DEDUP_REDIS_ADDR"     env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password" env:"DEDUP_REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db"       env:"DEDUP_REDIS_DB"       env-default:"0"`
	TTL           time.Duration `yaml:"ttl"            env:"DEDUP_TTL"            env-default:"24h"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
