package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Database struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"ssl-mode"`
	// Migrations is the goose migrations directory.
	Migrations string `mapstructure:"migrations"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLMs    int    `mapstructure:"ttl-ms"`
}

type KafkaWriter struct {
	BatchSize      int `mapstructure:"batch-size"`
	BatchTimeoutMs int `mapstructure:"batch-timeout-ms"`
}

type KafkaBroker struct {
	URL string `mapstructure:"url"`
}

type KafkaTopic struct {
	PaymentEvents string `mapstructure:"payment-events"`
}

type Kafka struct {
	Writer KafkaWriter `mapstructure:"writer"`
	Broker KafkaBroker `mapstructure:"broker"`
	Topic  KafkaTopic  `mapstructure:"topic"`
}

type Storage struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access-key-id"`
	SecretAccessKey string `mapstructure:"secret-access-key"`
	ProofBucket     string `mapstructure:"proof-bucket"`
	PresignTTLMs    int    `mapstructure:"presign-ttl-ms"`
}

type Notify struct {
	// Driver is one of "", "webhook" or "sns".
	Driver     string `mapstructure:"driver"`
	WebhookURL string `mapstructure:"webhook-url"`
	TimeoutMs  int    `mapstructure:"timeout-ms"`
	TopicArn   string `mapstructure:"topic-arn"`
}

type Auth struct {
	JWTSecret string `mapstructure:"jwt-secret"`
}

type Checkout struct {
	MaxProofBytes       int64    `mapstructure:"max-proof-bytes"`
	AllowedContentTypes []string `mapstructure:"allowed-content-types"`
	DuplicateWindowMs   int      `mapstructure:"duplicate-window-ms"`
}

type Server struct {
	Port        string   `mapstructure:"port"`
	CorsOrigins []string `mapstructure:"cors-origins"`
}

type Metrics struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

type Logs struct {
	URL string `mapstructure:"url"`
}

type Config struct {
	Database Database `mapstructure:"database"`
	Redis    Redis    `mapstructure:"redis"`
	Kafka    Kafka    `mapstructure:"kafka"`
	Storage  Storage  `mapstructure:"storage"`
	Notify   Notify   `mapstructure:"notify"`
	Auth     Auth     `mapstructure:"auth"`
	Checkout Checkout `mapstructure:"checkout"`
	Server   Server   `mapstructure:"server"`
	Metrics  Metrics  `mapstructure:"metrics"`
	Logs     Logs     `mapstructure:"logs"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.ssl-mode", "disable")
	v.SetDefault("database.migrations", "migrations")
	v.SetDefault("redis.ttl-ms", 60_000)
	v.SetDefault("kafka.writer.batch-size", 1)
	v.SetDefault("kafka.writer.batch-timeout-ms", 10)
	v.SetDefault("kafka.topic.payment-events", "payment-events")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.proof-bucket", "payment-proofs")
	v.SetDefault("storage.presign-ttl-ms", 15*60_000)
	v.SetDefault("notify.timeout-ms", 10_000)
	v.SetDefault("checkout.max-proof-bytes", 5<<20)
	v.SetDefault("checkout.allowed-content-types", []string{"image/jpeg", "image/png", "image/webp", "application/pdf"})
	v.SetDefault("checkout.duplicate-window-ms", 10*60_000)
	v.SetDefault("server.port", "8080")
}

// LoadConfig reads config.yaml from path. Environment variables override file
// values, with dots and dashes replaced by underscores (DATABASE_HOST).
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func MustLoadConfig(path string) *Config {
	config, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return config
}

func GetRequired(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		log.Fatalf("Required environment variable %s is not set", key)
	}
	return value
}

func GetInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return i
}

func GetEnvInt(key string, defaultValue int) int {
	return GetInt(key, defaultValue)
}
