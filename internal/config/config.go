package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emrgen/recipe/internal/partition"
)

type DatabaseConfig struct {
	Driver             string // postgres or sqlite
	DSN                string // used as is when set
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	SQLitePath         string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

type PartitionConfig struct {
	Prefix   string
	Sentinel string
	// FanOut bounds how many partitions a search reads concurrently.
	FanOut int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers string
	Topic   string
}

type Config struct {
	Database  DatabaseConfig
	Partition PartitionConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	// LocationHints enables the redis-backed id to partition hints.
	LocationHints   bool
	JanitorSchedule string
	LogLevel        string
	LogFormat       string
}

// LoadConfig reads the configuration from the environment. A .env file in the
// working directory is loaded first; real environment variables win.
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:             getEnv("DB_DRIVER", "sqlite"),
			DSN:                getEnv("DB_DSN", ""),
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", "recipes"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			SQLitePath:         getEnv("SQLITE_PATH", ".tmp/recipes.db"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Partition: PartitionConfig{
			Prefix:   getEnv("PARTITION_PREFIX", partition.DefaultPrefix),
			Sentinel: getEnv("SENTINEL_CATEGORY", partition.DefaultSentinel),
			FanOut:   getEnvInt("FANOUT_CONCURRENCY", 4),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_LOCATION_TTL_SEC", 86400)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: getEnv("KAFKA_BROKERS", ""),
			Topic:   getEnv("KAFKA_TOPIC", "recipe.changes"),
		},
		LocationHints:   getEnvBool("LOCATION_HINTS", false),
		JanitorSchedule: getEnv("JANITOR_SCHEDULE", "@every 10m"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
}

// Namer builds the partition namer from the configured prefix and sentinel.
func (c *Config) Namer() partition.Namer {
	return partition.NewNamer(c.Partition.Prefix, c.Partition.Sentinel)
}

// SetupLogging applies the log level and format to the standard logrus logger.
func SetupLogging(c *Config) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// PostgresDSN returns the configured DSN, or builds one from its parts.
func PostgresDSN(c DatabaseConfig) (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	if c.Host == "" || c.Port == "" || c.User == "" || c.Name == "" {
		return "", fmt.Errorf("invalid database config: host, port, user and name are required")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}

	q := u.Query()
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// GetDb opens the configured database and applies the pool settings.
func GetDb(c *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.Database.Driver {
	case "postgres":
		dsn, err := PostgresDSN(c.Database)
		if err != nil {
			return nil, err
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		path := c.Database.DSN
		if path == "" {
			path = c.Database.SQLitePath
		}
		if dir := filepath.Dir(path); !strings.HasPrefix(path, "file:") && path != ":memory:" {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, err
			}
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	gormLogLevel := logger.Silent
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(gormLogLevel)})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", c.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if c.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.Database.MaxOpenConns)
	}
	if c.Database.Driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}
	if c.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.Database.MaxIdleConns)
	}
	if c.Database.ConnMaxLifetimeSec > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(c.Database.ConnMaxLifetimeSec) * time.Second)
	}

	return db, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
