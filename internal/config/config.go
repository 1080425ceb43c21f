package config

import (
	"log"
	"os"
	"strconv"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout int
	Timeout     int
	Prefix      string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
}

// StatementConfig controls where generated XLSX statements are kept. When
// UseS3 is false, files land on local disk and are served from PublicPrefix.
type StatementConfig struct {
	UseS3        bool
	Dir          string
	PublicPrefix string
	BaseURL      string
	MaxAgeHours  int
}

type AppConfig struct {
	Port       string
	Postgres   PostgresConfig
	Redis      RedisConfig
	S3         S3Config
	Statements StatementConfig
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool value %q: %v", s, err)
	}
	return b
}

func Load() AppConfig {
	return AppConfig{
		Port: getenv("APP_PORT", "8010"),
		Postgres: PostgresConfig{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     mustAtoi(getenv("PG_PORT", "5432")),
			User:     getenv("PG_USER", "root"),
			Password: getenv("PG_PASSWORD", ""),
			DBName:   getenv("PG_DB", "lendledger"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    getenv("REDIS_PASSWORD", ""),
			DB:          mustAtoi(getenv("REDIS_DB", "0")),
			MaxRetries:  mustAtoi(getenv("REDIS_MAX_RETRIES", "5")),
			DialTimeout: mustAtoi(getenv("REDIS_DIAL_TIMEOUT", "10")),
			Timeout:     mustAtoi(getenv("REDIS_TIMEOUT", "5")),
			Prefix:      getenv("REDIS_PREFIX", "lendledger_"),
		},
		S3: S3Config{
			Endpoint:        getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getenv("S3_ACCESS_KEY", "minio"),
			SecretAccessKey: getenv("S3_SECRET_KEY", "minio123"),
			Bucket:          getenv("S3_BUCKET", "statements"),
			Region:          getenv("S3_REGION", "us-east-1"),
			UseSSL:          mustBool(getenv("S3_USE_SSL", "false")),
			Prefix:          getenv("S3_PREFIX", ""),
		},
		Statements: StatementConfig{
			UseS3:        mustBool(getenv("STATEMENTS_USE_S3", "false")),
			Dir:          getenv("STATEMENTS_DIR", "./statements"),
			PublicPrefix: getenv("STATEMENTS_PUBLIC_PREFIX", "/files"),
			BaseURL:      getenv("STATEMENTS_BASE_URL", ""),
			MaxAgeHours:  mustAtoi(getenv("STATEMENTS_MAX_AGE_HOURS", "72")),
		},
	}
}
