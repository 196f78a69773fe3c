package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv   string
	LogLevel string
	LogFile  string

	DBDriver     string
	DBPath       string
	MongoDB      string
	StoreTimeout time.Duration

	HTTPPort              int
	GRPCPort              int
	GRPCReflectionEnabled bool

	RedisAddr       string
	RedisPassword   string
	UploadRateLimit int

	StaticDir     string
	UploadDir     string
	UploadBackend string
	S3Bucket      string
	AWSRegion     string
}

var defaults = map[string]string{
	"APP_ENV":                 "development",
	"LOG_LEVEL":               "",
	"LOG_FILE":                "",
	"DB_DRIVER":               "sqlite3",
	"DB_PATH":                 "./data/feedback.db",
	"MONGO_DB":                "feedback",
	"STORE_TIMEOUT":           "5s",
	"HTTP_PORT":               "8000",
	"GRPC_PORT":               "50051",
	"GRPC_REFLECTION_ENABLED": "false",
	"REDIS_ADDR":              "",
	"REDIS_PASSWORD":          "",
	"UPLOAD_RATE_LIMIT":       "30",
	"STATIC_DIR":              "./source",
	"UPLOAD_DIR":              "./uploads",
	"UPLOAD_BACKEND":          "local",
	"S3_BUCKET":               "",
	"AWS_REGION":              "eu-west-1",
}

// LoadFromEnv loads configuration from environment variables. Values that
// fail to parse fall back to their defaults.
func LoadFromEnv() *Config {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	return &Config{
		AppEnv:   v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		LogFile:  v.GetString("LOG_FILE"),

		DBDriver:     v.GetString("DB_DRIVER"),
		DBPath:       v.GetString("DB_PATH"),
		MongoDB:      v.GetString("MONGO_DB"),
		StoreTimeout: durationSetting(v, "STORE_TIMEOUT"),

		HTTPPort:              intSetting(v, "HTTP_PORT"),
		GRPCPort:              intSetting(v, "GRPC_PORT"),
		GRPCReflectionEnabled: boolSetting(v, "GRPC_REFLECTION_ENABLED"),

		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		UploadRateLimit: intSetting(v, "UPLOAD_RATE_LIMIT"),

		StaticDir:     v.GetString("STATIC_DIR"),
		UploadDir:     v.GetString("UPLOAD_DIR"),
		UploadBackend: v.GetString("UPLOAD_BACKEND"),
		S3Bucket:      v.GetString("S3_BUCKET"),
		AWSRegion:     v.GetString("AWS_REGION"),
	}
}

func intSetting(v *viper.Viper, key string) int {
	n, err := strconv.Atoi(v.GetString(key))
	if err != nil {
		n, _ = strconv.Atoi(defaults[key])
	}
	return n
}

func boolSetting(v *viper.Viper, key string) bool {
	b, err := strconv.ParseBool(v.GetString(key))
	if err != nil {
		b, _ = strconv.ParseBool(defaults[key])
	}
	return b
}

func durationSetting(v *viper.Viper, key string) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaults[key])
	}
	return d
}

// NewLogger creates a new Zap logger based on the config. With LOG_FILE set,
// JSON entries are also written to a rotated file.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.AppEnv == "production" {
		zc = zap.NewProductionConfig()
	}
	if cfg.LogLevel != "" {
		lvl, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zc.Level = lvl
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	if cfg.LogFile == "" {
		return logger, nil
	}

	file := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), file, zc.Level)

	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})), nil
}
