package config

import (
	"os"
	"strconv"
)

// MinIOConfig holds object storage settings for the S3-compatible backend.
// Source holds uploaded documents; Destination holds derived OCR artifacts.
type MinIOConfig struct {
	Endpoint          string
	AccessKey         string
	SecretKey         string
	SourceBucket      string
	DestinationBucket string
	UseSSL            bool
}

// EngineConfig holds the recognition engine endpoint settings.
type EngineConfig struct {
	BaseURL string
	APIKey  string
	// NotifyQueueURL is handed to the engine at submission as the channel for
	// its asynchronous terminal-status notifications.
	NotifyQueueURL string
}

// QueueConfig holds the completion-notification queue consumer settings.
type QueueConfig struct {
	URL         string
	Region      string
	WaitTimeSec int
	MaxMessages int
}

// PipelineConfig holds document pipeline tunables.
type PipelineConfig struct {
	// LargeObjectThreshold is the inline-response ceiling in bytes. Results at
	// or above it are served via a presigned redirect. The default sits just
	// under a typical load-balancer response limit, leaving room for headers.
	LargeObjectThreshold int64
	PresignExpirySec     int
	// StrictTagWrites makes a failed status-tag write fail the completion flow
	// so the notification gets redelivered. Disabling it reverts to
	// log-and-continue, leaving artifacts readable while the tag lags behind.
	StrictTagWrites bool
	// WatchSourceBucket enables the in-process object-created listener that
	// submits new documents for recognition.
	WatchSourceBucket bool

	ExcludePageHeaders bool
	ExcludePageFooters bool
	ExcludePageNumbers bool
	ExcludeFigureText  bool
}

// AppConfig is the centralized configuration struct for the application,
// populated from environment variables.
type AppConfig struct {
	AppHost  string
	Port     string
	MinIO    MinIOConfig
	Engine   EngineConfig
	Queue    QueueConfig
	Pipeline PipelineConfig
}

// DefaultLargeObjectThreshold mirrors the load-balancer response ceiling with
// 2 KiB of headroom for headers.
const DefaultLargeObjectThreshold = int64(1024*1024 - 2048)

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		MinIO: MinIOConfig{
			Endpoint:          getEnv("MINIO_ENDPOINT", ""),
			AccessKey:         getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:         getEnv("MINIO_SECRET_KEY", ""),
			SourceBucket:      getEnv("MINIO_SOURCE_BUCKET", ""),
			DestinationBucket: getEnv("MINIO_DESTINATION_BUCKET", ""),
			UseSSL:            getEnvBool("MINIO_USE_SSL", false),
		},
		Engine: EngineConfig{
			BaseURL:        getEnv("ENGINE_BASE_URL", ""),
			APIKey:         getEnv("ENGINE_API_KEY", ""),
			NotifyQueueURL: getEnv("ENGINE_NOTIFY_QUEUE_URL", ""),
		},
		Queue: QueueConfig{
			URL:         getEnv("COMPLETION_QUEUE_URL", ""),
			Region:      getEnv("COMPLETION_QUEUE_REGION", "us-east-1"),
			WaitTimeSec: getEnvInt("COMPLETION_QUEUE_WAIT_SEC", 20),
			MaxMessages: getEnvInt("COMPLETION_QUEUE_MAX_MESSAGES", 10),
		},
		Pipeline: PipelineConfig{
			LargeObjectThreshold: getEnvInt64("PIPELINE_LARGE_OBJECT_THRESHOLD", DefaultLargeObjectThreshold),
			PresignExpirySec:     getEnvInt("PIPELINE_PRESIGN_EXPIRY_SEC", 120),
			StrictTagWrites:      getEnvBool("PIPELINE_STRICT_TAG_WRITES", true),
			WatchSourceBucket:    getEnvBool("PIPELINE_WATCH_SOURCE_BUCKET", true),
			ExcludePageHeaders:   getEnvBool("PIPELINE_EXCLUDE_PAGE_HEADERS", true),
			ExcludePageFooters:   getEnvBool("PIPELINE_EXCLUDE_PAGE_FOOTERS", true),
			ExcludePageNumbers:   getEnvBool("PIPELINE_EXCLUDE_PAGE_NUMBERS", true),
			ExcludeFigureText:    getEnvBool("PIPELINE_EXCLUDE_FIGURE_TEXT", true),
		},
	}
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

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
