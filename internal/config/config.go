package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	APIKey   string
	Language string

	Gemini  GeminiConfig
	Storage StorageConfig
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

// StorageConfig selects the binary cache backend: local disk by default, S3
// when an endpoint is configured. RecentDSN switches the recent-file list to
// Postgres.
type StorageConfig struct {
	DataDir   string
	S3Enabled bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	RecentDSN string

	MaxUploadBytes int64
}

const defaultMaxUploadBytes = 50 << 20 // advertised upload cap, advisory

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	dataDir := flag.String("data-dir", "", "directory for the local file cache")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:     *port,
		Env:      env,
		APIKey:   strings.TrimSpace(os.Getenv("API_KEY")),
		Language: strings.TrimSpace(os.Getenv("DEFAULT_LANGUAGE")),
		Gemini: GeminiConfig{
			APIKey: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))),
			Model:  strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		},
		Storage: loadStorageConfig(env, *dataDir),
	}, nil
}

func loadStorageConfig(env, dataDir string) StorageConfig {
	endpoint := resolveStorageEndpoint(env)
	if strings.TrimSpace(dataDir) == "" {
		dataDir = firstNonEmpty(strings.TrimSpace(os.Getenv("DATA_DIR")), "data")
	}
	return StorageConfig{
		DataDir:        dataDir,
		S3Enabled:      endpoint != "",
		Endpoint:       endpoint,
		Region:         firstNonEmpty(strings.TrimSpace(os.Getenv("FILECACHE_S3_REGION")), "us-east-1"),
		AccessKey:      firstNonEmpty(strings.TrimSpace(os.Getenv("FILECACHE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey:      firstNonEmpty(strings.TrimSpace(os.Getenv("FILECACHE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:         firstNonEmpty(strings.TrimSpace(os.Getenv("FILECACHE_S3_BUCKET")), "pdfassist-files"),
		UseSSL:         resolveStorageUseSSL(env),
		RecentDSN:      strings.TrimSpace(os.Getenv("RECENT_STORE_PG_DSN")),
		MaxUploadBytes: resolveMaxUploadBytes(),
	}
}

func resolveStorageEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("FILECACHE_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("FILECACHE_S3_ENDPOINT"))
}

func resolveStorageUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("FILECACHE_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func resolveMaxUploadBytes() int64 {
	raw := strings.TrimSpace(os.Getenv("MAX_UPLOAD_BYTES"))
	if raw == "" {
		return defaultMaxUploadBytes
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return defaultMaxUploadBytes
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
