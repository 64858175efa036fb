package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string
	// Sui ledger
	SuiRPCURL      string
	SuiPackageID   string
	SuiModuleName  string
	EventPageLimit int
	// Ledger transport
	FetchConcurrency int
	RequestTimeout   time.Duration
	MaxRetries       int
	RetryDelay       time.Duration
	// Blob storage
	BlobBackend         string // "walrus" or "s3"
	WalrusPublisherURL  string
	WalrusAggregatorURL string
	WalrusSendObjectTo  string
	StoragePricePerUnit uint64
	WritePricePerUnit   uint64
	BlobDefaultEpochs   int
	BlobDeletable       bool
	BlobConfirmTimeout  time.Duration
	BlobPublicBaseURL   string
	S3Provider          string
	S3AccessKeyID       string
	S3SecretAccessKey   string
	S3Region            string
	S3Bucket            string
	S3Endpoint          string
	S3EpochDuration     time.Duration
	AvatarMaxDimension  int
	AvatarJPEGQuality   int
	UploadMaxPerMinute  int
	UploadMaxPerDay     int
	UploadMaxBytes      int64
	// HTTP surface
	CORSAllowedOrigins     []string
	RefreshPerMinute       int
	OverlayWritesPerMinute int
	// Overlay storage
	OverlayBackend string // "memory", "redis" or "postgres"
	DBUrl          string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
}

// IsProduction reports whether APP_ENV selects production behavior.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// EventType is the fully qualified Move type of the creation event.
func (c *Config) EventType() string {
	return c.SuiPackageID + "::" + c.SuiModuleName + "::ResumeCreated"
}

// ResumeStructType is the fully qualified Move type of the resume object.
func (c *Config) ResumeStructType() string {
	return c.SuiPackageID + "::" + c.SuiModuleName + "::Resume"
}

func LoadConfig() (*Config, error) {
	// Only effective locally; ignored in production when the file is absent.
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		SuiRPCURL:      strings.TrimRight(getEnv("SUI_RPC_URL", "https://fullnode.testnet.sui.io:443"), "/"),
		SuiPackageID:   getEnv("SUI_PACKAGE_ID", "0x05bd0be091095a6535056c3422d9d01d8502271d0ef1117d2e0dcd75def2c3e8"),
		SuiModuleName:  getEnv("SUI_MODULE_NAME", "resume"),
		EventPageLimit: getEnvInt("SUI_EVENT_PAGE_LIMIT", 50),

		FetchConcurrency: getEnvInt("LEDGER_FETCH_CONCURRENCY", 8),
		RequestTimeout:   getEnvDuration("LEDGER_REQUEST_TIMEOUT", 60*time.Second),
		MaxRetries:       getEnvInt("LEDGER_MAX_RETRIES", 3),
		RetryDelay:       time.Duration(getEnvInt("LEDGER_RETRY_DELAY_MS", 1000)) * time.Millisecond,

		BlobBackend:         strings.ToLower(getEnv("BLOB_BACKEND", "walrus")),
		WalrusPublisherURL:  strings.TrimRight(getEnv("WALRUS_PUBLISHER_URL", "https://publisher.walrus-testnet.walrus.space"), "/"),
		WalrusAggregatorURL: strings.TrimRight(getEnv("WALRUS_AGGREGATOR_URL", "https://aggregator.walrus-testnet.walrus.space"), "/"),
		WalrusSendObjectTo:  getEnv("WALRUS_SEND_OBJECT_TO", ""),
		StoragePricePerUnit: getEnvUint("WALRUS_STORAGE_PRICE_PER_UNIT", 11000),
		WritePricePerUnit:   getEnvUint("WALRUS_WRITE_PRICE_PER_UNIT", 20000),
		BlobDefaultEpochs:   getEnvInt("BLOB_DEFAULT_EPOCHS", 3),
		BlobDeletable:       getEnvBool("BLOB_DELETABLE", false),
		BlobConfirmTimeout:  getEnvDuration("BLOB_CONFIRM_TIMEOUT", 30*time.Second),
		BlobPublicBaseURL:   strings.TrimRight(getEnv("BLOB_PUBLIC_BASE_URL", ""), "/"),
		S3Provider:          getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:       getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:            getEnv("S3_REGION", "us-east-1"),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3EpochDuration:     getEnvDuration("S3_EPOCH_DURATION", 24*time.Hour),
		AvatarMaxDimension:  getEnvInt("AVATAR_MAX_DIMENSION", 512),
		AvatarJPEGQuality:   getEnvInt("AVATAR_JPEG_QUALITY", 85),
		UploadMaxPerMinute:  getEnvInt("UPLOAD_MAX_PER_MINUTE", 10),
		UploadMaxPerDay:     getEnvInt("UPLOAD_MAX_PER_DAY", 50),
		UploadMaxBytes:      int64(getEnvInt("UPLOAD_MAX_BYTES", 5<<20)),

		CORSAllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS"),
		RefreshPerMinute:       getEnvInt("DIRECTORY_REFRESH_PER_MINUTE", 30),
		OverlayWritesPerMinute: getEnvInt("OVERLAY_WRITES_PER_MINUTE", 20),

		OverlayBackend: strings.ToLower(getEnv("OVERLAY_BACKEND", "memory")),
		DBUrl:          getEnv("DATABASE_URL", ""),

		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
	}

	if cfg.OverlayBackend == "postgres" && cfg.DBUrl == "" {
		log.Println("WARNING: OVERLAY_BACKEND=postgres but DATABASE_URL is missing. Falling back to memory.")
		cfg.OverlayBackend = "memory"
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Upload rate limiting is disabled.")
	}

	if cfg.BlobBackend == "s3" && cfg.S3Bucket == "" {
		log.Println("WARNING: BLOB_BACKEND=s3 but S3_BUCKET is missing. Falling back to walrus.")
		cfg.BlobBackend = "walrus"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvUint(key string, fallback uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvDuration accepts Go duration strings ("30s", "2m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
