// Package config loads gateway configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// Config holds every setting read at startup
type Config struct {
	ProjectID           string
	DestinationBucket   string
	ExtractionTopic     string
	MaxFileSizeMB       int
	AllowedContentTypes []string

	HTTPAddr       string
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string

	StorageBackend string
	StorageDir     string
	AWSRegion      string
	AWSEndpointURL string
	RedisURL       string

	IdentityBackend     string
	IdentityStatic      string
	IdentityDatabaseURL string

	VisionEndpoint     string
	VisionAPIKey       string
	VisionMaxDimension int
	VisionDisabled     bool

	QueueBackend       string
	NatsURL            string
	DBOSDatabaseURL    string
	DBOSAppName        string
	ExtractionWorkflow string
}

// Backend names
const (
	StorageFilesystem = "filesystem"
	StorageS3         = "s3"
	StorageRedis      = "redis"

	IdentityStatic   = "static"
	IdentityPostgres = "postgres"
	IdentityFirebase = "firebase"

	QueueNats = "nats"
	QueueDBOS = "dbos"
)

const defaultAllowed = pipeline.MimeJPEG + "," + pipeline.MimePNG + "," + pipeline.MimeWEBP + "," + pipeline.MimePDF

// Load reads .env (if present) and the process environment
func Load() (Config, error) {
	// Silently ignore a missing .env file
	_ = godotenv.Load()

	project := first(os.Getenv("GCP_PROJECT"), os.Getenv("PROJECT_ID"), "receipts-local")

	maxMB, err := intVar("MAX_FILE_SIZE_MB", 5)
	if err != nil {
		return Config{}, err
	}
	if maxMB <= 0 {
		return Config{}, fmt.Errorf("MAX_FILE_SIZE_MB must be positive, got %d", maxMB)
	}
	maxDim, err := intVar("VISION_MAX_DIMENSION", 2048)
	if err != nil {
		return Config{}, err
	}
	timeout, err := durationVar("REQUEST_TIMEOUT", 60*time.Second)
	if err != nil {
		return Config{}, err
	}

	addr := get("HTTP_ADDR", "")
	if addr == "" {
		addr = ":" + get("PORT", "8080")
	}

	c := Config{
		ProjectID:           project,
		DestinationBucket:   get("DESTINATION_BUCKET", project+".appspot.com"),
		ExtractionTopic:     get("EXTRACTION_TOPIC", "receipts-for-extraction"),
		MaxFileSizeMB:       maxMB,
		AllowedContentTypes: ParseContentTypes(get("ALLOWED_CONTENT_TYPES", defaultAllowed)),

		HTTPAddr:       addr,
		RequestTimeout: timeout,
		LogLevel:       get("LOG_LEVEL", "info"),
		LogFormat:      get("LOG_FORMAT", "json"),

		StorageBackend: strings.ToLower(get("STORAGE_BACKEND", StorageFilesystem)),
		StorageDir:     get("STORAGE_DIR", "./dev-data"),
		AWSRegion:      get("AWS_REGION", "us-east-1"),
		AWSEndpointURL: os.Getenv("AWS_ENDPOINT_URL"),
		RedisURL:       get("REDIS_URL", "redis://localhost:6379"),

		IdentityBackend:     strings.ToLower(get("IDENTITY_BACKEND", IdentityStatic)),
		IdentityStatic:      os.Getenv("IDENTITY_STATIC"),
		IdentityDatabaseURL: os.Getenv("IDENTITY_DATABASE_URL"),

		VisionEndpoint:     get("VISION_ENDPOINT", "https://vision.googleapis.com/v1/images:annotate"),
		VisionAPIKey:       os.Getenv("VISION_API_KEY"),
		VisionMaxDimension: maxDim,
		VisionDisabled:     boolVar("VISION_DISABLED"),

		QueueBackend:       strings.ToLower(get("QUEUE_BACKEND", QueueNats)),
		NatsURL:            get("NATS_URL", "nats://localhost:4222"),
		DBOSDatabaseURL:    os.Getenv("DBOS_SYSTEM_DATABASE_URL"),
		DBOSAppName:        get("DBOS_APP_NAME", "receipt-ingestion"),
		ExtractionWorkflow: get("EXTRACTION_WORKFLOW", "extract_receipt"),
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.StorageBackend {
	case StorageFilesystem, StorageS3, StorageRedis:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	switch c.IdentityBackend {
	case IdentityStatic, IdentityFirebase:
	case IdentityPostgres:
		if c.IdentityDatabaseURL == "" {
			return fmt.Errorf("IDENTITY_DATABASE_URL is required for postgres identity backend")
		}
	default:
		return fmt.Errorf("unknown IDENTITY_BACKEND %q", c.IdentityBackend)
	}
	switch c.QueueBackend {
	case QueueNats:
	case QueueDBOS:
		if c.DBOSDatabaseURL == "" {
			return fmt.Errorf("DBOS_SYSTEM_DATABASE_URL is required for dbos queue backend")
		}
	default:
		return fmt.Errorf("unknown QUEUE_BACKEND %q", c.QueueBackend)
	}
	if len(c.AllowedContentTypes) == 0 {
		return fmt.Errorf("ALLOWED_CONTENT_TYPES is empty")
	}
	return nil
}

// ParseContentTypes splits a comma separated MIME list, folding image/jpg into image/jpeg
func ParseContentTypes(raw string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		ct := strings.ToLower(strings.TrimSpace(part))
		if ct == "image/jpg" {
			ct = pipeline.MimeJPEG
		}
		if ct == "" || seen[ct] {
			continue
		}
		seen[ct] = true
		out = append(out, ct)
	}
	return out
}

// get returns the value of the environment variable k or def if not set.
func get(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func first(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func intVar(k string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(k))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", k, raw, err)
	}
	return n, nil
}

func durationVar(k string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(k))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", k, raw, err)
	}
	return d, nil
}

func boolVar(k string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
