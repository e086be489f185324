package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	APIBaseURL  string `envconfig:"API_BASE_URL" default:"http://localhost:8080/v1"`

	// Database
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`

	// Sessions
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// Redis holds the session revocation list. Logout is a no-op without it.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Course generation
	GenerationProvider     string        `envconfig:"GENERATION_PROVIDER" default:"gemini"`
	GenerationModel        string        `envconfig:"GENERATION_MODEL"`
	GenerationAPIKey       string        `envconfig:"GENERATION_API_KEY"`
	GenerationAPIKeySecret string        `envconfig:"GENERATION_API_KEY_SECRET"`
	GenerationBaseURL      string        `envconfig:"GENERATION_BASE_URL"`
	GenerationTimeout      time.Duration `envconfig:"GENERATION_TIMEOUT" default:"30s"`

	// Generation worker settings
	GenerationQueueName         string `envconfig:"GENERATION_QUEUE_NAME" default:"generation_queue"`
	GenerationPollTimeoutSec    int    `envconfig:"GENERATION_POLL_TIMEOUT_SEC" default:"30"`
	GenerationVisibilityTimeout int    `envconfig:"GENERATION_VISIBILITY_TIMEOUT_SEC" default:"90"`

	// Admin authentication: "static" or "google"
	AdminAuthMode       string   `envconfig:"ADMIN_AUTH_MODE" default:"static"`
	AdminEmail          string   `envconfig:"ADMIN_EMAIL"`
	AdminPasswordHash   string   `envconfig:"ADMIN_PASSWORD_HASH"`
	AdminGoogleAudience string   `envconfig:"ADMIN_GOOGLE_AUDIENCE"`
	AdminAllowedEmails  []string `envconfig:"ADMIN_ALLOWED_EMAILS"`

	// GCP (Pub/Sub course events, Secret Manager)
	GCPProjectID            string `envconfig:"GCP_PROJECT_ID"`
	PubSubEmulatorHost      string `envconfig:"PUBSUB_EMULATOR_HOST"`
	PubSubCourseEventsTopic string `envconfig:"PUBSUB_COURSE_EVENTS_TOPIC" default:"course-events"`

	// S3-compatible storage for failed generation outputs
	S3URL       string `envconfig:"S3_URL"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that envconfig tags cannot express.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	switch strings.ToLower(c.GenerationProvider) {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unsupported GENERATION_PROVIDER %q", c.GenerationProvider)
	}
	switch c.AdminAuthMode {
	case "static":
		if c.AdminEmail == "" || c.AdminPasswordHash == "" {
			return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD_HASH are required when ADMIN_AUTH_MODE=static")
		}
	case "google":
		if c.AdminGoogleAudience == "" || len(c.AdminAllowedEmails) == 0 {
			return fmt.Errorf("ADMIN_GOOGLE_AUDIENCE and ADMIN_ALLOWED_EMAILS are required when ADMIN_AUTH_MODE=google")
		}
	default:
		return fmt.Errorf("unsupported ADMIN_AUTH_MODE %q", c.AdminAuthMode)
	}
	return nil
}

// S3Enabled reports whether failed generation outputs should be archived.
func (c *Config) S3Enabled() bool {
	return c.S3URL != "" && c.S3Bucket != ""
}
