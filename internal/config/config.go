package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEmailPattern accepts institutional addresses of the form first.last.YY@nitj.ac.in.
const DefaultEmailPattern = `(?i)^[a-z]+\.[a-z]+\.\d{2}@nitj\.ac\.in$`

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	SNSRegion      string
	SNSTopicARN    string // empty disables event publishing

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SMTPHost     string // empty disables delivery; codes are logged instead
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	RedisAddr     string // empty disables the OTP resend throttle
	RedisPassword string
	RedisDB       int

	OTPTTL            time.Duration
	OTPMaxAttempts    int
	OTPResendCooldown time.Duration
	EmailPattern      string

	LogLevel       string
	LogFormat      string
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Sessions      string
	EmailOTPs     string
	Profiles      string
	Swipes        string
	SwipeEdges    string
	Matches       string
	Conversations string
	Messages      string
	GameSessions  string
	GameResponses string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "5000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:      getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			EmailOTPs:     getEnv("DYNAMO_TABLE_EMAIL_OTPS", "email_otps"),
			Profiles:      getEnv("DYNAMO_TABLE_PROFILES", "profiles"),
			Swipes:        getEnv("DYNAMO_TABLE_SWIPES", "swipes"),
			SwipeEdges:    getEnv("DYNAMO_TABLE_SWIPE_EDGES", "swipe_edges"),
			Matches:       getEnv("DYNAMO_TABLE_MATCHES", "matches"),
			Conversations: getEnv("DYNAMO_TABLE_CONVERSATIONS", "conversations"),
			Messages:      getEnv("DYNAMO_TABLE_MESSAGES", "messages"),
			GameSessions:  getEnv("DYNAMO_TABLE_GAME_SESSIONS", "game_sessions"),
			GameResponses: getEnv("DYNAMO_TABLE_GAME_RESPONSES", "game_responses"),
		},
		S3BucketName:      getEnv("S3_BUCKET_NAME", ""),
		SNSRegion:         getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN:       getEnv("SNS_TOPIC_ARN", ""),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24*7)) * time.Hour,
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPFrom:          getEnv("SMTP_FROM", "noreply@nitinder.app"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		OTPTTL:            time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
		OTPMaxAttempts:    getEnvInt("OTP_MAX_ATTEMPTS", 5),
		OTPResendCooldown: time.Duration(getEnvInt("OTP_RESEND_COOLDOWN_SECONDS", 30)) * time.Second,
		EmailPattern:      getEnv("ALLOWED_EMAIL_PATTERN", DefaultEmailPattern),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool { return strings.EqualFold(c.AppEnv, "production") }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
