package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	RedisURL   string
	SessionTTL time.Duration

	TicketSecret string
	TicketTTL    time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	WhatsAppAPIURL   string
	WhatsAppAPIToken string
	SNSRegion        string

	OTPExpiry         time.Duration
	OTPSweepInterval  time.Duration
	ReminderInterval  time.Duration
	CookieSecure      bool
	AllowedOrigins    []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users      string
	OTPRecords string
	Reminders  string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:      getEnv("DYNAMO_TABLE_USERS", "users"),
			OTPRecords: getEnv("DYNAMO_TABLE_OTP_RECORDS", "otp_records"),
			Reminders:  getEnv("DYNAMO_TABLE_REMINDERS", "reminders"),
		},

		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),

		TicketSecret: getEnv("VERIFICATION_TICKET_SECRET", ""),
		TicketTTL:    getEnvDuration("VERIFICATION_TICKET_TTL", 15*time.Minute),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		WhatsAppAPIURL:   getEnv("WHATSAPP_API_URL", ""),
		WhatsAppAPIToken: getEnv("WHATSAPP_API_TOKEN", ""),
		SNSRegion:        getEnv("SNS_REGION", "us-east-1"),

		OTPExpiry:        getEnvDuration("OTP_EXPIRY", 10*time.Minute),
		OTPSweepInterval: getEnvDuration("OTP_SWEEP_INTERVAL", 15*time.Minute),
		ReminderInterval: getEnvDuration("REMINDER_INTERVAL", 6*time.Hour),
		CookieSecure:     getEnv("APP_ENV", "development") == "production",
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
