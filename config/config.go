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
	Port        string
	DBUrl       string
	JWTSecret   string
	JWTTTL      time.Duration
	FrontendURL string
	// External AI services
	TalentAPIURL    string
	InterviewAPIURL string
	EngineTimeout   time.Duration
	// Credential notification webhook (optional)
	NotifyWebhookURL     string
	NotifyWebhookToken   string
	NotifyTimeout        time.Duration
	CandidateEmailDomain string
	CandidateLoginURL    string
	// SMTP fallback for credential notification (optional)
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	SessionLockTTL       time.Duration
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	RateLimitAnswerThreshold int
	// Transcript archive (S3-compatible, optional)
	TranscriptBucket  string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string
	// Lifecycle events (RabbitMQ, optional)
	RabbitMQURL string
	EventsQueue string
	// Dashboard
	InterviewCostPerQuestion float64
	LogLevel                 string
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; production injects the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTL:      time.Duration(getEnvInt("JWT_TTL_MINUTES", 12*60)) * time.Minute,
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Trailing slashes would produce //interview/start
		TalentAPIURL:    strings.TrimRight(getEnv("TALENT_API_URL", "http://localhost:8000"), "/"),
		InterviewAPIURL: strings.TrimRight(getEnv("INTERVIEW_API_URL", "http://localhost:8001"), "/"),
		EngineTimeout:   time.Duration(getEnvInt("ENGINE_TIMEOUT_SECONDS", 30)) * time.Second,
		// Notification webhook
		NotifyWebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
		NotifyWebhookToken:   getEnv("NOTIFY_WEBHOOK_TOKEN", ""),
		NotifyTimeout:        time.Duration(getEnvInt("NOTIFY_TIMEOUT_SECONDS", 10)) * time.Second,
		CandidateEmailDomain: getEnv("CANDIDATE_EMAIL_DOMAIN", "candidate.hirematrix.local"),
		CandidateLoginURL:    getEnv("CANDIDATE_LOGIN_URL", "http://localhost:3000/login"),
		// SMTP
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		SessionLockTTL:       time.Duration(getEnvInt("SESSION_LOCK_TTL_SECONDS", 60)) * time.Second,
		// Rate Limiting Configuration
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitAnswerThreshold: getEnvInt("RATE_LIMIT_ANSWER_THRESHOLD", 20),
		// Transcript archive
		TranscriptBucket:  getEnv("TRANSCRIPT_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:        strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		// Lifecycle events
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		EventsQueue: getEnv("EVENTS_QUEUE", "interview_events"),
		// Dashboard
		InterviewCostPerQuestion: getEnvFloat("INTERVIEW_COST_PER_QUESTION", 0.35),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Login and authenticated routes will fail.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting and session locks will use in-memory fallback.")
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

// getEnvFloat returns a float environment variable or fallback if not set/invalid
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
