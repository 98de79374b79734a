package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Env         string
	ServerPort  string
	BaseURL     string
	DatabaseDSN string
	LogLevel    string

	AccessSecret string
	TokenTTL     time.Duration

	KafkaBroker   string
	KafkaTopic    string
	KafkaGroupID  string
	KafkaUsername string
	KafkaPassword string

	CloudinaryUrl string

	PaystackSecretKey string
	PaystackBaseURL   string

	AdminNotifyEmail string
	GmailUser        string
	GmailAppPassword string
	MailFrom         string
	MailFromName     string

	RateLimitRPS   int
	RateLimitBurst int
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: env file not found or could not be loaded:", err)
		}
	}

	return Config{
		Env:         os.Getenv("ENV"),
		ServerPort:  getEnv("SERVER_PORT", ":3000"),
		BaseURL:     getEnv("BASE_URL", "*"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		AccessSecret: os.Getenv("ACCESS_SECRET"),
		TokenTTL:     getDuration("TOKEN_TTL", 24*time.Hour),

		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "bursary.notifications"),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "bursary-notifier"),
		KafkaUsername: os.Getenv("KAFKA_USERNAME"),
		KafkaPassword: os.Getenv("KAFKA_PASSWORD"),

		CloudinaryUrl: os.Getenv("CLOUDINARY_URL"),

		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),

		AdminNotifyEmail: os.Getenv("ADMIN_NOTIFY_EMAIL"),
		GmailUser:        os.Getenv("GMAIL_USER"),
		GmailAppPassword: os.Getenv("GMAIL_APP_PASSWORD"),
		MailFrom:         os.Getenv("MAIL_FROM"),
		MailFromName:     getEnv("MAIL_FROM_NAME", "Church Education Trust Fund"),

		RateLimitRPS:   getInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
	}
}

// Validate checks the settings the HTTP server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	if strings.TrimSpace(c.AccessSecret) == "" {
		errs = append(errs, errors.New("ACCESS_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// SetupLogger applies level and format to the global logrus logger.
func (c Config) SetupLogger() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if c.IsProd() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
