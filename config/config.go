package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Govind-619/DomainDesk/utils"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port string
	Env  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string `validate:"required"`

	RazorpayKeyID     string `validate:"required"`
	RazorpayKeySecret string `validate:"required"`
	PaymentCurrency   string `validate:"required,len=3"`

	SMTPHost     string
	SMTPPort     int `validate:"gte=0,lte=65535"`
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	ProjectsDir string `validate:"required"`
	LogDir      string
	RedisURL    string
	CORSOrigins []string

	AdminEmail    string `validate:"omitempty,email"`
	AdminPassword string
	AdminFullName string
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// LoadConfig loads configuration from the environment. A .env file in the
// working directory is read first when present; real environment variables
// take precedence over it.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %v", err)
	}

	config := &Config{
		Port:              getEnv("PORT", utils.DefaultPort),
		Env:               getEnv("ENV", "development"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            getEnv("DB_NAME", "domaindesk"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		PaymentCurrency:   getEnv("PAYMENT_CURRENCY", utils.DefaultCurrency),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          smtpPort,
		SMTPUsername:      os.Getenv("SMTP_USERNAME"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:          os.Getenv("SMTP_FROM"),
		ProjectsDir:       getEnv("PROJECTS_DIR", utils.DefaultProjectsDir),
		LogDir:            getEnv("LOG_DIR", "logs"),
		RedisURL:          os.Getenv("REDIS_URL"),
		CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminFullName:     getEnv("ADMIN_FULL_NAME", "Administrator"),
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}
	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma separated env value, dropping blanks
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
