package configs

import (
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Email     EmailConfig
	Gateway   GatewayConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// EmailConfig holds email configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
}

// GatewayConfig holds payment gateway configuration
type GatewayConfig struct {
	CaptureTimeout time.Duration
	FailureRate    float64
}

// SchedulerConfig holds the overdue sweep schedule
type SchedulerConfig struct {
	OverdueCron string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, err
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, err
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, err
	}

	captureTimeout, err := strconv.Atoi(getEnv("GATEWAY_CAPTURE_TIMEOUT_SECONDS", "10"))
	if err != nil {
		return nil, err
	}

	failureRate, err := strconv.ParseFloat(getEnv("GATEWAY_FAILURE_RATE", "0.1"), 64)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port: port,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "coop_service"),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "smtp.example.com"),
			SMTPPort:     smtpPort,
			SMTPUser:     getEnv("SMTP_USER", "user"),
			SMTPPassword: getEnv("SMTP_PASSWORD", "password"),
			SenderEmail:  getEnv("SENDER_EMAIL", "no-reply@coop-service.com"),
		},
		Gateway: GatewayConfig{
			CaptureTimeout: time.Duration(captureTimeout) * time.Second,
			FailureRate:    failureRate,
		},
		Scheduler: SchedulerConfig{
			OverdueCron: getEnv("OVERDUE_SWEEP_CRON", "0 6 * * *"),
		},
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
