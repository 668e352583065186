package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Credits  CreditsConfig
	Phone    PhoneConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// CreditsConfig holds the in-app credit economy knobs. Credits are an
// internal point system, not real currency.
type CreditsConfig struct {
	InitialCredits        int
	JobPostingReward      int
	PlatformFeePercentage float64
	PenaltyAmount         int
}

type PhoneConfig struct {
	DefaultCountryCode string
	OTPExpiryMinutes   int
}

var AppConfig *Config

func Load() {
	AppConfig = &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "clockwork_db"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-this-in-production"),
			ExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 720),
		},
		Credits: CreditsConfig{
			InitialCredits:        getEnvAsInt("INITIAL_CREDITS", 100),
			JobPostingReward:      getEnvAsInt("JOB_POSTING_REWARD", 10),
			PlatformFeePercentage: getEnvAsFloat("PLATFORM_FEE_PERCENTAGE", 10),
			PenaltyAmount:         getEnvAsInt("PENALTY_AMOUNT", 25),
		},
		Phone: PhoneConfig{
			DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "+91"),
			OTPExpiryMinutes:   getEnvAsInt("OTP_EXPIRY_MINUTES", 5),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
