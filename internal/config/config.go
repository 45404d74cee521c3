/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the transfer-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	MinimumTransferAmount string `mapstructure:"MINIMUM_TRANSFER_AMOUNT"`
	MaximumTransferAmount string `mapstructure:"MAXIMUM_TRANSFER_AMOUNT"`

	StatusCacheTTLSeconds     int    `mapstructure:"STATUS_CACHE_TTL_SECONDS"`
	PendingTransferTTLMinutes int    `mapstructure:"PENDING_TRANSFER_TTL_MINUTES"`
	ExpirySweepSchedule       string `mapstructure:"EXPIRY_SWEEP_SCHEDULE"`

	// Parsed forms of the amount bounds, populated after unmarshalling.
	MinAmount decimal.Decimal `mapstructure:"-"`
	MaxAmount decimal.Decimal `mapstructure:"-"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("MINIMUM_TRANSFER_AMOUNT", "10")
	viper.SetDefault("MAXIMUM_TRANSFER_AMOUNT", "1000000")
	viper.SetDefault("STATUS_CACHE_TTL_SECONDS", 30)
	viper.SetDefault("PENDING_TRANSFER_TTL_MINUTES", 1440)
	viper.SetDefault("EXPIRY_SWEEP_SCHEDULE", "*/10 * * * *")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("MINIMUM_TRANSFER_AMOUNT")
	_ = viper.BindEnv("MAXIMUM_TRANSFER_AMOUNT")
	_ = viper.BindEnv("STATUS_CACHE_TTL_SECONDS")
	_ = viper.BindEnv("PENDING_TRANSFER_TTL_MINUTES")
	_ = viper.BindEnv("EXPIRY_SWEEP_SCHEDULE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RabbitMQURL = strings.TrimSpace(config.RabbitMQURL)

	config.MinAmount, err = decimal.NewFromString(strings.TrimSpace(config.MinimumTransferAmount))
	if err != nil {
		log.Printf("level=warn component=config msg=\"invalid MINIMUM_TRANSFER_AMOUNT; using default\" value=%q err=%v", config.MinimumTransferAmount, err)
		config.MinAmount = decimal.NewFromInt(10)
		err = nil
	}
	config.MaxAmount, err = decimal.NewFromString(strings.TrimSpace(config.MaximumTransferAmount))
	if err != nil {
		log.Printf("level=warn component=config msg=\"invalid MAXIMUM_TRANSFER_AMOUNT; using default\" value=%q err=%v", config.MaximumTransferAmount, err)
		config.MaxAmount = decimal.NewFromInt(1000000)
		err = nil
	}

	if config.MinAmount.IsNegative() {
		log.Printf("level=warn component=config msg=\"negative minimum amount configured; coercing to zero\" minimum=%s", config.MinAmount)
		config.MinAmount = decimal.Zero
	}
	if config.MaxAmount.LessThanOrEqual(config.MinAmount) {
		log.Printf("level=warn component=config msg=\"maximum amount not above minimum; using default\" minimum=%s maximum=%s", config.MinAmount, config.MaxAmount)
		config.MaxAmount = decimal.NewFromInt(1000000)
	}

	if config.StatusCacheTTLSeconds <= 0 {
		config.StatusCacheTTLSeconds = 30
	}
	if config.PendingTransferTTLMinutes <= 0 {
		config.PendingTransferTTLMinutes = 1440
	}
	if strings.TrimSpace(config.ExpirySweepSchedule) == "" {
		config.ExpirySweepSchedule = "*/10 * * * *"
	}

	return
}
