package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all runtime configuration, loaded once at startup.
type Config struct {
	Port    string
	MongoURI string
	MongoDB  string

	JWTSecret string
	JWTExpiry time.Duration

	MQTTBrokerURL string

	GeocoderBaseURL string

	FlightAPIBaseURL string
	FlightAPIKey     string

	EmailPrimaryURL  string
	EmailFallbackURL string
	EmailAPIKey      string

	PaymentAPIURL string
	PaymentAPIKey string

	// PortalEchoAccessCode makes the portal echo freshly issued access codes
	// back in the findCustomer response. Testing environments only.
	PortalEchoAccessCode bool

	LogLevel string
}

// Load reads configuration from the environment, with a .env file as an
// optional local override source.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Info("Loaded configuration from .env")
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:              getEnv("MONGO_DB", "dispatch"),
		JWTSecret:            getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		JWTExpiry:            24 * time.Hour,
		MQTTBrokerURL:        getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"),
		GeocoderBaseURL:      getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		FlightAPIBaseURL:     getEnv("FLIGHT_API_BASE_URL", ""),
		FlightAPIKey:         getEnv("FLIGHT_API_KEY", ""),
		EmailPrimaryURL:      getEnv("EMAIL_PRIMARY_URL", ""),
		EmailFallbackURL:     getEnv("EMAIL_FALLBACK_URL", ""),
		EmailAPIKey:          getEnv("EMAIL_API_KEY", ""),
		PaymentAPIURL:        getEnv("PAYMENT_API_URL", ""),
		PaymentAPIKey:        getEnv("PAYMENT_API_KEY", ""),
		PortalEchoAccessCode: os.Getenv("PORTAL_ECHO_ACCESS_CODE") == "true",
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	if expStr := os.Getenv("JWT_EXPIRY"); expStr != "" {
		if parsed, err := time.ParseDuration(expStr); err == nil {
			cfg.JWTExpiry = parsed
		}
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
