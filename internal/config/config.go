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
	App          AppConfig
	Database     DatabaseConfig
	SMTP         SMTPConfig
	WebConnector WebConnectorConfig
	Reconcile    ReconcileConfig
	Tracing      TracingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	JWTSecret          string
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	// ReportRecipient receives sync failure reports; empty disables them.
	ReportRecipient string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.ReportRecipient != ""
}

type WebConnectorConfig struct {
	SharedSecret       string
	ServerVersion      string
	QBXMLVersion       string
	CompanyFilePath    string
	AutoQueue          bool
	AutoQueueLookback  int // days
	CompanyCacheTTL    time.Duration
	AppName            string
	AppDescription     string
	RunEveryNMinutes   int
	EndpointPath       string
	MaxReturnedPerPull int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type ReconcileConfig struct {
	AmountTolerance   float64
	DateToleranceDays int
	Threshold         int
	SkipAt            int
	UpdateAt          int
	ReviewAt          int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.json"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:            getEnv("SMTP_HOST", ""),
			Port:            getEnvAsInt("SMTP_PORT", 587),
			Email:           getEnv("SMTP_EMAIL", ""),
			Password:        getEnv("SMTP_PASSWORD", ""),
			SenderName:      getEnv("SMTP_SENDER_NAME", "QB Sync"),
			ReportRecipient: getEnv("SYNC_REPORT_EMAIL", ""),
		},
		WebConnector: WebConnectorConfig{
			SharedSecret:       getEnv("QBWC_SHARED_SECRET", ""),
			ServerVersion:      getEnv("QBWC_SERVER_VERSION", "1.0.0"),
			QBXMLVersion:       getEnv("QBXML_VERSION", "13.0"),
			CompanyFilePath:    getEnv("QBWC_COMPANY_FILE", ""),
			AutoQueue:          getEnvAsBool("QBWC_AUTO_QUEUE", true),
			AutoQueueLookback:  getEnvAsInt("QBWC_AUTO_QUEUE_LOOKBACK_DAYS", 30),
			CompanyCacheTTL:    time.Duration(getEnvAsInt("QBWC_COMPANY_CACHE_SECONDS", 300)) * time.Second,
			AppName:            getEnv("QBWC_APP_NAME", "QB Sync"),
			AppDescription:     getEnv("QBWC_APP_DESCRIPTION", "Syncs checks, bills and card charges"),
			RunEveryNMinutes:   getEnvAsInt("QBWC_RUN_EVERY_MINUTES", 60),
			EndpointPath:       getEnv("QBWC_ENDPOINT_PATH", "/qbwc"),
			MaxReturnedPerPull: getEnvAsInt("QBWC_MAX_RETURNED", 500),
		},
		Reconcile: ReconcileConfig{
			AmountTolerance:   getEnvAsFloat("RECONCILE_AMOUNT_TOLERANCE", 0.01),
			DateToleranceDays: getEnvAsInt("RECONCILE_DATE_TOLERANCE_DAYS", 5),
			Threshold:         getEnvAsInt("RECONCILE_THRESHOLD", 80),
			SkipAt:            getEnvAsInt("RECONCILE_SKIP_AT", 95),
			UpdateAt:          getEnvAsInt("RECONCILE_UPDATE_AT", 80),
			ReviewAt:          getEnvAsInt("RECONCILE_REVIEW_AT", 70),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "qbwc-sync-be"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
