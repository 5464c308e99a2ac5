package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string
	LogFile     string // Rotated log file, empty disables file output

	FSPath string // Physical directory for stored report files
	FSURL  string // URL path prefix for file access

	// Storage backend for rendered reports: local or s3
	StorageMode    string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ReportsFolder          string
	ReportsConfig          string // YAML file with declarative report definitions
	ReportsAsync           bool   // Queue every report, not only async definitions
	ReportsBroker          string // Task queue: inline or redis
	ReportsQueue           string
	ReportsInProcessWorker bool
	ReportsRetentionDays   int
	ReportsCleanupSchedule string
	ReportsRateLimitRPS    float64
	ReportsRateLimitBurst  int

	AdminEmails    []string
	AppVerboseName string
	CORSOrigins    []string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "crm-reports"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "crm-reports"),
		LogFile:     getEnv("LOG_FILE", ""),

		FSPath: getEnv("FS_PATH", "./uploads"),
		FSURL:  getEnv("FS_URL", "/fs/uploads"),

		StorageMode:    getEnv("STORAGE_MODE", "local"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		S3UsePathStyle: getEnv("S3_USE_PATH_STYLE", "false") == "true",

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		ReportsFolder:          getEnv("REPORTS_FOLDER", "reports"),
		ReportsConfig:          getEnv("REPORTS_CONFIG", ""),
		ReportsAsync:           getEnv("REPORTS_ASYNC", "false") == "true",
		ReportsBroker:          getEnv("REPORTS_BROKER", "inline"),
		ReportsQueue:           getEnv("REPORTS_QUEUE", "reports:tasks"),
		ReportsInProcessWorker: getEnv("REPORTS_INPROCESS_WORKER", "false") == "true",
		ReportsRetentionDays:   getEnvInt("REPORTS_RETENTION_DAYS", 30),
		ReportsCleanupSchedule: getEnv("REPORTS_CLEANUP_SCHEDULE", "0 3 * * *"),
		ReportsRateLimitRPS:    getEnvFloat("REPORTS_RATE_LIMIT_RPS", 1),
		ReportsRateLimitBurst:  getEnvInt("REPORTS_RATE_LIMIT_BURST", 5),

		AdminEmails:    splitList(getEnv("ADMIN_EMAILS", "")),
		AppVerboseName: getEnv("APP_VERBOSE_NAME", "Saved Reports"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001,http://localhost:8000")),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
