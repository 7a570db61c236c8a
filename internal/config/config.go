package config // package config loads application configuration from environment variables

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Unlike credentials-heavy services, every value here has
// a development default so the sync can run against a local stack without a
// .env file; production deployments override through the environment.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	APIBaseURL string        // base URL of the Mapa Cultural API
	APITimeout time.Duration // per-request timeout for remote API calls
	APISeal    string        // seal id used to filter the remote event listing

	SyncBatchSize int           // rows per write transaction during sync
	SyncPageDelay time.Duration // pause between remote pages

	LogFile string // path of the sync log file served by the logs endpoint
}

// Load reads configuration values from environment variables and returns a
// Config. Missing variables fall back to defaults suitable for local
// development against docker-compose.
func Load() Config {
	return Config{
		Env:    getenv("APP_ENV", "dev"),
		Port:   getenv("APP_PORT", "8080"),
		DBUser: getenv("DB_USERNAME", "mapas_user"),
		DBPass: os.Getenv("DB_PASSWORD"),
		DBHost: getenv("DB_HOST", "localhost"),
		DBPort: getenv("DB_PORT", "3306"),
		DBName: getenv("DB_DATABASE", "mapas_espacos"),

		APIBaseURL: getenv("API_URL", "https://mapacultural.secult.ce.gov.br/api"),
		APITimeout: parseDur(getenv("API_TIMEOUT", "30s")),
		APISeal:    getenv("API_SEAL", "32"),

		SyncBatchSize: atoi(getenv("SYNC_BATCH_SIZE", "500")),
		SyncPageDelay: parseDur(getenv("SYNC_PAGE_DELAY", "500ms")),

		LogFile: getenv("SYNC_LOG_FILE", "logs/sync.log"),
	}
}

// getenv retrieves an environment variable, returning def when unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
