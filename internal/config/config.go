package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); the rest
// fall back to defaults suitable for local development.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	LogLevel        string        // DEBUG, INFO, WARN, ERROR
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	DBAutoMigrate   bool          // apply the schema at server start
	JWTSecret       string        // secret used to sign JWTs, never defaulted
	TokenTTL        time.Duration // lifetime of issued access tokens
	BcryptCost      int           // bcrypt cost for password hashing
	TMDBAPIKey      string        // TMDB v3 API key; the movie proxy answers 500 without it
	TMDBBaseURL     string        // TMDB API root
	TMDBLanguage    string        // language passed to TMDB
	AMQPURL         string        // RabbitMQ URL; activity events are disabled when empty
	ShutdownTimeout time.Duration // grace period for in-flight requests on shutdown
}

// Load reads an optional .env file and then the environment.  Missing
// required variables cause the program to exit with a fatal log message.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}
	return Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            must("APP_PORT"),
		LogLevel:        envStr("LOG_LEVEL", "INFO"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          envStr("DB_PORT", "3306"),
		DBName:          must("DB_NAME"),
		DBAutoMigrate:   envBool("DB_AUTO_MIGRATE", false),
		JWTSecret:       must("JWT_SECRET"),
		TokenTTL:        envDur("TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:      envInt("BCRYPT_COST", 10),
		TMDBAPIKey:      os.Getenv("TMDB_API_KEY"),
		TMDBBaseURL:     envStr("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBLanguage:    envStr("TMDB_LANGUAGE", "fr-FR"),
		AMQPURL:         firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// LoadDatabase reads only the database settings.  It is used by the
// migration command, which has no use for the HTTP or token settings.
func LoadDatabase() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}
	return Config{
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: envStr("DB_PORT", "3306"),
		DBName: must("DB_NAME"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
