package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses token lifetimes
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations and ints
// where the value feeds straight into time or cost arithmetic.
type Config struct {
	Env        string        // application environment (e.g. "dev", "prod")
	Port       string        // HTTP port to listen on
	DBUser     string        // database username
	DBPass     string        // database password (optional)
	DBHost     string        // database host address
	DBPort     string        // database port number
	DBName     string        // database name
	JWTSecret  string        // secret used to sign JWTs
	JWTTTL     time.Duration // access token lifetime
	BcryptCost int           // bcrypt cost for password hashing
	CORSOrigin string        // allowed CORS origin ("*" by default)
}

// Load reads configuration values from environment variables and returns a
// Config.  Only the JWT secret and the database coordinates are required;
// everything else falls back to a default.  Missing required values cause
// the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:        getenv("APP_ENV", "dev"),
		Port:       getenv("PORT", "8080"),
		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"), // empty allowed
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		JWTSecret:  must("JWT_SECRET"),
		JWTTTL:     envDuration("JWT_EXPIRATION", 24*time.Hour),
		BcryptCost: envInt("BCRYPT_COST", 10),
		CORSOrigin: getenv("CORS_ORIGIN", "*"),
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

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

// envDuration parses values like "24h" or "90m".  Invalid values fall
// back to the default rather than failing startup.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return def
}
