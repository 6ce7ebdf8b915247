// Package config loads runtime configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all runtime settings.  Each field maps to one environment
// variable; required ones fail fast through must() so a misconfigured
// deployment dies at startup instead of at first request.
type Config struct {
	Env            string // application environment (dev/test/prod)
	Port           string // HTTP port to listen on
	LogLevel       string // logrus level name, default "info"
	StoreBackend   string // "mysql" or "memory"
	DBUser         string
	DBPass         string
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int

	BookingFee      decimal.Decimal // fee debited per booking, credited per cancel
	StartingBalance decimal.Decimal // balance granted to new accounts
	SeatCapacity    uint32          // seats per slot
	GridRowWidth    uint32          // seats per grid row in GET /seats
	SlotLabels      []string        // empty means the built-in catalog
	SeatLockWait    time.Duration   // max wait on a contended seat lock

	AMQPURL string // empty disables the queue publisher and consumer
}

// Load reads the environment and returns a Config.  Database variables are
// only required when the MySQL backend is selected, so the in-memory mode
// can run from a bare environment.
func Load() Config {
	backend := envStr("STORE_BACKEND", "mysql")
	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		StoreBackend:   backend,
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		BookingFee:      envDecimal("BOOKING_FEE", "1"),
		StartingBalance: envDecimal("STARTING_BALANCE", "30"),
		SeatCapacity:    uint32(envInt("SEAT_CAPACITY", 100)),
		GridRowWidth:    uint32(envInt("GRID_ROW_WIDTH", 10)),
		SlotLabels:      envList("SLOT_LABELS"),
		SeatLockWait:    envDur("SEAT_LOCK_WAIT", 2*time.Second),

		AMQPURL: amqpURL(),
	}
	if backend == "mysql" {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// amqpURL accepts either RABBITMQ_URL or AMQP_URL; the former wins.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is must() plus integer conversion.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envDecimal(key, def string) decimal.Decimal {
	s := envStr(key, def)
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Fatalf("invalid decimal for %s: %q", key, s)
	}
	return d
}

// envList splits a comma-separated variable into trimmed entries.  An unset
// or empty variable returns nil.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
