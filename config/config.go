package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	Port string `envconfig:"PORT" default:"5000"`

	// DB
	Store             string `envconfig:"STORE" default:"mongo"`
	DBUser            string `envconfig:"DB_USER"`
	DBPass            string `envconfig:"DB_PASS"`
	DBHost            string `envconfig:"DB_HOST" default:"cluster0.tpg4ggp.mongodb.net"`
	DBURI             string `envconfig:"DB_URI"`
	DBName            string `envconfig:"DB_NAME" default:"doctor-portal"`
	MongoTransactions bool   `envconfig:"MONGO_TRANSACTIONS" default:"true"`

	// JWT
	AccessTokenSecret string        `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	AccessTokenTTL    time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"1h"`

	// Mail
	EmailSendKey    string `envconfig:"EMAIL_SEND_KEY"`
	EmailSender     string `envconfig:"EMAIL_SENDER"`
	EmailSenderName string `envconfig:"EMAIL_SENDER_NAME" default:"Doctors Portal"`
	EmailReplyTo    string `envconfig:"EMAIL_REPLY_TO"`

	// Payments
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	StripeDryRun    bool   `envconfig:"STRIPE_DRY_RUN" default:"false"`

	// Cache
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// Jobs
	JobsEnabled       bool   `envconfig:"JOBS_ENABLED" default:"true"`
	ReconcileSchedule string `envconfig:"RECONCILE_SCHEDULE" default:"*/10 * * * *"`
	SeedServices      bool   `envconfig:"SEED_SERVICES" default:"false"`
	MigrationsEnabled bool   `envconfig:"MIGRATIONS_ENABLED" default:"true"`

	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load reads an optional .env file and then the process environment.
// A missing .env is reported through envErr but is not fatal.
func Load() (cfg App, envErr error, err error) {
	envErr = godotenv.Load()
	err = envconfig.Process("", &cfg)
	return cfg, envErr, err
}

// MongoURI returns DB_URI when set, otherwise the Atlas SRV URI built from
// the credential parts.
func (a App) MongoURI() string {
	if a.DBURI != "" {
		return a.DBURI
	}
	return fmt.Sprintf("mongodb+srv://%s@%s/?retryWrites=true&w=majority",
		url.UserPassword(a.DBUser, a.DBPass).String(), a.DBHost)
}

func (a App) Addr() string {
	return ":" + a.Port
}
