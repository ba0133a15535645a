package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DoctorPortal/cache"
	"DoctorPortal/config"
	"DoctorPortal/controllers"
	"DoctorPortal/jobs"
	"DoctorPortal/logger"
	"DoctorPortal/metrics"
	"DoctorPortal/migrations"
	"DoctorPortal/notify"
	"DoctorPortal/payment"
	"DoctorPortal/routes"
	"DoctorPortal/services"
	"DoctorPortal/store"
	"DoctorPortal/token"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Options is everything the server loop needs once the dependencies are built.
type Options struct {
	Addr string
	Log  *zap.Logger

	MigrationEnabled bool
	MigrationHandler func(ctx context.Context) error

	JobsEnabled bool
	// JobsHandler starts the background jobs and returns their stop function.
	JobsHandler func(ctx context.Context) (func(), error)

	WebServerPreHandler func(r *gin.Engine)

	// Cleanup runs in reverse order after the server stops.
	Cleanup []func()
}

var (
	startServer = serve
	isTest      = false
)

func main() {
	if err := run(); err != nil {
		log.Fatal("Error from run: ", err)
	}
}

func run() error {
	cfg, envErr, err := config.Load()
	if envErr != nil {
		log.Println("Error in loading the ENV:", envErr)
	}
	if err != nil {
		return err
	}

	logg, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.LogLevel != "debug" && !isTest {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	var cleanup []func()

	st, db, err := openStore(ctx, cfg, logg)
	if err != nil {
		return err
	}
	if db != nil {
		cleanup = append(cleanup, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(ctx); err != nil {
				logg.Warn("mongo disconnect", zap.Error(err))
			}
		})
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		st = cache.New(rdb, cfg.CacheTTL, logg).Wrap(st)
		cleanup = append(cleanup, func() { _ = rdb.Close() })
		logg.Info("redis cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	}

	tokens := token.New(cfg.AccessTokenSecret, cfg.AccessTokenTTL)

	var sender notify.Sender = notify.LogSender{Log: logg}
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.EmailSendKey,
		FromEmail: cfg.EmailSender,
		FromName:  cfg.EmailSenderName,
		ReplyTo:   cfg.EmailReplyTo,
	}); sg != nil {
		sender = sg
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	dispatcher := notify.NewDispatcher(sender, logg)
	svc := services.New(services.Deps{
		Store:    st,
		Tokens:   tokens,
		Notifier: dispatcher,
		Payments: payment.NewStripe(payment.StripeConfig{SecretKey: cfg.StripeSecretKey, DryRun: cfg.StripeDryRun}, logg),
		Metrics:  m,
		Logger:   logg,
	})
	h := controllers.NewHandler(svc, tokens, st.Users, logg)

	// runs first on shutdown, before the store is closed
	cleanup = append(cleanup, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := dispatcher.Wait(ctx); err != nil {
			logg.Warn("pending confirmations not sent", zap.Error(err))
		}
	})

	options := Options{
		Addr: cfg.Addr(),
		Log:  logg,

		MigrationEnabled: cfg.MigrationsEnabled && !isTest,
		MigrationHandler: func(ctx context.Context) error {
			if db == nil {
				return nil
			}
			return migrations.EnsureIndexes(ctx, db, logg)
		},

		JobsEnabled: cfg.JobsEnabled && !isTest,
		JobsHandler: func(ctx context.Context) (func(), error) {
			j := jobs.New(st, logg)
			if cfg.SeedServices {
				if _, err := j.SeedServices(ctx); err != nil {
					logg.Error("seeding services failed", zap.Error(err))
				}
			}
			c, err := j.StartScheduler(cfg.ReconcileSchedule)
			if err != nil {
				return nil, err
			}
			return func() { <-c.Stop().Done() }, nil
		},

		WebServerPreHandler: func(r *gin.Engine) {
			r.Use(cors.New(cors.Config{
				AllowOrigins:     cfg.CORSOrigins,
				AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
				AllowCredentials: !allowsAll(cfg.CORSOrigins),
			}))
			r.Use(m.Middleware())
			routes.Routes(r, h, m)
		},

		Cleanup: cleanup,
	}
	return startServer(options)
}

/*
* STORE=memory keeps everything in process
* Otherwise connect to Mongo and ping before serving
 */
func openStore(ctx context.Context, cfg config.App, logg *zap.Logger) (*store.Store, *mongo.Database, error) {
	if cfg.Store == "memory" {
		logg.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	client, err := store.Connect(ctx, cfg.MongoURI())
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.DBName)
	logg.Info("connected to mongo", zap.String("db", cfg.DBName), zap.Bool("transactions", cfg.MongoTransactions))
	return store.NewMongo(db, store.MongoOptions{Transactions: cfg.MongoTransactions, Logger: logg}), db, nil
}

// cors rejects AllowCredentials together with a wildcard origin.
func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func newRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(opts.Log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(opts.Log, true))
	if opts.WebServerPreHandler != nil {
		opts.WebServerPreHandler(r)
	}
	return r
}

/*
* Run migrations, then start jobs
* Serve until SIGINT or SIGTERM
* Drain in-flight requests, stop jobs, release connections
 */
func serve(opts Options) error {
	defer func() {
		for i := len(opts.Cleanup) - 1; i >= 0; i-- {
			opts.Cleanup[i]()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.MigrationEnabled {
		if err := opts.MigrationHandler(ctx); err != nil {
			return err
		}
	}
	if opts.JobsEnabled {
		stopJobs, err := opts.JobsHandler(ctx)
		if err != nil {
			return err
		}
		defer stopJobs()
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           newRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	opts.Log.Info("server listening", zap.String("addr", opts.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	opts.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
