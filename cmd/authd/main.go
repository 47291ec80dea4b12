// Command authd serves the phone-OTP auth API for the booking platform.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap"

	authhttp "github.com/gharkaam/authcore/adapters/http"
	"github.com/gharkaam/authcore/config"
	"github.com/gharkaam/authcore/core"
	"github.com/gharkaam/authcore/riverjobs"
	"github.com/gharkaam/authcore/sms"
	memorystore "github.com/gharkaam/authcore/storage/memory"
	pgstore "github.com/gharkaam/authcore/storage/postgres"
	redisstore "github.com/gharkaam/authcore/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := newLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("authd exited", zap.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	if env == "production" {
		log, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return log
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return log
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	challenges := pgstore.NewChallenges(pool)
	users := pgstore.NewUsers(pool)

	svc := core.NewService(cfg.Core(), challenges, users).WithLogger(log)

	if cfg.SMSGatewayURL != "" {
		svc.WithSMSDispatcher(sms.NewGatewayClient(cfg.SMSGatewayURL, cfg.SMSGatewayKey, cfg.SMSSender))
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		svc.WithEphemeralStore(redisstore.NewKV(rdb))
	} else {
		svc.WithEphemeralStore(memorystore.NewKV())
	}

	if cfg.PurgeCron != "" {
		riverClient, err := newPurgeClient(pool, challenges, cfg.PurgeCron, log)
		if err != nil {
			return err
		}
		if err := riverClient.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = riverClient.Stop(stopCtx)
		}()
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/auth", authhttp.NewService(svc).WithLogger(log).Routes())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("authd listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func newPurgeClient(pool *pgxpool.Pool, challenges *pgstore.Challenges, cronSpec string, log *zap.Logger) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	riverjobs.RegisterPurgeWorker(workers, challenges, log)

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:  map[string]river.QueueConfig{river.QueueDefault: {MaxWorkers: 2}},
		Workers: workers,
	})
	if err != nil {
		return nil, err
	}
	job, err := riverjobs.NewPurgePeriodicJob(cronSpec, riverjobs.PurgeExpiredChallengesArgs{}, true)
	if err != nil {
		return nil, err
	}
	client.PeriodicJobs().Add(job)
	return client, nil
}
