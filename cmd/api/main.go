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

	"github.com/suPer8Hu/talent-market/internal/chat"
	"github.com/suPer8Hu/talent-market/internal/config"
	"github.com/suPer8Hu/talent-market/internal/db"
	"github.com/suPer8Hu/talent-market/internal/events"
	"github.com/suPer8Hu/talent-market/internal/httpapi"
	"github.com/suPer8Hu/talent-market/internal/httpapi/handlers"
	"github.com/suPer8Hu/talent-market/internal/logging"
	"github.com/suPer8Hu/talent-market/internal/provider"
	"github.com/suPer8Hu/talent-market/internal/store/rabbitmq"
	"github.com/suPer8Hu/talent-market/internal/store/redisstore"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// chat log backend
	var store chat.ChatStore
	switch cfg.ChatStore {
	case "db":
		store = chat.NewDBStore(gdb)
	default:
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rds.Close()
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rds.Ping(pctx)
		cancel()
		if err != nil {
			logger.Fatal("redis ping", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		store = chat.NewLocalStore(rds)
	}

	// lifecycle events go to the worker when a broker is configured, otherwise they are
	// handled in process
	var pub events.Publisher
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			logger.Fatal("rabbit publisher", zap.Error(err))
		}
		defer p.Close()
		pub = p
	} else {
		views := provider.NewService(provider.NewRepo(gdb))
		pub = events.Inline{D: &events.Dispatcher{Views: views, Log: logger}}
	}

	h := handlers.NewHandler(gdb, cfg, store, pub, logger)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(h, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api listening",
			zap.String("addr", cfg.HTTPAddr), zap.String("chat_store", cfg.ChatStore), zap.Bool("broker", cfg.RabbitURL != ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("api shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
