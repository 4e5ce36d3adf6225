package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/adapters"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/bootstrap"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/delivery/review"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/delivery/ws"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/middleware"
	"github.com/H0NEYP0T-466/ChessReviewEngine/internal/repository"
)

func NewLogger() (*zap.SugaredLogger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func handleShutdown(cancel context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Infof("received signal %s, shutting down", sig)
	cancel()
	// Let in-flight analyses observe the cancelled context.
	time.Sleep(1 * time.Second)
}

func main() {
	log, err := NewLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		log.Fatal("config setup failed: ", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go handleShutdown(cancel, log)

	redisAdapter := adapters.NewAdapterRedis(cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("redis init failed: ", err)
	}
	defer redisAdapter.Close(ctx)

	mongoAdapter := adapters.NewAdapterMongo(cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("mongo init failed: ", err)
	}
	defer mongoAdapter.Close(ctx)

	engines, err := repository.NewEnginePool(cfg, log)
	if err != nil {
		log.Fatal("engine pool init failed: ", err)
	}
	defer engines.Close()

	hub := ws.NewHub(log)
	reviewHandler := review.NewReviewHandler(ctx, *cfg, log, engines, redisAdapter, mongoAdapter, hub)

	r := chi.NewRouter()
	if cfg.IsLocalCors {
		r.Use(middleware.CORS)
	}
	r.Use(chimiddleware.Logger)

	r.Post("/api/analyze", reviewHandler.HandleAnalyze)
	r.Get("/api/game/{taskID}", reviewHandler.HandleGetResult)
	r.Get("/api/health", reviewHandler.HandleHealth)
	r.Get("/ws/analyze/{taskID}", hub.HandleSubscribe)

	port := cfg.ServerPort
	if port == "" {
		port = ":8080"
	}
	log.Infof("listening on %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		log.Fatal("server stopped: ", err)
	}
}
