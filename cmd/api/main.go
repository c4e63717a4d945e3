package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devconnect/cmd/app"
	"devconnect/internal/config"
	handlers "devconnect/internal/handler"
	"devconnect/internal/middleware"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()
	config.SetupLogging(cfg.LogLevel)

	if cfg.JWTSecretKey == "" {
		log.Fatal("[main] JWT_SECRET_KEY is not set")
	}

	application := app.New(cfg)
	defer application.Close()

	handler := handlers.NewHandlers(application.Services, cfg)

	handlerChain := middleware.Chain(
		handler.Routes(),
		middleware.AuthMiddleware(application.Services.Auth),
		middleware.CORSMiddleware,
		middleware.LoggingMiddleware(cfg.ServiceName, application.LogSink()),
		middleware.RequestIDMiddleware,
		middleware.TrimSlashMiddleware,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handlerChain,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("[main] server listening on %s (db=%s)", srv.Addr, cfg.DB.DbNAME)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("[main] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("[main] graceful shutdown failed: %v", err)
	}
}
