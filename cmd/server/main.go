package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"noticeboard/internal/config"
	"noticeboard/internal/db"
	"noticeboard/internal/server"
	"noticeboard/logger"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.Env)

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	if *migrateOnlyFlag {
		log.Println("migrations completed; exiting as requested")
		return
	}

	// Bootstrap admin: idempotent, runs once per boot. The default password
	// must be changed before production use.
	if err := db.EnsureAdmin(dbConn, cfg.AdminPassword); err != nil {
		log.Fatalf("admin seeding error: %v", err)
	}

	logger.Log.WithFields(map[string]any{"env": cfg.Env, "port": cfg.Port}).Info("starting server")

	handler := server.New(dbConn, cfg)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: handler}

	go func() {
		logger.Log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("error during shutdown")
	}
	logger.Log.Info("server gracefully stopped")
}
