package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cobranzas/internal/config"
	"cobranzas/internal/database"
	"cobranzas/internal/handlers"
	"cobranzas/internal/jobs"
	"cobranzas/internal/logger"
	"cobranzas/internal/server"
	"cobranzas/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log := logger.NewFromLevel(cfg.LogLevel)

	log.Infof("entorno: docker=%t servidor=%s instancia=%q base=%s usuario=%s",
		cfg.InDocker, cfg.DBServer, cfg.DBInstance, cfg.DBName, cfg.DBUser)
	log.Infof("password: %s", cfg.MaskedPassword())
	for _, key := range cfg.Missing {
		log.Warnf("variable de entorno no definida: %s", key)
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider := database.NewProvider(cfg.DBDriver, cfg.DSN(), log)
	defer func() {
		if err := provider.Close(); err != nil {
			log.Error(err, "cerrando la conexión")
		}
	}()

	db, err := provider.Acquire(ctx)
	if err != nil {
		log.Fatal(err, "no se pudo conectar a la base de datos")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err, "migración fallida")
	}
	if cfg.AuthRequired {
		if err := database.SeedAdmin(db, cfg.AdminUsername, cfg.AdminPassword, log); err != nil {
			log.Fatal(err, "no se pudo crear el usuario admin")
		}
	}

	store, err := storage.New(cfg.UploadsDir)
	if err != nil {
		log.Fatal(err, "no se pudo preparar la carpeta de uploads")
	}
	log.Infof("uploads en %s", store.Root())

	scheduler := jobs.New(provider, store, cfg.TempMaxAge, log)
	if err := scheduler.Start(cfg.JobsSchedule); err != nil {
		log.Fatal(err, "JOBS_SCHEDULE inválido")
	}
	defer scheduler.Stop()

	h := handlers.New(provider, store, cfg, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           server.NewRouter(cfg, provider, h, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("servidor escuchando en %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "error del servidor")
		}
	}()

	<-ctx.Done()
	log.Info("cerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "cierre forzado")
	}
}
