package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sintiendo/internal/auth"
	"sintiendo/internal/config"
	"sintiendo/internal/db"
	"sintiendo/internal/diary"
	httpx "sintiendo/internal/http"
	"sintiendo/internal/jobs"
	"sintiendo/internal/logging"
	"sintiendo/internal/media"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogFile)
	defer func() { _ = logger.Sync() }()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal(err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		logger.Fatal(err)
	}

	blobs, err := media.NewDiskStorage(cfg.UploadDir)
	if err != nil {
		logger.Fatal(err)
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	jobsRepo := &jobs.Repo{DB: gdb}
	mediaSvc := &media.Service{DB: gdb, Blobs: blobs, Jobs: jobsRepo, Log: logger}
	diarySvc := &diary.Service{DB: gdb, Media: mediaSvc}

	r := httpx.NewRouter(cfg, gdb, jwtSvc, diarySvc, mediaSvc, blobs, logger)

	// blob cleanup worker
	worker := &jobs.Worker{ID: "worker-1", Repo: jobsRepo, Blobs: blobs, Log: logger}

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
