/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HamedShams/pulse-reports/internal/config"
	httpapi "github.com/HamedShams/pulse-reports/internal/http"
	"github.com/HamedShams/pulse-reports/internal/jobs"
	"github.com/HamedShams/pulse-reports/internal/logger"
	"github.com/HamedShams/pulse-reports/internal/store"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	st := store.New(cfg, log)
	if err := st.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("store connect failed")
	}
	defer func() { _ = st.Close(context.Background()) }()

	reportsCol, err := st.Collection(store.ReportsCollection)
	if err != nil {
		log.Fatal().Err(err).Msg("reports collection")
	}
	templatesCol, err := st.Collection(store.TemplatesCollection)
	if err != nil {
		log.Fatal().Err(err).Msg("templates collection")
	}
	textsCol, err := st.Collection(store.TextReportsCollection)
	if err != nil {
		log.Fatal().Err(err).Msg("text reports collection")
	}

	reports := store.NewReportStore(reportsCol, log)
	templates := store.NewTemplateStore(templatesCol, log)
	texts := store.NewTextReportStore(textsCol, log)

	// HTTP server (Gin)
	router := httpapi.NewRouter(cfg, log, reports, templates, texts)

	// Cron
	cr := jobs.NewCron(cfg, log, reports)
	cr.Start()
	defer cr.Stop()

	// graceful shutdown
	errCh := make(chan error, 1)
	go func() { errCh <- router.Run(cfg.HTTPAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	time.Sleep(500 * time.Millisecond)
}
