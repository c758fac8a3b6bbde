/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/HamedShams/pulse-reports/internal/config"
)

func NewRouter(cfg config.Config, log zerolog.Logger, reports reportStore, templates templateStore, texts textReportStore) *gin.Engine {
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Next()
		log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
	})

	h := NewHandlers(cfg, log, reports, templates, texts)

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.GET("/reports", h.AllReports)
	api.GET("/reports/latest", h.LatestReports)
	api.POST("/reports/project", h.UpsertProjectReport)
	api.POST("/reports/epic", h.UpsertEpicReport)

	api.GET("/templates", h.ListTemplates)
	api.GET("/templates/:id", h.GetTemplate)
	api.PUT("/templates", h.PutTemplate)
	api.DELETE("/templates/:id", h.DeleteTemplate)

	api.POST("/text-reports", h.StoreTextReport)
	api.GET("/text-reports", h.ListTextReports)
	api.GET("/text-reports/:id", h.GetTextReport)
	api.PATCH("/text-reports/:id", h.UpdateTextReport)
	api.DELETE("/text-reports/:id", h.DeleteTextReport)

	r.POST("/admin/prune", h.Prune)

	return r
}
