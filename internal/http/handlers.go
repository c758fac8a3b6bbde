/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/HamedShams/pulse-reports/internal/config"
	"github.com/HamedShams/pulse-reports/internal/domain"
)

type reportStore interface {
	UpsertProjectReport(ctx context.Context, report domain.ProjectReport) error
	UpsertEpicReport(ctx context.Context, report domain.EpicReport) error
	FetchAllProjectReports(ctx context.Context, ownerID string) ([]domain.ProjectReport, error)
	LatestProjectReports(ctx context.Context, ownerID string) ([]domain.ProjectReport, error)
	LatestProjectReportsWithEpics(ctx context.Context, ownerID string) ([]domain.ProjectReport, error)
	PruneSuperseded(ctx context.Context) (int64, error)
}

type templateStore interface {
	FetchTemplate(ctx context.Context, workspaceID, templateID string) (*domain.ReportTemplate, error)
	UpsertTemplate(ctx context.Context, tpl domain.ReportTemplate) error
	DeleteTemplate(ctx context.Context, workspaceID, templateID string) error
	TemplatesByOwner(ctx context.Context, workspaceID, owner string) ([]domain.ReportTemplate, error)
	VisibleTemplates(ctx context.Context, workspaceID, caller string) ([]domain.ReportTemplate, error)
}

type textReportStore interface {
	StoreTextReport(ctx context.Context, report domain.TextReport) (string, error)
	FetchTextReportByID(ctx context.Context, id string) (*domain.TextReport, error)
	UpdateTextReport(ctx context.Context, id, text, name, description string) error
	FetchTextReportsByOwner(ctx context.Context, owner string) ([]domain.TextReport, error)
	DeleteTextReportByID(ctx context.Context, id string) error
}

// Handlers is the compatibility boundary: every store error is logged here
// and converted to the legacy sentinel (null body, empty list, or a silent
// 2xx for writes). Nothing below an operation ever reaches the caller as an
// error payload.
type Handlers struct {
	cfg       config.Config
	log       zerolog.Logger
	reports   reportStore
	templates templateStore
	texts     textReportStore
}

func NewHandlers(cfg config.Config, log zerolog.Logger, reports reportStore, templates templateStore, texts textReportStore) *Handlers {
	return &Handlers{cfg: cfg, log: log, reports: reports, templates: templates, texts: texts}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LatestReports(c *gin.Context) {
	ownerID := c.Query("ownerId")
	var (
		reports []domain.ProjectReport
		err     error
	)
	if c.Query("epics") == "true" {
		reports, err = h.reports.LatestProjectReportsWithEpics(c.Request.Context(), ownerID)
	} else {
		reports, err = h.reports.LatestProjectReports(c.Request.Context(), ownerID)
	}
	if err != nil {
		h.log.Error().Err(err).Str("ownerId", ownerID).Msg("latest reports failed")
		c.JSON(http.StatusOK, []domain.ProjectReport{})
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *Handlers) AllReports(c *gin.Context) {
	ownerID := c.Query("ownerId")
	reports, err := h.reports.FetchAllProjectReports(c.Request.Context(), ownerID)
	if err != nil {
		h.log.Error().Err(err).Str("ownerId", ownerID).Msg("fetch reports failed")
		c.JSON(http.StatusOK, []domain.ProjectReport{})
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *Handlers) UpsertProjectReport(c *gin.Context) {
	var report domain.ProjectReport
	if err := c.ShouldBindJSON(&report); err != nil {
		h.log.Error().Err(err).Msg("bad project report payload")
		c.Status(http.StatusNoContent)
		return
	}
	report.ReportType = domain.ReportTypeProject
	if err := h.reports.UpsertProjectReport(c.Request.Context(), report); err != nil {
		h.log.Error().Err(err).Str("projectKey", report.ProjectKey).Msg("upsert project report failed")
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) UpsertEpicReport(c *gin.Context) {
	var report domain.EpicReport
	if err := c.ShouldBindJSON(&report); err != nil {
		h.log.Error().Err(err).Msg("bad epic report payload")
		c.Status(http.StatusNoContent)
		return
	}
	report.ReportType = domain.ReportTypeEpic
	if err := h.reports.UpsertEpicReport(c.Request.Context(), report); err != nil {
		h.log.Error().Err(err).Str("epicKey", report.Key).Msg("upsert epic report failed")
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) Prune(c *gin.Context) {
	// Detached from the request so a slow sweep is not cancelled mid-flight.
	go func() {
		n, err := h.reports.PruneSuperseded(context.Background())
		if err != nil {
			h.log.Error().Err(err).Msg("prune failed")
			return
		}
		h.log.Info().Int64("removed", n).Msg("prune done")
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *Handlers) ListTemplates(c *gin.Context) {
	workspaceID := c.Query("workspaceId")
	owner := c.Query("owner")
	var (
		templates []domain.ReportTemplate
		err       error
	)
	if c.Query("visible") == "true" {
		templates, err = h.templates.VisibleTemplates(c.Request.Context(), workspaceID, owner)
	} else {
		templates, err = h.templates.TemplatesByOwner(c.Request.Context(), workspaceID, owner)
	}
	if err != nil {
		h.log.Error().Err(err).Str("owner", owner).Msg("list templates failed")
		c.JSON(http.StatusOK, []domain.ReportTemplate{})
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *Handlers) GetTemplate(c *gin.Context) {
	tpl, err := h.templates.FetchTemplate(c.Request.Context(), c.Query("workspaceId"), c.Param("id"))
	if err != nil {
		h.log.Error().Err(err).Str("templateId", c.Param("id")).Msg("fetch template failed")
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *Handlers) PutTemplate(c *gin.Context) {
	var tpl domain.ReportTemplate
	if err := c.ShouldBindJSON(&tpl); err != nil {
		h.log.Error().Err(err).Msg("bad template payload")
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.templates.UpsertTemplate(c.Request.Context(), tpl); err != nil {
		h.log.Error().Err(err).Str("templateId", tpl.ID).Msg("upsert template failed")
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) DeleteTemplate(c *gin.Context) {
	if err := h.templates.DeleteTemplate(c.Request.Context(), c.Query("workspaceId"), c.Param("id")); err != nil {
		h.log.Error().Err(err).Str("templateId", c.Param("id")).Msg("delete template failed")
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) StoreTextReport(c *gin.Context) {
	var report domain.TextReport
	if err := c.ShouldBindJSON(&report); err != nil {
		h.log.Error().Err(err).Msg("bad text report payload")
		c.Status(http.StatusNoContent)
		return
	}
	id, err := h.texts.StoreTextReport(c.Request.Context(), report)
	if err != nil {
		h.log.Error().Err(err).Str("owner", report.Owner).Msg("store text report failed")
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handlers) GetTextReport(c *gin.Context) {
	report, err := h.texts.FetchTextReportByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error().Err(err).Str("id", c.Param("id")).Msg("fetch text report failed")
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handlers) ListTextReports(c *gin.Context) {
	owner := c.Query("owner")
	reports, err := h.texts.FetchTextReportsByOwner(c.Request.Context(), owner)
	if err != nil {
		h.log.Error().Err(err).Str("owner", owner).Msg("list text reports failed")
		c.JSON(http.StatusOK, []domain.TextReport{})
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *Handlers) UpdateTextReport(c *gin.Context) {
	var body struct {
		Text        string `json:"text"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.log.Error().Err(err).Msg("bad text report update payload")
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.texts.UpdateTextReport(c.Request.Context(), c.Param("id"), body.Text, body.Name, body.Description); err != nil {
		h.log.Error().Err(err).Str("id", c.Param("id")).Msg("update text report failed")
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) DeleteTextReport(c *gin.Context) {
	if err := h.texts.DeleteTextReportByID(c.Request.Context(), c.Param("id")); err != nil {
		h.log.Error().Err(err).Str("id", c.Param("id")).Msg("delete text report failed")
	}
	c.Status(http.StatusNoContent)
}
