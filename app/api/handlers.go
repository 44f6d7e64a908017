package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/alpha-scanner/app/analysis"
	"github.com/lysyi3m/alpha-scanner/app/database"
)

func (h *Handler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "Alpha Scanner",
		"version":     h.version,
		"description": "Discovers early-stage crypto/web3 projects and scores their alpha potential",
		"endpoints": gin.H{
			"projects":  "/api/projects",
			"project":   "/api/projects/<slug>",
			"stats":     "/api/stats",
			"scheduler": "/api/scheduler/status",
			"health":    "/health",
		},
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"scheduler_running": h.scheduler.IsRunning(),
	}

	if count, err := h.projectRepo.GetProjectCount(); err == nil {
		health["projects"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListProjects(c *gin.Context) {
	filter := database.ProjectFilter{Limit: 50}

	if status := c.Query("status"); status != "" {
		if !validStatuses[status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status: " + status})
			return
		}
		filter.Status = status
	}

	if category := c.Query("category"); category != "" {
		if !validCategories[category] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category: " + category})
			return
		}
		filter.Category = category
	}

	if source := c.Query("source"); source != "" {
		if !validSources[source] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source: " + source})
			return
		}
		filter.Source = source
	}

	if raw := c.Query("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil || minScore < 0 || minScore > 10 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_score must be a number between 0 and 10"})
			return
		}
		filter.MinScore = minScore
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 500"})
			return
		}
		filter.Limit = limit
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return
		}
		filter.Offset = offset
	}

	projects, err := h.projectRepo.GetProjects(filter)
	if err != nil {
		slog.Error("Database error", "operation", "list_projects", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	responses := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, toProjectResponse(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": responses,
		"total":    len(responses),
	})
}

func (h *Handler) GetProject(c *gin.Context) {
	slug := c.Param("slug")

	project, err := h.projectRepo.GetProjectBySlug(slug)
	if err != nil {
		slog.Error("Database error", "operation", "get_project", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found: " + slug})
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(*project))
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.projectRepo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":       stats.Total,
		"by_status":   stats.ByStatus,
		"by_source":   stats.BySource,
		"by_category": stats.ByCategory,
	})
}

func (h *Handler) GetCollectionLogs(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 200"})
			return
		}
		limit = parsed
	}

	logs, err := h.logRepo.GetRecentLogs(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_collection_logs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	entries := make([]gin.H, 0, len(logs))
	for _, log := range logs {
		entries = append(entries, gin.H{
			"source":         log.Source,
			"collector":      log.CollectorName,
			"started_at":     log.StartedAt,
			"finished_at":    log.FinishedAt,
			"projects_found": log.ProjectsFound,
			"success":        log.Success,
			"error_message":  log.ErrorMessage,
		})
	}

	c.JSON(http.StatusOK, gin.H{"logs": entries, "total": len(entries)})
}

// TriggerCollect runs one collection pass synchronously and reports its
// result. Source "all" runs every registered adapter.
func (h *Handler) TriggerCollect(c *gin.Context) {
	source := c.Param("source")

	if source == "all" {
		c.JSON(http.StatusOK, h.runner.RunAll(c.Request.Context()))
		return
	}

	if !validSources[source] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source: " + source})
		return
	}

	c.JSON(http.StatusOK, h.runner.Run(c.Request.Context(), source))
}

func (h *Handler) SchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running": h.scheduler.IsRunning(),
		"jobs":    h.scheduler.Jobs(),
	})
}

func (h *Handler) SchedulerStart(c *gin.Context) {
	h.scheduler.Start()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "running": true})
}

func (h *Handler) SchedulerStop(c *gin.Context) {
	h.scheduler.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "running": false})
}

func (h *Handler) SchedulerRunNow(c *gin.Context) {
	if err := h.scheduler.RunNow(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "collection jobs triggered"})
}

func (h *Handler) GetAnalysisPrompt(c *gin.Context) {
	slug := c.Param("slug")

	project, err := h.projectRepo.GetProjectBySlug(slug)
	if err != nil {
		slog.Error("Database error", "operation", "get_analysis_prompt", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found: " + slug})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":   project.Slug,
		"name":   project.Name,
		"prompt": analysis.BuildPrompt(project),
	})
}

func (h *Handler) SaveAnalysis(c *gin.Context) {
	slug := c.Param("slug")

	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if req.Summary == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "summary is required"})
		return
	}
	if req.Category != "" && !validCategories[req.Category] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category: " + req.Category})
		return
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > 10) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be between 0 and 10"})
		return
	}
	if req.Confidence != nil && (*req.Confidence < 0 || *req.Confidence > 1) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confidence must be between 0 and 1"})
		return
	}

	err := h.projectRepo.SaveAnalysis(slug, database.Analysis{
		Summary:        req.Summary,
		WhyEarly:       req.WhyEarly,
		RedFlags:       req.RedFlags,
		Recommendation: req.Recommendation,
		Category:       req.Category,
		Score:          req.Score,
		Confidence:     req.Confidence,
	})
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found: " + slug})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "save_analysis", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "slug": slug})
}

// RunAnalysis generates the prompt, runs it against OpenAI and persists the
// parsed result. Available only when an OpenAI key is configured.
func (h *Handler) RunAnalysis(c *gin.Context) {
	if h.analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analyzer not configured (OPENAI_API_KEY not set)"})
		return
	}

	slug := c.Param("slug")

	project, err := h.projectRepo.GetProjectBySlug(slug)
	if err != nil {
		slog.Error("Database error", "operation", "run_analysis", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found: " + slug})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), project)
	if err != nil {
		slog.Error("Analysis failed", "slug", slug, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed: " + err.Error()})
		return
	}

	if err := h.projectRepo.SaveAnalysis(slug, result); err != nil {
		slog.Error("Database error", "operation", "save_analysis", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"slug":           slug,
		"summary":        result.Summary,
		"why_early":      result.WhyEarly,
		"red_flags":      result.RedFlags,
		"recommendation": result.Recommendation,
	})
}

func (h *Handler) ArchiveProject(c *gin.Context) {
	slug := c.Param("slug")

	err := h.projectRepo.ArchiveProject(slug)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found: " + slug})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "archive_project", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "slug": slug})
}
