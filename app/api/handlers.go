package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spota/spota-server/app/auth"
	"github.com/spota/spota-server/app/catalog"
	"github.com/spota/spota-server/app/cfg"
	"github.com/spota/spota-server/app/database"
	"github.com/spota/spota-server/app/events"
	"github.com/spota/spota-server/app/metrics"
	"github.com/spota/spota-server/app/tasks"
)

func NewHandler(cat *catalog.Catalog, configCache *events.ConfigCache,
	client *events.Client, rssClient *events.RSSClient,
	favorites database.FavoriteRepository, authService *auth.Service,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		catalog:     cat,
		configCache: configCache,
		client:      client,
		rssClient:   rssClient,
		favorites:   favorites,
		authService: authService,
		scheduler:   scheduler,
	}
}

// GetEvents serves the catalog snapshot, optionally narrowed by category
// and price. When nothing has been committed yet (first request racing the
// first refresh) it falls through to a live fetch, which degrades to the
// placeholder rather than erroring.
func (h *Handler) GetEvents(c *gin.Context) {
	category := c.Query("category")
	freeOnly := c.Query("free") == "true"

	limit := 0
	if rawLimit := c.Query("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	if h.catalog.EventCount() == 0 {
		result := h.client.Fetch(c.Request.Context(), events.FetchOptions{
			Limit:    limit,
			FreeOnly: freeOnly,
			Category: category,
		})
		c.JSON(http.StatusOK, eventsResponse{
			Status: result.Status,
			Total:  len(result.Events),
			Events: result.Events,
		})
		return
	}

	filtered := h.catalog.Filter(category, freeOnly)
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	status := events.StatusOK
	if h.catalog.Degraded() {
		status = events.StatusDegraded
	}

	c.JSON(http.StatusOK, eventsResponse{
		Status: status,
		Total:  len(filtered),
		Events: filtered,
	})
}

// GetEvent serves a single catalog event by id.
func (h *Handler) GetEvent(c *gin.Context) {
	id := c.Param("id")

	event, ok := h.catalog.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// SearchEvents runs a live upstream search. Failures surface as an empty
// StatusEmpty result, never as a 5xx.
func (h *Handler) SearchEvents(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing q parameter"})
		return
	}

	result := h.client.Search(c.Request.Context(), query)
	metrics.SearchesTotal.WithLabelValues(string(result.Status)).Inc()

	c.JSON(http.StatusOK, eventsResponse{
		Status: result.Status,
		Total:  len(result.Events),
		Events: result.Events,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"events":    h.catalog.EventCount(),
	}

	health["loaded_sources"] = h.configCache.GetConfigCount()

	if favoriteCount, err := h.favorites.GetFavoriteCount(); err == nil {
		health["favorites"] = favoriteCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	sources := make([]map[string]interface{}, 0)

	for name, sourceConfig := range h.configCache.GetConfigs() {
		sourceInfo := map[string]interface{}{
			"name":             name,
			"kind":             sourceConfig.Kind,
			"enabled":          sourceConfig.Settings.Enabled,
			"refresh_interval": sourceConfig.Settings.GetRefreshInterval().String(),
		}

		if snapshot, ok := h.catalog.SourceEvents(name); ok {
			sourceInfo["events"] = len(snapshot)
		}
		if status, refreshedAt, ok := h.catalog.SourceStatus(name); ok {
			sourceInfo["status"] = status
			sourceInfo["refreshed_at"] = refreshedAt.Format(time.RFC3339)
		}

		sources = append(sources, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"version":      cfg.Get().Version,
		"total_events": h.catalog.EventCount(),
		"sources":      sources,
	})
}

// Favorites

func (h *Handler) ListFavorites(c *gin.Context) {
	ids, err := h.favorites.ListFavorites()
	if err != nil {
		slog.Error("Database error", "operation", "list_favorites", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// Favorited events still present in the catalog are returned in full;
	// ids alone are kept for events that have since left the snapshot.
	favorited := make([]events.Event, 0, len(ids))
	for _, id := range ids {
		if event, ok := h.catalog.Get(id); ok {
			favorited = append(favorited, event)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"ids":    ids,
		"events": favorited,
		"total":  len(ids),
	})
}

func (h *Handler) AddFavorite(c *gin.Context) {
	id := c.Param("id")

	if err := h.favorites.AddFavorite(id); err != nil {
		slog.Error("Database error", "operation", "add_favorite", "event", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	id := c.Param("id")

	if err := h.favorites.RemoveFavorite(id); err != nil {
		slog.Error("Database error", "operation", "remove_favorite", "event", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// Auth

func (h *Handler) Register(c *gin.Context) {
	var credentials auth.RegisterCredentials
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	result := h.authService.Register(c.Request.Context(), credentials)
	c.JSON(authStatusCode(result, http.StatusBadRequest), result)
}

func (h *Handler) Login(c *gin.Context) {
	var credentials auth.LoginCredentials
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	result := h.authService.Login(c.Request.Context(), credentials)
	c.JSON(authStatusCode(result, http.StatusUnauthorized), result)
}

func (h *Handler) Logout(c *gin.Context) {
	h.authService.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetProfile(c *gin.Context) {
	result := h.authService.Profile(c.Request.Context())
	c.JSON(authStatusCode(result, http.StatusUnauthorized), result)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var update auth.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	result := h.authService.UpdateProfile(c.Request.Context(), update)
	c.JSON(authStatusCode(result, http.StatusBadRequest), result)
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	result := h.authService.DeleteAccount(c.Request.Context())
	c.JSON(authStatusCode(result, http.StatusBadRequest), result)
}

func authStatusCode(result auth.Result, failureCode int) int {
	if result.Success {
		return http.StatusOK
	}
	return failureCode
}

// Management API

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sources := make([]map[string]interface{}, 0, len(configs))
	for _, sourceConfig := range configs {
		sourceInfo := map[string]interface{}{
			"name":             sourceConfig.Name,
			"kind":             sourceConfig.Kind,
			"url":              sourceConfig.URL,
			"enabled":          sourceConfig.Settings.Enabled,
			"limit":            sourceConfig.Settings.Limit,
			"refresh_interval": sourceConfig.Settings.GetRefreshInterval().String(),
		}

		if snapshot, ok := h.catalog.SourceEvents(sourceConfig.Name); ok {
			sourceInfo["events"] = len(snapshot)
		}

		sources = append(sources, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIRefreshSource(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	sourceConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	refreshTask := tasks.NewRefreshSourceTask(name, sourceConfig, h.client, h.rssClient, h.catalog)
	if err := h.scheduler.EnqueueTask(refreshTask); err != nil {
		slog.Error("Error enqueueing refresh task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue refresh task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and refresh enqueued successfully",
		"source": gin.H{
			"name": name,
			"kind": sourceConfig.Kind,
			"url":  sourceConfig.URL,
		},
		"task": gin.H{
			"id":   refreshTask.ID,
			"type": refreshTask.Type,
		},
	})
}
