package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/html-comb/app/feed"
	"github.com/lysyi3m/html-comb/app/site"
)

// NewHandler wires the HTTP handlers. pages may be nil when the cache backend
// cannot report its size.
func NewHandler(registry *site.Registry, generator GeneratorInterface, renderer RendererInterface,
	pages PageCounter, baseUrl string, requestTimeout time.Duration) *Handler {
	return &Handler{
		registry:       registry,
		generator:      generator,
		renderer:       renderer,
		pages:          pages,
		baseUrl:        strings.TrimSuffix(baseUrl, "/"),
		requestTimeout: requestTimeout,
	}
}

// GetFeed serves /rss/:name and /rss?url=, looking the site up by alias or
// by configured page URL.
func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		name = c.Query("url")
	}
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	spec, ok := h.registry.Find(name)
	if !ok {
		slog.Warn("Site configuration not found", "site", name)
		c.Status(http.StatusNotFound)
		return
	}

	ctx := c.Request.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	channel, err := h.generator.Run(ctx, *spec)
	if err != nil {
		status := errorStatus(err)
		slog.Error("Feed generation error", "site", spec.Name(), "status", status, "error", err)
		c.String(status, err.Error())
		return
	}

	rss, err := h.renderer.Run(channel, h.selfLink(c, spec))
	if err != nil {
		slog.Error("RSS generation error", "site", spec.Name(), "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(channel.Items)))
	c.Header("X-Feed-Name", spec.Name())

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":                "ok",
		"timestamp":             time.Now().In(time.Local).Format(time.RFC3339),
		"loaded_configurations": h.registry.GetSiteCount(),
	}

	if h.pages != nil {
		count, err := h.pages.GetPageCount(c.Request.Context())
		if err != nil {
			slog.Error("Failed to count cached pages", "error", err)
			health["status"] = "degraded"
		} else {
			health["cached_pages"] = count
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListSites(c *gin.Context) {
	specs := h.registry.GetSites()

	sites := make([]map[string]interface{}, 0, len(specs))
	for name, spec := range specs {
		sites = append(sites, map[string]interface{}{
			"name":      name,
			"url":       spec.URL,
			"refresh":   (time.Duration(spec.Refresh) * time.Second).String(),
			"enclosure": spec.Items.Enclosure != nil,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sites": sites,
		"total": len(sites),
	})
}

func (h *Handler) APIGetSiteDetails(c *gin.Context) {
	name := c.Param("name")

	spec, ok := h.registry.Find(name)
	if !ok {
		slog.Warn("Site configuration not found", "site", name)
		c.JSON(http.StatusNotFound, gin.H{"error": "Site configuration not found"})
		return
	}

	c.JSON(http.StatusOK, siteDetails(spec))
}

func (h *Handler) APIReloadSite(c *gin.Context) {
	name := c.Param("name")

	spec, err := h.registry.Reload(name)
	if errors.Is(err, site.ErrSiteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site configuration not found"})
		return
	}
	if err != nil {
		slog.Error("Error reloading configuration", "site", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	slog.Info("Site configuration reloaded", "site", spec.Name())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded successfully",
		"site":    siteDetails(spec),
	})
}

func siteDetails(spec *site.Spec) map[string]interface{} {
	items := map[string]interface{}{
		"title":       spec.Items.Title,
		"description": spec.Items.Description,
		"url":         spec.Items.URL,
		"pub_date":    spec.Items.PubDate,
		"guid":        spec.Items.GUID,
	}
	if enclosure := spec.Items.Enclosure; enclosure != nil {
		items["enclosure"] = map[string]interface{}{
			"url":         enclosure.URL,
			"length":      enclosure.Length,
			"type":        enclosure.Type,
			"declarative": enclosure.Declarative(),
		}
	}

	return map[string]interface{}{
		"name":    spec.Name(),
		"url":     spec.URL,
		"alias":   spec.Alias,
		"refresh": (time.Duration(spec.Refresh) * time.Second).String(),
		"file":    spec.File,
		"items":   items,
	}
}

func errorStatus(err error) int {
	var (
		fetchErr *feed.FetchError
		probeErr *feed.ProbeError
	)
	// Deadline first: fetch and probe errors wrap it when the request times out.
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &fetchErr), errors.As(err, &probeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) selfLink(c *gin.Context, spec *site.Spec) string {
	base := h.baseUrl
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/rss/" + url.PathEscape(spec.Name())
}
