package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketdev/internal/editor"
	"github.com/marketdev/internal/render"
	"go.uber.org/zap"
)

type previewPayload struct {
	SiteID uint    `json:"siteId"`
	PageID uint    `json:"pageId"`
	Title  string  `json:"title"`
	Slug   string  `json:"slug"`
	Markup string  `json:"content"`
	Width  float64 `json:"width"`
}

// Preview renders unsaved markup in preview mode inside the scaled frame.
func (a *API) Preview(c *gin.Context) {
	var payload previewPayload
	if !bindJSON(c, &payload, "invalid preview payload") {
		return
	}

	var site *render.SiteContext
	if payload.SiteID != 0 {
		ctx, err := a.sites.Context(payload.SiteID)
		if err != nil {
			a.writeServiceError(c, err, "failed to load site")
			return
		}
		site = ctx
	}

	page := &render.PageContext{ID: payload.PageID, Title: payload.Title, Slug: payload.Slug, Draft: true}
	html := a.pipeline.Preview(payload.Markup, a.renderOptions(site, page, true), payload.Width)
	c.JSON(http.StatusOK, gin.H{"html": html})
}

// Insertables lists the components, templates and themes the editor sidebar offers.
func (a *API) Insertables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"insertables": a.catalog.Insertables(),
		"themes":      a.catalog.Themes,
	})
}

// previewFor returns the preview renderer a live session uses for a page.
func (a *API) previewFor(siteID, pageID uint) func(editor.Draft, float64) string {
	return func(d editor.Draft, width float64) string {
		site, err := a.sites.Context(siteID)
		if err != nil {
			a.logger.Warn("preview without site context", zap.Uint("site_id", siteID), zap.Error(err))
			site = nil
		}
		page := &render.PageContext{ID: pageID, Title: d.Title, Slug: d.Slug, Draft: d.Draft}
		return a.pipeline.Preview(d.Content, a.renderOptions(site, page, true), width)
	}
}
