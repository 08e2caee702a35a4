package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/logging"
	"github.com/marketdev/internal/render"
	"github.com/marketdev/internal/service"
	"go.uber.org/zap"
)

// ShowSiteHome serves a site's homepage at /s/:subdomain.
func (a *API) ShowSiteHome(c *gin.Context) {
	site, ok := a.publicSite(c)
	if !ok {
		return
	}
	page, err := a.pages.Homepage(site.ID)
	if err != nil {
		a.publicError(c, err)
		return
	}
	a.servePage(c, site, page)
}

// ShowSitePage serves /s/:subdomain/:slug. Drafts are not found.
func (a *API) ShowSitePage(c *gin.Context) {
	site, ok := a.publicSite(c)
	if !ok {
		return
	}
	page, err := a.pages.GetBySlug(site.ID, c.Param("slug"))
	if err != nil {
		a.publicError(c, err)
		return
	}
	a.servePage(c, site, page)
}

func (a *API) publicSite(c *gin.Context) (*db.Site, bool) {
	site, err := a.sites.GetBySubdomain(c.Param("subdomain"))
	if err != nil {
		a.publicError(c, err)
		return nil, false
	}
	return site, true
}

func (a *API) servePage(c *gin.Context, site *db.Site, page *db.Page) {
	if page.Draft {
		a.publicError(c, service.ErrPageNotFound)
		return
	}

	siteCtx, err := a.sites.Context(site.ID)
	if err != nil {
		a.publicError(c, err)
		return
	}

	opts := a.renderOptions(siteCtx, service.PageContext(page), false)
	body := a.pipeline.RenderPublished(c.Request.Context(), page.Content, opts)

	c.HTML(http.StatusOK, "storefront.html", gin.H{
		"title":    pageTitle(siteCtx, page),
		"siteName": siteCtx.DisplayName(),
		"logo":     siteCtx.Logo,
		"body":     template.HTML(body),
	})
}

func (a *API) publicError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c, a.logger).Error("public page failed", zap.Error(err))
	} else {
		status = http.StatusNotFound
	}
	c.HTML(status, "not_found.html", gin.H{"title": http.StatusText(status)})
}

func pageTitle(site *render.SiteContext, page *db.Page) string {
	name := site.DisplayName()
	if page.Title == "" || page.Title == name {
		return name
	}
	return page.Title + " · " + name
}
