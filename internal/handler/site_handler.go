package handler

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/service"
)

type siteResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Subdomain    string `json:"subdomain"`
	Logo         string `json:"logo"`
	Organization string `json:"organization"`
	HomepageID   *uint  `json:"homepageId"`
}

func newSiteResponse(site *db.Site) siteResponse {
	return siteResponse{
		ID:           site.ID,
		Name:         site.Name,
		Subdomain:    site.Subdomain,
		Logo:         site.Logo,
		Organization: site.Organization.Name,
		HomepageID:   site.HomepageID,
	}
}

// ListSites returns every site.
func (a *API) ListSites(c *gin.Context) {
	sites, err := a.sites.List()
	if err != nil {
		a.writeServiceError(c, err, "failed to load sites")
		return
	}
	out := make([]siteResponse, 0, len(sites))
	for i := range sites {
		out = append(out, newSiteResponse(&sites[i]))
	}
	c.JSON(http.StatusOK, gin.H{"sites": out})
}

// CreateSite creates a site and its organization.
func (a *API) CreateSite(c *gin.Context) {
	var in service.SiteInput
	if !bindJSON(c, &in, "invalid site payload") {
		return
	}
	site, err := a.sites.Create(in)
	if err != nil {
		a.writeServiceError(c, err, "failed to create site")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"site": newSiteResponse(site)})
}

// GetSite returns one site.
func (a *API) GetSite(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	site, err := a.sites.Get(id)
	if err != nil {
		a.writeServiceError(c, err, "failed to load site")
		return
	}
	c.JSON(http.StatusOK, gin.H{"site": newSiteResponse(site)})
}

// UpdateSite changes name, subdomain, logo and organization name.
func (a *API) UpdateSite(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in service.SiteInput
	if !bindJSON(c, &in, "invalid site payload") {
		return
	}
	site, err := a.sites.Update(id, in)
	if err != nil {
		a.writeServiceError(c, err, "failed to update site")
		return
	}
	c.JSON(http.StatusOK, gin.H{"site": newSiteResponse(site)})
}

type homepagePayload struct {
	PageID uint `json:"pageId" binding:"required"`
}

// SetHomepage flags a page as the site's homepage.
func (a *API) SetHomepage(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload homepagePayload
	if !bindJSON(c, &payload, "pageId is required") {
		return
	}
	if err := a.sites.SetHomepage(id, payload.PageID); err != nil {
		a.writeServiceError(c, err, "failed to set homepage")
		return
	}
	c.JSON(http.StatusOK, gin.H{"homepageId": payload.PageID})
}

var embedWidgets = map[string]bool{
	"tiers":    true,
	"packages": true,
}

// EmbedSnippet returns the script tag that embeds a storefront widget on
// another website.
func (a *API) EmbedSnippet(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	widget := strings.ToLower(strings.TrimSpace(c.DefaultQuery("widget", "tiers")))
	if !embedWidgets[widget] {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown widget %q", widget))
		return
	}
	site, err := a.sites.Get(id)
	if err != nil {
		a.writeServiceError(c, err, "failed to load site")
		return
	}

	settings := map[string]string{"theme": "default"}
	if theme := strings.TrimSpace(c.Query("theme")); theme != "" {
		if t, found := a.catalog.Theme(theme); found {
			settings["theme"] = strings.ToLower(t.Name)
		}
	}
	c.JSON(http.StatusOK, gin.H{"snippet": embedScript(a.opts.RootDomain, site.Subdomain, widget, settings)})
}

func embedScript(rootDomain, subdomain, widget string, settings map[string]string) string {
	encoded, _ := json.Marshal(settings)
	return fmt.Sprintf(
		`<script src="https://%s/embed.js" data-domain="%s" data-widget="%s" data-settings='%s' async></script>`,
		html.EscapeString(rootDomain),
		html.EscapeString(subdomain+"."+rootDomain),
		html.EscapeString(widget),
		strings.ReplaceAll(string(encoded), "'", "&#39;"),
	)
}

type siteOverview struct {
	Site  siteResponse
	Pages []pageResponse
}

// ShowSites 渲染后台站点列表及其页面
func (a *API) ShowSites(c *gin.Context) {
	sites, err := a.sites.List()
	if err != nil {
		a.publicError(c, err)
		return
	}

	overview := make([]siteOverview, 0, len(sites))
	for i := range sites {
		pages, err := a.pages.List(sites[i].ID, true)
		if err != nil {
			a.publicError(c, err)
			return
		}
		entry := siteOverview{Site: newSiteResponse(&sites[i])}
		for j := range pages {
			entry.Pages = append(entry.Pages, newPageResponse(&pages[j], false))
		}
		overview = append(overview, entry)
	}

	c.HTML(http.StatusOK, "sites.html", gin.H{
		"title":      "Sites",
		"sites":      overview,
		"rootDomain": a.opts.RootDomain,
	})
}
