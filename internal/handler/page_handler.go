package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/editor"
	"github.com/marketdev/internal/metrics"
	"github.com/marketdev/internal/service"
)

type pagePayload struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
	Draft   *bool  `json:"draft"`
}

// input converts the payload; new pages start as drafts and take their slug
// from the title when none is given.
func (p pagePayload) input(defaultDraft bool) service.PageInput {
	draft := defaultDraft
	if p.Draft != nil {
		draft = *p.Draft
	}
	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		slug = service.Slugify(p.Title)
	}
	return service.PageInput{Title: p.Title, Slug: slug, Content: p.Content, Draft: draft}
}

type pageResponse struct {
	ID        uint   `json:"id"`
	SiteID    uint   `json:"siteId"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Content   string `json:"content,omitempty"`
	Draft     bool   `json:"draft"`
	UpdatedAt string `json:"updatedAt"`
}

func newPageResponse(page *db.Page, withContent bool) pageResponse {
	resp := pageResponse{
		ID:        page.ID,
		SiteID:    page.SiteID,
		Title:     page.Title,
		Slug:      page.Slug,
		Draft:     page.Draft,
		UpdatedAt: page.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if withContent {
		resp.Content = page.Content
	}
	return resp
}

// ListPages returns a site's pages; drafts are included unless ?drafts=false.
func (a *API) ListPages(c *gin.Context) {
	siteID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	includeDrafts := c.Query("drafts") == "" || parseBoolQuery(c, "drafts")
	pages, err := a.pages.List(siteID, includeDrafts)
	if err != nil {
		a.writeServiceError(c, err, "failed to load pages")
		return
	}
	out := make([]pageResponse, 0, len(pages))
	for i := range pages {
		out = append(out, newPageResponse(&pages[i], false))
	}
	c.JSON(http.StatusOK, gin.H{"pages": out})
}

// CreatePage creates a page on a site.
func (a *API) CreatePage(c *gin.Context) {
	siteID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload pagePayload
	if !bindJSON(c, &payload, "invalid page payload") {
		return
	}
	page, err := a.pages.Create(siteID, payload.input(true))
	if err != nil {
		a.writeServiceError(c, err, "failed to create page")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"page": newPageResponse(page, true)})
}

// GetPage returns a page including its markup.
func (a *API) GetPage(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	page, err := a.pages.Get(id)
	if err != nil {
		a.writeServiceError(c, err, "failed to load page")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": newPageResponse(page, true)})
}

// UpdatePage is the editor's save action. Rejections come back as 4xx with
// {"error": ...}; unexpected failures as 500.
func (a *API) UpdatePage(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload pagePayload
	if !bindJSON(c, &payload, "invalid page payload") {
		return
	}

	current, err := a.pages.Get(id)
	if err != nil {
		a.writeServiceError(c, err, "failed to load page")
		return
	}
	page, err := a.pages.Update(id, payload.input(current.Draft))
	if err != nil {
		if statusForError(err) < http.StatusInternalServerError {
			metrics.RecordSave("rejected")
		} else {
			metrics.RecordSave("failed")
		}
		a.writeServiceError(c, err, "failed to save page")
		return
	}
	metrics.RecordSave("saved")
	c.JSON(http.StatusOK, gin.H{"page": newPageResponse(page, true)})
}

// DeletePage removes a page; the homepage cannot be deleted.
func (a *API) DeletePage(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := a.pages.Delete(id); err != nil {
		a.writeServiceError(c, err, "failed to delete page")
		return
	}
	c.Status(http.StatusNoContent)
}

// ShowEditor renders the editor shell for a page.
func (a *API) ShowEditor(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	page, err := a.pages.Get(id)
	if err != nil {
		c.HTML(statusForError(err), "not_found.html", gin.H{"title": "Page not found"})
		return
	}
	mode, err := editor.ParseViewMode(c.Query("view"))
	if err != nil {
		mode = editor.ViewSplit
	}
	c.HTML(http.StatusOK, "editor.html", gin.H{
		"title":       "Edit " + page.Title,
		"page":        newPageResponse(page, true),
		"viewMode":    string(mode),
		"showCode":    mode.ShowsCode(),
		"showPreview": mode.ShowsPreview(),
		"insertables": a.catalog.Insertables(),
	})
}

// savePage persists an editor draft, marking explicit rejections so the
// editor can tell them apart from failures.
func (a *API) savePage(ctx context.Context, pageID uint, draft editor.Draft) error {
	pages := service.NewPageService(a.db.WithContext(ctx))
	_, err := pages.Update(pageID, draft.Input())
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if statusForError(err) < http.StatusInternalServerError {
		return &editor.RejectedError{Err: err}
	}
	return err
}
