package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/service"
)

type tierResponse struct {
	ID          uint     `json:"id"`
	SiteID      uint     `json:"siteId"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	Currency    string   `json:"currency"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Published   bool     `json:"published"`
	SortOrder   int      `json:"sortOrder"`
}

func newTierResponse(tier *db.Tier) tierResponse {
	features := tier.Features()
	if features == nil {
		features = []string{}
	}
	return tierResponse{
		ID:          tier.ID,
		SiteID:      tier.SiteID,
		Name:        tier.Name,
		Price:       tier.Price,
		Currency:    tier.Currency,
		Description: tier.Description,
		Features:    features,
		Published:   tier.Published,
		SortOrder:   tier.SortOrder,
	}
}

// ListTiers returns a site's tiers; ?published=true hides unpublished ones.
func (a *API) ListTiers(c *gin.Context) {
	siteID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	tiers, err := a.tiers.List(siteID, parseBoolQuery(c, "published"))
	if err != nil {
		a.writeServiceError(c, err, "failed to load tiers")
		return
	}
	out := make([]tierResponse, 0, len(tiers))
	for i := range tiers {
		out = append(out, newTierResponse(&tiers[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tiers": out})
}

// CreateTier adds a tier to a site.
func (a *API) CreateTier(c *gin.Context) {
	siteID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in service.TierInput
	if !bindJSON(c, &in, "invalid tier payload") {
		return
	}
	tier, err := a.tiers.Create(siteID, in)
	if err != nil {
		a.writeServiceError(c, err, "failed to create tier")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tier": newTierResponse(tier)})
}

// UpdateTier overwrites a tier.
func (a *API) UpdateTier(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in service.TierInput
	if !bindJSON(c, &in, "invalid tier payload") {
		return
	}
	tier, err := a.tiers.Update(id, in)
	if err != nil {
		a.writeServiceError(c, err, "failed to update tier")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tier": newTierResponse(tier)})
}

type publishPayload struct {
	Published bool `json:"published"`
}

// PublishTier toggles storefront visibility.
func (a *API) PublishTier(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload publishPayload
	if !bindJSON(c, &payload, "invalid publish payload") {
		return
	}
	if err := a.tiers.SetPublished(id, payload.Published); err != nil {
		a.writeServiceError(c, err, "failed to update tier")
		return
	}
	c.JSON(http.StatusOK, gin.H{"published": payload.Published})
}

// DeleteTier removes a tier.
func (a *API) DeleteTier(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := a.tiers.Delete(id); err != nil {
		a.writeServiceError(c, err, "failed to delete tier")
		return
	}
	c.Status(http.StatusNoContent)
}
