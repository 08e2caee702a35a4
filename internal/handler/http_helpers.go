package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marketdev/internal/logging"
	"github.com/marketdev/internal/service"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// uintParam parses a path id and writes a 400 when it is malformed.
func uintParam(c *gin.Context, key string) (uint, bool) {
	id, err := parseUintParam(c, key)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

func parseBoolQuery(c *gin.Context, key string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// statusForError maps service errors to HTTP status codes. Explicit
// rejections are 4xx; anything unrecognised is a 500.
func statusForError(err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrPageNotFound),
		errors.Is(err, service.ErrSiteNotFound),
		errors.Is(err, service.ErrTierNotFound),
		errors.Is(err, service.ErrNoHomepage):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrSubdomainTaken),
		errors.Is(err, service.ErrPageIsHomepage):
		return http.StatusConflict
	case errors.Is(err, service.ErrPageNotOnSite),
		errors.Is(err, service.ErrHomepageMustBeLive):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders err using the {"error": ...} contract and adds
// per-field messages for validation failures.
func (a *API) writeServiceError(c *gin.Context, err error, failMessage string) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c, a.logger).Error(failMessage, zap.Error(err))
		respondError(c, status, failMessage)
		return
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(status, gin.H{"error": err.Error(), "fields": verr.Fields})
		return
	}
	respondError(c, status, err.Error())
}
