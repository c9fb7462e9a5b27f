package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"property-catalog/internal/database"
	"property-catalog/internal/logger"
	"property-catalog/internal/models"
	"property-catalog/internal/repository"

	"github.com/gin-gonic/gin"
)

// PropertyHandler exposes the property repository over HTTP
type PropertyHandler struct {
	repo repository.PropertyRepo
	log  *logger.Logger
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(repo repository.PropertyRepo, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{repo: repo, log: log.With("handler", "properties")}
}

// ListProperties returns all live properties, or those matching the query filters
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var properties []models.Property
	if criteriaEmpty(criteria) {
		properties, err = h.repo.GetAll(c.Request.Context())
	} else {
		properties, err = h.repo.Search(c.Request.Context(), criteria)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"count":      len(properties),
	})
}

// GetProperty returns one live property with its images
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c)
		return
	}

	property, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if property == nil {
		notFound(c)
		return
	}

	c.JSON(http.StatusOK, property)
}

// HeadProperty answers 200 when the property is live, 404 otherwise
func (h *PropertyHandler) HeadProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	exists, err := h.repo.Exists(c.Request.Context(), id)
	if err != nil {
		h.log.Error("exists check failed", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

// CreateProperty stores a new property with its images
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var p models.Property
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	created, err := h.repo.Create(c.Request.Context(), &p)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Location", "/api/properties/"+strconv.FormatInt(created.ID, 10))
	c.JSON(http.StatusCreated, created)
}

// UpdateProperty replaces a live property and its full image set
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c)
		return
	}

	var p models.Property
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	p.ID = id

	updated, err := h.repo.Update(c.Request.Context(), &p)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteProperty soft-deletes a live property
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c)
		return
	}

	deleted, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !deleted {
		notFound(c)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddImage attaches one image to a live property
func (h *PropertyHandler) AddImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c)
		return
	}

	var img models.PropertyImage
	if err := c.ShouldBindJSON(&img); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	added, err := h.repo.AddImage(c.Request.Context(), id, &img)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, added)
}

// RemoveImage deletes one image of a live property
func (h *PropertyHandler) RemoveImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		notFound(c)
		return
	}
	imageID, ok := positiveID(c.Param("imageId"))
	if !ok {
		notFound(c)
		return
	}

	removed, err := h.repo.RemoveImage(c.Request.Context(), id, imageID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !removed {
		notFound(c)
		return
	}

	c.Status(http.StatusNoContent)
}

type option struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// SearchOptions returns the values a search form offers: every property type
// and listing status, and the cities that currently have live listings.
func (h *PropertyHandler) SearchOptions(c *gin.Context) {
	cities, err := h.repo.Cities(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	types := make([]option, 0, len(models.PropertyTypes()))
	for _, t := range models.PropertyTypes() {
		types = append(types, option{Code: int(t), Name: t.String()})
	}
	statuses := make([]option, 0, len(models.ListingStatuses()))
	for _, s := range models.ListingStatuses() {
		statuses = append(statuses, option{Code: int(s), Name: s.String()})
	}

	c.JSON(http.StatusOK, gin.H{
		"types":    types,
		"statuses": statuses,
		"cities":   cities,
	})
}

// fail maps repository errors to responses. Store error text is never returned.
func (h *PropertyHandler) fail(c *gin.Context, err error) {
	var verr *repository.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, database.ErrNotFound):
		notFound(c)
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Warn("request timed out", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request timed out"})
	default:
		h.log.Error("request failed", "path", c.FullPath(), "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
}

// parseID accepts only positive integer ids
func parseID(c *gin.Context) (int64, bool) {
	return positiveID(c.Param("id"))
}

func positiveID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseCriteria reads search filters from the query string. Malformed enum or
// number values are rejected here, before any query is built.
func parseCriteria(c *gin.Context) (models.SearchCriteria, error) {
	var criteria models.SearchCriteria

	if city, ok := c.GetQuery("city"); ok && strings.TrimSpace(city) != "" {
		criteria.City = &city
	}
	if district, ok := c.GetQuery("district"); ok && strings.TrimSpace(district) != "" {
		criteria.District = &district
	}
	if typeStr := c.Query("type"); typeStr != "" {
		t, err := models.ParsePropertyType(typeStr)
		if err != nil {
			return criteria, err
		}
		criteria.Type = &t
	}
	if statusStr := c.Query("status"); statusStr != "" {
		s, err := models.ParseListingStatus(statusStr)
		if err != nil {
			return criteria, err
		}
		criteria.Status = &s
	}
	if minStr := c.Query("min_price"); minStr != "" {
		v, err := parsePrice("min_price", minStr)
		if err != nil {
			return criteria, err
		}
		criteria.MinPrice = &v
	}
	if maxStr := c.Query("max_price"); maxStr != "" {
		v, err := parsePrice("max_price", maxStr)
		if err != nil {
			return criteria, err
		}
		criteria.MaxPrice = &v
	}

	return criteria, nil
}

// parsePrice accepts finite numbers only; ParseFloat alone would let NaN and Inf through.
func parsePrice(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number", name)
	}
	return v, nil
}

func criteriaEmpty(c models.SearchCriteria) bool {
	return c.City == nil && c.District == nil && c.Type == nil &&
		c.Status == nil && c.MinPrice == nil && c.MaxPrice == nil
}
