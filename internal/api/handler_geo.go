package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"worklog-backend/internal/geo"
)

type siteCheckRequest struct {
	Lat          *float64 `json:"lat" binding:"required"`
	Lng          *float64 `json:"lng" binding:"required"`
	SiteLat      *float64 `json:"site_lat" binding:"required"`
	SiteLng      *float64 `json:"site_lng" binding:"required"`
	RadiusMeters float64  `json:"radius_m"`
	Street       string   `json:"street"`
	City         string   `json:"city"`
}

// CheckSite handles POST /api/geo/check_site. The app calls it before
// a site-mode punch to confirm the device is close enough to the
// project site and to build the address label stored on the punch.
func (h *Handler) CheckSite(c *gin.Context) {
	var req siteCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	radius := req.RadiusMeters
	if radius <= 0 {
		radius = 150
	}

	c.JSON(http.StatusOK, gin.H{
		"distance_m":    geo.HaversineMeters(*req.Lat, *req.Lng, *req.SiteLat, *req.SiteLng),
		"within_radius": geo.WithinRadius(*req.Lat, *req.Lng, *req.SiteLat, *req.SiteLng, radius),
		"address_label": geo.FormatAddress(req.Street, req.City),
	})
}
