package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/taskboard-platform/internal/geo"
)

// GeocodeAddress — прокси к внешнему геокодеру для формы создания поста.
func (h *Handler) GeocodeAddress(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter: address"})
		return
	}

	coords, err := h.Geocoder.Geocode(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, geo.ErrNoResults) {
			c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
			return
		}
		h.Log.Warn().Err(err).Str("address", address).Msg("geocode failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "geocoder unavailable, try again later"})
		return
	}

	c.JSON(http.StatusOK, coords)
}
