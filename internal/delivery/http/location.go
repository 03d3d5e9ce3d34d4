package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) whoAmI(c *gin.Context) {
	id := identity(c)
	c.JSON(http.StatusOK, gin.H{"ip": c.ClientIP(), "user_id": id.ID, "role": id.Role})
}

func (h *Handler) checkNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, h.Presence.CheckNetwork(identity(c).Address))
}

// checkGeo проверка координат до GPS-отметки. Без lat/lng сообщает только, настроены ли геозоны.
func (h *Handler) checkGeo(c *gin.Context) {
	lat, okLat := parseCoordinate(c.Query("lat"))
	lng, okLng := parseCoordinate(c.Query("lng"))
	if !okLat || !okLng {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates", "kind": "invalid_input"})
		return
	}

	res, err := h.Presence.CheckLocation(identity(c), lat, lng)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// parseCoordinate пустое значение дает nil без ошибки.
func parseCoordinate(raw string) (*float64, bool) {
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
