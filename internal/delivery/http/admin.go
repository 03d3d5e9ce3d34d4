package http

import (
	"net/http"
	"strconv"

	"github.com/Srikarsmile/HRUPDATED/internal/usecase"
	"github.com/gin-gonic/gin"
)

type OverrideDayInput struct {
	UserID  string `json:"user_id" binding:"required"`
	Day     string `json:"day" binding:"required"`
	HalfDay *bool  `json:"half_day" binding:"required"`
}

func (h *Handler) adminListDays(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))

	listing, err := h.Attendance.ListDays(c.Request.Context(), usecase.DayFilter{
		UserID: c.Query("user"),
		From:   c.Query("from"),
		To:     c.Query("to"),
		Limit:  limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *Handler) adminOverrideDay(c *gin.Context) {
	var input OverrideDayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id, day, half_day required"})
		return
	}

	day, err := h.Attendance.OverrideHalfDay(c.Request.Context(), identity(c), input.UserID, input.Day, *input.HalfDay)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "item": day})
}
