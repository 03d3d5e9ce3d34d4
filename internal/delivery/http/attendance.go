package http

import (
	"net/http"
	"strconv"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
	"github.com/Srikarsmile/HRUPDATED/internal/usecase"
	"github.com/gin-gonic/gin"
)

type PunchInput struct {
	Direction  string   `json:"direction"`
	Type       string   `json:"type"` // старое имя поля direction
	Method     string   `json:"method"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Reason     string   `json:"reason"`
	ProofToken string   `json:"proof_token"`
}

func (h *Handler) punch(c *gin.Context) {
	var input PunchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": usecase.InvalidInput})
		return
	}
	direction := input.Direction
	if direction == "" {
		direction = input.Type
	}

	event, err := h.Punches.AdmitPunch(c.Request.Context(), identity(c), usecase.PunchRequest{
		Direction:  entity.Direction(direction),
		Method:     entity.Method(input.Method),
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Reason:     input.Reason,
		ProofToken: input.ProofToken,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *Handler) disconnect(c *gin.Context) {
	rec, err := h.Disconnects.RecordDisconnect(c.Request.Context(), identity(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) listLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	events, err := h.Attendance.ListEvents(c.Request.Context(), identity(c).ID, usecase.EventFilter{
		From:  c.Query("from"),
		To:    c.Query("to"),
		Limit: limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": events})
}

func (h *Handler) listDays(c *gin.Context) {
	cal, err := h.Attendance.Calendar(c.Request.Context(), identity(c).ID, c.Query("from"), c.Query("to"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cal)
}
