package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Srikarsmile/HRUPDATED/internal/delivery/http/middleware"
	"github.com/Srikarsmile/HRUPDATED/internal/entity"
	"github.com/Srikarsmile/HRUPDATED/internal/usecase"
	"github.com/gin-gonic/gin"
)

// Pinger интерфейс для проверки соединения с сервисами (БД, Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies зависимости HTTP-слоя. Пингеры и ограничитель могут быть nil.
type Dependencies struct {
	Punches        *usecase.PunchService
	Disconnects    *usecase.DisconnectService
	Attendance     *usecase.AttendanceService
	Presence       *usecase.PresenceService
	Identity       middleware.IdentityResolver
	Limiter        middleware.RateLimiter
	DBPinger       Pinger
	RedisPinger    Pinger
	TrustedProxies []string
	Logger         *slog.Logger
}

// Handler структура, объединяющая все HTTP-обработчики.
type Handler struct {
	Dependencies
}

// NewHandler создает новый экземпляр HTTP-обработчика.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{Dependencies: deps}
}

// InitRoutes инициализирует роутер Gin и настраивает маршруты API.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(h.Logger))

	// Без TRUSTED_PROXIES gin доверяет X-Forwarded-For от любого источника.
	if len(h.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(h.TrustedProxies); err != nil {
			h.Logger.Error("invalid trusted proxies, forwarding headers ignored", "error", err)
			_ = router.SetTrustedProxies(nil)
		}
	}

	router.GET("/api/v1/system/health", h.healthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Identify(h.Identity))
	{
		v1.GET("/whoami", h.whoAmI)

		network := v1.Group("/network")
		{
			network.GET("/check", h.checkNetwork)
			network.GET("/geo/check", h.limit("geo-check:get", middleware.Burst), h.checkGeo)
		}

		attendance := v1.Group("/attendance")
		{
			attendance.POST("/punch", h.limit("attendance:punch:post", middleware.Burst), h.punch)
			attendance.POST("/disconnect", h.limit("attendance:disconnect:post", middleware.Strict), h.disconnect)
			attendance.GET("/logs", h.limit("attendance:logs:get", middleware.Standard), h.listLogs)
			attendance.GET("/days", h.limit("attendance:days:get", middleware.Standard), h.listDays)
		}

		// Ручная правка дней и общий список доступны только HR
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireRole(entity.RoleHR, entity.RoleAdmin))
		{
			admin.GET("/attendance", h.adminListDays)
			admin.POST("/attendance", h.adminOverrideDay)
		}
	}

	return router
}

func (h *Handler) limit(route string, rate middleware.Rate) gin.HandlerFunc {
	return middleware.RateLimit(h.Limiter, route, rate, h.Logger)
}

// healthCheck проверяет состояние сервиса и зависимостей (PostgreSQL, Redis).
func (h *Handler) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	if h.DBPinger != nil {
		if err := h.DBPinger.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": err.Error()})
			return
		}
	}
	if h.RedisPinger != nil {
		if err := h.RedisPinger.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "redis": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError превращает отказ в структурированный ответ с кодом, остальное в 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var rej *usecase.RejectionError
	if errors.As(err, &rej) {
		body := gin.H{}
		for k, v := range rej.Details {
			body[k] = v
		}
		body["error"] = rej.Message
		body["kind"] = rej.Kind
		c.JSON(statusFor(rej.Kind), body)
		return
	}

	h.Logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func statusFor(kind usecase.RejectionKind) int {
	switch kind {
	case usecase.InvalidInput, usecase.ReasonRequired:
		return http.StatusBadRequest
	case usecase.NetworkDenied, usecase.GeofenceDenied, usecase.RoleDenied:
		return http.StatusForbidden
	case usecase.TokenRequired, usecase.TokenInvalid:
		return http.StatusUnauthorized
	case usecase.ConfigurationMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func identity(c *gin.Context) entity.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}
