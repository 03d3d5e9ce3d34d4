package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

var ErrUnauthenticated = errors.New("unauthenticated")

// IdentityResolver определяет пользователя и роль по запросу.
type IdentityResolver interface {
	Resolve(c *gin.Context) (entity.Identity, error)
}

// Identify разрешает личность вызывающего и кладет ее в контекст gin.
func Identify(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolver.Resolve(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom возвращает личность, установленную Identify.
func IdentityFrom(c *gin.Context) (entity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return entity.Identity{}, false
	}
	id, ok := v.(entity.Identity)
	return id, ok
}

// RequireRole пропускает только перечисленные роли.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}

// IPResolver личность по адресу клиента: HR-адреса получают роль hr, остальные получают employee.
// Если задан хотя бы один список, адреса вне обоих списков не допускаются.
type IPResolver struct {
	hr        map[string]struct{}
	employees map[string]struct{}
}

func NewIPResolver(hr, employees []string) *IPResolver {
	return &IPResolver{hr: toSet(hr), employees: toSet(employees)}
}

func (r *IPResolver) Resolve(c *gin.Context) (entity.Identity, error) {
	ip := c.ClientIP()
	if ip == "" {
		return entity.Identity{}, ErrUnauthenticated
	}

	_, isHR := r.hr[ip]
	_, isEmployee := r.employees[ip]
	if (len(r.hr) > 0 || len(r.employees) > 0) && !isHR && !isEmployee {
		return entity.Identity{}, ErrUnauthenticated
	}

	role := entity.RoleEmployee
	if isHR {
		role = entity.RoleHR
	}
	return entity.Identity{ID: "ip:" + ip, Role: role, Address: ip}, nil
}

// DefaultAudience значение aud токенов личности по умолчанию.
const DefaultAudience = "attendance-api"

// JWTResolver личность из Bearer-токена (HS256) с полями sub и role.
// Токен обязан иметь exp и aud, чтобы токены с другим назначением (например, токены местоположения)
// не принимались за личность, даже если подписаны тем же секретом.
type JWTResolver struct {
	secret   []byte
	audience string
}

func NewJWTResolver(secret, audience string) *JWTResolver {
	if audience == "" {
		audience = DefaultAudience
	}
	return &JWTResolver{secret: []byte(secret), audience: audience}
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (r *JWTResolver) Resolve(c *gin.Context) (entity.Identity, error) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return entity.Identity{}, ErrUnauthenticated
	}
	tok := strings.TrimPrefix(h, "Bearer ")

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(token *jwt.Token) (any, error) {
		return r.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(r.audience),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return entity.Identity{}, ErrUnauthenticated
	}

	role := entity.Role(strings.ToLower(claims.Role))
	switch role {
	case entity.RoleHR, entity.RoleAdmin, entity.RoleEmployee:
	case "":
		role = entity.RoleEmployee
	default:
		return entity.Identity{}, ErrUnauthenticated
	}
	return entity.Identity{ID: claims.Subject, Role: role, Address: c.ClientIP()}, nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			set[it] = struct{}{}
		}
	}
	return set
}
