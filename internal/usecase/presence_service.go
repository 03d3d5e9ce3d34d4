package usecase

import (
	"log/slog"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
)

// TokenIssuer выпускает токен местоположения. Пустая строка означает, что выпуск отключен.
type TokenIssuer interface {
	Issue(lat, lng float64, subject string, ttl time.Duration) (string, error)
}

// PresenceService диагностические проверки сети и геозоны, которые клиент делает перед отметкой.
type PresenceService struct {
	Allowlist Allowlist
	Fences    []entity.Geofence
	Tokens    TokenIssuer
	TokenTTL  time.Duration
	Logger    *slog.Logger
}

func NewPresenceService(allowlist Allowlist, fences []entity.Geofence, tokens TokenIssuer, ttl time.Duration, logger *slog.Logger) *PresenceService {
	return &PresenceService{Allowlist: allowlist, Fences: fences, Tokens: tokens, TokenTTL: ttl, Logger: logger}
}

type NetworkCheck struct {
	Allowed       bool   `json:"allowed"`
	IP            string `json:"ip"`
	AllowlistSize int    `json:"allowlist_size"`
}

func (s *PresenceService) CheckNetwork(address string) NetworkCheck {
	return NetworkCheck{
		Allowed:       s.Allowlist.Allows(address),
		IP:            address,
		AllowlistSize: s.Allowlist.Len(),
	}
}

// LocationCheck ответ проверки геозоны. Allowed == nil, если координаты не переданы.
type LocationCheck struct {
	Configured      bool             `json:"configured"`
	Allowed         *bool            `json:"allowed"`
	FencesCount     int              `json:"fences_count"`
	NearestDistance *float64         `json:"nearest_distance_m,omitempty"`
	MatchedRadius   *float64         `json:"matched_radius_m"`
	Center          *entity.Geofence `json:"center"`
	ProofToken      string           `json:"proof_token,omitempty"`
	Reason          string           `json:"reason,omitempty"`
}

// CheckLocation проверяет координаты против геозон и при успехе выпускает токен, привязанный к пользователю.
func (s *PresenceService) CheckLocation(id entity.Identity, lat, lng *float64) (*LocationCheck, error) {
	res := &LocationCheck{Configured: len(s.Fences) > 0, FencesCount: len(s.Fences)}

	if lat == nil || lng == nil {
		if res.Configured {
			first := s.Fences[0]
			res.Center = &first
		}
		return res, nil
	}
	if !validCoordinates(*lat, *lng) {
		return nil, reject(InvalidInput, "invalid coordinates")
	}

	allowed := false
	res.Allowed = &allowed
	if !res.Configured {
		res.Reason = "no geofence configured"
		return res, nil
	}

	match, err := NearestFence(*lat, *lng, s.Fences)
	if err != nil {
		return nil, reject(InvalidInput, err.Error())
	}
	nearest := roundMeters(match.NearestDistance)
	res.NearestDistance = &nearest
	if match.Matched == nil {
		return res, nil
	}

	allowed = true
	res.MatchedRadius = &match.Matched.RadiusMeters
	res.Center = match.Matched

	if s.Tokens != nil {
		token, err := s.Tokens.Issue(*lat, *lng, id.ID, s.TokenTTL)
		if err != nil {
			s.Logger.Warn("issue location proof failed", "user_id", id.ID, "error", err)
		}
		res.ProofToken = token
	}
	return res, nil
}
