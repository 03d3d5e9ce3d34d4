package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
	"github.com/google/uuid"
)

const DefaultReasonMinLen = 3

// ProofVerifier проверяет токен местоположения, выпущенный при проверке геозоны.
type ProofVerifier interface {
	Verify(token string) (*entity.LocationProof, error)
}

// PunchRules разобранная при старте конфигурация допуска отметок.
type PunchRules struct {
	Allowlist      Allowlist
	Fences         []entity.Geofence
	RequireProof   bool
	MaxProofDriftM float64
	ReasonMinLen   int
}

// PunchRequest заявка на отметку прихода/ухода.
type PunchRequest struct {
	Direction  entity.Direction
	Method     entity.Method
	Latitude   *float64
	Longitude  *float64
	Reason     string
	ProofToken string
}

// PunchService решает, допустима ли отметка, и записывает ее.
type PunchService struct {
	Events  EventRepository
	HalfDay *HalfDayPolicy
	Proofs  ProofVerifier
	Rules   PunchRules
	Logger  *slog.Logger
	Now     func() time.Time
}

func NewPunchService(er EventRepository, halfDay *HalfDayPolicy, proofs ProofVerifier, rules PunchRules, logger *slog.Logger) *PunchService {
	if rules.ReasonMinLen <= 0 {
		rules.ReasonMinLen = DefaultReasonMinLen
	}
	return &PunchService{
		Events:  er,
		HalfDay: halfDay,
		Proofs:  proofs,
		Rules:   rules,
		Logger:  logger,
		Now:     time.Now,
	}
}

// AdmitPunch проверяет заявку в зависимости от способа отметки и при допуске добавляет ровно одно событие.
// После записи пересчитывается признак половины дня; его ошибка отметку не отменяет.
func (s *PunchService) AdmitPunch(ctx context.Context, id entity.Identity, req PunchRequest) (*entity.AttendanceEvent, error) {
	if id.ID == "" {
		return nil, reject(InvalidInput, "user identity is required")
	}
	if req.Direction != entity.DirectionIn && req.Direction != entity.DirectionOut {
		return nil, reject(InvalidInput, "direction must be \"in\" or \"out\"")
	}
	method := req.Method
	if method == "" {
		method = entity.MethodWifi
	}

	event := &entity.AttendanceEvent{
		UserID:        id.ID,
		Direction:     req.Direction,
		Method:        method,
		OriginAddress: id.Address,
	}

	switch method {
	case entity.MethodWifi:
		if !s.Rules.Allowlist.Allows(id.Address) {
			return nil, reject(NetworkDenied, "not on office network").with("ip", id.Address)
		}
	case entity.MethodGPS:
		if err := s.admitGPS(id, req); err != nil {
			return nil, err
		}
		event.Latitude, event.Longitude = req.Latitude, req.Longitude
	case entity.MethodManual:
		if !id.Role.IsPrivileged() {
			return nil, reject(RoleDenied, "manual punches are restricted to HR and admins")
		}
		reason := strings.TrimSpace(req.Reason)
		if utf8.RuneCountInString(reason) < s.Rules.ReasonMinLen {
			return nil, reject(ReasonRequired, fmt.Sprintf("a reason of at least %d characters is required", s.Rules.ReasonMinLen))
		}
		event.Reason = reason
	default:
		return nil, reject(InvalidInput, fmt.Sprintf("unknown punch method %q", method))
	}

	now := s.Now().UTC()
	event.ID = uuid.NewString()
	event.At = now
	event.Day = entity.DayOf(now)

	if err := s.Events.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("record punch for %s: %w", id.ID, err)
	}
	s.Logger.Info("punch admitted", "user_id", id.ID, "direction", event.Direction, "method", event.Method, "day", event.Day)

	s.HalfDay.Reconcile(ctx, id.ID, event.Day)
	return event, nil
}

func (s *PunchService) admitGPS(id entity.Identity, req PunchRequest) error {
	if req.Latitude == nil || req.Longitude == nil {
		return reject(InvalidInput, "latitude and longitude are required for gps punches")
	}
	lat, lng := *req.Latitude, *req.Longitude
	if !validCoordinates(lat, lng) {
		return reject(InvalidInput, ErrInvalidCoordinates.Error())
	}
	if len(s.Rules.Fences) == 0 {
		return reject(ConfigurationMissing, "no office geofence is configured")
	}

	match, err := NearestFence(lat, lng, s.Rules.Fences)
	if err != nil {
		return reject(InvalidInput, err.Error())
	}
	if match.Matched == nil {
		return reject(GeofenceDenied, "outside office geofence").
			with("nearest_distance_m", roundMeters(match.NearestDistance))
	}

	if !s.Rules.RequireProof {
		return nil
	}
	token := strings.TrimSpace(req.ProofToken)
	if token == "" {
		return reject(TokenRequired, "a location proof token is required")
	}
	if s.Proofs == nil {
		return reject(TokenInvalid, "location proofs cannot be verified")
	}
	proof, err := s.Proofs.Verify(token)
	if err != nil {
		return reject(TokenInvalid, "location proof is invalid or expired")
	}
	if proof.Subject != "" && proof.Subject != id.ID {
		return reject(TokenInvalid, "location proof was issued to another user")
	}
	if HaversineMeters(lat, lng, proof.Latitude, proof.Longitude) > s.Rules.MaxProofDriftM {
		return reject(TokenInvalid, "coordinates do not match location proof")
	}
	return nil
}

func roundMeters(d float64) float64 {
	return math.Round(d*10) / 10
}
