// Package locationtoken выпускает и проверяет короткоживущие подписанные токены,
// привязывающие пару координат к моменту успешной проверки геозоны.
package locationtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
	"github.com/golang-jwt/jwt/v5"
)

// Audience значение aud токенов местоположения; отличает их от токенов личности.
const Audience = "location-proof"

const (
	MinTTL     = 30 * time.Second
	MaxTTL     = 600 * time.Second
	DefaultTTL = 120 * time.Second
)

var (
	ErrDisabled  = errors.New("location token signing is not configured")
	ErrMalformed = errors.New("malformed location token")
	ErrSignature = errors.New("location token signature mismatch")
	ErrExpired   = errors.New("location token expired")
)

type claims struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	jwt.RegisteredClaims
}

// Signer подписывает токены HMAC-SHA256. Без секрета выпуск отключен.
type Signer struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Signer)

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

func New(secret string, opts ...Option) *Signer {
	s := &Signer{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Signer) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// ClampTTL ограничивает срок жизни диапазоном [MinTTL, MaxTTL]; нулевой срок заменяется DefaultTTL.
func ClampTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if ttl < MinTTL {
		return MinTTL
	}
	if ttl > MaxTTL {
		return MaxTTL
	}
	return ttl
}

// Issue выпускает токен для координат. subject (идентификатор пользователя) необязателен.
// Если секрет не настроен, возвращает пустую строку без ошибки.
func (s *Signer) Issue(lat, lng float64, subject string, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	issuedAt := s.now().UTC().Truncate(time.Second)
	c := claims{
		Lat: lat,
		Lng: lng,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ClampTTL(ttl))),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign location token: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись (сравнение за постоянное время), кодировку и срок действия.
func (s *Signer) Verify(token string) (*entity.LocationProof, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(Audience),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	proof := &entity.LocationProof{
		Latitude:  c.Lat,
		Longitude: c.Lng,
		Subject:   c.Subject,
		ExpiresAt: c.ExpiresAt.Time,
	}
	if c.IssuedAt != nil {
		proof.IssuedAt = c.IssuedAt.Time
	}
	return proof, nil
}
