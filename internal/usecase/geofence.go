package usecase

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
)

const earthRadiusMeters = 6371000

// ErrInvalidCoordinates координаты не являются конечными числами.
var ErrInvalidCoordinates = errors.New("coordinates must be finite numbers")

// HaversineMeters вычисляет расстояние между двумя точками в метрах, используя формулу Хаверсина (Haversine).
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func validCoordinates(lat, lng float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) && !math.IsNaN(lng) && !math.IsInf(lng, 0)
}

// IsInsideAnyFence проверяет, попадает ли точка хотя бы в одну зону. Первое совпадение завершает поиск.
// Пустой набор зон дает false: вызывающий код обязан отличать его от "вне зоны".
func IsInsideAnyFence(lat, lng float64, fences []entity.Geofence) (bool, error) {
	if !validCoordinates(lat, lng) {
		return false, ErrInvalidCoordinates
	}
	for _, f := range fences {
		if HaversineMeters(lat, lng, f.Latitude, f.Longitude) <= f.RadiusMeters {
			return true, nil
		}
	}
	return false, nil
}

// FenceMatch диагностика проверки: расстояние до ближайшего центра и зона, в которую попала точка.
type FenceMatch struct {
	NearestDistance float64
	Matched         *entity.Geofence
}

// NearestFence обходит зоны до первого совпадения, запоминая минимальное расстояние.
// Для пустого набора NearestDistance равен +Inf.
func NearestFence(lat, lng float64, fences []entity.Geofence) (FenceMatch, error) {
	if !validCoordinates(lat, lng) {
		return FenceMatch{}, ErrInvalidCoordinates
	}
	res := FenceMatch{NearestDistance: math.Inf(1)}
	for i := range fences {
		f := fences[i]
		d := HaversineMeters(lat, lng, f.Latitude, f.Longitude)
		if d < res.NearestDistance {
			res.NearestDistance = d
		}
		if d <= f.RadiusMeters {
			res.Matched = &f
			break
		}
	}
	return res, nil
}

// ParseGeofences разбирает OFFICE_GEO ("lat,lng[,radius];...").
// Если он пуст, используется одиночная зона OFFICE_LAT/OFFICE_LNG/OFFICE_RADIUS_M.
// Радиус по умолчанию задает defaultRadius. Пустой результат означает, что геозоны не настроены.
func ParseGeofences(multi, lat, lng, radius string, defaultRadius float64) ([]entity.Geofence, error) {
	var fences []entity.Geofence

	for _, part := range strings.Split(multi, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ",")
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("invalid geofence %q: want lat,lng[,radius]", part)
		}
		r := ""
		if len(fields) == 3 {
			r = fields[2]
		}
		f, err := parseFence(fields[0], fields[1], r, defaultRadius)
		if err != nil {
			return nil, fmt.Errorf("invalid geofence %q: %w", part, err)
		}
		fences = append(fences, f)
	}
	if len(fences) > 0 {
		return fences, nil
	}

	if strings.TrimSpace(lat) == "" && strings.TrimSpace(lng) == "" {
		return nil, nil
	}
	f, err := parseFence(lat, lng, radius, defaultRadius)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_LAT/OFFICE_LNG geofence: %w", err)
	}
	return []entity.Geofence{f}, nil
}

func parseFence(latStr, lngStr, radiusStr string, defaultRadius float64) (entity.Geofence, error) {
	lat, err := parseFinite(latStr)
	if err != nil {
		return entity.Geofence{}, fmt.Errorf("latitude: %w", err)
	}
	lng, err := parseFinite(lngStr)
	if err != nil {
		return entity.Geofence{}, fmt.Errorf("longitude: %w", err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return entity.Geofence{}, errors.New("coordinates out of range")
	}

	radius := defaultRadius
	if strings.TrimSpace(radiusStr) != "" {
		if radius, err = parseFinite(radiusStr); err != nil {
			return entity.Geofence{}, fmt.Errorf("radius: %w", err)
		}
	}
	if radius <= 0 {
		return entity.Geofence{}, errors.New("radius must be positive")
	}
	return entity.Geofence{Latitude: lat, Longitude: lng, RadiusMeters: radius}, nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}
