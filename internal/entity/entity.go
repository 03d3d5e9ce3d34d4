package entity

import "time"

// DayLayout формат календарного дня (UTC), которым ключуются дневные записи.
const DayLayout = "2006-01-02"

// DayOf возвращает календарный день (UTC) для момента времени.
func DayOf(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

type Method string

const (
	MethodWifi   Method = "wifi"
	MethodGPS    Method = "gps"
	MethodManual Method = "manual"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

// IsPrivileged сообщает, может ли роль выполнять действия HR (ручные отметки, правки дней).
func (r Role) IsPrivileged() bool {
	return r == RoleHR || r == RoleAdmin
}

// Identity описывает вызывающего пользователя. Разрешается middleware до вызова сервисов.
type Identity struct {
	ID      string `json:"user_id"`
	Role    Role   `json:"role"`
	Address string `json:"ip,omitempty"`
}

// AttendanceEvent представляет собой отметку прихода/ухода. Записи только добавляются.
type AttendanceEvent struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	At            time.Time `json:"at"`
	Day           string    `json:"day"`
	Direction     Direction `json:"direction"`
	Method        Method    `json:"method"`
	OriginAddress string    `json:"origin_address,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

// DisconnectRecord счетчик обрывов сети пользователя за день. Никогда не уменьшается.
type DisconnectRecord struct {
	UserID    string    `json:"user_id"`
	Day       string    `json:"day"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttendanceDay производная дневная классификация (половина дня или нет).
type AttendanceDay struct {
	UserID    string    `json:"user_id"`
	Day       string    `json:"day"`
	HalfDay   bool      `json:"half_day"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Geofence круглая зона офиса.
type Geofence struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}

// LocationProof содержимое проверенного токена местоположения.
type LocationProof struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Subject   string    `json:"subject,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HalfDayNotification структура для отправки в очередь и последующей доставки воркером.
type HalfDayNotification struct {
	Event       string `json:"event"`
	UserID      string `json:"user_id"`
	Day         string `json:"day"`
	Disconnects int    `json:"disconnects"`
	DetectedAt  string `json:"detected_at"`
}

type DayStatusKind string

const (
	StatusPresent DayStatusKind = "present"
	StatusHalf    DayStatusKind = "half"
	StatusAbsent  DayStatusKind = "absent"
)

// DayStatus строка календаря посещаемости.
type DayStatus struct {
	Day         string        `json:"day"`
	Status      DayStatusKind `json:"status"`
	Disconnects int           `json:"disconnects"`
	Punches     int           `json:"punches"`
}

// DaySummary строка административного списка дней.
type DaySummary struct {
	UserID      string `json:"user_id"`
	Day         string `json:"day"`
	HalfDay     bool   `json:"half_day"`
	Disconnects int    `json:"disconnects"`
}
