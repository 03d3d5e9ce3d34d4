package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
)

const (
	defaultLogLimit  = 10
	maxLogLimit      = 100
	defaultDaysLimit = 200
	maxDaysLimit     = 1000
	// Для сопоставления со списком дней берем с запасом.
	disconnectScanLimit = 2000
	maxCalendarDays     = 366
)

// AttendanceService отвечает за чтение журнала, календаря и ручную правку дней.
type AttendanceService struct {
	Events      EventRepository
	Disconnects DisconnectRepository
	Days        DayRepository
	Logger      *slog.Logger
	Now         func() time.Time
}

func NewAttendanceService(er EventRepository, dr DisconnectRepository, days DayRepository, logger *slog.Logger) *AttendanceService {
	return &AttendanceService{Events: er, Disconnects: dr, Days: days, Logger: logger, Now: time.Now}
}

// ListEvents возвращает последние отметки пользователя (новые первыми).
func (s *AttendanceService) ListEvents(ctx context.Context, userID string, f EventFilter) ([]*entity.AttendanceEvent, error) {
	if err := validateRange(f.From, f.To); err != nil {
		return nil, err
	}
	f.Limit = clampLimit(f.Limit, defaultLogLimit, maxLogLimit)
	return s.Events.ListEvents(ctx, userID, f)
}

// Calendar статус каждого дня диапазона. По умолчанию берется текущий месяц (UTC).
type Calendar struct {
	From  string             `json:"from"`
	To    string             `json:"to"`
	Items []entity.DayStatus `json:"items"`
}

func (s *AttendanceService) Calendar(ctx context.Context, userID, from, to string) (*Calendar, error) {
	if from == "" || to == "" {
		now := s.Now().UTC()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		from = first.Format(entity.DayLayout)
		to = first.AddDate(0, 1, -1).Format(entity.DayLayout)
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	start, _ := time.Parse(entity.DayLayout, from)
	end, _ := time.Parse(entity.DayLayout, to)
	if end.Sub(start) > maxCalendarDays*24*time.Hour {
		return nil, reject(InvalidInput, fmt.Sprintf("range must not exceed %d days", maxCalendarDays))
	}

	filter := DayFilter{UserID: userID, From: from, To: to}
	days, err := s.Days.ListDays(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list attendance days: %w", err)
	}
	disconnects, err := s.Disconnects.ListDisconnects(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list disconnects: %w", err)
	}
	punches, err := s.Events.CountEventsByDay(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("count punches: %w", err)
	}

	halfDays := make(map[string]bool, len(days))
	for _, d := range days {
		halfDays[d.Day] = d.HalfDay
	}
	counts := make(map[string]int, len(disconnects))
	for _, d := range disconnects {
		counts[d.Day] = d.Count
	}

	cal := &Calendar{From: from, To: to}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := d.Format(entity.DayLayout)
		half, hasRow := halfDays[day]
		status := entity.StatusAbsent
		switch {
		case half:
			status = entity.StatusHalf
		case hasRow || punches[day] > 0:
			status = entity.StatusPresent
		}
		cal.Items = append(cal.Items, entity.DayStatus{
			Day:         day,
			Status:      status,
			Disconnects: counts[day],
			Punches:     punches[day],
		})
	}
	return cal, nil
}

// DayListing административный список дней со счетчиками обрывов.
type DayListing struct {
	Items []entity.DaySummary `json:"items"`
	Users []string            `json:"users"`
}

func (s *AttendanceService) ListDays(ctx context.Context, f DayFilter) (*DayListing, error) {
	if err := validateRange(f.From, f.To); err != nil {
		return nil, err
	}
	f.Limit = clampLimit(f.Limit, defaultDaysLimit, maxDaysLimit)

	days, err := s.Days.ListDays(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list attendance days: %w", err)
	}

	df := f
	df.Limit = disconnectScanLimit
	disconnects, err := s.Disconnects.ListDisconnects(ctx, df)
	if err != nil {
		return nil, fmt.Errorf("list disconnects: %w", err)
	}
	counts := make(map[string]int, len(disconnects))
	for _, d := range disconnects {
		counts[d.UserID+"|"+d.Day] = d.Count
	}

	listing := &DayListing{Items: []entity.DaySummary{}, Users: []string{}}
	seen := make(map[string]struct{})
	for _, d := range days {
		listing.Items = append(listing.Items, entity.DaySummary{
			UserID:      d.UserID,
			Day:         d.Day,
			HalfDay:     d.HalfDay,
			Disconnects: counts[d.UserID+"|"+d.Day],
		})
		if _, ok := seen[d.UserID]; !ok {
			seen[d.UserID] = struct{}{}
			listing.Users = append(listing.Users, d.UserID)
		}
	}
	return listing, nil
}

// OverrideHalfDay ручная правка признака половины дня HR-ом.
// Следующий автоматический пересчет за этот день перезапишет значение.
func (s *AttendanceService) OverrideHalfDay(ctx context.Context, actor entity.Identity, userID, day string, halfDay bool) (*entity.AttendanceDay, error) {
	if !actor.Role.IsPrivileged() {
		return nil, reject(RoleDenied, "only HR and admins can change attendance days")
	}
	if userID == "" {
		return nil, reject(InvalidInput, "user_id is required")
	}
	if _, err := time.Parse(entity.DayLayout, day); err != nil {
		return nil, reject(InvalidInput, "day must be formatted as YYYY-MM-DD")
	}

	d := &entity.AttendanceDay{UserID: userID, Day: day, HalfDay: halfDay}
	if err := s.Days.UpsertDay(ctx, d); err != nil {
		return nil, fmt.Errorf("override attendance day: %w", err)
	}
	s.Logger.Info("attendance day overridden", "actor", actor.ID, "user_id", userID, "day", day, "half_day", halfDay)
	return d, nil
}

func validateRange(from, to string) error {
	var start, end time.Time
	var err error
	if from != "" {
		if start, err = time.Parse(entity.DayLayout, from); err != nil {
			return reject(InvalidInput, "from must be formatted as YYYY-MM-DD")
		}
	}
	if to != "" {
		if end, err = time.Parse(entity.DayLayout, to); err != nil {
			return reject(InvalidInput, "to must be formatted as YYYY-MM-DD")
		}
	}
	if from != "" && to != "" && start.After(end) {
		return reject(InvalidInput, "from must not be after to")
	}
	return nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
