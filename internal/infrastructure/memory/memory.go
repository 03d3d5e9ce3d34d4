// Package memory хранит данные посещаемости в памяти процесса.
// Используется в тестах и при STORAGE_DRIVER=memory для локальной разработки.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
	"github.com/Srikarsmile/HRUPDATED/internal/usecase"
)

type dayKey struct {
	userID string
	day    string
}

// Store реализация репозиториев в памяти.
type Store struct {
	mu          sync.Mutex
	events      []entity.AttendanceEvent
	disconnects map[dayKey]entity.DisconnectRecord
	days        map[dayKey]entity.AttendanceDay
	failures    map[string]error
	now         func() time.Time
}

func New() *Store {
	return &Store{
		disconnects: make(map[dayKey]entity.DisconnectRecord),
		days:        make(map[dayKey]entity.AttendanceDay),
		failures:    make(map[string]error),
		now:         time.Now,
	}
}

// FailOn заставляет операцию op (имя метода) возвращать err. nil снимает сбой.
func (s *Store) FailOn(op string, err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
	} else {
		s.failures[op] = err
	}
	return s
}

func (s *Store) fail(op string) error {
	return s.failures[op]
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail("Ping")
}

// Events

func (s *Store) CreateEvent(ctx context.Context, e *entity.AttendanceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateEvent"); err != nil {
		return err
	}
	s.events = append(s.events, *e)
	return nil
}

func (s *Store) ListEvents(ctx context.Context, userID string, f usecase.EventFilter) ([]*entity.AttendanceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListEvents"); err != nil {
		return nil, err
	}

	res := []*entity.AttendanceEvent{}
	for i := range s.events {
		e := s.events[i]
		if e.UserID != userID || !inRange(e.Day, f.From, f.To) {
			continue
		}
		res = append(res, &e)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].At.After(res[j].At) })
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}
	return res, nil
}

func (s *Store) CountEventsByDay(ctx context.Context, userID, from, to string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CountEventsByDay"); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, e := range s.events {
		if e.UserID == userID && inRange(e.Day, from, to) {
			counts[e.Day]++
		}
	}
	return counts, nil
}

// Events возвращает копию всех записанных отметок.
func (s *Store) Events() []entity.AttendanceEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.AttendanceEvent(nil), s.events...)
}

// Disconnects

func (s *Store) IncrementDisconnect(ctx context.Context, userID, day string) (*entity.DisconnectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("IncrementDisconnect"); err != nil {
		return nil, err
	}

	k := dayKey{userID, day}
	rec, ok := s.disconnects[k]
	if !ok {
		rec = entity.DisconnectRecord{UserID: userID, Day: day}
	}
	rec.Count++
	rec.UpdatedAt = s.now().UTC()
	s.disconnects[k] = rec
	return &rec, nil
}

func (s *Store) GetDisconnect(ctx context.Context, userID, day string) (*entity.DisconnectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetDisconnect"); err != nil {
		return nil, err
	}
	rec, ok := s.disconnects[dayKey{userID, day}]
	if !ok {
		return nil, usecase.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) ListDisconnects(ctx context.Context, f usecase.DayFilter) ([]*entity.DisconnectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListDisconnects"); err != nil {
		return nil, err
	}

	res := []*entity.DisconnectRecord{}
	for k, rec := range s.disconnects {
		if matchDay(k, f) {
			rec := rec
			res = append(res, &rec)
		}
	}
	sort.Slice(res, func(i, j int) bool { return lessDay(res[i].Day, res[i].UserID, res[j].Day, res[j].UserID) })
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}
	return res, nil
}

// Days

func (s *Store) GetDay(ctx context.Context, userID, day string) (*entity.AttendanceDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetDay"); err != nil {
		return nil, err
	}
	d, ok := s.days[dayKey{userID, day}]
	if !ok {
		return nil, usecase.ErrNotFound
	}
	return &d, nil
}

func (s *Store) UpsertDay(ctx context.Context, d *entity.AttendanceDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertDay"); err != nil {
		return err
	}
	d.UpdatedAt = s.now().UTC()
	s.days[dayKey{d.UserID, d.Day}] = *d
	return nil
}

func (s *Store) ListDays(ctx context.Context, f usecase.DayFilter) ([]*entity.AttendanceDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListDays"); err != nil {
		return nil, err
	}

	res := []*entity.AttendanceDay{}
	for k, d := range s.days {
		if matchDay(k, f) {
			d := d
			res = append(res, &d)
		}
	}
	sort.Slice(res, func(i, j int) bool { return lessDay(res[i].Day, res[i].UserID, res[j].Day, res[j].UserID) })
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}
	return res, nil
}

func matchDay(k dayKey, f usecase.DayFilter) bool {
	if f.UserID != "" && k.userID != f.UserID {
		return false
	}
	return inRange(k.day, f.From, f.To)
}

// Дни в формате YYYY-MM-DD сравниваются лексикографически.
func inRange(day, from, to string) bool {
	if from != "" && day < from {
		return false
	}
	if to != "" && day > to {
		return false
	}
	return true
}

// Новые дни первыми, внутри дня по пользователю.
func lessDay(dayA, userA, dayB, userB string) bool {
	if dayA != dayB {
		return dayA > dayB
	}
	return userA < userB
}

var (
	_ usecase.EventRepository      = (*Store)(nil)
	_ usecase.DisconnectRepository = (*Store)(nil)
	_ usecase.DayRepository        = (*Store)(nil)
)
