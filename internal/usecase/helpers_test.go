package usecase_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
	"github.com/Srikarsmile/HRUPDATED/internal/infrastructure/memory"
	"github.com/Srikarsmile/HRUPDATED/internal/logging"
	"github.com/Srikarsmile/HRUPDATED/internal/usecase"
)

const (
	officeLat = 12.9716
	officeLng = 77.5946
)

var testNow = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

func clock(t time.Time) func() time.Time { return func() time.Time { return t } }

// north смещает широту на заданное число метров к северу.
func north(lat, meters float64) float64 {
	return lat + meters/(6371000*math.Pi/180)
}

func ptr(v float64) *float64 { return &v }

func officeFence() []entity.Geofence {
	return []entity.Geofence{{Latitude: officeLat, Longitude: officeLng, RadiusMeters: 150}}
}

func employee(addr string) entity.Identity {
	return entity.Identity{ID: "ip:" + addr, Role: entity.RoleEmployee, Address: addr}
}

type fixture struct {
	store       *memory.Store
	queue       *memory.Queue
	policy      *usecase.HalfDayPolicy
	punches     *usecase.PunchService
	disconnects *usecase.DisconnectService
	attendance  *usecase.AttendanceService
}

func newFixture(t *testing.T, rules usecase.PunchRules, proofs usecase.ProofVerifier) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), queue: memory.NewQueue()}
	logger := logging.Discard()

	f.policy = usecase.NewHalfDayPolicy(f.store, f.store, f.queue, usecase.DefaultHalfDayThreshold, logger)
	f.policy.Now = clock(testNow)

	f.punches = usecase.NewPunchService(f.store, f.policy, proofs, rules, logger)
	f.punches.Now = clock(testNow)

	f.disconnects = usecase.NewDisconnectService(f.store, f.policy, logger)
	f.disconnects.Now = clock(testNow)

	f.attendance = usecase.NewAttendanceService(f.store, f.store, f.store, logger)
	f.attendance.Now = clock(testNow)
	return f
}

func (f *fixture) day(t *testing.T, userID, day string) *entity.AttendanceDay {
	t.Helper()
	d, err := f.store.GetDay(context.Background(), userID, day)
	if err != nil {
		t.Fatalf("get day %s/%s: %v", userID, day, err)
	}
	return d
}

func assertKind(t *testing.T, err error, want usecase.RejectionKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s rejection, got nil", want)
	}
	if got := usecase.KindOf(err); got != want {
		t.Fatalf("expected kind %q, got %q (%v)", want, got, err)
	}
}

// cancellingStore проверяет контекст, как это делает pgx, и отменяет контекст
// запроса сразу после записи события.
type cancellingStore struct {
	*memory.Store
	cancel context.CancelFunc
}

func (s *cancellingStore) CreateEvent(ctx context.Context, e *entity.AttendanceEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.Store.CreateEvent(ctx, e)
	s.cancel()
	return err
}

func (s *cancellingStore) IncrementDisconnect(ctx context.Context, userID, day string) (*entity.DisconnectRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := s.Store.IncrementDisconnect(ctx, userID, day)
	s.cancel()
	return rec, err
}

func (s *cancellingStore) GetDisconnect(ctx context.Context, userID, day string) (*entity.DisconnectRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Store.GetDisconnect(ctx, userID, day)
}

func (s *cancellingStore) GetDay(ctx context.Context, userID, day string) (*entity.AttendanceDay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Store.GetDay(ctx, userID, day)
}

func (s *cancellingStore) UpsertDay(ctx context.Context, d *entity.AttendanceDay) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.UpsertDay(ctx, d)
}
