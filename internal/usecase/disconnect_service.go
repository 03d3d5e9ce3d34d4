package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
)

// DisconnectService учитывает обрывы сети пользователя за текущий день (UTC).
type DisconnectService struct {
	Repo   DisconnectRepository
	Policy *HalfDayPolicy
	Logger *slog.Logger
	Now    func() time.Time
}

func NewDisconnectService(r DisconnectRepository, policy *HalfDayPolicy, logger *slog.Logger) *DisconnectService {
	return &DisconnectService{Repo: r, Policy: policy, Logger: logger, Now: time.Now}
}

// RecordDisconnect увеличивает счетчик за сегодня и пересчитывает признак половины дня.
// Инкремент выполняется хранилищем атомарно, поэтому параллельные вызовы не теряют обновлений.
func (s *DisconnectService) RecordDisconnect(ctx context.Context, id entity.Identity) (*entity.DisconnectRecord, error) {
	if id.ID == "" {
		return nil, reject(InvalidInput, "user identity is required")
	}
	day := entity.DayOf(s.Now())

	rec, err := s.Repo.IncrementDisconnect(ctx, id.ID, day)
	if err != nil {
		return nil, fmt.Errorf("record disconnect for %s: %w", id.ID, err)
	}
	s.Logger.Info("disconnect recorded", "user_id", id.ID, "day", day, "count", rec.Count)

	s.Policy.Reconcile(ctx, id.ID, day)
	return rec, nil
}
