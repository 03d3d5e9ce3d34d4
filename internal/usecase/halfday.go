package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
)

const (
	// DefaultHalfDayThreshold день становится половинным, когда обрывов больше этого числа.
	DefaultHalfDayThreshold = 2

	HalfDayQueueName = "half_day_notifications"
	HalfDayEvent     = "half_day_marked"

	reconcileTimeout = 10 * time.Second
)

// HalfDayPolicy пересчитывает признак половины дня по счетчику обрывов.
// Пересчет идемпотентен: результат всегда отражает последнее значение счетчика.
type HalfDayPolicy struct {
	Disconnects DisconnectRepository
	Days        DayRepository
	Queue       QueueRepository // может быть nil: уведомления отключены
	Threshold   int
	QueueName   string
	Logger      *slog.Logger
	Now         func() time.Time
}

func NewHalfDayPolicy(dr DisconnectRepository, days DayRepository, q QueueRepository, threshold int, logger *slog.Logger) *HalfDayPolicy {
	return &HalfDayPolicy{
		Disconnects: dr,
		Days:        days,
		Queue:       q,
		Threshold:   threshold,
		QueueName:   HalfDayQueueName,
		Logger:      logger,
		Now:         time.Now,
	}
}

// Evaluate правило классификации: строго больше порога.
func (p *HalfDayPolicy) Evaluate(disconnects int) bool {
	return disconnects > p.Threshold
}

// Reconcile читает счетчик за день и перезаписывает признак половины дня.
// Ошибки только логируются: отметки и обрывы уже записаны и не должны откатываться.
// Пересчет выполняется после записи события, поэтому отмена запроса клиентом его не прерывает.
func (p *HalfDayPolicy) Reconcile(ctx context.Context, userID, day string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()

	log := p.Logger.With("user_id", userID, "day", day)

	count := 0
	rec, err := p.Disconnects.GetDisconnect(ctx, userID, day)
	switch {
	case err == nil:
		count = rec.Count
	case errors.Is(err, ErrNotFound):
	default:
		log.Error("half-day policy: read disconnects failed", "error", err)
		return
	}

	halfDay := p.Evaluate(count)

	// Предыдущее значение нужно только для уведомления о переходе в половину дня.
	wasHalfDay := false
	if p.Queue != nil && halfDay {
		prev, err := p.Days.GetDay(ctx, userID, day)
		if err == nil {
			wasHalfDay = prev.HalfDay
		} else if !errors.Is(err, ErrNotFound) {
			log.Warn("half-day policy: read previous day failed", "error", err)
			wasHalfDay = true // не шлем уведомление вслепую
		}
	}

	if err := p.Days.UpsertDay(ctx, &entity.AttendanceDay{UserID: userID, Day: day, HalfDay: halfDay}); err != nil {
		log.Error("half-day policy: upsert day failed", "error", err)
		return
	}
	log.Debug("half-day policy reconciled", "disconnects", count, "half_day", halfDay)

	if halfDay && !wasHalfDay && p.Queue != nil {
		payload := entity.HalfDayNotification{
			Event:       HalfDayEvent,
			UserID:      userID,
			Day:         day,
			Disconnects: count,
			DetectedAt:  p.Now().UTC().Format(time.RFC3339),
		}
		if err := p.Queue.Enqueue(ctx, p.QueueName, payload); err != nil {
			log.Warn("half-day policy: enqueue notification failed", "error", err)
		}
	}
}
