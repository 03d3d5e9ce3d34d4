package usecase

import (
	"context"
	"errors"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
)

var (
	// ErrNotFound возвращается репозиториями, когда запись отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrQueueEmpty Dequeue не дождался задачи за время ожидания.
	ErrQueueEmpty = errors.New("queue is empty")
)

// EventFilter фильтр журнала отметок. From/To задают календарные дни включительно.
type EventFilter struct {
	From  string
	To    string
	Limit int
}

// DayFilter фильтр дневных записей. Пустой UserID означает всех пользователей.
type DayFilter struct {
	UserID string
	From   string
	To     string
	Limit  int
}

type EventRepository interface {
	CreateEvent(ctx context.Context, event *entity.AttendanceEvent) error
	ListEvents(ctx context.Context, userID string, filter EventFilter) ([]*entity.AttendanceEvent, error)
	CountEventsByDay(ctx context.Context, userID, from, to string) (map[string]int, error) // day -> punches
}

type DisconnectRepository interface {
	// IncrementDisconnect атомарно создает запись со счетчиком 1 или увеличивает существующий.
	IncrementDisconnect(ctx context.Context, userID, day string) (*entity.DisconnectRecord, error)
	GetDisconnect(ctx context.Context, userID, day string) (*entity.DisconnectRecord, error)
	ListDisconnects(ctx context.Context, filter DayFilter) ([]*entity.DisconnectRecord, error)
}

type DayRepository interface {
	GetDay(ctx context.Context, userID, day string) (*entity.AttendanceDay, error)
	UpsertDay(ctx context.Context, day *entity.AttendanceDay) error
	ListDays(ctx context.Context, filter DayFilter) ([]*entity.AttendanceDay, error)
}

type QueueRepository interface {
	Enqueue(ctx context.Context, task string, payload interface{}) error
	Dequeue(ctx context.Context, task string) (string, error) // Returns payload JSON
}
