package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/usecase"
)

const queueCapacity = 1024

// ErrQueueFull очередь переполнена, задача отброшена.
var ErrQueueFull = errors.New("queue is full")

// Queue очередь задач в памяти с семантикой LPush/BRPop.
type Queue struct {
	mu     sync.Mutex
	queues map[string]chan string
}

func NewQueue() *Queue {
	return &Queue{queues: make(map[string]chan string)}
}

func (q *Queue) channel(name string) chan string {
	q.mu.Lock()
	defer q.mu.Unlock()
	ch, ok := q.queues[name]
	if !ok {
		ch = make(chan string, queueCapacity)
		q.queues[name] = ch
	}
	return ch
}

func (q *Queue) Enqueue(ctx context.Context, name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	select {
	case q.channel(name) <- string(data):
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue блокируется до появления задачи или отмены контекста.
func (q *Queue) Dequeue(ctx context.Context, name string) (string, error) {
	select {
	case data := <-q.channel(name):
		return data, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Len количество задач в очереди.
func (q *Queue) Len(name string) int {
	return len(q.channel(name))
}

var _ usecase.QueueRepository = (*Queue)(nil)

// Limiter ограничитель частоты с фиксированным окном на процесс.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]window
	now     func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{buckets: make(map[string]window), now: time.Now}
}

func (l *Limiter) Allow(ctx context.Context, key string, limit int, per time.Duration) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.buckets[key]
	if !ok || !now.Before(w.resetAt) {
		w = window{resetAt: now.Add(per)}
	}
	if w.count >= limit {
		return false, w.resetAt.Sub(now), nil
	}
	w.count++
	l.buckets[key] = w
	return true, 0, nil
}
