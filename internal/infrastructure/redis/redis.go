package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/usecase"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitPrefix = "ratelimit:"
	// Ограниченное ожидание BRPop, чтобы воркер замечал остановку.
	defaultDequeueWait = 5 * time.Second
)

// RedisRepo реализация очереди уведомлений и ограничителя частоты на основе Redis.
type RedisRepo struct {
	Client      *redis.Client
	DequeueWait time.Duration
}

// New создает новое подключение к Redis.
func New(addr, password string, db int) (*RedisRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRepo{Client: client, DequeueWait: defaultDequeueWait}, nil
}

// Close закрывает соединение.
func (r *RedisRepo) Close() {
	r.Client.Close()
}

// Ping проверяет доступность Redis.
func (r *RedisRepo) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Queue (Очередь)

// Enqueue добавляет задачу в очередь списка (LPush).
func (r *RedisRepo) Enqueue(ctx context.Context, queueName string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.Client.LPush(ctx, queueName, data).Err()
}

// Dequeue извлекает задачу из очереди (BRPop). Если задач нет, возвращает usecase.ErrQueueEmpty.
func (r *RedisRepo) Dequeue(ctx context.Context, queueName string) (string, error) {
	result, err := r.Client.BRPop(ctx, r.DequeueWait, queueName).Result()
	if errors.Is(err, redis.Nil) {
		return "", usecase.ErrQueueEmpty
	}
	if err != nil {
		return "", err
	}
	// result содержит [имя_очереди, значение]
	if len(result) < 2 {
		return "", fmt.Errorf("redis pop unexpected result")
	}
	return result[1], nil
}

// Rate limiter (Ограничитель частоты)

// Allow фиксированное окно: INCR и PTTL одной транзакцией, TTL ставится, если у ключа его нет.
// Ключ без TTL (первый запрос окна или сбой EXPIRE ранее) получает его на следующем вызове,
// поэтому окно не может зависнуть навсегда.
// Возвращает false и время до сброса окна, если лимит исчерпан.
func (r *RedisRepo) Allow(ctx context.Context, key string, limit int, per time.Duration) (bool, time.Duration, error) {
	k := rateLimitPrefix + key

	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	ttl := pttl.Val()
	if ttl < 0 {
		if err := r.Client.Expire(ctx, k, per).Err(); err != nil {
			return false, 0, err
		}
		ttl = per
	}
	if incr.Val() <= int64(limit) {
		return true, 0, nil
	}
	return false, ttl, nil
}

var _ usecase.QueueRepository = (*RedisRepo)(nil)
