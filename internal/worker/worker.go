package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/usecase"
)

// Worker отвечает за фоновую доставку уведомлений о половине дня на вебхук HR.
type Worker struct {
	Queue      usecase.QueueRepository
	QueueName  string
	WebhookURL string
	MaxRetries int
	Backoff    func(attempt int) time.Duration
	Client     *http.Client
	Logger     *slog.Logger
}

// New создает новый экземпляр воркера.
func New(q usecase.QueueRepository, webhookURL string, logger *slog.Logger) *Worker {
	return &Worker{
		Queue:      q,
		QueueName:  usecase.HalfDayQueueName, // та же очередь, что и в политике
		WebhookURL: webhookURL,
		MaxRetries: 3,
		Backoff:    func(attempt int) time.Duration { return time.Duration(2*attempt+1) * time.Second },
		Client:     &http.Client{Timeout: 5 * time.Second},
		Logger:     logger,
	}
}

// Start запускает цикл обработки задач до отмены контекста.
func (w *Worker) Start(ctx context.Context) {
	w.Logger.Info("starting notification worker", "queue", w.QueueName)
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("notification worker stopped")
			return
		default:
		}

		payload, err := w.Queue.Dequeue(ctx, w.QueueName)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, usecase.ErrQueueEmpty) {
				continue
			}
			w.Logger.Error("worker dequeue error", "error", err)
			if !sleep(ctx, time.Second) {
				return
			}
			continue
		}

		go w.processTask(ctx, payload)
	}
}

// processTask отправляет одно уведомление с повторными попытками.
func (w *Worker) processTask(ctx context.Context, data string) {
	for i := 0; i < w.MaxRetries; i++ {
		err := w.sendWebhook(ctx, data)
		if err == nil {
			w.Logger.Debug("notification delivered")
			return
		}
		w.Logger.Warn("failed to deliver notification", "attempt", i+1, "max", w.MaxRetries, "error", err)
		if i < w.MaxRetries-1 && !sleep(ctx, w.Backoff(i)) {
			return
		}
	}
	w.Logger.Error("gave up on notification", "payload", data)
}

// sendWebhook выполняет HTTP POST запрос на вебхук.
func (w *Worker) sendWebhook(ctx context.Context, data string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.WebhookURL, bytes.NewBufferString(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned status: %d", resp.StatusCode)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
