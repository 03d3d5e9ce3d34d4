package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
	"github.com/Srikarsmile/HRUPDATED/internal/env"
	"github.com/Srikarsmile/HRUPDATED/internal/logging"
)

// Received уведомление о половине дня, хранимое в памяти мок-сервера.
type Received struct {
	Notification entity.HalfDayNotification `json:"notification"`
	ReceivedAt   string                     `json:"received_at"`
}

type inbox struct {
	mu    sync.Mutex
	items []Received
	max   int
}

// add хранит не больше max последних уведомлений.
func (b *inbox) add(r Received) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, r)
	if b.max > 0 && len(b.items) > b.max {
		b.items = b.items[len(b.items)-b.max:]
	}
}

func main() {
	port := env.GetString("PORT", "9090")
	logger := logging.New(env.GetString("LOG_LEVEL", "info"), env.GetString("LOG_FORMAT", "text"))
	box := &inbox{max: env.GetInt("MAX_ITEMS", 1000)}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		// POST: принимаем уведомление
		case http.MethodPost:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
			defer r.Body.Close()

			var n entity.HalfDayNotification
			if err := json.Unmarshal(body, &n); err != nil {
				logger.Warn("invalid notification payload", "error", err)
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
			logger.Info("half-day notification", "user_id", n.UserID, "day", n.Day, "disconnects", n.Disconnects)

			box.add(Received{Notification: n, ReceivedAt: time.Now().Format(time.RFC3339)})

			w.WriteHeader(http.StatusOK)
		// GET: отдаем список полученных уведомлений
		case http.MethodGet:
			box.mu.Lock()
			defer box.mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(box.items); err != nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	srv := &http.Server{Addr: ":" + port, ReadHeaderTimeout: env.GetDuration("READ_HEADER_TIMEOUT", 5*time.Second)}
	logger.Info("mock webhook receiver listening", "port", port, "max_items", box.max)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
