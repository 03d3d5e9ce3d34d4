package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Srikarsmile/HRUPDATED/internal/entity"
	"github.com/Srikarsmile/HRUPDATED/internal/usecase"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo реализация репозиториев посещаемости на основе PostgreSQL.
type PostgresRepo struct {
	Pool *pgxpool.Pool
}

// New создает новое подключение к PostgreSQL.
func New(dsn string) (*PostgresRepo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	return &PostgresRepo{Pool: pool}, nil
}

// Close закрывает пул соединений.
func (r *PostgresRepo) Close() {
	r.Pool.Close()
}

// Ping проверяет соединение с БД.
func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.Pool.Ping(ctx)
}

// Event Repository

// CreateEvent добавляет отметку в журнал.
func (r *PostgresRepo) CreateEvent(ctx context.Context, e *entity.AttendanceEvent) error {
	sql := `INSERT INTO attendance_logs (id, user_id, at, day, direction, method, ip, latitude, longitude, reason)
			VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10)`
	_, err := r.Pool.Exec(ctx, sql, e.ID, e.UserID, e.At, e.Day, string(e.Direction), string(e.Method),
		nullable(e.OriginAddress), e.Latitude, e.Longitude, nullable(e.Reason))
	return err
}

// ListEvents получает отметки пользователя, новые первыми.
func (r *PostgresRepo) ListEvents(ctx context.Context, userID string, f usecase.EventFilter) ([]*entity.AttendanceEvent, error) {
	q := newQuery(`SELECT id::text, user_id, at, day::text, direction, method, COALESCE(ip, ''), latitude, longitude, COALESCE(reason, '')
		FROM attendance_logs`)
	q.where("user_id = ?", userID)
	q.optional("day >= ?::date", f.From)
	q.optional("day <= ?::date", f.To)
	q.tail("ORDER BY at DESC", f.Limit)

	rows, err := r.Pool.Query(ctx, q.String(), q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*entity.AttendanceEvent{}
	for rows.Next() {
		var e entity.AttendanceEvent
		var direction, method string
		if err := rows.Scan(&e.ID, &e.UserID, &e.At, &e.Day, &direction, &method, &e.OriginAddress, &e.Latitude, &e.Longitude, &e.Reason); err != nil {
			return nil, err
		}
		e.Direction, e.Method = entity.Direction(direction), entity.Method(method)
		events = append(events, &e)
	}
	return events, rows.Err()
}

// CountEventsByDay количество отметок по дням.
func (r *PostgresRepo) CountEventsByDay(ctx context.Context, userID, from, to string) (map[string]int, error) {
	q := newQuery(`SELECT day::text, COUNT(*) FROM attendance_logs`)
	q.where("user_id = ?", userID)
	q.optional("day >= ?::date", from)
	q.optional("day <= ?::date", to)
	q.tail("GROUP BY day", 0)

	rows, err := r.Pool.Query(ctx, q.String(), q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day] = n
	}
	return counts, rows.Err()
}

// Disconnect Repository

// IncrementDisconnect атомарно создает или увеличивает счетчик за день одним запросом.
func (r *PostgresRepo) IncrementDisconnect(ctx context.Context, userID, day string) (*entity.DisconnectRecord, error) {
	sql := `INSERT INTO disconnect_events (user_id, day, count, updated_at)
			VALUES ($1, $2::date, 1, NOW())
			ON CONFLICT (user_id, day) DO UPDATE
			SET count = disconnect_events.count + 1, updated_at = NOW()
			RETURNING user_id, day::text, count, updated_at`
	var rec entity.DisconnectRecord
	err := r.Pool.QueryRow(ctx, sql, userID, day).Scan(&rec.UserID, &rec.Day, &rec.Count, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresRepo) GetDisconnect(ctx context.Context, userID, day string) (*entity.DisconnectRecord, error) {
	sql := `SELECT user_id, day::text, count, updated_at FROM disconnect_events WHERE user_id = $1 AND day = $2::date`
	var rec entity.DisconnectRecord
	err := r.Pool.QueryRow(ctx, sql, userID, day).Scan(&rec.UserID, &rec.Day, &rec.Count, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresRepo) ListDisconnects(ctx context.Context, f usecase.DayFilter) ([]*entity.DisconnectRecord, error) {
	q := newQuery(`SELECT user_id, day::text, count, updated_at FROM disconnect_events`)
	q.optional("user_id = ?", f.UserID)
	q.optional("day >= ?::date", f.From)
	q.optional("day <= ?::date", f.To)
	q.tail("ORDER BY day DESC, user_id", f.Limit)

	rows, err := r.Pool.Query(ctx, q.String(), q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*entity.DisconnectRecord{}
	for rows.Next() {
		var rec entity.DisconnectRecord
		if err := rows.Scan(&rec.UserID, &rec.Day, &rec.Count, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Day Repository

func (r *PostgresRepo) GetDay(ctx context.Context, userID, day string) (*entity.AttendanceDay, error) {
	sql := `SELECT user_id, day::text, half_day, updated_at FROM attendance_days WHERE user_id = $1 AND day = $2::date`
	var d entity.AttendanceDay
	err := r.Pool.QueryRow(ctx, sql, userID, day).Scan(&d.UserID, &d.Day, &d.HalfDay, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpsertDay перезаписывает признак половины дня (последняя запись побеждает).
func (r *PostgresRepo) UpsertDay(ctx context.Context, d *entity.AttendanceDay) error {
	sql := `INSERT INTO attendance_days (user_id, day, half_day, updated_at)
			VALUES ($1, $2::date, $3, NOW())
			ON CONFLICT (user_id, day) DO UPDATE
			SET half_day = EXCLUDED.half_day, updated_at = EXCLUDED.updated_at
			RETURNING updated_at`
	return r.Pool.QueryRow(ctx, sql, d.UserID, d.Day, d.HalfDay).Scan(&d.UpdatedAt)
}

func (r *PostgresRepo) ListDays(ctx context.Context, f usecase.DayFilter) ([]*entity.AttendanceDay, error) {
	q := newQuery(`SELECT user_id, day::text, half_day, updated_at FROM attendance_days`)
	q.optional("user_id = ?", f.UserID)
	q.optional("day >= ?::date", f.From)
	q.optional("day <= ?::date", f.To)
	q.tail("ORDER BY day DESC, user_id", f.Limit)

	rows, err := r.Pool.Query(ctx, q.String(), q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []*entity.AttendanceDay{}
	for rows.Next() {
		var d entity.AttendanceDay
		if err := rows.Scan(&d.UserID, &d.Day, &d.HalfDay, &d.UpdatedAt); err != nil {
			return nil, err
		}
		days = append(days, &d)
	}
	return days, rows.Err()
}

// query собирает SELECT с необязательными условиями; "?" заменяется на $N.
type query struct {
	base    string
	clauses []string
	suffix  string
	args    []any
}

func newQuery(base string) *query {
	return &query{base: base}
}

func (q *query) where(cond string, arg any) {
	q.args = append(q.args, arg)
	q.clauses = append(q.clauses, strings.Replace(cond, "?", "$"+strconv.Itoa(len(q.args)), 1))
}

func (q *query) optional(cond, arg string) {
	if arg != "" {
		q.where(cond, arg)
	}
}

func (q *query) tail(suffix string, limit int) {
	q.suffix = suffix
	if limit > 0 {
		q.args = append(q.args, limit)
		q.suffix += " LIMIT $" + strconv.Itoa(len(q.args))
	}
}

func (q *query) String() string {
	sql := q.base
	if len(q.clauses) > 0 {
		sql += " WHERE " + strings.Join(q.clauses, " AND ")
	}
	if q.suffix != "" {
		sql += " " + q.suffix
	}
	return sql
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var (
	_ usecase.EventRepository      = (*PostgresRepo)(nil)
	_ usecase.DisconnectRepository = (*PostgresRepo)(nil)
	_ usecase.DayRepository        = (*PostgresRepo)(nil)
)
