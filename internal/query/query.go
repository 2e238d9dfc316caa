// Package query реализует состояния чтений и мутаций поверх транспорта.
//
// Запрос (Query) проходит idle → loading → success|error и может войти в этот цикл снова
// при явном Refetch или смене параметра (Family). Одинаковые одновременные выборки
// одного поколения выполняются одним вызовом. Каждая выборка получает номер поколения;
// ответ старше уже применённого отбрасывается, поэтому поздний ответ не затирает свежие данные.
//
// Успех считается свежим в течение окна устаревания; Load после него выполняет выборку
// заново, поэтому изменения на сервере видны без мутаций в этом процессе.
//
// Уход со страницы не прерывает запрос: вызывающий перестаёт ждать, а результат
// всё равно применяется к общему состоянию запроса.
package query

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/metrics"
)

// Status — состояние запроса или мутации.
type Status string

const (
	Idle    Status = "idle"
	Loading Status = "loading"
	Success Status = "success"
	Error   Status = "error"
)

// State — снимок состояния запроса. Данные последнего успеха сохраняются
// во время повторной выборки и после ошибки.
type State[T any] struct {
	Status    Status
	Data      T
	HasData   bool
	Err       error
	UpdatedAt time.Time
}

// Memo — общий кеш результатов идемпотентных чтений (см. пакет cache).
type Memo interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Fetcher выполняет одно чтение.
type Fetcher[T any] func(ctx context.Context) (T, error)

// DefaultStaleTime — окно свежести успешного ответа по умолчанию.
const DefaultStaleTime = time.Minute

type options struct {
	memo  Memo
	ttl   time.Duration
	scope func() string
	stale time.Duration
	log   *slog.Logger
	now   func() time.Time
}

// Option настраивает запрос.
type Option func(*options)

// WithMemo подключает общий кеш с временем жизни значений.
func WithMemo(m Memo, ttl time.Duration) Option {
	return func(o *options) {
		o.memo = m
		o.ttl = ttl
	}
}

// WithScope задаёт владельца записей общего кеша, например администратора сессии.
// Пустой владелец отключает кеш: данные без сессии не читаются и не сохраняются.
func WithScope(scope func() string) Option {
	return func(o *options) { o.scope = scope }
}

// WithStaleTime задаёт окно свежести; d <= 0 делает успех вечным до Refetch.
func WithStaleTime(d time.Duration) Option {
	return func(o *options) { o.stale = d }
}

// WithClock подменяет часы.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger задаёт логгер.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Query — разделяемое состояние одного чтения.
type Query[T any] struct {
	name  string
	fetch Fetcher[T]
	opts  options
	group singleflight.Group

	mu      sync.Mutex
	state   State[T]
	issued  uint64
	applied uint64
}

// New создаёт запрос в состоянии idle.
func New[T any](name string, fetch Fetcher[T], opts ...Option) *Query[T] {
	o := options{log: slog.New(slog.DiscardHandler), now: time.Now, stale: DefaultStaleTime}
	for _, opt := range opts {
		opt(&o)
	}
	return &Query[T]{
		name:  name,
		fetch: fetch,
		opts:  o,
		state: State[T]{Status: Idle},
	}
}

// Name возвращает имя запроса.
func (q *Query[T]) Name() string { return q.name }

// State возвращает текущий снимок без обращения к сети.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Load возвращает свежий успех без вызова, иначе выполняет выборку.
// Повторный Load после ошибки или по истечении окна свежести выполняет выборку заново;
// данные прошлого успеха остаются доступны, пока она идёт.
func (q *Query[T]) Load(ctx context.Context) State[T] {
	q.mu.Lock()
	if q.state.Status == Success && !q.staleLocked() {
		st := q.state
		q.mu.Unlock()
		return st
	}
	skipMemo := q.state.Status == Loading || q.state.Status == Success
	q.mu.Unlock()

	if !skipMemo && q.loadMemo(ctx) {
		return q.State()
	}
	return q.run(ctx, false)
}

// Refetch всегда выполняет новую выборку; используется после успешной мутации.
// Выборка нового поколения не присоединяется к уже идущей.
func (q *Query[T]) Refetch(ctx context.Context) State[T] {
	q.invalidateMemo(ctx)
	return q.run(ctx, true)
}

// Sync выполняет Refetch и возвращает ошибку выборки, если она была.
func (q *Query[T]) Sync(ctx context.Context) error {
	st := q.Refetch(ctx)
	switch st.Status {
	case Error:
		return st.Err
	case Loading:
		return ctx.Err()
	}
	return nil
}

// Reset возвращает запрос в idle и отбрасывает ответы уже идущих выборок,
// например после выхода из сессии.
func (q *Query[T]) Reset(ctx context.Context) {
	q.mu.Lock()
	q.issued++
	q.applied = q.issued
	q.state = State[T]{Status: Idle}
	q.mu.Unlock()

	q.invalidateMemo(ctx)
}

func (q *Query[T]) staleLocked() bool {
	if q.opts.stale <= 0 {
		return false
	}
	return q.opts.now().Sub(q.state.UpdatedAt) >= q.opts.stale
}

// memoKey возвращает ключ общего кеша; false, если кеш не подключён или владелец неизвестен.
func (q *Query[T]) memoKey() (string, bool) {
	if q.opts.memo == nil {
		return "", false
	}
	if q.opts.scope == nil {
		return q.name, true
	}
	owner := q.opts.scope()
	if owner == "" {
		return "", false
	}
	return owner + ":" + q.name, true
}

func (q *Query[T]) invalidateMemo(ctx context.Context) {
	key, ok := q.memoKey()
	if !ok {
		return
	}
	if err := q.opts.memo.Invalidate(ctx, key); err != nil {
		q.opts.log.Warn("failed to invalidate memo", slog.String("query", q.name), sl.Err(err))
	}
}

func (q *Query[T]) run(ctx context.Context, fresh bool) State[T] {
	q.mu.Lock()
	if fresh || q.state.Status != Loading || q.issued == 0 {
		q.issued++
	}
	gen := q.issued
	q.state.Status = Loading
	q.mu.Unlock()

	ch := q.group.DoChan(q.name+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		v, err := q.fetch(context.WithoutCancel(ctx))
		q.apply(ctx, gen, v, err)
		return nil, err
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.QueryFetchesTotal.WithLabelValues(q.name, "dedup").Inc()
		}
	case <-ctx.Done():
		q.opts.log.Debug("query abandoned", slog.String("query", q.name))
	}
	return q.State()
}

func (q *Query[T]) apply(ctx context.Context, gen uint64, v T, err error) {
	q.mu.Lock()
	if gen < q.applied {
		q.mu.Unlock()
		metrics.QueryFetchesTotal.WithLabelValues(q.name, "stale").Inc()
		q.opts.log.Debug("stale response discarded", slog.String("query", q.name), slog.Uint64("generation", gen))
		return
	}
	q.applied = gen
	latest := gen == q.issued

	if err != nil {
		q.state.Err = err
		if latest {
			q.state.Status = Error
		}
		q.mu.Unlock()
		metrics.QueryFetchesTotal.WithLabelValues(q.name, "error").Inc()
		q.opts.log.Warn("query failed", slog.String("query", q.name), sl.Err(err))
		return
	}

	q.state.Data = v
	q.state.HasData = true
	q.state.Err = nil
	q.state.UpdatedAt = q.opts.now()
	if latest {
		q.state.Status = Success
	}
	q.mu.Unlock()
	metrics.QueryFetchesTotal.WithLabelValues(q.name, "fetch").Inc()

	if key, ok := q.memoKey(); ok {
		if err := q.opts.memo.Set(context.WithoutCancel(ctx), key, v, q.opts.ttl); err != nil {
			q.opts.log.Warn("failed to store memo", slog.String("query", q.name), sl.Err(err))
		}
	}
}

func (q *Query[T]) loadMemo(ctx context.Context) bool {
	key, ok := q.memoKey()
	if !ok {
		return false
	}
	var v T
	found, err := q.opts.memo.Get(ctx, key, &v)
	if err != nil {
		q.opts.log.Warn("failed to read memo", slog.String("query", q.name), sl.Err(err))
		return false
	}
	if !found {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state.Status == Loading || q.state.Status == Success {
		return false
	}
	q.state = State[T]{Status: Success, Data: v, HasData: true, UpdatedAt: q.opts.now()}
	metrics.QueryFetchesTotal.WithLabelValues(q.name, "memo").Inc()
	return true
}
