package query

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/metrics"
)

// Mutation — операция записи: idle → loading → success|error → idle.
//
// Каждый Run — ровно одна попытка изменения на сервере, без повторов.
// Одновременные Run разрешены, их порядок определяет вызывающий код.
// Зависимые запросы вызывающий обновляет сам через Refetch.
type Mutation[In, Out any] struct {
	name string
	run  func(ctx context.Context, in In) (Out, error)
	log  *slog.Logger

	inFlight atomic.Int64

	mu     sync.Mutex
	status Status
	err    error
}

// NewMutation создаёт мутацию в состоянии idle.
func NewMutation[In, Out any](name string, run func(ctx context.Context, in In) (Out, error), log *slog.Logger) *Mutation[In, Out] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Mutation[In, Out]{name: name, run: run, log: log, status: Idle}
}

// Run выполняет мутацию. Отмена ctx не прерывает уже отправленный запрос.
func (m *Mutation[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	m.inFlight.Add(1)
	m.set(Loading, nil)

	out, err := m.run(context.WithoutCancel(ctx), in)
	m.inFlight.Add(-1)

	if err != nil {
		metrics.MutationsTotal.WithLabelValues(m.name, "error").Inc()
		m.log.Warn("mutation failed", slog.String("mutation", m.name), sl.Err(err))
		m.set(Error, err)
		return out, err
	}
	metrics.MutationsTotal.WithLabelValues(m.name, "success").Inc()
	m.log.Info("mutation succeeded", slog.String("mutation", m.name))
	m.set(Success, nil)
	return out, nil
}

// Status возвращает loading, пока хотя бы один Run не завершён.
func (m *Mutation[In, Out]) Status() Status {
	if m.inFlight.Load() > 0 {
		return Loading
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Err возвращает ошибку последнего завершённого Run.
func (m *Mutation[In, Out]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Reset возвращает мутацию в idle.
func (m *Mutation[In, Out]) Reset() {
	m.set(Idle, nil)
}

func (m *Mutation[In, Out]) set(s Status, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = s
	m.err = err
}
