package query

import (
	"context"
	"fmt"
	"sync"
)

// Family держит отдельный Query на каждое значение параметра,
// например доход по годам. Смена параметра запускает цикл состояний своего запроса.
type Family[P comparable, T any] struct {
	name  string
	fetch func(ctx context.Context, p P) (T, error)
	opts  []Option

	mu      sync.Mutex
	queries map[P]*Query[T]
}

// NewFamily создаёт семейство запросов.
func NewFamily[P comparable, T any](name string, fetch func(ctx context.Context, p P) (T, error), opts ...Option) *Family[P, T] {
	return &Family[P, T]{
		name:    name,
		fetch:   fetch,
		opts:    opts,
		queries: make(map[P]*Query[T]),
	}
}

// Get возвращает запрос для параметра, создавая его при первом обращении.
func (f *Family[P, T]) Get(p P) *Query[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q, ok := f.queries[p]; ok {
		return q
	}
	q := New(fmt.Sprintf("%s:%v", f.name, p), func(ctx context.Context) (T, error) {
		return f.fetch(ctx, p)
	}, f.opts...)
	f.queries[p] = q
	return q
}

// Reset сбрасывает все запросы семейства.
func (f *Family[P, T]) Reset(ctx context.Context) {
	f.mu.Lock()
	qs := make([]*Query[T], 0, len(f.queries))
	for _, q := range f.queries {
		qs = append(qs, q)
	}
	f.mu.Unlock()
	for _, q := range qs {
		q.Reset(ctx)
	}
}
