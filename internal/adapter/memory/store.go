// Package memory is a process-local Store used by tests and by the
// "memory" storage setting.
package memory

import (
	"context"
	"sync"

	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type state struct {
	menu    map[int]domain.MenuItem
	tables  map[int]domain.Table
	orders  map[int]domain.Order
	lines   []domain.OrderLine
	history []domain.StatusChange
	nextID  map[string]int
}

func newState() *state {
	return &state{
		menu:   make(map[int]domain.MenuItem),
		tables: make(map[int]domain.Table),
		orders: make(map[int]domain.Order),
		nextID: make(map[string]int),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.menu {
		c.menu[k] = v
	}
	for k, v := range s.tables {
		c.tables[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.nextID {
		c.nextID[k] = v
	}
	c.lines = append([]domain.OrderLine(nil), s.lines...)
	c.history = append([]domain.StatusChange(nil), s.history...)
	return c
}

func (s *state) seq(name string) int {
	s.nextID[name]++
	return s.nextID[name]
}

// Store keeps everything in maps guarded by one mutex. A transaction holds the
// mutex for its whole duration and restores a snapshot when it fails.
type Store struct {
	mu   sync.Mutex
	data *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

func (s *Store) Repositories() interfaces.Repositories {
	return s.repos(false)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos interfaces.Repositories) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	return fn(ctx, s.repos(true))
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) repos(inTx bool) interfaces.Repositories {
	b := binding{store: s, inTx: inTx}
	return interfaces.Repositories{
		Menu:    &menuRepository{b},
		Tables:  &tableRepository{b},
		Orders:  &orderRepository{b},
		Reports: &reportRepository{b},
	}
}

// binding runs repository calls against the store state, taking the mutex
// unless the call is part of a transaction that already holds it.
type binding struct {
	store *Store
	inTx  bool
}

func (b binding) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.inTx {
		b.store.mu.Lock()
		defer b.store.mu.Unlock()
	}
	return fn(b.store.data)
}
