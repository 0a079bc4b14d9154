package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/jackc/pgx/v5"
)

type store struct {
	db DB
}

func NewStore(db DB) interfaces.Store {
	return &store{db: db}
}

func newRepositories(q Querier) interfaces.Repositories {
	return interfaces.Repositories{
		Menu:    &menuRepository{q: q},
		Tables:  &tableRepository{q: q},
		Orders:  &orderRepository{q: q},
		Reports: &reportRepository{q: q},
	}
}

func (s *store) Repositories() interfaces.Repositories {
	return newRepositories(s.db)
}

func (s *store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return &domain.StoreError{Op: "ping", Err: err}
	}
	return nil
}

// WithinTx runs fn in one transaction. The transaction is rolled back when fn
// returns an error or panics; the panic is re-raised afterwards.
func (s *store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos interfaces.Repositories) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return &domain.StoreError{Op: "begin transaction", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
			return
		}
		if cmErr := tx.Commit(ctx); cmErr != nil {
			err = &domain.StoreError{Op: "commit transaction", Err: cmErr}
		}
	}()

	return fn(ctx, newRepositories(tx))
}
