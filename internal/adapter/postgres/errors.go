package postgres

import (
	"errors"

	"github.com/YelzhanWeb/restaurant/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Constraint names from migrations/001_init.sql.
const (
	constraintMenuItemName = "menu_items_name_lower_idx"
	constraintTableNumber  = "tables_table_number_key"
	constraintDetailItem   = "order_details_item_id_fkey"
	constraintDetailOrder  = "order_details_order_id_fkey"
	constraintOrderTable   = "orders_table_id_fkey"
)

// mapError translates driver errors into domain errors. notFound is returned
// for pgx.ErrNoRows; anything unrecognised becomes a StoreError.
func mapError(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			switch pgErr.ConstraintName {
			case constraintMenuItemName:
				return domain.ErrDuplicateName
			case constraintTableNumber:
				return domain.ErrDuplicateTable
			}
		case foreignKeyViolation:
			switch pgErr.ConstraintName {
			case constraintDetailItem:
				if op == opDeleteMenuItem {
					return domain.ErrInUse
				}
				return domain.ErrMenuItemNotFound
			case constraintDetailOrder:
				return domain.ErrOrderNotFound
			case constraintOrderTable:
				return domain.ErrTableNotFound
			}
		}
	}

	return &domain.StoreError{Op: op, Err: err}
}
