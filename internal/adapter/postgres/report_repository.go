package postgres

import (
	"context"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"
)

type reportRepository struct {
	q Querier
}

func (r *reportRepository) SalesBetween(ctx context.Context, from, to time.Time) (domain.SalesTotals, error) {
	var totals domain.SalesTotals
	err := r.q.QueryRow(ctx, querySalesBetween, from, to).
		Scan(&totals.PaidOrders, &totals.UnpaidOrders, &totals.TotalSales)
	if err != nil {
		return domain.SalesTotals{}, mapError("aggregate sales", err, nil)
	}
	return totals, nil
}
