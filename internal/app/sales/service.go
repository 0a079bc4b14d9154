package sales

import (
	"context"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type Service struct {
	store    interfaces.Store
	logger   logger.Logger
	location *time.Location
	now      func() time.Time
}

// NewService reports calendar days in loc; nil means UTC.
func NewService(store interfaces.Store, logger logger.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    store,
		logger:   logger,
		location: loc,
		now:      time.Now,
	}
}

// DailyReport summarizes the calendar day containing day. A zero day means today.
func (s *Service) DailyReport(ctx context.Context, day time.Time) (*domain.DailyReport, error) {
	if day.IsZero() {
		day = s.now()
	}
	from, to := domain.DayBounds(day, s.location)

	totals, err := s.store.Repositories().Reports.SalesBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("daily_report_failed", "Failed to build daily report", logger.RequestID(ctx),
			map[string]interface{}{"date": from.Format(time.DateOnly)}, err)
		return nil, err
	}

	return domain.NewDailyReport(from, totals), nil
}

