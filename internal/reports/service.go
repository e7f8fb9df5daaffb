package reports

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RepositoryPort defines the aggregation queries the service depends on.
type RepositoryPort interface {
	DailyCollections(ctx context.Context, from, to time.Time) ([]DailyRow, error)
	MonthlyCollections(ctx context.Context, year int) ([]MonthlyRow, error)
	ClassBalances(ctx context.Context, classID int64) ([]ClassRow, error)
	PendingInstallments(ctx context.Context, asOf time.Time) ([]PendingRow, error)
}

// Service serves read-only fee reports behind the versioned cache.
type Service struct {
	repo    RepositoryPort
	cache   *Cache
	group   singleflight.Group
	printer *message.Printer
	now     func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		printer: message.NewPrinter(language.English),
		now:     time.Now,
	}
}

// Daily returns collections per day for the date range.
func (s *Service) Daily(ctx context.Context, from, to time.Time) (*DailyReport, error) {
	key, err := s.cache.BuildKey(ctx, "feereports", "daily", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	var report DailyReport
	err = s.fetch(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.DailyCollections(ctx, from, to)
		if err != nil {
			return nil, err
		}
		var total float64
		for _, row := range rows {
			total += row.TotalCollected
		}
		return &DailyReport{From: from, To: to, Rows: emptyIfNil(rows), Summary: s.summary(total)}, nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Monthly returns collections per month for one year.
func (s *Service) Monthly(ctx context.Context, year int) (*MonthlyReport, error) {
	key, err := s.cache.BuildKey(ctx, "feereports", "monthly", strconv.Itoa(year))
	if err != nil {
		return nil, err
	}
	var report MonthlyReport
	err = s.fetch(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.MonthlyCollections(ctx, year)
		if err != nil {
			return nil, err
		}
		var total float64
		for _, row := range rows {
			total += row.TotalCollected
		}
		return &MonthlyReport{Year: year, Rows: emptyIfNil(rows), Summary: s.summary(total)}, nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Class returns per-student balances for one class.
func (s *Service) Class(ctx context.Context, classID int64) (*ClassReport, error) {
	key, err := s.cache.BuildKey(ctx, "feereports", "class", strconv.FormatInt(classID, 10))
	if err != nil {
		return nil, err
	}
	var report ClassReport
	err = s.fetch(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.ClassBalances(ctx, classID)
		if err != nil {
			return nil, err
		}
		var due float64
		for _, row := range rows {
			due += row.DueAmount
		}
		return &ClassReport{ClassID: classID, Rows: emptyIfNil(rows), Summary: s.summary(due)}, nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Pending returns all outstanding installments.
func (s *Service) Pending(ctx context.Context) (*PendingReport, error) {
	asOf := s.now()
	key, err := s.cache.BuildKey(ctx, "feereports", "pending", asOf.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	var report PendingReport
	err = s.fetch(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.PendingInstallments(ctx, asOf)
		if err != nil {
			return nil, err
		}
		var remaining float64
		for _, row := range rows {
			remaining += row.Remaining
		}
		return &PendingReport{Rows: emptyIfNil(rows), Summary: s.summary(remaining)}, nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Warm precomputes the pending and current-year monthly reports. Used
// by the nightly warmup job.
func (s *Service) Warm(ctx context.Context) error {
	if _, err := s.Pending(ctx); err != nil {
		return err
	}
	_, err := s.Monthly(ctx, s.now().Year())
	return err
}

// fetch serves from cache and collapses concurrent loads of the same
// key into a single query. The raw JSON travels through the flight so
// every waiter gets its own copy decoded into dest.
func (s *Service) fetch(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	resultCh := s.group.DoChan(key, func() (interface{}, error) {
		var raw json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &raw, loader); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultCh:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}

func (s *Service) summary(total float64) Summary {
	return Summary{Total: total, FormattedTotal: s.printer.Sprintf("%.2f", total)}
}

func emptyIfNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
