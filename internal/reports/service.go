package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gerai-erp/gerai/internal/finance"
)

// RepositoryPort exposes the aggregation queries the reports need. All sums
// run server-side; the service only assembles them.
type RepositoryPort interface {
	CashTotal(ctx context.Context) (float64, error)
	InventoryValue(ctx context.Context) (float64, error)
	ReceivablesTotal(ctx context.Context) (float64, error)
	PayablesTotal(ctx context.Context) (float64, error)
	SalesTotals(ctx context.Context, from, to time.Time) (SalesSummary, error)
	SalesCOGS(ctx context.Context, from, to time.Time) (float64, error)
	JournalTotalsByCategory(ctx context.Context, from, to time.Time, category finance.AccountCategory) ([]AccountAmount, error)
}

// CachePort is the read-through cache for assembled reports.
type CachePort interface {
	Get(ctx context.Context, module, key string, target any) (bool, error)
	Set(ctx context.Context, module, key string, value any) error
}

// Service assembles reporting views.
type Service struct {
	repo   RepositoryPort
	cache  CachePort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, cache CachePort, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// BalanceSheet assembles the current position. Results are cached until a
// write invalidates the reports module.
func (s *Service) BalanceSheet(ctx context.Context) (BalanceSheet, error) {
	var cached BalanceSheet
	if hit := s.cacheGet(ctx, "balance_sheet", &cached); hit {
		return cached, nil
	}

	var cash, inventory, receivables, payables float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cash, err = s.repo.CashTotal(gctx)
		return err
	})
	g.Go(func() (err error) {
		inventory, err = s.repo.InventoryValue(gctx)
		return err
	})
	g.Go(func() (err error) {
		receivables, err = s.repo.ReceivablesTotal(gctx)
		return err
	})
	g.Go(func() (err error) {
		payables, err = s.repo.PayablesTotal(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return BalanceSheet{}, err
	}

	sheet := BalanceSheet{
		AsOf:           time.Now().UTC(),
		Cash:           cash,
		InventoryValue: inventory,
		Receivables:    receivables,
		Payables:       payables,
	}
	sheet.TotalAssets = cash + inventory + receivables
	sheet.NetPosition = sheet.TotalAssets - payables

	s.cacheSet(ctx, "balance_sheet", sheet)
	return sheet, nil
}

// ProfitLoss assembles the period result from committed sales and manual
// journal entries grouped by revenue and expense categories.
func (s *Service) ProfitLoss(ctx context.Context, from, to time.Time) (ProfitLoss, error) {
	from, to, err := normalizePeriod(from, to)
	if err != nil {
		return ProfitLoss{}, err
	}

	key := periodKey("pl", from, to)
	var cached ProfitLoss
	if hit := s.cacheGet(ctx, key, &cached); hit {
		return cached, nil
	}

	sales, err := s.repo.SalesTotals(ctx, from, to)
	if err != nil {
		return ProfitLoss{}, err
	}
	cogs, err := s.repo.SalesCOGS(ctx, from, to)
	if err != nil {
		return ProfitLoss{}, err
	}
	otherRevenue, err := s.repo.JournalTotalsByCategory(ctx, from, to, finance.CategoryRevenue)
	if err != nil {
		return ProfitLoss{}, err
	}
	expenses, err := s.repo.JournalTotalsByCategory(ctx, from, to, finance.CategoryExpense)
	if err != nil {
		return ProfitLoss{}, err
	}

	report := ProfitLoss{
		From:         from,
		To:           to,
		SalesRevenue: sales.Net,
		COGS:         cogs,
		GrossProfit:  sales.Net - cogs,
		OtherRevenue: otherRevenue,
		Expenses:     expenses,
	}
	report.NetProfit = report.GrossProfit
	for _, line := range otherRevenue {
		report.NetProfit += line.Amount
	}
	for _, line := range expenses {
		report.NetProfit -= line.Amount
	}

	s.cacheSet(ctx, key, report)
	return report, nil
}

// SalesSummary aggregates committed sales for a period.
func (s *Service) SalesSummary(ctx context.Context, from, to time.Time) (SalesSummary, error) {
	from, to, err := normalizePeriod(from, to)
	if err != nil {
		return SalesSummary{}, err
	}

	key := periodKey("sales", from, to)
	var cached SalesSummary
	if hit := s.cacheGet(ctx, key, &cached); hit {
		return cached, nil
	}

	summary, err := s.repo.SalesTotals(ctx, from, to)
	if err != nil {
		return SalesSummary{}, err
	}
	summary.From = from
	summary.To = to
	s.cacheSet(ctx, key, summary)
	return summary, nil
}

func normalizePeriod(from, to time.Time) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	return from, to, nil
}

func periodKey(prefix string, from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%s", prefix, from.Format("20060102"), to.Format("20060102"))
}

func (s *Service) cacheGet(ctx context.Context, key string, target any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, "reports", key, target)
	if err != nil && s.logger != nil {
		s.logger.Warn("report cache read", slog.String("key", key), slog.Any("error", err))
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, "reports", key, value); err != nil && s.logger != nil {
		s.logger.Warn("report cache write", slog.String("key", key), slog.Any("error", err))
	}
}
