package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/caferp/models"
	"github.com/ray-remotestate/caferp/utils"
)

const (
	defaultIntervalRange = 7 * 24 * time.Hour
	defaultTopRange      = 30 * 24 * time.Hour
	defaultTopLimit      = 5

	// TotalGroup labels the synthetic row appended to grouped summaries.
	TotalGroup = "total"

	noCompletedOrders = "no completed orders"
)

type IService interface {
	Summary(ctx context.Context, filter models.SummaryFilter, groupBy *models.GroupBy) (*models.Summary, error)
	StatsByInterval(ctx context.Context, interval models.Interval, dateRange models.DateRange) ([]models.IntervalBucket, error)
	TopMenuItems(ctx context.Context, limit int) ([]models.TopMenuItem, error)
	TopUsers(ctx context.Context, limit int, metric models.TopUsersMetric, dateRange models.DateRange) ([]models.TopUser, error)
	StatsByDimension(ctx context.Context, dimension models.Dimension, dateRange models.DateRange) ([]models.DimensionRow, error)
	HourOfDayStats(ctx context.Context, dateRange models.DateRange) ([]models.SeriesBucket, error)
	WeekdayStats(ctx context.Context, dateRange models.DateRange) ([]models.SeriesBucket, error)
	CompletionTimeStats(ctx context.Context, dateRange models.DateRange) (*models.CompletionTimeStats, error)
}

func NewService(repo IRepo) IService {
	return &service{repo: repo, now: time.Now}
}

type service struct {
	repo IRepo
	now  func() time.Time
}

// resolveRange fills open bounds: To defaults to now, From to To minus
// the given trailing window. Every aggregation uses this one path so the
// operations stay consistent about their defaults.
func (s *service) resolveRange(dateRange models.DateRange, trailing time.Duration) (from, to time.Time) {
	if dateRange.To != nil {
		to = *dateRange.To
	} else {
		to = s.now()
	}
	if dateRange.From != nil {
		from = *dateRange.From
	} else {
		from = to.Add(-trailing)
	}
	return from, to
}

// Summary computes count_orders, total_revenue and average_check,
// optionally partitioned by one dimension with a synthetic total row
// appended. No-data conditions yield zero figures, never an error.
func (s *service) Summary(ctx context.Context, filter models.SummaryFilter, groupBy *models.GroupBy) (*models.Summary, error) {
	if groupBy != nil && !groupBy.Valid() {
		return nil, models.ValidationError{Field: "group_by", Reason: fmt.Sprintf("unknown dimension %q", *groupBy)}
	}

	rows, err := s.repo.Aggregate(ctx, filter, groupBy)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	if groupBy == nil {
		row := AggregateRow{}
		if len(rows) > 0 {
			row = rows[0]
		}
		return &models.Summary{
			Results: []models.SummaryRow{summarize("", row.CountOrders, row.TotalRevenue)},
		}, nil
	}

	results := make([]models.SummaryRow, 0, len(rows)+1)
	var totalCount int64
	totalRevenue := decimal.Zero
	for _, row := range rows {
		results = append(results, summarize(row.Group, row.CountOrders, row.TotalRevenue))
		totalCount += row.CountOrders
		totalRevenue = totalRevenue.Add(row.TotalRevenue)
	}
	results = append(results, summarize(TotalGroup, totalCount, totalRevenue))

	return &models.Summary{GroupBy: *groupBy, Results: results}, nil
}

func summarize(group string, count int64, revenue decimal.Decimal) models.SummaryRow {
	return models.SummaryRow{
		Group:        group,
		CountOrders:  count,
		TotalRevenue: utils.RoundMoney(revenue),
		AverageCheck: utils.SafeAvg(revenue, count),
	}
}

// StatsByInterval buckets orders by calendar day, week or month; the
// range defaults to the trailing 7 days.
func (s *service) StatsByInterval(ctx context.Context, interval models.Interval, dateRange models.DateRange) ([]models.IntervalBucket, error) {
	if !interval.Valid() {
		return nil, models.ValidationError{Field: "interval", Reason: fmt.Sprintf("unknown interval %q", interval)}
	}

	from, to := s.resolveRange(dateRange, defaultIntervalRange)
	rows, err := s.repo.IntervalBuckets(ctx, interval, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket orders: %w", err)
	}

	buckets := make([]models.IntervalBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, models.IntervalBucket{
			Bucket:        row.Bucket,
			CountOrders:   row.CountOrders,
			TotalRevenue:  utils.RoundMoney(row.TotalRevenue),
			AvgOrderValue: utils.SafeAvg(row.TotalRevenue, row.CountOrders),
		})
	}
	return buckets, nil
}

func (s *service) TopMenuItems(ctx context.Context, limit int) ([]models.TopMenuItem, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	rows, err := s.repo.TopMenuItems(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank menu items: %w", err)
	}
	for i := range rows {
		rows[i].Revenue = utils.RoundMoney(rows[i].Revenue)
	}
	if rows == nil {
		rows = []models.TopMenuItem{}
	}
	return rows, nil
}

// TopUsers ranks users by order count or revenue over the range,
// defaulting to the trailing 30 days.
func (s *service) TopUsers(ctx context.Context, limit int, metric models.TopUsersMetric, dateRange models.DateRange) ([]models.TopUser, error) {
	if metric == "" {
		metric = models.MetricRevenue
	}
	if !metric.Valid() {
		return nil, models.ValidationError{Field: "metric", Reason: fmt.Sprintf("unknown metric %q", metric)}
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}

	from, to := s.resolveRange(dateRange, defaultTopRange)
	rows, err := s.repo.UserBreakdown(ctx, from, to, metric, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank users: %w", err)
	}

	users := make([]models.TopUser, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse user id %q: %w", row.ID, err)
		}
		users = append(users, models.TopUser{
			UserID:      id,
			Name:        row.Name,
			CountOrders: row.Count,
			Revenue:     utils.RoundMoney(row.Revenue),
		})
	}
	return users, nil
}

// StatsByDimension breaks orders down per user or per item, sorted by
// revenue descending. For users the average is the average check; for
// items it is the average unit price actually sold.
func (s *service) StatsByDimension(ctx context.Context, dimension models.Dimension, dateRange models.DateRange) ([]models.DimensionRow, error) {
	if !dimension.Valid() {
		return nil, models.ValidationError{Field: "dimension", Reason: fmt.Sprintf("unknown dimension %q", dimension)}
	}

	from, to := s.resolveRange(dateRange, defaultTopRange)

	var rows []BreakdownRow
	var err error
	if dimension == models.DimensionUser {
		rows, err = s.repo.UserBreakdown(ctx, from, to, models.MetricRevenue, 0)
	} else {
		rows, err = s.repo.ItemBreakdown(ctx, from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to break down by %s: %w", dimension, err)
	}

	out := make([]models.DimensionRow, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse id %q: %w", row.ID, err)
		}
		out = append(out, models.DimensionRow{
			ID:      id,
			Name:    row.Name,
			Count:   row.Count,
			Revenue: utils.RoundMoney(row.Revenue),
			Average: utils.SafeAvg(row.Revenue, row.Count),
		})
	}
	return out, nil
}

// HourOfDayStats always returns exactly 24 entries; hours without
// orders are zero-filled.
func (s *service) HourOfDayStats(ctx context.Context, dateRange models.DateRange) ([]models.SeriesBucket, error) {
	from, to := s.resolveRange(dateRange, defaultTopRange)
	rows, err := s.repo.HourBuckets(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hourly stats: %w", err)
	}

	series := make([]models.SeriesBucket, 24)
	for h := range series {
		series[h] = models.SeriesBucket{
			Key:          h,
			Label:        fmt.Sprintf("%02d:00", h),
			TotalRevenue: decimal.Zero,
		}
	}
	for _, row := range rows {
		if row.Key < 0 || row.Key > 23 {
			continue
		}
		series[row.Key].CountOrders = row.CountOrders
		series[row.Key].TotalRevenue = utils.RoundMoney(row.TotalRevenue)
	}
	return series, nil
}

// WeekdayStats always returns exactly 7 entries, Monday first.
func (s *service) WeekdayStats(ctx context.Context, dateRange models.DateRange) ([]models.SeriesBucket, error) {
	from, to := s.resolveRange(dateRange, defaultTopRange)
	rows, err := s.repo.WeekdayBuckets(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute weekday stats: %w", err)
	}

	series := make([]models.SeriesBucket, 7)
	for d := range series {
		series[d] = models.SeriesBucket{
			Key:          d,
			Label:        utils.WeekdayLabel(d),
			TotalRevenue: decimal.Zero,
		}
	}
	for _, row := range rows {
		if row.Key < 0 || row.Key > 6 {
			continue
		}
		series[row.Key].CountOrders = row.CountOrders
		series[row.Key].TotalRevenue = utils.RoundMoney(row.TotalRevenue)
	}
	return series, nil
}

// CompletionTimeStats reports elapsed time between creation and close
// over completed orders; an empty set yields the sentinel result, not an
// error.
func (s *service) CompletionTimeStats(ctx context.Context, dateRange models.DateRange) (*models.CompletionTimeStats, error) {
	from, to := s.resolveRange(dateRange, defaultTopRange)
	row, err := s.repo.CompletionTimes(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute completion times: %w", err)
	}

	if row.CompletedOrders == 0 {
		return &models.CompletionTimeStats{Message: noCompletedOrders}, nil
	}

	stats := &models.CompletionTimeStats{CompletedOrders: row.CompletedOrders}
	if row.AvgSeconds.Valid {
		stats.AvgSeconds = &row.AvgSeconds.Float64
	}
	if row.MinSeconds.Valid {
		stats.MinSeconds = &row.MinSeconds.Float64
	}
	if row.MaxSeconds.Valid {
		stats.MaxSeconds = &row.MaxSeconds.Float64
	}
	return stats, nil
}
