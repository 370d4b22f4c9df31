package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/caferp/models"
)

type fakeRepo struct {
	aggregateRows  []AggregateRow
	bucketRows     []BucketRow
	topItems       []models.TopMenuItem
	breakdownRows  []BreakdownRow
	keyRows        []KeyRow
	completion     CompletionRow
	lastFrom       time.Time
	lastTo         time.Time
	lastMetric     models.TopUsersMetric
	lastLimit      int
	lastGroupBy    *models.GroupBy
	lastInterval   models.Interval
}

func (f *fakeRepo) Aggregate(_ context.Context, _ models.SummaryFilter, groupBy *models.GroupBy) ([]AggregateRow, error) {
	f.lastGroupBy = groupBy
	return f.aggregateRows, nil
}

func (f *fakeRepo) IntervalBuckets(_ context.Context, interval models.Interval, from, to time.Time) ([]BucketRow, error) {
	f.lastInterval, f.lastFrom, f.lastTo = interval, from, to
	return f.bucketRows, nil
}

func (f *fakeRepo) TopMenuItems(_ context.Context, limit int) ([]models.TopMenuItem, error) {
	f.lastLimit = limit
	return f.topItems, nil
}

func (f *fakeRepo) UserBreakdown(_ context.Context, from, to time.Time, orderBy models.TopUsersMetric, limit int) ([]BreakdownRow, error) {
	f.lastFrom, f.lastTo, f.lastMetric, f.lastLimit = from, to, orderBy, limit
	return f.breakdownRows, nil
}

func (f *fakeRepo) ItemBreakdown(_ context.Context, from, to time.Time) ([]BreakdownRow, error) {
	f.lastFrom, f.lastTo = from, to
	return f.breakdownRows, nil
}

func (f *fakeRepo) HourBuckets(_ context.Context, from, to time.Time) ([]KeyRow, error) {
	f.lastFrom, f.lastTo = from, to
	return f.keyRows, nil
}

func (f *fakeRepo) WeekdayBuckets(_ context.Context, from, to time.Time) ([]KeyRow, error) {
	f.lastFrom, f.lastTo = from, to
	return f.keyRows, nil
}

func (f *fakeRepo) CompletionTimes(_ context.Context, from, to time.Time) (CompletionRow, error) {
	f.lastFrom, f.lastTo = from, to
	return f.completion, nil
}

func newTestService(f *fakeRepo, now time.Time) IService {
	svc := NewService(f).(*service)
	svc.now = func() time.Time { return now }
	return svc
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummary_NoMatchingOrders(t *testing.T) {
	svc := newTestService(&fakeRepo{}, time.Now())

	got, err := svc.Summary(context.Background(), models.SummaryFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, got.Results, 1)
	assert.EqualValues(t, 0, got.Results[0].CountOrders)
	assert.True(t, got.Results[0].TotalRevenue.IsZero())
	assert.True(t, got.Results[0].AverageCheck.IsZero(), "zero orders must not fault the average")
}

func TestSummary_Grouped(t *testing.T) {
	f := &fakeRepo{aggregateRows: []AggregateRow{
		{Group: "done", CountOrders: 2, TotalRevenue: dec("24.00")},
		{Group: "open", CountOrders: 1, TotalRevenue: dec("7.005")},
	}}
	svc := newTestService(f, time.Now())

	groupBy := models.GroupByStatus
	got, err := svc.Summary(context.Background(), models.SummaryFilter{}, &groupBy)
	require.NoError(t, err)
	require.Len(t, got.Results, 3, "two partitions plus the synthetic total row")

	assert.Equal(t, "done", got.Results[0].Group)
	assert.Equal(t, "12", got.Results[0].AverageCheck.String())

	assert.Equal(t, "open", got.Results[1].Group)
	assert.Equal(t, "7.01", got.Results[1].TotalRevenue.String(), "revenue rounds half-up")

	total := got.Results[2]
	assert.Equal(t, TotalGroup, total.Group)
	assert.EqualValues(t, 3, total.CountOrders)
	// Per-group revenues must sum to the total row's revenue.
	wantTotal := dec("24.00").Add(dec("7.005"))
	assert.True(t, total.TotalRevenue.Equal(wantTotal.Round(2)))
	assert.Equal(t, "10.34", total.AverageCheck.String())
}

func TestSummary_InvalidGroupBy(t *testing.T) {
	svc := newTestService(&fakeRepo{}, time.Now())
	bad := models.GroupBy("city")
	_, err := svc.Summary(context.Background(), models.SummaryFilter{}, &bad)
	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestStatsByInterval_DefaultsToTrailingWeek(t *testing.T) {
	now := time.Date(2025, 9, 25, 12, 0, 0, 0, time.UTC)
	f := &fakeRepo{bucketRows: []BucketRow{
		{Bucket: time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC), CountOrders: 2, TotalRevenue: dec("10.00")},
	}}
	svc := newTestService(f, now)

	got, err := svc.StatsByInterval(context.Background(), models.IntervalDay, models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, now, f.lastTo)
	assert.Equal(t, now.Add(-7*24*time.Hour), f.lastFrom)
	require.Len(t, got, 1)
	assert.Equal(t, "5", got[0].AvgOrderValue.String())
}

func TestStatsByInterval_InvalidInterval(t *testing.T) {
	svc := newTestService(&fakeRepo{}, time.Now())
	_, err := svc.StatsByInterval(context.Background(), models.Interval("quarter"), models.DateRange{})
	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestTopMenuItems_DefaultLimit(t *testing.T) {
	f := &fakeRepo{}
	svc := newTestService(f, time.Now())

	got, err := svc.TopMenuItems(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, defaultTopLimit, f.lastLimit)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTopUsers_DefaultsAndMapping(t *testing.T) {
	now := time.Date(2025, 9, 25, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	f := &fakeRepo{breakdownRows: []BreakdownRow{
		{ID: userID.String(), Name: "Alice", Count: 4, Revenue: dec("40.00")},
	}}
	svc := newTestService(f, now)

	got, err := svc.TopUsers(context.Background(), 0, "", models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, models.MetricRevenue, f.lastMetric)
	assert.Equal(t, defaultTopLimit, f.lastLimit)
	assert.Equal(t, now.Add(-30*24*time.Hour), f.lastFrom)
	require.Len(t, got, 1)
	assert.Equal(t, userID, got[0].UserID)
	assert.EqualValues(t, 4, got[0].CountOrders)
}

func TestTopUsers_InvalidMetric(t *testing.T) {
	svc := newTestService(&fakeRepo{}, time.Now())
	_, err := svc.TopUsers(context.Background(), 5, models.TopUsersMetric("clicks"), models.DateRange{})
	var vErr models.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestStatsByDimension_ItemAverageUnitPrice(t *testing.T) {
	itemID := uuid.New()
	f := &fakeRepo{breakdownRows: []BreakdownRow{
		{ID: itemID.String(), Name: "Espresso", Count: 3, Revenue: dec("10.50")},
	}}
	svc := newTestService(f, time.Now())

	got, err := svc.StatsByDimension(context.Background(), models.DimensionItem, models.DateRange{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3.5", got[0].Average.String())
}

func TestHourOfDayStats_Complete24HourSeries(t *testing.T) {
	f := &fakeRepo{keyRows: []KeyRow{
		{Key: 9, CountOrders: 3, TotalRevenue: dec("21.00")},
	}}
	svc := newTestService(f, time.Now())

	got, err := svc.HourOfDayStats(context.Background(), models.DateRange{})
	require.NoError(t, err)
	require.Len(t, got, 24)
	assert.Equal(t, "09:00", got[9].Label)
	assert.EqualValues(t, 3, got[9].CountOrders)
	assert.EqualValues(t, 0, got[0].CountOrders)
	assert.True(t, got[0].TotalRevenue.IsZero())
}

func TestWeekdayStats_Complete7DaySeries(t *testing.T) {
	f := &fakeRepo{keyRows: []KeyRow{
		{Key: 0, CountOrders: 2, TotalRevenue: dec("8.00")},
		{Key: 6, CountOrders: 1, TotalRevenue: dec("4.00")},
	}}
	svc := newTestService(f, time.Now())

	got, err := svc.WeekdayStats(context.Background(), models.DateRange{})
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, "Monday", got[0].Label)
	assert.Equal(t, "Sunday", got[6].Label)
	assert.EqualValues(t, 2, got[0].CountOrders)
	assert.EqualValues(t, 0, got[3].CountOrders)
}

func TestCompletionTimeStats_Sentinel(t *testing.T) {
	svc := newTestService(&fakeRepo{}, time.Now())

	got, err := svc.CompletionTimeStats(context.Background(), models.DateRange{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.CompletedOrders)
	assert.Equal(t, noCompletedOrders, got.Message)
	assert.Nil(t, got.AvgSeconds)
}
