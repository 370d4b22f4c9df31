package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/caferp/models"
)

// AggregateRow is one partition of the summary figures; Group is empty
// for the ungrouped form.
type AggregateRow struct {
	Group        string          `db:"grp"`
	CountOrders  int64           `db:"count_orders"`
	TotalRevenue decimal.Decimal `db:"total_revenue"`
}

type BucketRow struct {
	Bucket       time.Time       `db:"bucket"`
	CountOrders  int64           `db:"count_orders"`
	TotalRevenue decimal.Decimal `db:"total_revenue"`
}

type KeyRow struct {
	Key          int             `db:"key"`
	CountOrders  int64           `db:"count_orders"`
	TotalRevenue decimal.Decimal `db:"total_revenue"`
}

type BreakdownRow struct {
	ID      string          `db:"id"`
	Name    string          `db:"name"`
	Count   int64           `db:"count"`
	Revenue decimal.Decimal `db:"revenue"`
}

type CompletionRow struct {
	CompletedOrders int64           `db:"completed_orders"`
	AvgSeconds      sql.NullFloat64 `db:"avg_seconds"`
	MinSeconds      sql.NullFloat64 `db:"min_seconds"`
	MaxSeconds      sql.NullFloat64 `db:"max_seconds"`
}

type IRepo interface {
	Aggregate(ctx context.Context, filter models.SummaryFilter, groupBy *models.GroupBy) ([]AggregateRow, error)
	IntervalBuckets(ctx context.Context, interval models.Interval, from, to time.Time) ([]BucketRow, error)
	TopMenuItems(ctx context.Context, limit int) ([]models.TopMenuItem, error)
	UserBreakdown(ctx context.Context, from, to time.Time, orderBy models.TopUsersMetric, limit int) ([]BreakdownRow, error)
	ItemBreakdown(ctx context.Context, from, to time.Time) ([]BreakdownRow, error)
	HourBuckets(ctx context.Context, from, to time.Time) ([]KeyRow, error)
	WeekdayBuckets(ctx context.Context, from, to time.Time) ([]KeyRow, error)
	CompletionTimes(ctx context.Context, from, to time.Time) (CompletionRow, error)
}

func NewRepo(db *sqlx.DB) IRepo {
	return &repo{db: db}
}

type repo struct {
	db *sqlx.DB
}

// groupExprs whitelists the SQL for each grouping dimension; the group
// key is always rendered as text.
var groupExprs = map[models.GroupBy]string{
	models.GroupByStatus:   "o.status::text",
	models.GroupByUser:     "o.user_id::text",
	models.GroupByMenuItem: "oi.menu_item_id::text",
	models.GroupByDate:     "to_char(date_trunc('day', o.created_at), 'YYYY-MM-DD')",
}

// Aggregate is the single entry point behind summary: orders joined to
// their line items, filtered, optionally partitioned by one dimension.
func (r *repo) Aggregate(ctx context.Context, filter models.SummaryFilter, groupBy *models.GroupBy) ([]AggregateRow, error) {
	query := `
		SELECT COUNT(DISTINCT o.id) AS count_orders,
		       COALESCE(SUM(oi.price * oi.quantity), 0) AS total_revenue`

	var args []interface{}
	if groupBy != nil {
		query += fmt.Sprintf(", %s AS grp", groupExprs[*groupBy])
	} else {
		query += `, '' AS grp`
	}
	query += `
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id`

	var conds []string
	addCond := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != nil {
		addCond("o.status = $%d", *filter.Status)
	}
	if filter.UserID != nil {
		addCond("o.user_id = $%d", *filter.UserID)
	}
	if filter.DateFrom != nil {
		addCond("o.created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addCond("o.created_at <= $%d", *filter.DateTo)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	if groupBy != nil {
		query += fmt.Sprintf(" GROUP BY %s ORDER BY grp", groupExprs[*groupBy])
	}

	var rows []AggregateRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

var intervalTruncs = map[models.Interval]string{
	models.IntervalDay:   "day",
	models.IntervalWeek:  "week",
	models.IntervalMonth: "month",
}

func (r *repo) IntervalBuckets(ctx context.Context, interval models.Interval, from, to time.Time) ([]BucketRow, error) {
	query := fmt.Sprintf(`
		SELECT date_trunc('%s', o.created_at) AS bucket,
		       COUNT(DISTINCT o.id) AS count_orders,
		       COALESCE(SUM(oi.price * oi.quantity), 0) AS total_revenue
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.created_at >= $1 AND o.created_at <= $2
		GROUP BY bucket
		ORDER BY bucket`, intervalTruncs[interval])

	var rows []BucketRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, err
	}
	return rows, nil
}

// TopMenuItems ranks by total quantity sold with the item id as the
// deterministic tiebreak.
func (r *repo) TopMenuItems(ctx context.Context, limit int) ([]models.TopMenuItem, error) {
	var rows []models.TopMenuItem
	err := r.db.SelectContext(ctx, &rows, `
		SELECT mi.id AS menu_item_id, mi.name,
		       COALESCE(SUM(oi.quantity), 0) AS quantity_sold,
		       COALESCE(SUM(oi.price * oi.quantity), 0) AS revenue
		FROM menu_items mi
		JOIN order_items oi ON oi.menu_item_id = mi.id
		GROUP BY mi.id, mi.name
		ORDER BY quantity_sold DESC, mi.id ASC
		LIMIT $1`, limit)
	return rows, err
}

var userOrderCols = map[models.TopUsersMetric]string{
	models.MetricOrders:  "count",
	models.MetricRevenue: "revenue",
}

func (r *repo) UserBreakdown(ctx context.Context, from, to time.Time, orderBy models.TopUsersMetric, limit int) ([]BreakdownRow, error) {
	query := fmt.Sprintf(`
		SELECT u.id::text AS id, u.name,
		       COUNT(DISTINCT o.id) AS count,
		       COALESCE(SUM(oi.price * oi.quantity), 0) AS revenue
		FROM users u
		JOIN orders o ON o.user_id = u.id
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.created_at >= $1 AND o.created_at <= $2
		GROUP BY u.id, u.name
		ORDER BY %s DESC, u.id ASC`, userOrderCols[orderBy])

	args := []interface{}{from, to}
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $3"
	}

	var rows []BreakdownRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// ItemBreakdown counts units sold per item; the average unit price is
// derived from these figures by the service.
func (r *repo) ItemBreakdown(ctx context.Context, from, to time.Time) ([]BreakdownRow, error) {
	var rows []BreakdownRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT mi.id::text AS id, mi.name,
		       COALESCE(SUM(oi.quantity), 0) AS count,
		       COALESCE(SUM(oi.price * oi.quantity), 0) AS revenue
		FROM menu_items mi
		JOIN order_items oi ON oi.menu_item_id = mi.id
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.created_at <= $2
		GROUP BY mi.id, mi.name
		ORDER BY revenue DESC, mi.id ASC`, from, to)
	return rows, err
}

func (r *repo) HourBuckets(ctx context.Context, from, to time.Time) ([]KeyRow, error) {
	var rows []KeyRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT EXTRACT(HOUR FROM o.created_at)::int AS key,
		       COUNT(DISTINCT o.id) AS count_orders,
		       COALESCE(SUM(oi.price * oi.quantity), 0) AS total_revenue
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.created_at >= $1 AND o.created_at <= $2
		GROUP BY key
		ORDER BY key`, from, to)
	return rows, err
}

func (r *repo) WeekdayBuckets(ctx context.Context, from, to time.Time) ([]KeyRow, error) {
	var rows []KeyRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT (EXTRACT(ISODOW FROM o.created_at)::int - 1) AS key,
		       COUNT(DISTINCT o.id) AS count_orders,
		       COALESCE(SUM(oi.price * oi.quantity), 0) AS total_revenue
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.created_at >= $1 AND o.created_at <= $2
		GROUP BY key
		ORDER BY key`, from, to)
	return rows, err
}

func (r *repo) CompletionTimes(ctx context.Context, from, to time.Time) (CompletionRow, error) {
	var row CompletionRow
	err := r.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS completed_orders,
		       AVG(EXTRACT(EPOCH FROM (o.closed_at - o.created_at))) AS avg_seconds,
		       MIN(EXTRACT(EPOCH FROM (o.closed_at - o.created_at))) AS min_seconds,
		       MAX(EXTRACT(EPOCH FROM (o.closed_at - o.created_at))) AS max_seconds
		FROM orders o
		WHERE o.closed_at IS NOT NULL
		  AND o.created_at >= $1 AND o.created_at <= $2`, from, to)
	return row, err
}
