package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GroupBy string

const (
	GroupByStatus   GroupBy = "status"
	GroupByUser     GroupBy = "user_id"
	GroupByMenuItem GroupBy = "menu_item_id"
	GroupByDate     GroupBy = "date"
)

func (g GroupBy) Valid() bool {
	return g == GroupByStatus || g == GroupByUser || g == GroupByMenuItem || g == GroupByDate
}

type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

func (i Interval) Valid() bool {
	return i == IntervalDay || i == IntervalWeek || i == IntervalMonth
}

type Dimension string

const (
	DimensionUser Dimension = "user"
	DimensionItem Dimension = "item"
)

func (d Dimension) Valid() bool {
	return d == DimensionUser || d == DimensionItem
}

type TopUsersMetric string

const (
	MetricOrders  TopUsersMetric = "orders"
	MetricRevenue TopUsersMetric = "revenue"
)

func (m TopUsersMetric) Valid() bool {
	return m == MetricOrders || m == MetricRevenue
}

// DateRange is an inclusive creation-time range; nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

type SummaryFilter struct {
	Status   *OrderStatus
	UserID   *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
}

// SummaryRow carries the three summary figures; Group is empty for the
// ungrouped form and "total" for the synthetic row appended to grouped
// results.
type SummaryRow struct {
	Group        string          `json:"group,omitempty"`
	CountOrders  int64           `json:"count_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AverageCheck decimal.Decimal `json:"average_check"`
}

type Summary struct {
	GroupBy GroupBy      `json:"group_by,omitempty"`
	Results []SummaryRow `json:"results"`
}

type IntervalBucket struct {
	Bucket        time.Time       `json:"bucket"`
	CountOrders   int64           `json:"count_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

type TopMenuItem struct {
	MenuItemID   uuid.UUID       `db:"menu_item_id" json:"menu_item_id"`
	Name         string          `db:"name" json:"name"`
	QuantitySold int64           `db:"quantity_sold" json:"quantity_sold"`
	Revenue      decimal.Decimal `db:"revenue" json:"revenue"`
}

type TopUser struct {
	UserID      uuid.UUID       `json:"user_id"`
	Name        string          `json:"name"`
	CountOrders int64           `json:"count_orders"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DimensionRow is one entry of a per-user or per-item breakdown; Average
// is the average check for users and the average unit price sold for
// items.
type DimensionRow struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
	Average decimal.Decimal `json:"average"`
}

// SeriesBucket is one fixed slot of an hour-of-day (key 0..23) or
// weekday (key 0=Monday..6=Sunday) series.
type SeriesBucket struct {
	Key          int             `json:"key"`
	Label        string          `json:"label"`
	CountOrders  int64           `json:"count_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// CompletionTimeStats reports elapsed time between creation and close
// over completed orders. Message is the sentinel when none matched.
type CompletionTimeStats struct {
	CompletedOrders int64    `json:"completed_orders"`
	AvgSeconds      *float64 `json:"avg_seconds,omitempty"`
	MinSeconds      *float64 `json:"min_seconds,omitempty"`
	MaxSeconds      *float64 `json:"max_seconds,omitempty"`
	Message         string   `json:"message,omitempty"`
}
