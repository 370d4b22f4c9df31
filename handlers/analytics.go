package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ray-remotestate/caferp/models"
	"github.com/ray-remotestate/caferp/service/analytics"
)

type AnalyticsHandler struct {
	svc analytics.IService
}

func NewAnalyticsHandler(svc analytics.IService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter models.SummaryFilter
	if v := q.Get("status"); v != "" {
		status := models.OrderStatus(v)
		if !status.Valid() {
			respondError(w, models.ValidationError{Field: "status", Reason: "unknown status"})
			return
		}
		filter.Status = &status
	}
	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, models.ValidationError{Field: "user_id", Reason: "must be a uuid"})
			return
		}
		filter.UserID = &id
	}
	var err error
	if filter.DateFrom, err = parseTimeParam(q.Get("date_from"), "date_from"); err != nil {
		respondError(w, err)
		return
	}
	if filter.DateTo, err = parseTimeParam(q.Get("date_to"), "date_to"); err != nil {
		respondError(w, err)
		return
	}

	var groupBy *models.GroupBy
	if v := q.Get("group_by"); v != "" {
		g := models.GroupBy(v)
		groupBy = &g
	}

	summary, err := h.svc.Summary(r.Context(), filter, groupBy)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *AnalyticsHandler) StatsByInterval(w http.ResponseWriter, r *http.Request) {
	interval := models.Interval(r.URL.Query().Get("interval"))
	if interval == "" {
		interval = models.IntervalDay
	}

	dateRange, err := parseDateRange(r)
	if err != nil {
		respondError(w, err)
		return
	}

	buckets, err := h.svc.StatsByInterval(r.Context(), interval, dateRange)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buckets)
}

func (h *AnalyticsHandler) TopMenuItems(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r.URL.Query().Get("limit"), "limit")
	if err != nil {
		respondError(w, err)
		return
	}

	items, err := h.svc.TopMenuItems(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *AnalyticsHandler) TopUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r.URL.Query().Get("limit"), "limit")
	if err != nil {
		respondError(w, err)
		return
	}
	dateRange, err := parseDateRange(r)
	if err != nil {
		respondError(w, err)
		return
	}

	users, err := h.svc.TopUsers(r.Context(), limit, models.TopUsersMetric(r.URL.Query().Get("metric")), dateRange)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *AnalyticsHandler) StatsByDimension(w http.ResponseWriter, r *http.Request) {
	dateRange, err := parseDateRange(r)
	if err != nil {
		respondError(w, err)
		return
	}

	rows, err := h.svc.StatsByDimension(r.Context(), models.Dimension(r.URL.Query().Get("dimension")), dateRange)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *AnalyticsHandler) HourOfDayStats(w http.ResponseWriter, r *http.Request) {
	dateRange, err := parseDateRange(r)
	if err != nil {
		respondError(w, err)
		return
	}

	series, err := h.svc.HourOfDayStats(r.Context(), dateRange)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, series)
}

func (h *AnalyticsHandler) WeekdayStats(w http.ResponseWriter, r *http.Request) {
	dateRange, err := parseDateRange(r)
	if err != nil {
		respondError(w, err)
		return
	}

	series, err := h.svc.WeekdayStats(r.Context(), dateRange)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, series)
}

func (h *AnalyticsHandler) CompletionTimeStats(w http.ResponseWriter, r *http.Request) {
	dateRange, err := parseDateRange(r)
	if err != nil {
		respondError(w, err)
		return
	}

	stats, err := h.svc.CompletionTimeStats(r.Context(), dateRange)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func parseDateRange(r *http.Request) (models.DateRange, error) {
	var dateRange models.DateRange
	var err error
	if dateRange.From, err = parseTimeParam(r.URL.Query().Get("date_from"), "date_from"); err != nil {
		return dateRange, err
	}
	if dateRange.To, err = parseTimeParam(r.URL.Query().Get("date_to"), "date_to"); err != nil {
		return dateRange, err
	}
	return dateRange, nil
}
