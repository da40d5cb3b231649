package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ViewsRecorded counts profile view events persisted.
	ViewsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polishr_profile_views_recorded_total",
		Help: "Total number of profile view events persisted",
	})

	// ViewsDeduplicated counts views suppressed by the 24h dedup window.
	ViewsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polishr_profile_views_deduplicated_total",
		Help: "Total number of profile views suppressed by the dedup window",
	})

	// ClicksRecorded counts project click events by click type.
	ClicksRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polishr_project_clicks_recorded_total",
		Help: "Total number of project click events persisted",
	}, []string{"click_type"})

	// EventsDropped counts analytics events lost to storage errors.
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polishr_analytics_events_dropped_total",
		Help: "Total number of analytics events dropped due to errors",
	}, []string{"event_type"})
)
