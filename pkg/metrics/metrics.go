package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	jobhive = "jobhive"

	transitionsTotal = "transitions_total"
	bulkItemsTotal   = "bulk_items_total"

	// Labels
	entityLabel  = "entity"
	statusLabel  = "status"
	outcomeLabel = "outcome"
)

var transitionsTotalLabels = []string{
	entityLabel,
	statusLabel,
}

var bulkItemsTotalLabels = []string{
	outcomeLabel,
}

/**
* Metrics definition
**/
var transitionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: jobhive,
		Name:      transitionsTotal,
		Help:      "number of successful status transitions per entity and target status",
	},
	transitionsTotalLabels,
)

var bulkItemsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: jobhive,
		Name:      bulkItemsTotal,
		Help:      "number of bulk operation items per outcome",
	},
	bulkItemsTotalLabels,
)

func IncreaseTransitionsTotal(entity, status string) {
	labels := prometheus.Labels{
		entityLabel: entity,
		statusLabel: status,
	}
	transitionsTotalMetric.With(labels).Inc()
}

func IncreaseBulkItemsTotal(outcome string) {
	labels := prometheus.Labels{
		outcomeLabel: outcome,
	}
	bulkItemsTotalMetric.With(labels).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(transitionsTotalMetric)
	prometheus.MustRegister(bulkItemsTotalMetric)
}
