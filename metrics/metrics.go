// Package metrics holds the Prometheus collectors for report generation and order
// repair. Collectors register with the default registry, which /metrics serves.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "missionreport"

var (
	reportsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Reports generated by output mode and result.",
		},
		[]string{"mode", "status"},
	)

	reportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_generation_duration_seconds",
			Help:      "Time spent assembling a report.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"mode"},
	)

	orderRepairs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_repairs_total",
			Help:      "Persisted orders rewritten by reconciliation.",
		},
		[]string{"scope"},
	)

	attachmentsDemoted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachments_demoted_total",
			Help:      "Attachments listed instead of embedded because they are not a readable image.",
		},
	)

	attachmentsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachments_skipped_total",
			Help:      "Attachments left out of an output because the stored file could not be read.",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(reportsGenerated, reportDuration, orderRepairs, attachmentsDemoted, attachmentsSkipped)
}

// ObserveReport records one generation run. mode is "docx" or "zip".
func ObserveReport(mode string, started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	reportsGenerated.WithLabelValues(mode, status).Inc()
	reportDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}

func OrderRepaired(scope string) { orderRepairs.WithLabelValues(scope).Inc() }

func AttachmentDemoted() { attachmentsDemoted.Inc() }

func AttachmentSkipped(mode string) { attachmentsSkipped.WithLabelValues(mode).Inc() }
