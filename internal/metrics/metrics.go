// Package metrics exposes the Prometheus collectors for the challenge engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	VerificationTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "challenge",
		Subsystem: "verification",
		Name:      "transitions_total",
		Help:      "Verification state transitions applied, labeled by action, category, and new status.",
	}, []string{"action", "category", "status"})

	VerificationRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "challenge",
		Subsystem: "verification",
		Name:      "rejections_total",
		Help:      "Verification requests rejected before any mutation, labeled by reason.",
	}, []string{"reason"})

	SideEffectFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "challenge",
		Subsystem: "verification",
		Name:      "side_effect_failures_total",
		Help:      "Post-transition side effects that failed, labeled by step.",
	}, []string{"step"})

	NotificationsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "challenge",
		Subsystem: "notify",
		Name:      "in_app_created_total",
		Help:      "In-app notifications created, labeled by type.",
	}, []string{"type"})

	EmailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "challenge",
		Subsystem: "notify",
		Name:      "emails_total",
		Help:      "Email send attempts, labeled by kind (immediate, digest) and status (sent, failed).",
	}, []string{"kind", "status"})

	DigestEnqueued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "challenge",
		Subsystem: "digest",
		Name:      "entries_enqueued_total",
		Help:      "Digest queue entries enqueued.",
	})

	DigestSweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "challenge",
		Subsystem: "digest",
		Name:      "sweep_duration_seconds",
		Help:      "Time spent claiming, sending, and marking one digest sweep.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	digestLastSweep = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "challenge",
		Subsystem: "digest",
		Name:      "last_sweep_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed digest sweep.",
	})

	LeaderboardBuildDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "challenge",
		Subsystem: "leaderboard",
		Name:      "build_duration_seconds",
		Help:      "Time spent loading logs and ranking a leaderboard.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"board"})

	WorkoutsLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "challenge",
		Subsystem: "workouts",
		Name:      "logged_total",
		Help:      "Workout logs created, labeled by category.",
	}, []string{"category"})
)

func init() {
	prometheus.MustRegister(
		VerificationTransitions,
		VerificationRejections,
		SideEffectFailures,
		NotificationsCreated,
		EmailsSent,
		DigestEnqueued,
		DigestSweepDuration,
		digestLastSweep,
		LeaderboardBuildDuration,
		WorkoutsLogged,
	)
}

// RecordDigestSweep updates the sweep watermark gauge.
func RecordDigestSweep(ts time.Time) {
	if ts.IsZero() {
		return
	}
	digestLastSweep.Set(float64(ts.Unix()))
}
