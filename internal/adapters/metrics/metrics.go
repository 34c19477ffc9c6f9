package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fas_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RegistrationsCreated counts successful registrations
	RegistrationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fas_registrations_created_total",
			Help: "Total number of registrations created",
		},
	)

	// PaymentStatusChanges counts admin payment decisions by resulting status
	PaymentStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fas_payment_status_changes_total",
			Help: "Total number of payment status changes",
		},
		[]string{"status"},
	)

	// EntryChecks counts entry verification attempts by outcome
	EntryChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fas_entry_checks_total",
			Help: "Total number of entry verification attempts",
		},
		[]string{"outcome"},
	)

	// NotificationFailures counts emails that could not be delivered
	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fas_notification_failures_total",
			Help: "Total number of failed notifications",
		},
		[]string{"kind"},
	)
)

// Recorder exposes the lifecycle counters to the domain services.
type Recorder struct{}

func (Recorder) RegistrationCreated() {
	RegistrationsCreated.Inc()
}

func (Recorder) PaymentStatusChanged(status string) {
	PaymentStatusChanges.WithLabelValues(status).Inc()
}

func (Recorder) EntryChecked(outcome string) {
	EntryChecks.WithLabelValues(outcome).Inc()
}

func (Recorder) NotificationFailed(kind string) {
	NotificationFailures.WithLabelValues(kind).Inc()
}

// Middleware observes request duration per route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		RequestDuration.WithLabelValues(strconv.Itoa(status), c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}
