// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what handlers use to report domain events.
type Recorder interface {
	RecordSignIn(outcome string)
	RecordTaskMutation(op string, err error)
}

// Collector implements Recorder on top of Prometheus collectors.
type Collector struct {
	signIns       *prometheus.CounterVec
	taskMutations *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasky_sign_ins_total",
			Help: "Sign-ins by user reconciliation outcome.",
		}, []string{"outcome"}),
		taskMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasky_task_mutations_total",
			Help: "Task create, update and delete calls by result.",
		}, []string{"op", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasky_http_requests_total",
			Help: "HTTP responses by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tasky_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(c.signIns, c.taskMutations, c.httpRequests, c.httpLatency)
	return c
}

// RecordSignIn counts a sign-in.
func (c *Collector) RecordSignIn(outcome string) {
	c.signIns.WithLabelValues(outcome).Inc()
}

// RecordTaskMutation counts a task mutation; err decides the result label.
func (c *Collector) RecordTaskMutation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.taskMutations.WithLabelValues(op, result).Inc()
}

// RecordHTTP records one served request.
func (c *Collector) RecordHTTP(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Middleware records request count and latency labelled by the matched route.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !ctx.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			c.RecordHTTP(ctx.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every event.
type Nop struct{}

func (Nop) RecordSignIn(string)              {}
func (Nop) RecordTaskMutation(string, error) {}
