// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package metrics exposes Prometheus counters for requests and account events.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mylife_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mylife_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mylife_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)
	RecoveryTokens = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mylife_recovery_tokens_issued_total",
			Help: "Password recovery tokens issued",
		},
	)
	RecoveryMails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mylife_recovery_mails_total",
			Help: "Password recovery mails by outcome",
		},
		[]string{"outcome"},
	)
)

// Label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	MailSent     = "sent"
	MailFailed   = "failed"
	MailDisabled = "disabled"
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
	prometheus.MustRegister(LoginAttempts)
	prometheus.MustRegister(RecoveryTokens)
	prometheus.MustRegister(RecoveryMails)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records every request under its route pattern, so task ids
// and tokens never become label values.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if err != nil && errors.As(err, &he) {
				status = he.Code
			} else if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
