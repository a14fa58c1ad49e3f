package controller

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

const (
	actorHeader = "X-Actor"
	actorKey    = "actor"
)

// requireAdmin checks the shared bearer token and the operator name carried
// in X-Actor. An empty token disables the admin surface.
func requireAdmin(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" {
				return fail(c, http.StatusServiceUnavailable, "Admin access is not configured", nil)
			}

			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			given := strings.TrimPrefix(auth, "Bearer ")
			if given == auth || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				return fail(c, http.StatusUnauthorized, "Invalid admin token", nil)
			}

			actor := strings.TrimSpace(c.Request().Header.Get(actorHeader))
			if actor == "" {
				return fail(c, http.StatusBadRequest, "X-Actor header is required", nil)
			}
			c.Set(actorKey, actor)

			return next(c)
		}
	}
}

func actorOf(c echo.Context) string {
	actor, _ := c.Get(actorKey).(string)

	return actor
}

var httpDuration = sync.OnceValue(func() *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "waseet",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution of API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
})

// requestLogger logs every request once it has been served and records its
// latency.
func requestLogger(log *logrus.Entry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil && !c.Response().Committed {
				c.Error(err)
			}
			latency := time.Since(start)

			status := c.Response().Status
			httpDuration().WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Observe(latency.Seconds())

			entry := log.WithFields(logrus.Fields{
				"method":  c.Request().Method,
				"path":    c.Request().URL.Path,
				"status":  status,
				"latency": latency.String(),
			})
			switch {
			case status >= http.StatusInternalServerError:
				entry.WithError(err).Error("request failed")
			case err != nil:
				entry.WithError(err).Info("request rejected")
			default:
				entry.Debug("request served")
			}

			return nil
		}
	}
}
