package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request ID back to the client.
const RequestIDHeader = "X-Request-Id"

var _ http.ResponseWriter = &statusRecorder{}

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	rw     http.ResponseWriter
	status int
	bytes  int64
}

func (sr *statusRecorder) Header() http.Header {
	return sr.rw.Header()
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.rw.Write(p)
	sr.bytes += int64(n)
	return n, err
}

func (sr *statusRecorder) WriteHeader(statusCode int) {
	if sr.status == 0 {
		sr.status = statusCode
	}
	sr.rw.WriteHeader(statusCode)
}

// withAccessLog logs one line per request and records metrics. metrics may
// be nil.
func withAccessLog(listener string, next http.Handler, log logrus.FieldLogger, metrics *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		uid := xid.New().String()
		w.Header().Set(RequestIDHeader, uid)

		route := routeName(next, r)
		rec := &statusRecorder{rw: w}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		if metrics != nil {
			metrics.Observe(listener, route, status, elapsed)
		}

		entry := log.WithFields(logrus.Fields{
			"uid":      uid,
			"listener": listener,
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   status,
			"bytes":    rec.bytes,
			"duration": elapsed.Round(time.Microsecond).String(),
		})
		if status >= http.StatusInternalServerError {
			entry.Error("request")
			return
		}
		entry.Info("request")
	})
}

// routeName matches r against a mux router to name the route it takes.
// Other handlers are labelled RouteRedirect.
func routeName(h http.Handler, r *http.Request) string {
	router, ok := h.(*mux.Router)
	if !ok {
		return RouteRedirect
	}
	var match mux.RouteMatch
	router.Match(r, &match)
	switch {
	case errors.Is(match.MatchErr, mux.ErrMethodMismatch):
		return RouteMethodNotAllowed
	case match.Route != nil && match.Route.GetName() != "":
		return match.Route.GetName()
	default:
		return RouteNotFound
	}
}
