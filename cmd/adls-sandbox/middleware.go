package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/adlstore/adls_sdk_go/pkg/metrics"
)

type failConfig struct {
	rate float64
	code int
}

// requestCounter counts served requests by operation and status code. It
// is nil when metrics are disabled.
type requestCounter struct {
	requests *prometheus.CounterVec
}

func newRequestCounter() *requestCounter {
	if !metrics.IsEnabled() {
		return nil
	}
	return &requestCounter{
		requests: promauto.With(metrics.GetRegistry()).NewCounterVec(
			prometheus.CounterOpts{
				Name: "adls_sandbox_requests_total",
				Help: "Requests served by the sandbox by operation and HTTP status",
			},
			[]string{"operation", "code"},
		),
	}
}

func (c *requestCounter) observe(op string, code int) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(op, strconv.Itoa(code)).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func withMiddleware(next http.Handler, delay time.Duration, failCfg failConfig, counter *requestCounter, log *zap.SugaredLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op := strings.ToUpper(r.URL.Query().Get("op"))
		if delay > 0 {
			time.Sleep(delay)
		}
		if failCfg.rate > 0 && rand.Float64() < failCfg.rate {
			log.Debugw("failure injected", "op", op, "path", r.URL.Path, "code", failCfg.code)
			writeInjectedFailure(w, failCfg.code)
			counter.observe(op, failCfg.code)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debugw("served", "method", r.Method, "op", op, "path", r.URL.Path, "code", rec.code)
		counter.observe(op, rec.code)
	})
}

func writeInjectedFailure(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"RemoteException": map[string]string{
			"exception":     "RuntimeException",
			"message":       "failure injected",
			"javaClassName": "java.lang.RuntimeException",
		},
	})
}

func parseFailConfig(raw string) (failConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return failConfig{}, nil
	}
	cfg := failConfig{code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return failConfig{}, fmt.Errorf("invalid fail segment %q", part)
		}
		val = strings.TrimSpace(val)
		switch strings.TrimSpace(key) {
		case "rate":
			rate, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return failConfig{}, err
			}
			if rate < 0 || rate > 1 {
				return failConfig{}, fmt.Errorf("rate %v outside [0,1]", rate)
			}
			cfg.rate = rate
		case "code":
			code, err := strconv.Atoi(val)
			if err != nil {
				return failConfig{}, err
			}
			if code < 400 || code > 599 {
				return failConfig{}, fmt.Errorf("code %d is not an error status", code)
			}
			cfg.code = code
		default:
			return failConfig{}, fmt.Errorf("unknown fail key %q", key)
		}
	}
	return cfg, nil
}
