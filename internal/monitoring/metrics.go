package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics is a snapshot of the in-process request counters exposed at
// /metrics.
type Metrics struct {
	RequestCount   int64            `json:"request_count"`
	ErrorCount     int64            `json:"error_count"`
	ActiveRequests int64            `json:"active_requests"`
	TotalDuration  time.Duration    `json:"total_duration_ns"`
	StatusCodes    map[string]int64 `json:"status_codes"`
	Endpoints      map[string]int64 `json:"endpoints"`
}

type metricsState struct {
	mu             sync.Mutex
	requestCount   int64
	errorCount     int64
	activeRequests int64
	totalDuration  time.Duration
	statusCodes    map[string]int64
	endpoints      map[string]int64
}

var global = newMetricsState()

func newMetricsState() *metricsState {
	return &metricsState{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
	}
}

func resetGlobalMetrics() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.requestCount = 0
	global.errorCount = 0
	global.activeRequests = 0
	global.totalDuration = 0
	global.statusCodes = make(map[string]int64)
	global.endpoints = make(map[string]int64)
}

// MetricsMiddleware counts every request, its endpoint, status class
// and latency.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		global.mu.Lock()
		global.activeRequests++
		global.mu.Unlock()

		c.Next()

		status := c.Writer.Status()

		global.mu.Lock()
		global.activeRequests--
		global.requestCount++
		global.totalDuration += time.Since(start)
		if status >= http.StatusInternalServerError {
			global.errorCount++
		}
		global.statusCodes[http.StatusText(status)]++
		global.endpoints[c.Request.Method+" "+c.FullPath()]++
		global.mu.Unlock()
	}
}

// GetMetrics returns a copy of the current counters.
func GetMetrics() Metrics {
	global.mu.Lock()
	defer global.mu.Unlock()

	snapshot := Metrics{
		RequestCount:   global.requestCount,
		ErrorCount:     global.errorCount,
		ActiveRequests: global.activeRequests,
		TotalDuration:  global.totalDuration,
		StatusCodes:    make(map[string]int64, len(global.statusCodes)),
		Endpoints:      make(map[string]int64, len(global.endpoints)),
	}
	for k, v := range global.statusCodes {
		snapshot.StatusCodes[k] = v
	}
	for k, v := range global.endpoints {
		snapshot.Endpoints[k] = v
	}
	return snapshot
}

func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, GetMetrics())
	}
}
