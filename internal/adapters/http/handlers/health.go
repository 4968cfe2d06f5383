// Package handlers provides HTTP request handlers for the catalog API.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// BuildInfo identifies the running binary. Version, commit and build time
// come from ldflags.
type BuildInfo struct {
	Service     string `json:"service"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	BuildTime   string `json:"buildTime"`
	GoVersion   string `json:"goVersion"`
}

// NewBuildInfo fills GoVersion from the runtime.
func NewBuildInfo(service, environment, version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Service:     service,
		Environment: environment,
		Version:     version,
		Commit:      commit,
		BuildTime:   buildTime,
		GoVersion:   runtime.Version(),
	}
}

// HealthHandler serves the operational endpoints: liveness, readiness,
// build information and the Prometheus scrape.
type HealthHandler struct {
	registry ports.HealthRegistry
	build    BuildInfo
	metrics  http.Handler
	started  time.Time
}

// NewHealthHandler wires the probes to registry. A nil gatherer scrapes the
// default Prometheus registry, where the catalog metrics live.
func NewHealthHandler(registry ports.HealthRegistry, build BuildInfo, gatherer prometheus.Gatherer) *HealthHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &HealthHandler{
		registry: registry,
		build:    build,
		metrics:  promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		started:  time.Now(),
	}
}

// RegisterOpsRoutes mounts GET live, ready, build and metrics on rg. The
// router mounts them under /-/ outside the session and timeout middleware.
func (h *HealthHandler) RegisterOpsRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.Build)
	rg.GET("/metrics", gin.WrapH(h.metrics))
}

// Liveness never looks at dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	noStore(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type readinessResponse struct {
	Status ports.HealthStatus            `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness answers 503 only when a required dependency fails. A failing
// optional one, the share webhook, reports degraded with 200.
func (h *HealthHandler) Readiness(c *gin.Context) {
	report := h.registry.CheckAll(c.Request.Context())

	code := http.StatusServiceUnavailable
	if report.Status.Serving() {
		code = http.StatusOK
	}

	noStore(c)
	c.JSON(code, readinessResponse{Status: report.Status, Checks: report.Checks})
}

type buildResponse struct {
	BuildInfo

	StartedAt time.Time `json:"startedAt"`
	Uptime    string    `json:"uptime"`
}

// Build reports BuildInfo and how long the process has been up.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, buildResponse{
		BuildInfo: h.build,
		StartedAt: h.started.UTC(),
		Uptime:    time.Since(h.started).Truncate(time.Second).String(),
	})
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}
