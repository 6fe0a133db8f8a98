// Package httpapi serves operational endpoints and a read-only JSON view of
// the dashboard over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/godilite/feedback-server/internal/service"
)

const checkTimeout = 2 * time.Second

type DashboardReader interface {
	Overview(ctx context.Context, companyID, branchID string) (service.Overview, error)
	ServicePointAverage(ctx context.Context, companyID, branchID, servicePoint string) (float64, error)
}

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type Handler struct {
	dashboard DashboardReader
	checks    map[string]Check
	gatherer  prometheus.Gatherer
	logger    *zap.Logger
}

func NewHandler(dashboard DashboardReader, gatherer prometheus.Gatherer, checks map[string]Check, logger *zap.Logger) *Handler {
	if dashboard == nil {
		panic("nil DashboardReader provided to NewHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.NewRegistry()
	}
	return &Handler{
		dashboard: dashboard,
		checks:    checks,
		gatherer:  gatherer,
		logger:    logger.Named("http-api"),
	}
}

// Router builds the gin engine with recovery and request logging.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))

	companies := r.Group("/v1/companies/:company")
	{
		companies.GET("/overview", h.Overview)
		companies.GET("/service-points/:name/average", h.ServicePointAverage)
	}
	return r
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			h.logger.Error("http request failed", fields...)
			return
		}
		h.logger.Debug("http request", fields...)
	}
}

// Health runs every dependency check and answers 503 when any fails.
// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	code := http.StatusOK
	state := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "checks": results})
}

// Overview returns the dashboard overview of a company branch.
// GET /v1/companies/:company/overview?branch=
func (h *Handler) Overview(c *gin.Context) {
	overview, err := h.dashboard.Overview(c.Request.Context(), c.Param("company"), c.Query("branch"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// ServicePointAverage returns the one-decimal mean score of a service point.
// GET /v1/companies/:company/service-points/:name/average?branch=
func (h *Handler) ServicePointAverage(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service point name is required"})
		return
	}
	avg, err := h.dashboard.ServicePointAverage(c.Request.Context(), c.Param("company"), c.Query("branch"), name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"servicePoint": name, "average": avg})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoRatings):
		c.JSON(http.StatusNotFound, gin.H{"error": "no ratings found"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		h.logger.Error("dashboard read failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
