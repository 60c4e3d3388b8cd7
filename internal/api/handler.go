package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"seller-insight/internal/service"
	"seller-insight/internal/upstream"
	"seller-insight/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// ReadinessCheck reports whether one dependency is reachable
type ReadinessCheck func(ctx context.Context) error

// Options configures the optional parts of the HTTP surface
type Options struct {
	CORSOrigins       []string
	Limiter           RateLimiter
	RequestsPerMinute int
	Readiness         map[string]ReadinessCheck
}

// Handler contains HTTP handlers
type Handler struct {
	insightService *service.InsightService
	opts           Options
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(insightService *service.InsightService, opts Options) *Handler {
	return &Handler{
		insightService: insightService,
		opts:           opts,
		logger:         util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(requestLogger(h.logger))
	router.Use(prometheusMiddleware())
	router.Use(corsMiddleware(h.opts.CORSOrigins))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(rateLimitMiddleware(h.opts.Limiter, h.opts.RequestsPerMinute))
	{
		api.GET("/products", h.listProducts)
		api.GET("/high-sales-products-not-in-stock", h.highSalesNotInStock)
		api.GET("/product/:product_id", h.productSEO)
		api.GET("/product/:product_id/details", h.productDetails)
		api.GET("/campaign-recommendation", h.campaignRecommendation)
		api.GET("/insight-runs", h.insightRuns)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready only when every configured dependency answers
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.opts.Readiness {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"details": failed,
			"time":    time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts returns one page of the approved catalog
func (h *Handler) listProducts(c *gin.Context) {
	q := service.DefaultProductQuery()

	var err error
	if q.Page, err = intQuery(c, "page", q.Page); err != nil {
		badRequest(c, "Invalid page", err)
		return
	}
	if q.Size, err = intQuery(c, "size", q.Size); err != nil {
		badRequest(c, "Invalid size", err)
		return
	}

	products, err := h.insightService.ListProducts(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, "Failed to fetch products", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// highSalesNotInStock lists high-demand products with no stock
func (h *Handler) highSalesNotInStock(c *gin.Context) {
	products, err := h.insightService.HighSalesNotInStock(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to compute high-sales products", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// productSEO handles the SEO report of one product
func (h *Handler) productSEO(c *gin.Context) {
	info, err := h.insightService.ProductSEO(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		h.writeError(c, "Failed to score product", err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// productDetails handles the product and edit views of one product
func (h *Handler) productDetails(c *gin.Context) {
	details, err := h.insightService.ProductDetails(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		h.writeError(c, "Failed to fetch product details", err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// campaignRecommendation handles campaign suggestions
func (h *Handler) campaignRecommendation(c *gin.Context) {
	suggestions, err := h.insightService.CampaignRecommendations(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to compute campaign suggestions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign_suggestions": suggestions})
}

// insightRuns lists recent insight run summaries
func (h *Handler) insightRuns(c *gin.Context) {
	limit, err := intQuery(c, "limit", defaultRunsLimit)
	if err != nil {
		badRequest(c, "Invalid limit", err)
		return
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	runs, err := h.insightService.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, "Failed to list insight runs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// writeError maps service errors onto status codes. Upstream problems are
// reported as 502.
func (h *Handler) writeError(c *gin.Context, message string, err error) {
	var upErr *upstream.UpstreamError
	var missing *service.MissingFieldError
	var urlErr *url.Error

	status := http.StatusInternalServerError
	body := gin.H{
		"error":   message,
		"details": err.Error(),
	}

	switch {
	case errors.As(err, &upErr):
		status = http.StatusBadGateway
		body["upstream_status"] = upErr.StatusCode
	case errors.As(err, &missing),
		errors.Is(err, upstream.ErrMalformedResponse),
		errors.As(err, &urlErr),
		errors.Is(err, context.DeadlineExceeded):
		status = http.StatusBadGateway
	case errors.Is(err, service.ErrRunsDisabled):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(message,
			zap.Int("status", status),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

// intQuery reads a positive integer query parameter.
func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New(key + " must be positive")
	}
	return n, nil
}
