package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"seller-insight/internal/util"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrMalformedResponse is returned when the body is not a JSON envelope.
var ErrMalformedResponse = errors.New("malformed upstream response")

// UpstreamError reports a non-200 answer from the seller API.
type UpstreamError struct {
	Resource   string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("failed to retrieve %s, status code: %d", e.Resource, e.StatusCode)
}

// Resource names one seller API endpoint. Name is used as a metric label,
// so it must not contain ids.
type Resource struct {
	Name string
	Path string
}

var (
	Inventories    = Resource{Name: "inventories", Path: "/inventories"}
	OrderHistory   = Resource{Name: "orders_history", Path: "/orders/history"}
	SellerProducts = Resource{Name: "products_seller", Path: "/products/seller"}
	SalesReports   = Resource{Name: "sales_reports", Path: "/insight/sales-reports"}
)

// ProductCreation is the be-seller detail of one product.
func ProductCreation(productID string) Resource {
	return Resource{Name: "product_creation", Path: "/product-creation/be-seller/" + url.PathEscape(productID)}
}

// ProductEdit is the edit/moderation state of one product.
func ProductEdit(productID string) Resource {
	return Resource{Name: "product_edit", Path: "/product-edit/" + url.PathEscape(productID)}
}

// Options configures a Client. Zero Timeout keeps the transport default,
// zero RequestsPerSecond disables throttling.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client performs single GET requests against the seller API and unwraps
// the {"data": ...} envelope. It never retries.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a seller API client
func NewClient(opts Options) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("accept", "application/json").
		SetHeader("x-response-code", "200")
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		http:    httpClient,
		limiter: limiter,
		logger:  util.GetLogger(),
	}
}

// Fetch issues one GET and returns the data member of the envelope, or {}
// when it is absent or null.
func (c *Client) Fetch(ctx context.Context, res Resource, params url.Values) (json.RawMessage, error) {
	ctx, span := util.StartSpan(ctx, "upstream.Fetch",
		attribute.String("upstream.resource", res.Name),
		attribute.String("upstream.path", res.Path))
	defer span.End()

	data, err := c.fetch(ctx, res, params)
	util.RecordError(span, err)
	return data, err
}

func (c *Client) fetch(ctx context.Context, res Resource, params url.Values) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for upstream rate limit: %w", err)
		}
	}

	start := time.Now()
	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}
	resp, err := req.Get(res.Path)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode())
	}
	util.UpstreamRequestDuration.WithLabelValues(res.Name, status).Observe(time.Since(start).Seconds())

	if err != nil {
		util.UpstreamRequestsFailed.WithLabelValues(res.Name, "transport").Inc()
		return nil, fmt.Errorf("request to %s failed: %w", res.Name, err)
	}

	if resp.StatusCode() != http.StatusOK {
		util.UpstreamRequestsFailed.WithLabelValues(res.Name, "status").Inc()
		c.logger.Warn("Upstream returned non-200",
			zap.String("resource", res.Name),
			zap.Int("status", resp.StatusCode()))
		return nil, &UpstreamError{Resource: res.Name, StatusCode: resp.StatusCode()}
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		util.UpstreamRequestsFailed.WithLabelValues(res.Name, "malformed").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, res.Name, err)
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return json.RawMessage("{}"), nil
	}
	return envelope.Data, nil
}
