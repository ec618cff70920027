package productsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const maxBodySize = 10 << 20

// productID accepts both numeric and string ids.
type productID string

func (id *productID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = productID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid product id %s", b)
	}
	*id = productID(n.String())
	return nil
}

type productDTO struct {
	ID          productID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Rating      float64         `json:"rating"`
	Thumbnail   string          `json:"thumbnail"`
	Tags        []string        `json:"tags"`
}

type productsResponse struct {
	Products []productDTO `json:"products"`
}

// HTTPSource reads the catalog from a JSON endpoint shaped like
// {"products": [...]}.
type HTTPSource struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]domain.Product]
	logger  *zap.Logger
}

func NewHTTPSource(url string, timeout time.Duration, logger *zap.Logger) *HTTPSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &HTTPSource{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker[[]domain.Product](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})
	return s
}

func (s *HTTPSource) FetchAll(ctx context.Context) ([]domain.Product, error) {
	ctx, span := otel.Tracer("storefront/productsource").Start(ctx, "catalog.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.url", s.url))

	products, err := s.breaker.Execute(func() ([]domain.Product, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &FetchError{Op: "circuit breaker", Err: err}
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("catalog.size", len(products)))
	return products, nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &FetchError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &FetchError{Op: "status", Err: errors.New("unexpected status " + strconv.Itoa(resp.StatusCode))}
	}

	var body productsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return nil, &FetchError{Op: "decode", Err: err}
	}

	products := make([]domain.Product, 0, len(body.Products))
	for _, p := range body.Products {
		if p.ID == "" {
			continue
		}
		products = append(products, domain.Product{
			ID:          string(p.ID),
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Stock:       max(p.Stock, 0),
			Category:    p.Category,
			Brand:       p.Brand,
			Rating:      p.Rating,
			Thumbnail:   p.Thumbnail,
			Tags:        p.Tags,
		})
	}
	return products, nil
}
