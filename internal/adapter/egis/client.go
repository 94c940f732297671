package egis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/niksmo/egis-bridge/internal/adapter/metrics"
	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/niksmo/egis-bridge/internal/core/port"
	"golang.org/x/time/rate"
)

var _ port.CatalogClient = (*Client)(nil)

const (
	ComponentGerman  = "Artikelstamm"
	ComponentEnglish = "ProductMaster"

	germanHost     = "egis-online.de"
	searchFunction = "searchQuery"

	defaultTimeout = 30 * time.Second
	defaultERPName = "egis-bridge"
	maxBodySize    = 32 << 20
)

type Config struct {
	URL       string
	Component string
	User      string
	Password  string
	ERPName   string
	Timeout   time.Duration

	// RequestsPerSecond of zero disables client side rate limiting.
	RequestsPerSecond float64
	Burst             int
}

type Client struct {
	endpoint string
	user     string
	password string
	erpName  string
	client   *http.Client
	limiter  *rate.Limiter
	now      func() time.Time
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	erpName := cfg.ERPName
	if erpName == "" {
		erpName = defaultERPName
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := max(cfg.Burst, 1)
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		endpoint: Endpoint(cfg.URL, cfg.Component),
		user:     cfg.User,
		password: cfg.Password,
		erpName:  erpName,
		client:   &http.Client{Timeout: timeout},
		limiter:  limiter,
		now:      time.Now,
	}
}

// Endpoint returns the search URL for the base URL. German accounts are
// served under the Artikelstamm component, all others under ProductMaster.
func Endpoint(baseURL, component string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if component == "" {
		component = componentFor(baseURL)
	}
	return baseURL + "/" + component + "/" + searchFunction
}

func componentFor(baseURL string) string {
	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	if strings.HasSuffix(strings.ToLower(host), germanHost) {
		return ComponentGerman
	}
	return ComponentEnglish
}

func (c *Client) Search(
	ctx context.Context, f domain.SearchFilter, startRow int,
) (domain.SearchResult, error) {
	const op = "Client.Search"
	log := slog.With("op", op)

	if err := f.Validate(); err != nil {
		return domain.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := c.query(ctx, f, startRow)
	metrics.RecordCatalogRequest("search", err)
	if err != nil {
		log.Error("catalog search failed", "term", f.Term, "err", err)
		return domain.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if f.HasPriceBounds() {
		res = filterByPrice(f, res)
	}
	sortRecords(res.Records, f.Sort)

	log.Info("catalog search done",
		"term", f.Term, "total", res.Total, "nRecords", len(res.Records),
	)
	return res, nil
}

// maxLookupPages bounds the result pages scanned for a single product.
const maxLookupPages = 5

// Lookup finds exactly one product by its proprietary product number, or by
// its manufacturer product number when the former is unknown. Result pages
// are scanned until the last row or maxLookupPages.
func (c *Client) Lookup(
	ctx context.Context, key domain.ProductKey,
) (domain.ProductRecord, error) {
	const op = "Client.Lookup"
	log := slog.With("op", op)

	term, match := lookupMatcher(key)
	if term == "" {
		return domain.ProductRecord{}, fmt.Errorf("%s: %w", op,
			&domain.ValidationError{Field: "product key", Message: "is empty"},
		)
	}

	var (
		found    []domain.ProductRecord
		nRecords int
	)
	startRow := 1
	for range maxLookupPages {
		res, err := c.query(ctx, domain.SearchFilter{Term: term}, startRow)
		metrics.RecordCatalogRequest("lookup", err)
		if err != nil {
			return domain.ProductRecord{}, fmt.Errorf("%s: %w", op, err)
		}

		// a page that does not advance repeats rows already seen
		if startRow > 1 && (len(res.Records) == 0 || res.LastResult < startRow) {
			break
		}

		nRecords += len(res.Records)
		for _, r := range res.Records {
			if match(r) {
				found = append(found, r)
			}
		}

		if res.LastResult >= res.Total || res.LastResult < startRow {
			break
		}
		startRow = res.LastResult + 1
	}

	switch len(found) {
	case 0:
		log.Info("product not found", "term", term, "nRecords", nRecords)
		return domain.ProductRecord{}, fmt.Errorf(
			"%s: %q: %w", op, term, domain.ErrProductNotFound,
		)
	case 1:
		return found[0], nil
	default:
		log.Warn("ambiguous product match", "term", term, "nMatches", len(found))
		return domain.ProductRecord{}, fmt.Errorf(
			"%s: %q matched %d products: %w", op, term, len(found),
			domain.ErrAmbiguousMatch,
		)
	}
}

func lookupMatcher(key domain.ProductKey) (string, func(domain.ProductRecord) bool) {
	if ppn := strings.TrimSpace(key.ProprietaryProductNumber); ppn != "" {
		return ppn, func(r domain.ProductRecord) bool {
			return strings.TrimSpace(r.ProprietaryProductNumber) == ppn
		}
	}

	mpn := strings.TrimSpace(key.ManufacturerProductNumber)
	code := domain.ItemCode(mpn)
	return mpn, func(r domain.ProductRecord) bool {
		return code != "" && domain.ItemCode(r.ManufacturerProductNumber) == code
	}
}

func (c *Client) query(
	ctx context.Context, f domain.SearchFilter, startRow int,
) (domain.SearchResult, error) {
	payload, err := c.buildRequest(f, startRow)
	if err != nil {
		return domain.SearchResult{}, &domain.CatalogError{
			Message: "failed to build request", Err: err,
		}
	}

	body, err := c.post(ctx, payload)
	if err != nil {
		return domain.SearchResult{}, err
	}

	return decodeResponse(bytes.NewReader(body))
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.CatalogError{Message: "rate limiter", Err: err}
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload),
	)
	if err != nil {
		return nil, &domain.CatalogError{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("Accept", "text/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, &domain.CatalogError{
				Message: "request was cancelled", Err: ctx.Err(),
			}
		default:
			return nil, &domain.CatalogError{
				Message: "failed to execute request", Err: err,
			}
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.CatalogError{
			Message: fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &domain.CatalogError{
			Message: "failed to read response body", Err: err,
		}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &domain.CatalogError{Message: "empty response"}
	}

	return body, nil
}
