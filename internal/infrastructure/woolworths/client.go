package woolworths

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/woolies-greener/backend/internal/domain"
	"github.com/woolies-greener/backend/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Defaults for the retailer endpoints and request shape
const (
	DefaultAUBaseURL     = "https://www.woolworths.com.au"
	DefaultNZBaseURL     = "https://www.woolworths.co.nz"
	DefaultUserAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"
	DefaultRequestedWith = "OnlineShopping.WebApp"
	DefaultCookiePrefix  = "_abck"
	DefaultNZPageSize    = 48
	DefaultAUPageSize    = 24
	DefaultTimeout       = 30 * time.Second
)

// ClientConfig holds the endpoints and static request values of both retailers
type ClientConfig struct {
	AUBaseURL     string
	NZBaseURL     string
	UserAgent     string
	RequestedWith string
	CookiePrefix  string
	NZPageSize    int
	AUPageSize    int
	Timeout       time.Duration
}

// Client searches the Woolworths AU and NZ catalogs
type Client struct {
	httpClient *http.Client
	cfg        ClientConfig
	debug      bool
}

// NewClient creates a new retailer search client. Zero config values take the defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.AUBaseURL == "" {
		cfg.AUBaseURL = DefaultAUBaseURL
	}
	if cfg.NZBaseURL == "" {
		cfg.NZBaseURL = DefaultNZBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RequestedWith == "" {
		cfg.RequestedWith = DefaultRequestedWith
	}
	if cfg.CookiePrefix == "" {
		cfg.CookiePrefix = DefaultCookiePrefix
	}
	if cfg.NZPageSize <= 0 {
		cfg.NZPageSize = DefaultNZPageSize
	}
	if cfg.AUPageSize <= 0 {
		cfg.AUPageSize = DefaultAUPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.AUBaseURL = strings.TrimRight(cfg.AUBaseURL, "/")
	cfg.NZBaseURL = strings.TrimRight(cfg.NZBaseURL, "/")

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg: cfg,
	}
}

// SetDebug enables logging of response bodies for failed requests
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Search queries both retailers. The legs run concurrently and fail
// independently: a failed leg contributes an error line and an empty list,
// never hiding the other leg's products.
func (c *Client) Search(ctx context.Context, query string) *domain.SearchResult {
	var (
		nzProducts []domain.NZProduct
		auProducts []domain.AUProduct
		nzErr      error
		auErr      error
	)

	// Legs report through their own variables, so the group never cancels
	var g errgroup.Group
	g.Go(func() error {
		nzProducts, nzErr = c.SearchNZ(ctx, query)
		return nil
	})
	g.Go(func() error {
		auProducts, auErr = c.SearchAU(ctx, query)
		return nil
	})
	_ = g.Wait()

	return mergeLegs(ctx, query, nzProducts, nzErr, auProducts, auErr)
}

// mergeLegs combines both legs' outcomes; errors are joined NZ first, AU second
func mergeLegs(
	ctx context.Context,
	query string,
	nz []domain.NZProduct, nzErr error,
	au []domain.AUProduct, auErr error,
) *domain.SearchResult {
	result := &domain.SearchResult{
		NZ: []domain.NZProduct{},
		AU: []domain.AUProduct{},
	}

	var errs []string
	if nzErr != nil {
		logger.Error(ctx, "NZ search failed", nzErr, zap.String("query", query))
		errs = append(errs, "NZ search failed: "+nzErr.Error())
	} else if nz != nil {
		result.NZ = nz
	}
	if auErr != nil {
		logger.Error(ctx, "AU search failed", auErr, zap.String("query", query))
		errs = append(errs, "AU search failed: "+auErr.Error())
	} else if au != nil {
		result.AU = au
	}
	result.Error = strings.Join(errs, "\n")

	logger.Info(ctx, "Retailer search finished",
		zap.String("query", query),
		zap.Int("au_count", len(result.AU)),
		zap.Int("nz_count", len(result.NZ)),
		zap.Bool("partial", result.Error != ""),
	)
	return result
}

// SearchNZ runs the NZ leg: one GET with static headers
func (c *Client) SearchNZ(ctx context.Context, query string) ([]domain.NZProduct, error) {
	reqURL := fmt.Sprintf("%s/api/v1/products?target=search&search=%s&inStockProductsOnly=false&size=%d",
		c.cfg.NZBaseURL, escapeComponent(query), c.cfg.NZPageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-Requested-With", c.cfg.RequestedWith)

	body, err := c.do(ctx, req, "NZ API")
	if err != nil {
		return nil, err
	}

	items, err := decodeNZEnvelope(body)
	if err != nil {
		return nil, err
	}

	return parseNZItems(ctx, items), nil
}

// auSearchFlags mirrors the feature flags the AU site sends with a search
type auSearchFlags struct {
	EnableProductBoostExperiment bool `json:"EnableProductBoostExperiment"`
}

// auSearchRequest is the body of the AU search POST. Field values other
// than the term and paging are fixed.
type auSearchRequest struct {
	Filters                         []any         `json:"Filters"`
	IsSpecial                       bool          `json:"IsSpecial"`
	Location                        string        `json:"Location"`
	PageNumber                      int           `json:"PageNumber"`
	PageSize                        int           `json:"PageSize"`
	SearchTerm                      string        `json:"SearchTerm"`
	SortType                        string        `json:"SortType"`
	IsRegisteredRewardCardPromotion *bool         `json:"IsRegisteredRewardCardPromotion"`
	ExcludeSearchTypes              []string      `json:"ExcludeSearchTypes"`
	GpBoost                         int           `json:"GpBoost"`
	GroupEdmVariants                bool          `json:"GroupEdmVariants"`
	EnableAdReRanking               bool          `json:"EnableAdReRanking"`
	Flags                           auSearchFlags `json:"flags"`
}

func newAUSearchRequest(query string, pageSize int) auSearchRequest {
	return auSearchRequest{
		Filters:            []any{},
		IsSpecial:          false,
		Location:           "/shop/search/products?searchTerm=" + escapeComponent(query),
		PageNumber:         1,
		PageSize:           pageSize,
		SearchTerm:         query,
		SortType:           "TraderRelevance",
		ExcludeSearchTypes: []string{"UntraceableVendors"},
		GpBoost:            0,
		GroupEdmVariants:   true,
		EnableAdReRanking:  false,
		Flags:              auSearchFlags{EnableProductBoostExperiment: false},
	}
}

// SearchAU runs the AU leg: harvest the anti-bot cookie from the root page,
// then POST the search with that cookie replayed
func (c *Client) SearchAU(ctx context.Context, query string) ([]domain.AUProduct, error) {
	cookie, err := c.fetchAntiBotCookie(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(newAUSearchRequest(query, c.cfg.AUPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to encode AU request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AUBaseURL+"/apis/ui/Search/products", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Cookie", cookie)

	body, err := c.do(ctx, req, "AU API")
	if err != nil {
		return nil, err
	}

	items, err := decodeAUEnvelope(body)
	if err != nil {
		return nil, err
	}

	return parseAUItems(ctx, items), nil
}

// fetchAntiBotCookie GETs the AU root page and returns the "name=value" of
// the first Set-Cookie whose name starts with the configured prefix
func (c *Client) fetchAntiBotCookie(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.AUBaseURL+"/", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRetailerFailure, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !isSuccess(resp.StatusCode) {
		return "", fmt.Errorf("AU root returned %d: %w", resp.StatusCode, domain.ErrRetailerFailure)
	}

	cookie, ok := findCookie(resp.Header.Values("Set-Cookie"), c.cfg.CookiePrefix)
	if !ok {
		return "", fmt.Errorf("no %s cookie found: %w", c.cfg.CookiePrefix, domain.ErrCookieNotFound)
	}
	return cookie, nil
}

// findCookie scans Set-Cookie values, which may also arrive comma-joined,
// for a cookie named with prefix and returns its "name=value" pair
func findCookie(setCookies []string, prefix string) (string, bool) {
	for _, header := range setCookies {
		for _, entry := range strings.Split(header, ", ") {
			entry = strings.TrimSpace(entry)
			if !strings.HasPrefix(entry, prefix) {
				continue
			}
			pair, _, _ := strings.Cut(entry, ";")
			if !strings.Contains(pair, "=") {
				continue
			}
			return pair, true
		}
	}
	return "", false
}

// do executes a request and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, req *http.Request, name string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetailerFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %v", domain.ErrRetailerFailure, name, err)
	}

	if !isSuccess(resp.StatusCode) {
		if c.debug {
			logger.Debug(ctx, "Retailer error response",
				zap.String("api", name),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", truncate(body, 2048)),
			)
		}
		return nil, fmt.Errorf("%s returned %d: %w", name, resp.StatusCode, domain.ErrRetailerFailure)
	}

	return body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// escapeComponent percent-encodes a query the way browsers encode a URI
// component: spaces become %20 rather than "+"
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
