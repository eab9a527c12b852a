package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/woolies-greener/backend/internal/currency"
	"github.com/woolies-greener/backend/internal/domain"
	"github.com/woolies-greener/backend/internal/links"
	"github.com/woolies-greener/backend/internal/logger"
	"go.uber.org/zap"
)

// Matcher searches both retailers and persists chosen pairs
type Matcher interface {
	Search(ctx context.Context, query string) *domain.SearchResult
	Match(ctx context.Context, req domain.MatchRequest) (*domain.MatchOutcome, error)
}

// ProductAdmin manages matched products
type ProductAdmin interface {
	List(ctx context.Context) ([]domain.MatchedProduct, error)
	Get(ctx context.Context, id string) (*domain.ProductDetail, error)
	Create(ctx context.Context, input domain.ProductInput) (*domain.ProductDetail, error)
	Update(ctx context.Context, id string, input domain.ProductInput) (*domain.ProductDetail, error)
	Delete(ctx context.Context, id string) error
}

// BasketAdmin manages baskets
type BasketAdmin interface {
	List(ctx context.Context) ([]domain.Basket, error)
	Create(ctx context.Context, name, description string) (*domain.Basket, error)
	Delete(ctx context.Context, id string) error
}

// Comparer builds the public basket comparison
type Comparer interface {
	Compare(ctx context.Context, displayCurrency string) (*domain.Comparison, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	matching   Matcher
	products   ProductAdmin
	baskets    BasketAdmin
	comparison Comparer
	converter  *currency.Converter
}

// NewHandler creates a new HTTP handler
func NewHandler(
	matching Matcher,
	products ProductAdmin,
	baskets BasketAdmin,
	comparison Comparer,
	converter *currency.Converter,
) *Handler {
	return &Handler{
		matching:   matching,
		products:   products,
		baskets:    baskets,
		comparison: comparison,
		converter:  converter,
	}
}

var digitsPattern = regexp.MustCompile(`^[0-9]+$`)

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "woolies-greener-backend",
		"version": "1.0.0",
	})
}

// GetComparison returns every basket with both retailers' totals
func (h *Handler) GetComparison(c *gin.Context) {
	comparison, err := h.comparison.Compare(c.Request.Context(), c.Query("currency"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// AULink returns the AU product page of a stockcode
func (h *Handler) AULink(c *gin.Context) {
	stockcode := c.Param("stockcode")
	if !digitsPattern.MatchString(stockcode) {
		respondError(c, errors.Join(domain.ErrInvalidRequest, errors.New("stockcode must be numeric")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": links.AULink(stockcode)})
}

// NZLink returns the NZ product page of a sku
func (h *Handler) NZLink(c *gin.Context) {
	sku := strings.TrimSpace(c.Param("sku"))
	if sku == "" {
		respondError(c, errors.Join(domain.ErrInvalidRequest, errors.New("sku is required")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": links.NZLink(sku)})
}

// Convert converts an amount between NZD and AUD at the configured rate
func (h *Handler) Convert(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		respondError(c, errors.Join(domain.ErrInvalidRequest, errors.New("amount must be a finite non-negative number")))
		return
	}

	var result float64
	from := strings.ToUpper(c.Query("from"))
	to := ""
	switch from {
	case domain.CurrencyNZD:
		to = domain.CurrencyAUD
		result = h.converter.NzdToAud(amount)
	case domain.CurrencyAUD:
		to = domain.CurrencyNZD
		result = h.converter.AudToNzd(amount)
	default:
		respondError(c, errors.Join(domain.ErrInvalidRequest, errors.New("from must be NZD or AUD")))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"amount":  amount,
		"from":    from,
		"to":      to,
		"rate":    h.converter.Rate(),
		"result":  result,
		"display": currency.Round2(result),
	})
}

// SearchRetailers searches both retailers. Partial failures still answer 200
// with the failed leg's message in the error field.
func (h *Handler) SearchRetailers(c *gin.Context) {
	result := h.matching.Search(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, result)
}

// CreateMatch persists a chosen AU/NZ pair into each requested basket
func (h *Handler) CreateMatch(c *gin.Context) {
	var req domain.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Join(domain.ErrInvalidRequest, err))
		return
	}

	outcome, err := h.matching.Match(c.Request.Context(), req)
	if err != nil {
		pairs := []domain.MatchedPair{}
		if outcome != nil {
			pairs = outcome.Pairs
		}
		respondErrorWith(c, err, gin.H{"pairs": pairs})
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

// ListBaskets returns all baskets
func (h *Handler) ListBaskets(c *gin.Context) {
	baskets, err := h.baskets.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"baskets": baskets})
}

type createBasketRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// CreateBasket adds a basket
func (h *Handler) CreateBasket(c *gin.Context) {
	var req createBasketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Join(domain.ErrInvalidRequest, err))
		return
	}

	basket, err := h.baskets.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, basket)
}

// DeleteBasket removes a basket and its product links
func (h *Handler) DeleteBasket(c *gin.Context) {
	if err := h.baskets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListProducts returns all matched products
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns one product with its basket IDs
func (h *Handler) GetProduct(c *gin.Context) {
	detail, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CreateProduct stores a hand-entered product
func (h *Handler) CreateProduct(c *gin.Context) {
	var input domain.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, errors.Join(domain.ErrInvalidRequest, err))
		return
	}

	detail, err := h.products.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// UpdateProduct edits a product; a basketIds field replaces its basket set
func (h *Handler) UpdateProduct(c *gin.Context) {
	var input domain.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, errors.Join(domain.ErrInvalidRequest, err))
		return
	}

	detail, err := h.products.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteProduct removes a product and its basket links
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrAUPriceMissing):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrBasketNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBasketExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRetailerFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	respondErrorWith(c, err, nil)
}

// respondErrorWith writes an error body plus extra fields. Server errors get
// a generic message; the cause is only logged.
func respondErrorWith(c *gin.Context, err error, extra gin.H) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(c, "Request failed", err, zap.String("path", c.FullPath()))
		message = "internal server error"
	} else {
		logger.Debug(c, "Request rejected", zap.Int("status", status), zap.Error(err))
	}

	body := gin.H{"error": message}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(status, body)
}
