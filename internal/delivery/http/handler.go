package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/arbilens/backend/internal/domain"
	"github.com/arbilens/backend/internal/infrastructure/catalog"
	"github.com/arbilens/backend/internal/logger"
	"github.com/arbilens/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// apiKeyHeader lets a caller supply its own provider key per request
const apiKeyHeader = "X-SerpApi-Key"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	research *usecase.ResearchService
	loader   *catalog.Loader
	log      *logrus.Entry
}

// NewHandler creates a new HTTP handler
func NewHandler(research *usecase.ResearchService, loader *catalog.Loader, log logrus.FieldLogger) *Handler {
	if loader == nil {
		loader = catalog.NewLoader(log)
	}
	return &Handler{
		research: research,
		loader:   loader,
		log:      logger.WithComponent(log, "http"),
	}
}

// VerifyRequest is the body of a credential check
type VerifyRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// CatalogRowRequest is one catalog row submitted as JSON
type CatalogRowRequest struct {
	Identifier  string           `json:"identifier"`
	Title       string           `json:"title"`
	Code        string           `json:"code"`
	ListPrice   decimal.Decimal  `json:"listPrice"`
	PlatformFee decimal.Decimal  `json:"platformFee"`
	ReferralFee *decimal.Decimal `json:"referralFee"`
	ImageURL    string           `json:"imageUrl"`
}

// ResearchRequest is a JSON batch submission
type ResearchRequest struct {
	APIKey string              `json:"apiKey"`
	Rows   []CatalogRowRequest `json:"rows" binding:"required"`
}

// SelectionRequest overrides the chosen offer of one row
type SelectionRequest struct {
	Index *int `json:"index" binding:"required"`
}

// ResearchResponse is returned for a finished or stored batch
type ResearchResponse struct {
	SessionID string             `json:"sessionId"`
	Summary   domain.Summary     `json:"summary"`
	Progress  domain.Progress    `json:"progress"`
	Results   []domain.RowResult `json:"results"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "arbilens-backend",
		"version": "1.0.0",
	})
}

// VerifyCredential checks a provider key without running a batch
func (h *Handler) VerifyCredential(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "apiKey is required"})
		return
	}

	err := h.research.VerifyCredential(c.Request.Context(), strings.TrimSpace(req.APIKey))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"valid": true, "message": "API key accepted"})
	case errors.Is(err, domain.ErrInvalidCredential):
		c.JSON(http.StatusOK, gin.H{"valid": false, "message": err.Error()})
	default:
		h.respondError(c, err)
	}
}

// StartResearch runs a batch over an uploaded CSV or a JSON row list
func (h *Handler) StartResearch(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	var (
		rows   []domain.CatalogRow
		apiKey = c.GetHeader(apiKeyHeader)
		err    error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		rows, err = h.rowsFromUpload(c)
		if key := c.PostForm("apiKey"); key != "" {
			apiKey = key
		}
	} else {
		var req ResearchRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if req.APIKey != "" {
			apiKey = req.APIKey
		}
		rows, err = rowsFromRequest(req.Rows)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "catalog contains no rows"})
		return
	}

	session := h.research.Run(c.Request.Context(), rows, usecase.RunOptions{APIKey: strings.TrimSpace(apiKey)})
	c.JSON(http.StatusOK, h.sessionResponse(c, session))
}

// GetResearch returns the current results of a stored batch
func (h *Handler) GetResearch(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse(c, session))
}

// SelectOffer changes the chosen offer of one row and returns the recomputed row
func (h *Handler) SelectOffer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index is required"})
		return
	}

	result, err := session.Select(c.Param("identifier"), *req.Index)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportResearch streams the results of a batch as CSV
func (h *Handler) ExportResearch(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	results := session.Results()
	if profitableOnly(c) {
		results = session.ProfitableResults()
	}

	var buf bytes.Buffer
	if err := catalog.WriteCSV(&buf, results); err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="arbilens-%s.csv"`, session.ID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ClearCache drops every memoised lookup
func (h *Handler) ClearCache(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": h.research.ClearCache()})
}

func (h *Handler) configured(c *gin.Context) bool {
	if h.research == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Research service not configured"})
		return false
	}
	return true
}

func (h *Handler) session(c *gin.Context) (*usecase.Session, bool) {
	if !h.configured(c) {
		return nil, false
	}
	session, err := h.research.Session(c.Param("sessionId"))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return session, true
}

func (h *Handler) sessionResponse(c *gin.Context, session *usecase.Session) ResearchResponse {
	results := session.Results()
	if profitableOnly(c) {
		results = session.ProfitableResults()
	}
	return ResearchResponse{
		SessionID: session.ID,
		Summary:   session.Summary(),
		Progress:  session.Progress(),
		Results:   results,
	}
}

func (h *Handler) rowsFromUpload(c *gin.Context) ([]domain.CatalogRow, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: multipart field 'file' is required", domain.ErrInvalidRequest)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open upload: %v", domain.ErrInvalidRequest, err)
	}
	defer file.Close()

	return h.loader.Load(file)
}

func rowsFromRequest(reqs []CatalogRowRequest) ([]domain.CatalogRow, error) {
	rows := make([]domain.CatalogRow, 0, len(reqs))
	for i, r := range reqs {
		row, err := domain.NewCatalogRow(r.Identifier, r.Title, r.Code, r.ListPrice, r.PlatformFee, r.ReferralFee, r.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func profitableOnly(c *gin.Context) bool {
	return c.Query("profitableOnly") == "true"
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrRowNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSelection):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrCatalogFormat),
		errors.Is(err, domain.ErrInvalidCatalogRow),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrMissingCredential):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredential):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrTransportFailure), errors.Is(err, domain.ErrParseFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Shopping provider temporarily unavailable"})
		return
	}

	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
