package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-generator/discovery/internal/dto"
	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/provider/directory"
	"github.com/octobees/leads-generator/discovery/internal/service"
)

// LeadsHandler exposes the stored lead collection.
type LeadsHandler struct {
	service *service.LeadsService
}

// NewLeadsHandler creates a new handler instance.
func NewLeadsHandler(service *service.LeadsService) *LeadsHandler {
	return &LeadsHandler{service: service}
}

// List handles GET /leads requests.
func (h *LeadsHandler) List(c echo.Context) error {
	filter := dto.ListFilter{
		Q:         strings.TrimSpace(c.QueryParam("q")),
		Country:   strings.TrimSpace(c.QueryParam("country")),
		Industry:  strings.TrimSpace(c.QueryParam("industry")),
		NoWebsite: parseBool(c.QueryParam("no_website")),
		HasEmail:  parseBool(c.QueryParam("has_email")),
		Sort:      strings.TrimSpace(c.QueryParam("sort")),
		Page:      parseIntDefault(c.QueryParam("page"), 1),
		PerPage:   parseIntDefault(c.QueryParam("per_page"), 0),
	}

	if filter.Country != "" {
		if _, ok := entity.ParseCountry(filter.Country); !ok {
			return Error(c, http.StatusBadRequest, fmt.Sprintf("unsupported country %q", filter.Country))
		}
	}
	if filter.Industry != "" {
		if _, ok := entity.ParseIndustry(filter.Industry); !ok {
			return Error(c, http.StatusBadRequest, fmt.Sprintf("unsupported industry %q", filter.Industry))
		}
	}

	page, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list leads")
	}
	return Success(c, http.StatusOK, "leads retrieved", page)
}

// Stats handles GET /leads/stats requests.
func (h *LeadsHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to compute stats")
	}
	return Success(c, http.StatusOK, "stats retrieved", stats)
}

// Quality handles GET /leads/quality requests.
func (h *LeadsHandler) Quality(c echo.Context) error {
	report, err := h.service.QualityReport(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to build quality report")
	}
	return Success(c, http.StatusOK, "quality report", report)
}

// Export handles GET /leads/export requests.
func (h *LeadsHandler) Export(c echo.Context) error {
	var buf bytes.Buffer
	if _, err := h.service.ExportCSV(c.Request().Context(), &buf); err != nil {
		return Error(c, http.StatusInternalServerError, "failed to export leads")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", h.service.ExportFilename()))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Verify handles POST /leads/verify requests.
func (h *LeadsHandler) Verify(c echo.Context) error {
	var req dto.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Verify(c.Request().Context(), req)
	if err != nil {
		return Fail(c, err, "failed to verify lead")
	}
	return Success(c, http.StatusOK, "lead verified", result)
}

// Clear handles DELETE /leads requests.
func (h *LeadsHandler) Clear(c echo.Context) error {
	removed, err := h.service.Clear(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to clear leads")
	}
	return Success(c, http.StatusOK, "leads cleared", map[string]int64{"removed": removed})
}

// Directories handles GET /directories requests.
func (h *LeadsHandler) Directories(c echo.Context) error {
	raw := strings.TrimSpace(c.QueryParam("country"))
	country, ok := entity.ParseCountry(raw)
	if !ok {
		return Error(c, http.StatusBadRequest, fmt.Sprintf("unsupported country %q", raw))
	}
	return Success(c, http.StatusOK, "directories retrieved", map[string]any{
		"country":          country,
		"directories":      directory.Available(country),
		"requires_backend": directory.RequiresBackend(country),
	})
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}

func parseBool(input string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(input))
	return err == nil && value
}
