package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/octobees/leads-generator/discovery/internal/dto"
	"github.com/octobees/leads-generator/discovery/internal/provider"
	"github.com/octobees/leads-generator/discovery/internal/service"
)

// DiscoverHandler starts discovery runs. Only one run is in flight at a
// time; a concurrent request is rejected rather than queued.
type DiscoverHandler struct {
	leads    *service.LeadsService
	prompts  *service.PromptService
	timeout  time.Duration
	inflight *semaphore.Weighted
	logger   *zap.Logger
}

// NewDiscoverHandler wires the handler. A zero timeout leaves runs bound
// only by the request context.
func NewDiscoverHandler(leads *service.LeadsService, prompts *service.PromptService, timeout time.Duration, logger *zap.Logger) *DiscoverHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscoverHandler{
		leads:    leads,
		prompts:  prompts,
		timeout:  timeout,
		inflight: semaphore.NewWeighted(1),
		logger:   logger,
	}
}

// Discover handles POST /discover requests.
func (h *DiscoverHandler) Discover(c echo.Context) error {
	var req dto.DiscoverRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	q, err := service.ParseQuery(req)
	if err != nil {
		return Fail(c, err, "invalid discovery request")
	}

	resp, err := h.run(c, q)
	if err != nil {
		return Fail(c, err, "discovery failed")
	}
	return Success(c, http.StatusOK, runMessage(resp), resp)
}

// Prompt handles POST /discover/prompt requests.
func (h *DiscoverHandler) Prompt(c echo.Context) error {
	var req dto.PromptSearchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.Prompt = strings.TrimSpace(req.Prompt)

	parsed, err := h.prompts.Parse(req)
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	resp, err := h.run(c, parsed.Query())
	if err != nil {
		return Fail(c, err, "discovery failed")
	}

	return Success(c, http.StatusOK, runMessage(resp), dto.PromptSearchResponse{
		Prompt:   req.Prompt,
		Country:  string(parsed.Country),
		Industry: string(parsed.Industry),
		City:     parsed.City,
		Result:   resp,
	})
}

func (h *DiscoverHandler) run(c echo.Context, q provider.Query) (dto.DiscoverResponse, error) {
	if !h.inflight.TryAcquire(1) {
		return dto.DiscoverResponse{}, errDiscoveryBusy
	}
	defer h.inflight.Release(1)

	ctx := c.Request().Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	resp, err := h.leads.Discover(ctx, q)
	if err != nil {
		h.logger.Error("discovery run failed",
			zap.String("request_id", provider.RequestIDFrom(ctx)),
			zap.String("country", string(q.Country)),
			zap.String("city", q.City),
			zap.Error(err),
		)
		return dto.DiscoverResponse{}, err
	}
	return resp, nil
}

func runMessage(resp dto.DiscoverResponse) string {
	if resp.Cancelled {
		return "discovery cancelled, partial results stored"
	}
	return "discovery completed"
}
