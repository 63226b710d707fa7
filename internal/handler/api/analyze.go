package api

import (
	"errors"
	"net/http"

	models "FundLens/internal/domain/models"
	"FundLens/internal/usecase"
	xhttp "FundLens/pkg/http"
	xlogger "FundLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalyzeHandler exposes the analysis pipeline over HTTP.
type AnalyzeHandler struct {
	logger  *xlogger.Logger
	analyze *usecase.AnalyzeUseCase
}

func NewAnalyzeHandler(logger *xlogger.Logger, analyze *usecase.AnalyzeUseCase) *AnalyzeHandler {
	return &AnalyzeHandler{logger: logger, analyze: analyze}
}

func (h *AnalyzeHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/analyze", h.Analyze)
	e.GET("/healthz", h.Health)
}

func (h *AnalyzeHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyze.Analyze(c.Request().Context(), req.Ticker, models.Style(req.Style))
	if err != nil {
		h.logger.Error("analyze usecase error",
			xlogger.String("ticker", req.Ticker),
			xlogger.String("style", req.Style),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyzeHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// mapDomainError translates pipeline errors into the caller-facing
// {code, message, retryable} taxonomy.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, models.ErrTickerNotFound):
		return xhttp.TickerNotFoundError("ticker not found").WithError(err)
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.InsufficientDataError("not enough fundamentals to score this ticker").WithError(err)
	}

	var pe *models.ProviderError
	if errors.As(err, &pe) {
		return xhttp.InternalError("data provider unavailable", pe.Transient).WithError(err)
	}
	var ne *models.NarrativeError
	if errors.As(err, &ne) {
		return xhttp.ModelError("narrative service failed").WithError(err)
	}
	return xhttp.InternalError("internal error", false).WithError(err)
}
