package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"QuoteLens/internal/domain/models"
	domrepo "QuoteLens/internal/domain/repository"
	"QuoteLens/internal/service/metrics"
	"QuoteLens/internal/service/ratelimit"
	"QuoteLens/internal/services/analytics"
	"QuoteLens/internal/usecase"
	xhttp "QuoteLens/pkg/http"
	xlogger "QuoteLens/pkg/logger"
	"QuoteLens/pkg/util"
)

// QuotesEchoHandler serves quotes, analytics and the quote archive.
type QuotesEchoHandler struct {
	logger   *xlogger.Logger
	quotes   *usecase.QuoteUseCase
	analysis *usecase.AnalysisUseCase
	archive  domrepo.Storage // nil when no archive is configured
	rl       *ratelimit.Limiter
}

func NewQuotesEchoHandler(logger *xlogger.Logger, quotes *usecase.QuoteUseCase, analysis *usecase.AnalysisUseCase, archive domrepo.Storage, rl *ratelimit.Limiter) *QuotesEchoHandler {
	metrics.Register()
	return &QuotesEchoHandler{logger: logger, quotes: quotes, analysis: analysis, archive: archive, rl: rl}
}

func (h *QuotesEchoHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/quote", h.Quote)
	g.GET("/analysis", h.Analysis)
	g.POST("/analyze", h.Analyze)
	g.GET("/archive", h.Archive)
}

// limited reports whether the caller exhausted its quota for endpoint.
func (h *QuotesEchoHandler) limited(c echo.Context, endpoint string) bool {
	if h.rl == nil || h.rl.Allow(c.RealIP()+":"+endpoint) {
		return false
	}
	metrics.APIRateLimited.WithLabelValues(endpoint).Inc()
	h.logger.Warn("rate limited", xlogger.String("endpoint", endpoint), xlogger.String("remote", c.RealIP()))
	return true
}

func (h *QuotesEchoHandler) Quote(c echo.Context) error {
	start := time.Now()
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.Observe("quote", start, true)
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.limited(c, "quote") {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many quote requests"))
	}

	res := h.quotes.FetchQuote(c.Request().Context(), req.Symbol, domrepo.Period(req.Period))
	metrics.Observe("quote", start, false)
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *QuotesEchoHandler) Analysis(c echo.Context) error {
	start := time.Now()
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.Observe("analysis", start, true)
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.limited(c, "analysis") {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many quote requests"))
	}

	res, err := h.analysis.QuoteWithAnalysis(c.Request().Context(), req.Symbol, domrepo.Period(req.Period))
	metrics.Observe("analysis", start, err != nil)
	if err != nil {
		h.logger.Error("analysis usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("analysis failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *QuotesEchoHandler) Analyze(c echo.Context) error {
	start := time.Now()
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.Observe("analyze", start, true)
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analysis.Analyze(req.Prices)
	metrics.Observe("analyze", start, err != nil)
	if err != nil {
		if errors.Is(err, analytics.ErrEmptySeries) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("ERR_EMPTY_SERIES", "prices must not be empty"))
		}
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *QuotesEchoHandler) Archive(c echo.Context) error {
	start := time.Now()
	if h.archive == nil {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("quote archive is not enabled"))
	}
	req := &models.ArchiveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.Observe("archive", start, true)
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now().UTC()
	to := util.ParseTimeDefault(req.To, now)
	from := util.ParseTimeDefault(req.From, to.AddDate(-1, 0, 0))
	if from.After(to) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("ERR_RANGE", "from must not be after to"))
	}

	rows, err := h.archive.Query(c.Request().Context(), models.NormalizeSymbol(req.Symbol), from, to, req.Limit)
	metrics.Observe("archive", start, err != nil)
	if err != nil {
		h.logger.Error("archive query error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("archive query failed").WithError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
