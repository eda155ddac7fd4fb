package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"QuoteLens/internal/domain/models"
	"QuoteLens/internal/service/metrics"
	"QuoteLens/internal/usecase"
	xhttp "QuoteLens/pkg/http"
	xlogger "QuoteLens/pkg/logger"
)

// WatchlistEchoHandler exposes the watchlist store.
type WatchlistEchoHandler struct {
	logger    *xlogger.Logger
	watchlist *usecase.WatchlistUseCase
	refresher *usecase.WatchlistRefresher
}

func NewWatchlistEchoHandler(logger *xlogger.Logger, watchlist *usecase.WatchlistUseCase, refresher *usecase.WatchlistRefresher) *WatchlistEchoHandler {
	metrics.Register()
	return &WatchlistEchoHandler{logger: logger, watchlist: watchlist, refresher: refresher}
}

func (h *WatchlistEchoHandler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/watchlist")
	g.GET("", h.List)
	g.POST("", h.Add)
	g.POST("/refresh", h.Refresh)
	g.GET("/:symbol", h.Contains)
	g.DELETE("/:symbol", h.Remove)
	g.PUT("/:symbol/price", h.UpdatePrice)
}

func (h *WatchlistEchoHandler) List(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.watchlist.Load(c.Request().Context()))
}

func (h *WatchlistEchoHandler) Add(c echo.Context) error {
	start := time.Now()
	req := &models.AddWatchlistRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	w, err := h.watchlist.Add(c.Request().Context(), req.Symbol, req.CompanyName)
	metrics.Observe("watchlist_add", start, err != nil)
	if err != nil {
		return h.writeFailed(c, err)
	}
	return xhttp.CreatedResponse(c, w)
}

func (h *WatchlistEchoHandler) Remove(c echo.Context) error {
	start := time.Now()
	w, err := h.watchlist.Remove(c.Request().Context(), c.Param("symbol"))
	metrics.Observe("watchlist_remove", start, err != nil)
	if err != nil {
		return h.writeFailed(c, err)
	}
	return xhttp.SuccessResponse(c, w)
}

func (h *WatchlistEchoHandler) Contains(c echo.Context) error {
	sym := models.NormalizeSymbol(c.Param("symbol"))
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol":   sym,
		"contains": h.watchlist.Contains(c.Request().Context(), sym),
	})
}

func (h *WatchlistEchoHandler) UpdatePrice(c echo.Context) error {
	start := time.Now()
	req := &models.UpdatePriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	err := h.watchlist.UpdatePrice(c.Request().Context(), c.Param("symbol"), req.Price, req.Change)
	metrics.Observe("watchlist_price", start, err != nil)
	if err != nil {
		return h.writeFailed(c, err)
	}
	return xhttp.SuccessResponse(c, h.watchlist.Load(c.Request().Context()))
}

func (h *WatchlistEchoHandler) Refresh(c echo.Context) error {
	start := time.Now()
	rep, err := h.refresher.Refresh(c.Request().Context())
	metrics.Observe("watchlist_refresh", start, err != nil)
	if err != nil {
		h.logger.Error("watchlist refresh error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("refresh failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, rep)
}

func (h *WatchlistEchoHandler) writeFailed(c echo.Context, err error) error {
	h.logger.Error("watchlist write error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError("watchlist could not be saved").WithError(err))
}
