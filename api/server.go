package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rustyeddy/papertrader/engine"
)

// NewServer wires the handler routes onto a configured echo instance.
// The caller owns the listen/shutdown lifecycle.
func NewServer(e *engine.Engine) *echo.Echo {
	srv := echo.New()
	srv.HideBanner = true

	srv.Use(middleware.Recover())
	srv.Use(middleware.CORS())

	h := NewHandler(e)

	srv.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]string{"status": "healthy"})
	})

	srv.POST("/orders", h.SubmitOrder)
	srv.GET("/account", h.GetAccount)
	srv.GET("/positions", h.GetPositions)
	srv.GET("/trades", h.GetTrades)
	srv.POST("/positions/:symbol/close", h.ClosePosition)
	srv.POST("/close-all", h.CloseAll)
	srv.POST("/deposits", h.Deposit)
	srv.POST("/withdrawals", h.Withdraw)
	srv.POST("/reset", h.Reset)

	return srv
}
