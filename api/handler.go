// Package api exposes the ledger core to a UI over HTTP. It is a thin
// translation layer: parse, call the engine, map typed errors to status
// codes. All domain rules live in the engine.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/journal"
)

type Handler struct {
	engine *engine.Engine
}

func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

type orderRequest struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Quantity string `json:"quantity"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

// SubmitOrder handles POST /orders.
func (h *Handler) SubmitOrder(c echo.Context) error {
	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "malformed request body")
	}

	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return BadRequestResponse(c, "quantity must be a decimal number")
	}

	result, err := h.engine.SubmitOrder(c.Request().Context(), broker.OrderRequest{
		Symbol:   req.Symbol,
		Side:     broker.Side(req.Side),
		Quantity: qty,
	})
	if err != nil {
		return orderErrorResponse(c, result, err)
	}
	return CreatedResponse(c, result)
}

// GetAccount handles GET /account.
func (h *Handler) GetAccount(c echo.Context) error {
	acct, err := h.engine.GetBalance(c.Request().Context())
	if err != nil {
		return InternalServerErrorResponse(c, "failed to read account", err)
	}
	return SuccessResponse(c, acct)
}

// GetPositions handles GET /positions.
func (h *Handler) GetPositions(c echo.Context) error {
	return SuccessResponse(c, h.engine.GetPositions())
}

// GetTrades handles GET /trades with optional symbol, side, status, from
// and to (RFC 3339) query parameters.
func (h *Handler) GetTrades(c echo.Context) error {
	f := journal.Filter{
		Symbol: c.QueryParam("symbol"),
		Side:   broker.Side(c.QueryParam("side")),
		Status: broker.OrderStatus(c.QueryParam("status")),
	}

	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return BadRequestResponse(c, "from must be RFC 3339")
		}
		f.From = t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return BadRequestResponse(c, "to must be RFC 3339")
		}
		f.To = t
	}

	trades, err := h.engine.GetTradeHistory(f)
	if err != nil {
		return InternalServerErrorResponse(c, "failed to query trades", err)
	}
	return SuccessResponse(c, trades)
}

// ClosePosition handles POST /positions/:symbol/close.
func (h *Handler) ClosePosition(c echo.Context) error {
	result, err := h.engine.ClosePosition(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return orderErrorResponse(c, result, err)
	}
	return SuccessResponse(c, result)
}

// CloseAll handles POST /close-all.
func (h *Handler) CloseAll(c echo.Context) error {
	results, err := h.engine.CloseAll(c.Request().Context())
	if err != nil {
		return InternalServerErrorResponse(c, "failed to close positions", err)
	}
	return SuccessResponse(c, results)
}

// Deposit handles POST /deposits.
func (h *Handler) Deposit(c echo.Context) error {
	amount, ok := bindAmount(c)
	if !ok {
		return BadRequestResponse(c, "amount must be a decimal number")
	}
	cash, err := h.engine.Deposit(c.Request().Context(), amount)
	if err != nil {
		return orderErrorResponse(c, broker.OrderResult{}, err)
	}
	return SuccessResponse(c, map[string]string{"cash": cash.String()})
}

// Withdraw handles POST /withdrawals.
func (h *Handler) Withdraw(c echo.Context) error {
	amount, ok := bindAmount(c)
	if !ok {
		return BadRequestResponse(c, "amount must be a decimal number")
	}
	cash, err := h.engine.Withdraw(c.Request().Context(), amount)
	if err != nil {
		return orderErrorResponse(c, broker.OrderResult{}, err)
	}
	return SuccessResponse(c, map[string]string{"cash": cash.String()})
}

// Reset handles POST /reset.
func (h *Handler) Reset(c echo.Context) error {
	if err := h.engine.Reset(c.Request().Context()); err != nil {
		return InternalServerErrorResponse(c, "failed to reset account", err)
	}
	return SuccessResponse(c, map[string]string{"account_id": h.engine.AccountID()})
}

func bindAmount(c echo.Context) (decimal.Decimal, bool) {
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// orderErrorResponse maps the typed error taxonomy onto HTTP statuses so
// the UI can render a specific message.
func orderErrorResponse(c echo.Context, result broker.OrderResult, err error) error {
	var (
		validation  *broker.ValidationError
		funds       *broker.InsufficientFundsError
		position    *broker.InsufficientPositionError
		notFound    *broker.PositionNotFoundError
		persistence *broker.PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		return ErrorResponse(c, http.StatusBadRequest, "order rejected", err.Error())
	case errors.As(err, &funds), errors.As(err, &position):
		return c.JSON(http.StatusUnprocessableEntity, Response{
			Status:  "error",
			Message: "order rejected",
			Data:    result,
			Error:   err.Error(),
		})
	case errors.As(err, &notFound):
		return NotFoundResponse(c, err.Error())
	case errors.As(err, &persistence):
		return InternalServerErrorResponse(c, "storage failure", err)
	default:
		return InternalServerErrorResponse(c, "order failed", err)
	}
}
