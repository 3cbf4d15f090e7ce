package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-relay/internal/usecase"
)

type noteRequest struct {
	Note string `json:"note"`
}

type pendingResponse struct {
	usecase.State
	Operator string `json:"operator"`
}

func (that *Server) pending(c echo.Context) error {
	return c.JSON(http.StatusOK, pendingResponse{State: that.relay.Snapshot(), Operator: operatorFrom(c)})
}

func (that *Server) resolveMove(c echo.Context) error {
	log := that.logger.With("method", "resolveMove", "operator", operatorFrom(c))

	action, err := usecase.ParseMoveAction(c.Param("action"))
	if err != nil {
		return that.fail(c, err)
	}

	event, err := that.relay.ResolveMove(c.Request().Context(), action)
	if err != nil {
		log.Warn("move not forwarded", "action", action, "error", err)
		return that.fail(c, err)
	}

	return c.JSON(http.StatusOK, event)
}

func (that *Server) resolveChat(c echo.Context) error {
	log := that.logger.With("method", "resolveChat", "operator", operatorFrom(c))

	action, err := usecase.ParseChatAction(c.Param("action"))
	if err != nil {
		return that.fail(c, err)
	}

	event, err := that.relay.ResolveChat(c.Request().Context(), action)
	if err != nil {
		log.Warn("chat not forwarded", "action", action, "error", err)
		return that.fail(c, err)
	}

	return c.JSON(http.StatusOK, event)
}

func (that *Server) restart(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return that.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
	}

	if err := that.relay.Restart(c.Request().Context(), req.Note); err != nil {
		return that.fail(c, err)
	}

	return c.JSON(http.StatusOK, that.relay.Snapshot().Game)
}

func (that *Server) end(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return that.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
	}

	that.relay.End(c.Request().Context(), req.Note)

	return c.JSON(http.StatusOK, that.relay.Snapshot().Game)
}

func (that *Server) listExchanges(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil {
			return that.fail(c, fmt.Errorf("%w: limit %q", errBadRequest, raw))
		}
	}

	exchanges, err := that.exchanges.List(c.Request().Context(), limit)
	if err != nil {
		return that.fail(c, err)
	}

	return c.JSON(http.StatusOK, exchanges)
}

func (that *Server) getGame(c echo.Context) error {
	game, err := that.games.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return that.fail(c, err)
	}

	return c.JSON(http.StatusOK, game)
}

func (that *Server) latestGame(c echo.Context) error {
	game, err := that.games.Latest(c.Request().Context())
	if err != nil {
		return that.fail(c, err)
	}

	return c.JSON(http.StatusOK, game)
}
