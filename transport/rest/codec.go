package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
	"github.com/rocketscienceinc/tictactoe-relay/internal/move"
	"github.com/rocketscienceinc/tictactoe-relay/internal/noise"
	"github.com/rocketscienceinc/tictactoe-relay/internal/observability"
)

var errBadRequest = errors.New("bad request")

type encodeMessageRequest struct {
	Text   string `json:"text"`
	Method string `json:"method"`
}

type decodeMessageRequest struct {
	Encoded string `json:"encoded"`
	Method  string `json:"method"`
}

type encodeMoveRequest struct {
	Position *int   `json:"position"`
	Symbol   string `json:"symbol"`
}

type decodeMoveRequest struct {
	FullData string `json:"full_data"`
	Symbol   string `json:"symbol"`
}

type noiseRequest struct {
	Data       string `json:"data"`
	Corruption string `json:"corruption"`
}

type noiseResponse struct {
	Original  bits.Sequence `json:"original"`
	Corrupted bits.Sequence `json:"corrupted"`
}

func (that *Server) encodeMessage(c echo.Context) error {
	var req encodeMessageRequest
	if err := c.Bind(&req); err != nil {
		return that.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
	}

	method, err := codec.ParseMethod(req.Method)
	if err != nil {
		return that.fail(c, err)
	}

	encoded, err := that.pipeline.Encode(req.Text, method)
	if err != nil {
		return that.fail(c, err)
	}

	return c.JSON(http.StatusOK, encoded)
}

func (that *Server) decodeMessage(c echo.Context) error {
	var req decodeMessageRequest
	if err := c.Bind(&req); err != nil {
		return that.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
	}

	method, err := codec.ParseMethod(req.Method)
	if err != nil {
		return that.fail(c, err)
	}

	encoded, err := bits.Parse(req.Encoded)
	if err != nil {
		return that.fail(c, err)
	}

	decoded, err := that.pipeline.Decode(encoded, method)
	if err != nil {
		return that.fail(c, err)
	}

	observability.RecordDecode(string(method), decoded.Outcome())

	return c.JSON(http.StatusOK, decoded)
}

func (that *Server) encodeMove(c echo.Context) error {
	var req encodeMoveRequest
	if err := c.Bind(&req); err != nil {
		return that.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
	}

	if req.Position == nil {
		return that.fail(c, fmt.Errorf("%w: position is required", errBadRequest))
	}

	encoded, err := move.Encode(*req.Position, req.Symbol)
	if err != nil {
		return that.fail(c, err)
	}

	return c.JSON(http.StatusOK, encoded)
}

func (that *Server) decodeMove(c echo.Context) error {
	var req decodeMoveRequest
	if err := c.Bind(&req); err != nil {
		return that.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
	}

	fullData, err := bits.Parse(req.FullData)
	if err != nil {
		return that.fail(c, err)
	}

	decoded := move.Decode(fullData, req.Symbol)
	observability.RecordDecode("move", decoded.Outcome())

	return c.JSON(http.StatusOK, decoded)
}

func (that *Server) corrupt(c echo.Context) error {
	var req noiseRequest
	if err := c.Bind(&req); err != nil {
		return that.fail(c, fmt.Errorf("%w: %w", errBadRequest, err))
	}

	data, err := bits.Parse(req.Data)
	if err != nil {
		return that.fail(c, err)
	}

	corruption, err := noise.ParseCorruption(req.Corruption)
	if err != nil {
		return that.fail(c, err)
	}

	corrupted, err := that.injector.Corrupt(data, corruption)
	if err != nil {
		return that.fail(c, err)
	}

	return c.JSON(http.StatusOK, noiseResponse{Original: data, Corrupted: corrupted})
}
