package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/message"
	"github.com/rocketscienceinc/tictactoe-relay/internal/move"
	"github.com/rocketscienceinc/tictactoe-relay/internal/noise"
	"github.com/rocketscienceinc/tictactoe-relay/internal/observability"
	"github.com/rocketscienceinc/tictactoe-relay/internal/repository"
	"github.com/rocketscienceinc/tictactoe-relay/internal/usecase"
)

type operatorRelay interface {
	Snapshot() usecase.State
	ResolveMove(ctx context.Context, action usecase.MoveAction) (usecase.MoveForwarded, error)
	ResolveChat(ctx context.Context, action usecase.ChatAction) (usecase.ChatForwarded, error)
	Restart(ctx context.Context, note string) error
	End(ctx context.Context, note string)
}

type gameStore interface {
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Latest(ctx context.Context) (*entity.Game, error)
}

type journal interface {
	List(ctx context.Context, limit int) ([]entity.Exchange, error)
}

type authService interface {
	ParseToken(token string) (string, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the operator side of the relay plus a playground for the codecs.
type Server struct {
	logger *slog.Logger
	echo   *echo.Echo

	relay     operatorRelay
	games     gameStore
	exchanges journal
	auth      authService
	pipeline  *message.Pipeline
	injector  *noise.Injector
}

func NewServer(
	logger *slog.Logger,
	relay operatorRelay,
	games gameStore,
	exchanges journal,
	auth authService,
	pipeline *message.Pipeline,
	injector *noise.Injector,
) *Server {
	server := &Server{
		logger:    logger.With("component", "rest"),
		echo:      echo.New(),
		relay:     relay,
		games:     games,
		exchanges: exchanges,
		auth:      auth,
		pipeline:  pipeline,
		injector:  injector,
	}

	server.echo.HideBanner = true
	server.echo.HidePort = true

	server.echo.Use(middleware.Recover())
	server.echo.Use(server.requestLogger())

	server.routes()

	return server
}

func (that *Server) routes() {
	observability.RegisterMetrics()

	that.echo.GET("/ping", pingHandler)
	that.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	playground := that.echo.Group("/codec")
	playground.POST("/messages/encode", that.encodeMessage)
	playground.POST("/messages/decode", that.decodeMessage)
	playground.POST("/moves/encode", that.encodeMove)
	playground.POST("/moves/decode", that.decodeMove)
	playground.POST("/noise", that.corrupt)

	operator := that.echo.Group("/operator", that.operatorAuth())
	operator.GET("/pending", that.pending)
	operator.POST("/move/:action", that.resolveMove)
	operator.POST("/chat/:action", that.resolveChat)
	operator.POST("/game/restart", that.restart)
	operator.POST("/game/end", that.end)
	operator.GET("/exchanges", that.listExchanges)
	operator.GET("/games/latest", that.latestGame)
	operator.GET("/games/:id", that.getGame)
}

func (that *Server) Handler() http.Handler {
	return that.echo
}

// Start - starts the operator API and shuts it down when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := that.echo.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down", "error", err)
		}
	}()

	if err := that.echo.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			that.logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)

			return nil
		},
	})
}

// fail maps err onto a status code and writes it as JSON.
func (that *Server) fail(c echo.Context, err error) error {
	return c.JSON(statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNoPendingMove),
		errors.Is(err, apperror.ErrNoPendingChat),
		errors.Is(err, apperror.ErrGameNotActive),
		errors.Is(err, apperror.ErrGameInProgress),
		errors.Is(err, apperror.ErrWaitingForPlayers),
		errors.Is(err, apperror.ErrBoardFull),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrGameFinished):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrUnknownAction),
		errors.Is(err, codec.ErrUnknownMethod),
		errors.Is(err, bits.ErrInvalidSymbol),
		errors.Is(err, move.ErrInvalidPosition),
		errors.Is(err, noise.ErrUnknownCorruption),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
