package websocket

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/move"
	"github.com/rocketscienceinc/tictactoe-relay/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-relay/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-relay/internal/usecase"
)

const (
	closeNormal        = 1000
	closeProtocolError = 1002
)

type relay interface {
	Join(ctx context.Context, sessionID string) (entity.Player, error)
	Ready(ctx context.Context, mark string) error
	Leave(ctx context.Context, mark string)

	SubmitMove(ctx context.Context, mark string, position int, encoded move.Encoding) error
	SubmitChat(ctx context.Context, mark, text string, method codec.Method, encoded bits.Sequence) error
	Surrender(ctx context.Context, mark string) (usecase.RoundOver, error)
	VoteRestart(ctx context.Context, mark string) (bool, error)
}

type connection struct {
	sessionID string
	mark      string

	conn       net.Conn
	bufrw      *bufio.ReadWriter
	writeMutex sync.Mutex

	// partial data message, owned by the reading goroutine
	fragmentOp byte
	fragment   []byte
}

// Server is the peer facing side of the relay. It also observes the relay and pushes its events to the peers.
type Server struct {
	logger *slog.Logger
	relay  relay

	handlers map[string]func(ctx context.Context, conn *connection, body []byte) error

	connections      map[string]*connection
	connectionsMutex sync.RWMutex
}

func New(logger *slog.Logger, relay relay) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		relay:  relay,

		handlers:    make(map[string]func(context.Context, *connection, []byte) error),
		connections: make(map[string]*connection),
	}

	server.handlers[protocol.TypeMove] = server.handleMove
	server.handlers[protocol.TypeChat] = server.handleChat
	server.handlers[protocol.TypeSurrender] = server.handleSurrender
	server.handlers[protocol.TypeVoteRestart] = server.handleVoteRestart

	return server
}

// Handler serves the upgrade endpoint on /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops accepting peers when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
		that.closeAll()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - seats the peer, upgrades the connection and serves it until it closes.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	if !strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		http.Error(writer, "missing Sec-WebSocket-Key", http.StatusBadRequest)
		return
	}

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking")
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID := pkg.GenerateNewSessionID()

	player, err := that.relay.Join(ctx, sessionID)
	if err != nil {
		log.Warn("peer refused", "error", err)

		status := http.StatusInternalServerError
		if errors.Is(err, apperror.ErrRelayFull) {
			status = http.StatusServiceUnavailable
		}
		http.Error(writer, err.Error(), status)

		return
	}

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		that.relay.Leave(ctx, player.Mark)
		return
	}

	defer conn.Close()

	// the http server deadlines stay on a hijacked conn
	_ = conn.SetDeadline(time.Time{})

	response := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + pkg.GenerateAcceptKey(key) + "\r\n\r\n"

	if _, err = bufrw.WriteString(response); err == nil {
		err = bufrw.Flush()
	}
	if err != nil {
		log.Error("failed to complete handshake", "error", err)
		that.relay.Leave(ctx, player.Mark)
		return
	}

	peer := &connection{sessionID: sessionID, mark: player.Mark, conn: conn, bufrw: bufrw}
	log = log.With("symbol", peer.mark)

	that.register(peer)
	defer func() {
		that.unregister(peer)
		that.relay.Leave(ctx, peer.mark)
	}()

	log.Info("WebSocket connection established")

	if err = that.send(peer, protocol.Assign{Type: protocol.TypeAssign, Symbol: peer.mark}); err != nil {
		log.Error("failed to send assignment", "error", err)
		return
	}

	if err = that.relay.Ready(ctx, peer.mark); err != nil {
		log.Error("failed to mark peer ready", "error", err)
		return
	}

	if err = that.handleMessages(ctx, peer); err != nil {
		log.Info("connection closed", "reason", err)
	}
}

// handleMessages - processes messages from the peer until it disconnects.
func (that *Server) handleMessages(ctx context.Context, peer *connection) error {
	log := that.logger.With("method", "handleMessages", "symbol", peer.mark)

	for {
		opCode, body, err := peer.readMessage()
		if errors.Is(err, errProtocol) {
			_ = peer.write(frame{isFin: true, opCode: opClose, length: 2, payload: closePayload(closeProtocolError)})
		}
		if err != nil {
			return err
		}

		switch opCode {
		case opClose:
			_ = peer.write(frame{isFin: true, opCode: opClose, length: 2, payload: closePayload(closeNormal)})
			return nil
		case opPing:
			if err = peer.write(frame{isFin: true, opCode: opPong, length: uint64(len(body)), payload: body}); err != nil {
				return err
			}
			continue
		case opPong:
			continue
		}

		kind, err := protocol.PeekType(body)
		if err != nil {
			log.Warn("malformed message", "error", err)
			that.sendError(peer, err)
			continue
		}

		handler, ok := that.handlers[kind]
		if !ok {
			log.Warn("unknown message type", "type", kind)
			that.sendError(peer, fmt.Errorf("unknown message type %q", kind))
			continue
		}

		if err = handler(ctx, peer, body); err != nil {
			log.Warn("message rejected", "type", kind, "error", err)
			that.sendError(peer, err)
		}
	}
}

func (that *Server) sendError(peer *connection, cause error) {
	if err := that.send(peer, protocol.NewError(cause)); err != nil {
		that.logger.Error("failed to send error", "symbol", peer.mark, "error", err)
	}
}

func (that *Server) register(peer *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	that.connections[peer.mark] = peer
}

func (that *Server) unregister(peer *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if that.connections[peer.mark] == peer {
		delete(that.connections, peer.mark)
	}
}

func (that *Server) closeAll() {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	for _, peer := range that.connections {
		_ = peer.conn.Close()
	}
}

// broadcast sends message to every connected peer.
func (that *Server) broadcast(message any) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	for _, peer := range that.connections {
		if err := that.send(peer, message); err != nil {
			that.logger.Error("failed to broadcast", "symbol", peer.mark, "error", err)
		}
	}
}

// sendTo sends message to the peer holding mark, if it is connected.
func (that *Server) sendTo(mark string, message any) {
	that.connectionsMutex.RLock()
	peer, ok := that.connections[mark]
	that.connectionsMutex.RUnlock()

	if !ok {
		that.logger.Warn("peer not connected", "symbol", mark)
		return
	}

	if err := that.send(peer, message); err != nil {
		that.logger.Error("failed to send", "symbol", mark, "error", err)
	}
}

func closePayload(code uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, code)
}
