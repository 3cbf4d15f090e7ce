package websocket

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/message"
	"github.com/rocketscienceinc/tictactoe-relay/internal/noise"
	"github.com/rocketscienceinc/tictactoe-relay/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-relay/internal/usecase"
)

type discardStore struct{}

func (discardStore) CreateOrUpdate(context.Context, *entity.Game) error { return nil }
func (discardStore) Save(context.Context, *entity.Exchange) error       { return nil }

func newTestServer(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	relay := usecase.NewRelay(logger, discardStore{}, discardStore{}, message.Default(), noise.NewWithSeed(1))

	server := New(logger, relay)
	relay.Subscribe(server)

	ts := httptest.NewServer(server.Handler(ctx))
	t.Cleanup(ts.Close)

	return ts.URL
}

func TestFrames(t *testing.T) {
	t.Run("Unmasked frames round trip", func(t *testing.T) {
		for _, size := range []int{0, 125, 126, 70000} {
			// Given: a text frame of the given size
			payload := bytes.Repeat([]byte("a"), size)

			var buf bytes.Buffer
			writer := bufio.NewWriter(&buf)

			// When: it is written and read back
			require.NoError(t, writeFrame(writer, frame{isFin: true, opCode: opText, length: uint64(size), payload: payload}))
			got, err := readFrame(bufio.NewReader(&buf))

			// Then: nothing is lost
			require.NoError(t, err)
			assert.True(t, got.isFin)
			assert.Equal(t, byte(opText), got.opCode)
			assert.Equal(t, uint64(size), got.length)
			assert.Len(t, got.payload, size)
		}
	})

	t.Run("Masked client frame is unmasked", func(t *testing.T) {
		// Given: "Hello" masked with 37 fa 21 3d (RFC 6455 section 5.7)
		raw := []byte{0x81, 0x85, 0x37, 0xfa, 0x21, 0x3d, 0x7f, 0x9f, 0x4d, 0x51, 0x58}

		// When: the frame is read
		got, err := readFrame(bufio.NewReader(bytes.NewReader(raw)))

		// Then: the payload is the plain text
		require.NoError(t, err)
		assert.Equal(t, "Hello", string(got.payload))
	})

	t.Run("Truncated frame fails", func(t *testing.T) {
		_, err := readFrame(bufio.NewReader(bytes.NewReader([]byte{0x81, 0x05, 'H'})))

		require.Error(t, err)
	})
}

// clientFrame builds a masked frame with a payload shorter than 126 bytes.
func clientFrame(fin bool, opCode byte, payload string) []byte {
	mask := []byte{0x11, 0x22, 0x33, 0x44}

	first := opCode
	if fin {
		first |= 0x80
	}

	raw := []byte{first, 0x80 | byte(len(payload))}
	raw = append(raw, mask...)
	for i := range len(payload) {
		raw = append(raw, payload[i]^mask[i%4])
	}

	return raw
}

func readerConnection(frames ...[]byte) *connection {
	var in bytes.Buffer
	for _, f := range frames {
		in.Write(f)
	}

	return &connection{bufrw: bufio.NewReadWriter(bufio.NewReader(&in), bufio.NewWriter(io.Discard))}
}

func TestConnection_ReadMessage(t *testing.T) {
	t.Run("Ping between fragments keeps the message whole", func(t *testing.T) {
		// Given: a text message split in two with a ping in between
		peer := readerConnection(
			clientFrame(false, opText, `{"type":"`),
			clientFrame(true, opPing, "hb"),
			clientFrame(true, opContinuation, `surrender"}`),
		)

		// When: messages are read
		opCode, body, err := peer.readMessage()

		// Then: the ping comes first
		require.NoError(t, err)
		assert.Equal(t, byte(opPing), opCode)
		assert.Equal(t, "hb", string(body))

		// And: then the whole text message
		opCode, body, err = peer.readMessage()
		require.NoError(t, err)
		assert.Equal(t, byte(opText), opCode)
		assert.Equal(t, `{"type":"surrender"}`, string(body))
	})

	t.Run("Unmasked client frame is refused", func(t *testing.T) {
		peer := readerConnection([]byte{0x81, 0x02, 'h', 'i'})

		_, _, err := peer.readMessage()

		require.ErrorIs(t, err, ErrUnmaskedFrame)
		require.ErrorIs(t, err, errProtocol)
	})

	t.Run("Continuation without a message is refused", func(t *testing.T) {
		peer := readerConnection(clientFrame(true, opContinuation, "tail"))

		_, _, err := peer.readMessage()

		require.ErrorIs(t, err, ErrUnexpectedContinuation)
	})

	t.Run("New text frame inside a fragmented message is refused", func(t *testing.T) {
		peer := readerConnection(
			clientFrame(false, opText, "first"),
			clientFrame(true, opText, "second"),
		)

		_, _, err := peer.readMessage()

		require.ErrorIs(t, err, ErrInterleavedDataFrame)
	})

	t.Run("Fragmented control frame is refused", func(t *testing.T) {
		peer := readerConnection(clientFrame(false, opPing, "hb"))

		_, _, err := peer.readMessage()

		require.ErrorIs(t, err, ErrFragmentedControl)
	})
}

func TestServer_Handshake(t *testing.T) {
	t.Run("Plain HTTP request is refused", func(t *testing.T) {
		url := newTestServer(t)

		resp, err := http.Get(url + "/ws")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Peers are assigned and answered", func(t *testing.T) {
		// Given: a relay socket server
		wsURL := "ws" + strings.TrimPrefix(newTestServer(t), "http") + "/ws"

		// When: a peer connects
		conn, _, err := gorilla.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

		// Then: it is seated as X
		var assign protocol.Assign
		require.NoError(t, conn.ReadJSON(&assign))
		assert.Equal(t, protocol.Assign{Type: protocol.TypeAssign, Symbol: entity.PlayerX}, assign)

		// When: it sends garbage and an unknown type
		require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte("not json")))
		require.NoError(t, conn.WriteJSON(protocol.Envelope{Type: "dance"}))

		// Then: each gets an error back and the connection stays open
		var malformed, unknown protocol.Error
		require.NoError(t, conn.ReadJSON(&malformed))
		require.NoError(t, conn.ReadJSON(&unknown))
		assert.Equal(t, protocol.TypeError, malformed.Type)
		assert.Contains(t, unknown.Error, `unknown message type "dance"`)

		// When: it moves before the opponent arrived
		require.NoError(t, conn.WriteJSON(protocol.Move{Type: protocol.TypeMove, Position: 0, Symbol: entity.PlayerX}))

		// Then: the move is refused
		var refused protocol.Error
		require.NoError(t, conn.ReadJSON(&refused))
		assert.Contains(t, refused.Error, "no active round")

		// And: ping is answered with pong
		pong := make(chan string, 1)
		conn.SetPongHandler(func(data string) error {
			pong <- data
			return nil
		})
		require.NoError(t, conn.WriteControl(gorilla.PingMessage, []byte("hb"), time.Now().Add(time.Second)))

		go func() { _, _, _ = conn.ReadMessage() }()

		select {
		case data := <-pong:
			assert.Equal(t, "hb", data)
		case <-time.After(5 * time.Second):
			t.Fatal("no pong received")
		}
	})
}
