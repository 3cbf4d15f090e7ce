package websocket

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	opContinuation = 0x0
	opText         = 0x1
	opBinary       = 0x2
	opClose        = 0x8
	opPing         = 0x9
	opPong         = 0xA

	maxPayloadSize = 1 << 20
	writeTimeout   = 5 * time.Second
)

var (
	ErrPayloadTooLarge = errors.New("websocket: payload too large")

	// errProtocol marks frames a client must never send. The connection is closed with 1002.
	errProtocol               = errors.New("websocket: protocol error")
	ErrUnmaskedFrame          = fmt.Errorf("%w: client frame is not masked", errProtocol)
	ErrFragmentedControl      = fmt.Errorf("%w: control frame is fragmented", errProtocol)
	ErrUnexpectedContinuation = fmt.Errorf("%w: continuation without a message", errProtocol)
	ErrInterleavedDataFrame   = fmt.Errorf("%w: data frame inside a fragmented message", errProtocol)
)

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	masked  bool
	length  uint64
	payload []byte
}

func (that *Server) send(conn *connection, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return conn.write(frame{
		isFin:   true,
		opCode:  opText,
		length:  uint64(len(body)),
		payload: body,
	})
}

func (that *connection) write(f frame) error {
	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	_ = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	return writeFrame(that.bufrw.Writer, f)
}

// readMessage returns the next complete data message or control frame. Control frames may arrive
// between the fragments of a data message, so the partial message is kept on the connection.
func (that *connection) readMessage() (byte, []byte, error) {
	for {
		f, err := readFrame(that.bufrw.Reader)
		if err != nil {
			return 0, nil, err
		}

		if !f.masked {
			return 0, nil, ErrUnmaskedFrame
		}

		switch f.opCode {
		case opClose, opPing, opPong:
			if !f.isFin {
				return 0, nil, ErrFragmentedControl
			}
			return f.opCode, f.payload, nil
		case opContinuation:
			if that.fragmentOp == 0 {
				return 0, nil, ErrUnexpectedContinuation
			}
			that.fragment = append(that.fragment, f.payload...)
		default:
			if that.fragmentOp != 0 {
				return 0, nil, ErrInterleavedDataFrame
			}
			that.fragmentOp, that.fragment = f.opCode, f.payload
		}

		if len(that.fragment) > maxPayloadSize {
			return 0, nil, ErrPayloadTooLarge
		}

		if f.isFin {
			opCode, message := that.fragmentOp, that.fragment
			that.fragmentOp, that.fragment = 0, nil

			return opCode, message, nil
		}
	}
}

func writeFrame(writer *bufio.Writer, frameData frame) error {
	buf := make([]byte, 2, 10+len(frameData.payload))
	buf[0] |= frameData.opCode

	if frameData.isFin {
		buf[0] |= 0x80
	}

	switch {
	case frameData.length < 126:
		buf[1] |= byte(frameData.length)
	case frameData.length < 1<<16:
		buf[1] |= 126
		buf = binary.BigEndian.AppendUint16(buf, uint16(frameData.length))
	default:
		buf[1] |= 127
		buf = binary.BigEndian.AppendUint64(buf, frameData.length)
	}

	buf = append(buf, frameData.payload...)

	if _, err := writer.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

func readFrame(reader *bufio.Reader) (frame, error) {
	header, err := readHeader(reader)
	if err != nil {
		return frame{}, err
	}

	maskBit := header[1] >> 7

	size, err := readPayloadLength(reader, header[1]&0x7f)
	if err != nil {
		return frame{}, err
	}

	if size > maxPayloadSize {
		return frame{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, size)
	}

	mask, err := readMask(reader, maskBit)
	if err != nil {
		return frame{}, err
	}

	payload, err := readData(reader, size, mask)
	if err != nil {
		return frame{}, err
	}

	return frame{
		isFin:   header[0]>>7 == 1,
		opCode:  header[0] & 0x0f,
		masked:  mask != nil,
		length:  size,
		payload: payload,
	}, nil
}

func readHeader(reader *bufio.Reader) ([]byte, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	return header, nil
}

func readPayloadLength(reader *bufio.Reader, payloadLen byte) (uint64, error) {
	switch payloadLen {
	case 126:
		length := make([]byte, 2)
		if _, err := io.ReadFull(reader, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return uint64(binary.BigEndian.Uint16(length)), nil
	case 127:
		length := make([]byte, 8)
		if _, err := io.ReadFull(reader, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return binary.BigEndian.Uint64(length), nil
	default:
		return uint64(payloadLen), nil
	}
}

func readMask(reader *bufio.Reader, maskBit byte) ([]byte, error) {
	if maskBit == 0 {
		return nil, nil
	}

	mask := make([]byte, 4)
	if _, err := io.ReadFull(reader, mask); err != nil {
		return nil, fmt.Errorf("failed to read mask: %w", err)
	}

	return mask, nil
}

func readData(reader *bufio.Reader, size uint64, mask []byte) ([]byte, error) {
	payload := make([]byte, size)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	if mask != nil {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	return payload, nil
}
