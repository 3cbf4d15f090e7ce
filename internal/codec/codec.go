// Package codec holds the four error-control primitives: parity, CRC, Hamming(7,4) and a
// wraparound checksum. Every function is pure and works on bit sequences in their wire form.
package codec

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
)

var (
	ErrUnknownMethod     = errors.New("codec: unknown method")
	ErrInvalidParityMode = errors.New("codec: invalid parity mode")
	ErrInvalidGenerator  = errors.New("codec: invalid crc generator")
	ErrInvalidBlockWidth = errors.New("codec: invalid checksum block width")
	ErrHammingLength     = errors.New("codec: hamming block must be 7 bits")
)

type Method string

const (
	MethodParity   Method = "parity"
	MethodCRC      Method = "crc"
	MethodHamming  Method = "hamming"
	MethodChecksum Method = "checksum"
)

func Methods() []Method {
	return []Method{MethodParity, MethodCRC, MethodHamming, MethodChecksum}
}

func ParseMethod(raw string) (Method, error) {
	switch method := Method(raw); method {
	case MethodParity, MethodCRC, MethodHamming, MethodChecksum:
		return method, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, raw)
	}
}

// Options carries the method specific settings. Encoder and decoder must agree on them.
type Options struct {
	Parity     ParityMode
	Generator  bits.Sequence
	BlockWidth int
}

func DefaultOptions() Options {
	return Options{
		Parity:     ParityEven,
		Generator:  DefaultGenerator,
		BlockWidth: DefaultBlockWidth,
	}
}

func (that Options) Validate() error {
	if _, err := ParseParityMode(string(that.Parity)); err != nil {
		return err
	}

	if err := ValidateGenerator(that.Generator); err != nil {
		return err
	}

	return ValidateBlockWidth(that.BlockWidth)
}
