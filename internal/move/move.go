// Package move protects a board position with three stacked layers: Hamming(7,4), then a CRC over the
// Hamming word, then an even parity bit over both.
package move

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
)

const (
	MinPosition = 0
	MaxPosition = 8

	positionBits = codec.HammingDataBits
	hammingEnd   = codec.HammingCodeBits
	crcEnd       = hammingEnd + 3

	// FrameBits is the length of the full move frame: hamming(7) crc(3) parity(1).
	FrameBits = crcEnd + 1
)

var ErrInvalidPosition = errors.New("move: position out of range")

type Encoding struct {
	Position int           `json:"position"`
	Symbol   string        `json:"symbol"`
	Binary   bits.Sequence `json:"binary"`
	Hamming  bits.Sequence `json:"hamming"`
	CRC      bits.Sequence `json:"crc"`
	Parity   bits.Sequence `json:"parity"`
	FullData bits.Sequence `json:"full_data"`
}

// Decoding reports what survived the channel. Position is nil when the frame was too short.
// Symbol is copied from the caller, it is never carried in the bits.
type Decoding struct {
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors"`
	Corrections []string `json:"corrections"`
	Position    *int     `json:"position"`
	Symbol      string   `json:"symbol"`
}

// Outcome summarizes a decode as clean, corrected or detected.
func (that Decoding) Outcome() string {
	switch {
	case len(that.Corrections) > 0:
		return "corrected"
	case len(that.Errors) > 0:
		return "detected"
	default:
		return "clean"
	}
}

// Encode builds the 11-bit frame for position. The symbol travels alongside the frame.
func Encode(position int, symbol string) (Encoding, error) {
	if position < MinPosition || position > MaxPosition {
		return Encoding{}, fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}

	binary := bits.FromUint(uint64(position), positionBits)
	hamming := codec.EncodeHamming(binary)
	crc := codec.CalculateCRC(hamming, codec.DefaultGenerator)
	parity := codec.CalculateParity(hamming+crc, codec.ParityEven)

	return Encoding{
		Position: position,
		Symbol:   symbol,
		Binary:   binary,
		Hamming:  hamming,
		CRC:      crc,
		Parity:   parity,
		FullData: hamming + crc + parity,
	}, nil
}

// Decode checks parity and CRC, then Hamming-corrects the position independently of both.
// A failed check is forgiven when the Hamming layer corrected a bit.
func Decode(fullData bits.Sequence, expectedSymbol string) Decoding {
	result := Decoding{
		Valid:       true,
		Errors:      []string{},
		Corrections: []string{},
		Symbol:      expectedSymbol,
	}

	if len(fullData) < FrameBits {
		result.Valid = false
		result.Errors = append(result.Errors, "Data too short")
		return result
	}

	hamming := fullData[:hammingEnd]
	frame := fullData[:FrameBits]

	if !codec.CheckParity(frame, codec.ParityEven) {
		result.Errors = append(result.Errors, "Parity check failed")
	}

	if !codec.VerifyCRC(fullData[:crcEnd], codec.DefaultGenerator) {
		result.Errors = append(result.Errors, "CRC check failed")
	}

	// hamming is always one full block after the length guard
	decoded, _ := codec.DecodeHamming(hamming)

	if decoded.Corrected {
		result.Corrections = append(result.Corrections,
			fmt.Sprintf("Hamming corrected bit at position %d", decoded.ErrorPosition))
	}

	position := int(decoded.Data.Uint())
	if position > MaxPosition {
		position %= MaxPosition + 1
	}
	result.Position = &position

	if len(result.Errors) > 0 && !decoded.Corrected {
		result.Valid = false
	}

	return result
}
