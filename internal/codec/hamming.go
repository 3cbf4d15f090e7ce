package codec

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
)

const (
	HammingDataBits = 4
	HammingCodeBits = 7
)

// data bit positions (0-indexed) inside a code word.
var hammingDataPositions = [HammingDataBits]int{2, 4, 5, 6}

// HammingDecoding is the outcome of decoding one 7-bit block.
type HammingDecoding struct {
	Data bits.Sequence
	// ErrorPosition is the 1-indexed bit the syndrome pointed at, 0 when clean.
	ErrorPosition int
	Corrected     bool
}

// EncodeHamming maps 4 data bits d0..d3 to the code word [p1 p2 d0 p4 d1 d2 d3].
// Input of any other length is left-padded with zeros and cut to its rightmost 4 bits.
func EncodeHamming(data bits.Sequence) bits.Sequence {
	data = data.Fit(HammingDataBits)

	d0, d1, d2, d3 := data.Bit(0), data.Bit(1), data.Bit(2), data.Bit(3)

	p1 := d0 ^ d1 ^ d3
	p2 := d0 ^ d2 ^ d3
	p4 := d1 ^ d2 ^ d3

	word := [HammingCodeBits]byte{p1, p2, d0, p4, d1, d2, d3}

	buf := make([]byte, HammingCodeBits)
	for i, b := range word {
		buf[i] = bits.Zero + b
	}

	return bits.Sequence(buf)
}

// DecodeHamming corrects a single flipped bit using the syndrome and extracts the data bits.
// Two flipped bits alias onto a third position and get "corrected" there; that is a property of the code.
func DecodeHamming(code bits.Sequence) (HammingDecoding, error) {
	if len(code) != HammingCodeBits {
		return HammingDecoding{}, fmt.Errorf("%w: got %d bits", ErrHammingLength, len(code))
	}

	c1 := code.Bit(0) ^ code.Bit(2) ^ code.Bit(4) ^ code.Bit(6)
	c2 := code.Bit(1) ^ code.Bit(2) ^ code.Bit(5) ^ code.Bit(6)
	c4 := code.Bit(3) ^ code.Bit(4) ^ code.Bit(5) ^ code.Bit(6)

	result := HammingDecoding{
		ErrorPosition: int(c4)*4 + int(c2)*2 + int(c1),
	}

	if result.ErrorPosition != 0 {
		code = code.Flip(result.ErrorPosition - 1)
		result.Corrected = true
	}

	data := make([]byte, 0, HammingDataBits)
	for _, pos := range hammingDataPositions {
		data = append(data, bits.Zero+code.Bit(pos))
	}
	result.Data = bits.Sequence(data)

	return result, nil
}
