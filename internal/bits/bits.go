package bits

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	Zero = '0'
	One  = '1'
)

var ErrInvalidSymbol = errors.New("bits: invalid symbol")

// Sequence is an ordered run of bits in its wire form: a string of '0' and '1' characters.
// Length is significant and is never trimmed implicitly.
type Sequence string

// Parse validates s and returns it as a Sequence.
func Parse(s string) (Sequence, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != Zero && s[i] != One {
			return "", fmt.Errorf("%w %q at position %d", ErrInvalidSymbol, s[i], i)
		}
	}

	return Sequence(s), nil
}

// Zeros returns n zero bits.
func Zeros(n int) Sequence {
	if n <= 0 {
		return ""
	}
	return Sequence(strings.Repeat(string(Zero), n))
}

// FromUint renders n as an unsigned binary number of exactly width bits.
// Bits above width are dropped.
func FromUint(n uint64, width int) Sequence {
	if width <= 0 {
		return ""
	}

	if width < 64 {
		n &= (1 << uint(width)) - 1
	}

	return Sequence(strconv.FormatUint(n, 2)).Fit(width)
}

func (s Sequence) Len() int {
	return len(s)
}

func (s Sequence) String() string {
	return string(s)
}

// Valid reports whether every symbol is '0' or '1'.
func (s Sequence) Valid() bool {
	_, err := Parse(string(s))
	return err == nil
}

// Bit returns the bit at i as 0 or 1. Anything other than '1' reads as 0.
func (s Sequence) Bit(i int) byte {
	if s[i] == One {
		return 1
	}
	return 0
}

// Ones counts the symbols equal to '1'.
func (s Sequence) Ones() int {
	return strings.Count(string(s), string(One))
}

// Uint interprets the sequence as an unsigned big-endian number.
func (s Sequence) Uint() uint64 {
	var n uint64
	for i := 0; i < len(s); i++ {
		n = n<<1 | uint64(s.Bit(i))
	}
	return n
}

// Fit left-pads with zeros up to width and keeps the rightmost width bits.
func (s Sequence) Fit(width int) Sequence {
	if len(s) < width {
		return Zeros(width-len(s)) + s
	}
	return s[len(s)-width:]
}

// PadRight appends zeros until the sequence is width bits long.
func (s Sequence) PadRight(width int) Sequence {
	if len(s) >= width {
		return s
	}
	return s + Zeros(width-len(s))
}

// Chunks splits the sequence into consecutive blocks of width bits.
// The last block is shorter when the length is not a multiple of width.
func (s Sequence) Chunks(width int) []Sequence {
	if width <= 0 || len(s) == 0 {
		return nil
	}

	chunks := make([]Sequence, 0, (len(s)+width-1)/width)
	for i := 0; i < len(s); i += width {
		end := min(i+width, len(s))
		chunks = append(chunks, s[i:end])
	}

	return chunks
}

// Flip returns a copy with the bit at position inverted. Out of range positions are a no-op.
func (s Sequence) Flip(position int) Sequence {
	if position < 0 || position >= len(s) {
		return s
	}

	buf := []byte(s)
	if buf[position] == Zero {
		buf[position] = One
	} else {
		buf[position] = Zero
	}

	return Sequence(buf)
}
