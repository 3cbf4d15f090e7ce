package codec

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
)

// DefaultGenerator is x^3 + x + 1, leaving a 3-bit remainder.
const DefaultGenerator bits.Sequence = "1011"

// ValidateGenerator checks that g is a binary pattern of at least two bits starting with 1.
func ValidateGenerator(g bits.Sequence) error {
	if len(g) < 2 {
		return fmt.Errorf("%w: %q is shorter than 2 bits", ErrInvalidGenerator, g)
	}

	if !g.Valid() {
		return fmt.Errorf("%w: %q is not binary", ErrInvalidGenerator, g)
	}

	if g[0] != bits.One {
		return fmt.Errorf("%w: %q must start with 1", ErrInvalidGenerator, g)
	}

	return nil
}

// CRCWidth is the remainder length produced by generator g.
func CRCWidth(g bits.Sequence) int {
	return max(len(g)-1, 0)
}

// CalculateCRC returns the remainder of data·x^(len(g)-1) divided by g.
func CalculateCRC(data, generator bits.Sequence) bits.Sequence {
	width := CRCWidth(generator)
	if width == 0 {
		return ""
	}

	buf := []byte(data + bits.Zeros(width))
	for i := 0; i < len(data); i++ {
		if buf[i] == bits.One {
			xorAt(buf, i, generator)
		}
	}

	return bits.Sequence(buf[len(buf)-width:])
}

// VerifyCRC divides the received data plus remainder by g and reports whether nothing is left over.
func VerifyCRC(dataWithCRC, generator bits.Sequence) bool {
	width := CRCWidth(generator)
	if width == 0 || len(dataWithCRC) < width {
		return false
	}

	buf := []byte(dataWithCRC)
	for i := 0; i <= len(buf)-len(generator); i++ {
		if buf[i] == bits.One {
			xorAt(buf, i, generator)
		}
	}

	return bits.Sequence(buf[len(buf)-width:]) == bits.Zeros(width)
}

func xorAt(buf []byte, offset int, generator bits.Sequence) {
	for j := 0; j < len(generator); j++ {
		if (buf[offset+j] == bits.One) != (generator[j] == bits.One) {
			buf[offset+j] = bits.One
		} else {
			buf[offset+j] = bits.Zero
		}
	}
}
