package codec

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
)

type ParityMode string

const (
	ParityEven ParityMode = "even"
	ParityOdd  ParityMode = "odd"
)

func ParseParityMode(raw string) (ParityMode, error) {
	switch mode := ParityMode(raw); mode {
	case ParityEven, ParityOdd:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidParityMode, raw)
	}
}

// CalculateParity returns the bit that gives data plus that bit an even (or odd) count of ones.
func CalculateParity(data bits.Sequence, mode ParityMode) bits.Sequence {
	oddOnes := data.Ones()%2 != 0

	if mode == ParityOdd {
		oddOnes = !oddOnes
	}

	if oddOnes {
		return "1"
	}
	return "0"
}

// CheckParity recomputes parity over the whole received block, parity bit included.
// The block passes when that recomputation yields "0".
func CheckParity(dataWithParity bits.Sequence, mode ParityMode) bool {
	return CalculateParity(dataWithParity, mode) == "0"
}
