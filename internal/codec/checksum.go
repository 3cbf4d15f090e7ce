package codec

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
)

const (
	DefaultBlockWidth = 8
	MaxBlockWidth     = 32
)

func ValidateBlockWidth(width int) error {
	if width < 1 || width > MaxBlockWidth {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidBlockWidth, width, MaxBlockWidth)
	}
	return nil
}

// CalculateChecksum sums the width-bit blocks of data with end-around carry and
// returns the one's complement of the folded sum. A short final block is zero padded on the right.
func CalculateChecksum(data bits.Sequence, width int) bits.Sequence {
	var total uint64
	for _, block := range data.Chunks(width) {
		total += block.PadRight(width).Uint()
	}

	mask := blockMask(width)
	return bits.FromUint(mask-foldCarry(total, width), width)
}

// VerifyChecksum sums every full width-bit block of data plus its checksum and
// passes when the folded total is all ones. A short trailing fragment is skipped, not padded.
func VerifyChecksum(dataWithChecksum bits.Sequence, width int) bool {
	var total uint64
	for _, block := range dataWithChecksum.Chunks(width) {
		if len(block) != width {
			continue
		}
		total += block.Uint()
	}

	return foldCarry(total, width) == blockMask(width)
}

func blockMask(width int) uint64 {
	return (1 << uint(width)) - 1
}

func foldCarry(total uint64, width int) uint64 {
	mask := blockMask(width)
	for total > mask {
		total = (total & mask) + (total >> uint(width))
	}
	return total
}
