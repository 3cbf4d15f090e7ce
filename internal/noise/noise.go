// Package noise corrupts already encoded bit sequences. Nothing here runs on its own:
// every call is an explicit operator or benchmark action.
package noise

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
)

type Corruption string

const (
	CorruptionFlipBit   Corruption = "flip_bit"
	CorruptionFlipMulti Corruption = "flip_multi"

	// MultiFlips is how many independent flips flip_multi draws.
	MultiFlips = 3
)

var (
	ErrUnknownCorruption = errors.New("noise: unknown corruption")
	ErrInvalidRate       = errors.New("noise: bit error rate must be within [0, 1]")
)

func ParseCorruption(raw string) (Corruption, error) {
	switch c := Corruption(raw); c {
	case CorruptionFlipBit, CorruptionFlipMulti:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCorruption, raw)
	}
}

// FlipBit inverts the bit at position. Out of range positions leave data unchanged.
func FlipBit(data bits.Sequence, position int) bits.Sequence {
	return data.Flip(position)
}

// Injector draws corruption positions from its own random source. It is safe for concurrent use.
type Injector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New(src rand.Source) *Injector {
	return &Injector{rng: rand.New(src)}
}

func NewWithSeed(seed int64) *Injector {
	return New(rand.NewSource(seed))
}

// NewInjector seeds from the clock when seed is 0, otherwise from seed.
func NewInjector(seed int64) *Injector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewWithSeed(seed)
}

// Intn returns a uniform int in [0, n).
func (that *Injector) Intn(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rng.Intn(n)
}

// DeleteRandomBit drops one bit at a uniform position. Sequences of one bit or less become empty.
func (that *Injector) DeleteRandomBit(data bits.Sequence) bits.Sequence {
	if len(data) <= 1 {
		return ""
	}

	i := that.Intn(len(data))
	return data[:i] + data[i+1:]
}

// FlipRandomBits applies count flips at independently drawn positions.
// Positions may repeat, so two flips can cancel each other.
func (that *Injector) FlipRandomBits(data bits.Sequence, count int) (bits.Sequence, []int) {
	if len(data) == 0 || count <= 0 {
		return data, nil
	}

	positions := make([]int, 0, count)
	for range count {
		p := that.Intn(len(data))
		positions = append(positions, p)
		data = data.Flip(p)
	}

	return data, positions
}

// Corrupt applies one flip for flip_bit, or min(3, len) flips for flip_multi.
func (that *Injector) Corrupt(data bits.Sequence, corruption Corruption) (bits.Sequence, error) {
	switch corruption {
	case CorruptionFlipBit:
		out, _ := that.FlipRandomBits(data, 1)
		return out, nil
	case CorruptionFlipMulti:
		out, _ := that.FlipRandomBits(data, min(MultiFlips, len(data)))
		return out, nil
	default:
		return data, fmt.Errorf("%w: %q", ErrUnknownCorruption, corruption)
	}
}

// ApplyRate flips every bit independently with probability rate and returns the flipped positions.
func (that *Injector) ApplyRate(data bits.Sequence, rate float64) (bits.Sequence, []int, error) {
	if rate < 0 || rate > 1 {
		return data, nil, fmt.Errorf("%w: %.3f", ErrInvalidRate, rate)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	var positions []int
	for i := 0; i < len(data); i++ {
		if that.rng.Float64() < rate {
			data = data.Flip(i)
			positions = append(positions, i)
		}
	}

	return data, positions, nil
}
