// Package channel simulates a noisy link by flipping bits of a stream.
package channel

import (
	"fmt"
	"math/rand"

	"github.com/tuomas-lb/hamming74/internal/bitstream"
	"github.com/tuomas-lb/hamming74/internal/codecerr"
)

var (
	// ErrIndexOutOfRange indicates a flip position outside the stream
	ErrIndexOutOfRange = fmt.Errorf("%w: bit index out of range", codecerr.ErrInvalidInput)
	// ErrInvalidBER indicates a bit error rate outside [0, 1]
	ErrInvalidBER = fmt.Errorf("%w: bit error rate must be within [0, 1]", codecerr.ErrInvalidInput)
)

// Flip returns a copy of bits with the bits at the given 0-based indices inverted.
// An index listed twice is flipped twice.
func Flip(bits []byte, indices ...int) ([]byte, error) {
	if err := bitstream.Validate(bits); err != nil {
		return nil, err
	}
	out := make([]byte, len(bits))
	copy(out, bits)
	for _, i := range indices {
		if i < 0 || i >= len(out) {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(out))
		}
		out[i] ^= 1
	}
	return out, nil
}

// Result describes one pass of a bitstream through the channel
type Result struct {
	Bits      []byte
	Positions []int
	// ActualBER is the fraction of bits that were flipped
	ActualBER float64
}

// Noise flips bits independently with a fixed probability.
// A Noise is not safe for concurrent use.
type Noise struct {
	rng *rand.Rand
}

// NewNoise returns a Noise seeded for reproducible runs
func NewNoise(seed int64) *Noise {
	return &Noise{rng: rand.New(rand.NewSource(seed))}
}

// Apply returns a copy of bits where each bit was flipped with probability ber
func (n *Noise) Apply(bits []byte, ber float64) (*Result, error) {
	if ber < 0 || ber > 1 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidBER, ber)
	}
	if err := bitstream.Validate(bits); err != nil {
		return nil, err
	}

	res := &Result{Bits: make([]byte, len(bits))}
	copy(res.Bits, bits)
	for i := range res.Bits {
		if n.rng.Float64() < ber {
			res.Bits[i] ^= 1
			res.Positions = append(res.Positions, i)
		}
	}
	if len(bits) > 0 {
		res.ActualBER = float64(len(res.Positions)) / float64(len(bits))
	}
	return res, nil
}
