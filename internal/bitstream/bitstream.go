package bitstream

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/icza/bitio"

	"github.com/tuomas-lb/hamming74/internal/codecerr"
)

var (
	// ErrNotBinary indicates a value or character other than 0 or 1
	ErrNotBinary = fmt.Errorf("%w: not a binary digit", codecerr.ErrInvalidInput)
	// ErrUnaligned indicates a bit count that is not a multiple of 8
	ErrUnaligned = fmt.Errorf("%w: bit length must be a multiple of 8", codecerr.ErrInvalidInput)
)

// Parse converts a string of '0' and '1' characters into bits.
func Parse(s string) ([]byte, error) {
	bits := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			bits[i] = 1
		default:
			return nil, fmt.Errorf("%w: %q at index %d", ErrNotBinary, s[i], i)
		}
	}
	return bits, nil
}

// Format renders bits as a string of '0' and '1' characters.
// Bits are assumed valid; anything non-zero is rendered as '1'.
func Format(bits []byte) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, b := range bits {
		if b == 0 {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

// Validate reports the first value in bits that is not 0 or 1.
func Validate(bits []byte) error {
	for i, b := range bits {
		if b > 1 {
			return fmt.Errorf("%w: value %d at index %d", ErrNotBinary, b, i)
		}
	}
	return nil
}

// BytesToBits converts a byte slice to bits, 8 per byte, MSB first.
func BytesToBits(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	bits := make([]byte, len(data)*8)
	for i, b := range data {
		offset := i * 8
		for j := 0; j < 8; j++ {
			bits[offset+j] = (b >> (7 - j)) & 1
		}
	}
	return bits
}

// BitsToBytes packs bits into bytes, MSB first.
// The bit count must be a multiple of 8.
func BitsToBytes(bits []byte) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: got %d bits", ErrUnaligned, len(bits))
	}
	if err := Validate(bits); err != nil {
		return nil, err
	}
	if len(bits) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(bits) / 8)
	w := bitio.NewWriter(&buf)
	for _, b := range bits {
		if err := w.WriteBool(b == 1); err != nil {
			return nil, fmt.Errorf("failed to pack bits: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush bits: %w", err)
	}
	return buf.Bytes(), nil
}
