package ecc

import (
	"errors"
	"fmt"
)

// Scheme represents an error correction code scheme
type Scheme interface {
	// EncodeFrame encodes frame bytes into a bitstream of 0/1 values
	EncodeFrame(frame []byte) ([]byte, error)
	// DecodeFrame decodes a bitstream back into frame bytes
	// and reports how many code blocks needed a correction
	DecodeFrame(bits []byte) (*Result, error)
}

// Result holds a decoded frame together with correction statistics
type Result struct {
	Frame []byte
	// Blocks is the number of code blocks consumed
	Blocks int
	// Corrected holds the indices of code blocks that were repaired
	Corrected []int
}

// ECCScheme is an enum for different ECC schemes
type ECCScheme uint8

const (
	// ECCSchemeRepetition3 uses repetition-3 encoding (each bit repeated 3 times)
	ECCSchemeRepetition3 ECCScheme = 1
	// ECCSchemeHamming74 uses the framed Hamming(7,4) stream
	ECCSchemeHamming74 ECCScheme = 2
)

var (
	// ErrUnsupportedScheme indicates the ECC scheme is not supported
	ErrUnsupportedScheme = errors.New("unsupported ECC scheme")
	// ErrInsufficientBits indicates there are not enough bits to decode
	ErrInsufficientBits = errors.New("insufficient bits for decoding")
)

// String returns the name used for the scheme in logs
func (s ECCScheme) String() string {
	switch s {
	case ECCSchemeRepetition3:
		return "rep3"
	case ECCSchemeHamming74:
		return "hamming74"
	default:
		return fmt.Sprintf("ECCScheme(%d)", uint8(s))
	}
}

// GetScheme returns a Scheme implementation for the given ECCScheme.
// workers is only used by schemes that can code blocks concurrently.
func GetScheme(scheme ECCScheme, workers int) (Scheme, error) {
	switch scheme {
	case ECCSchemeRepetition3:
		return &Repetition3{}, nil
	case ECCSchemeHamming74:
		return &Hamming74{Workers: workers}, nil
	default:
		return nil, ErrUnsupportedScheme
	}
}
