package ecc

import (
	"fmt"

	"github.com/tuomas-lb/hamming74/internal/bitstream"
)

// Repetition3 implements repetition-3 error correction coding
// Each data bit is encoded as 3 identical bits (b, b, b)
// Decoding uses majority vote on each triple
type Repetition3 struct{}

// EncodeFrame encodes a frame into a bitstream using repetition-3
func (r *Repetition3) EncodeFrame(frame []byte) ([]byte, error) {
	dataBits := bitstream.BytesToBits(frame)

	encodedBits := make([]byte, 0, len(dataBits)*3)
	for _, bit := range dataBits {
		encodedBits = append(encodedBits, bit, bit, bit)
	}

	return encodedBits, nil
}

// DecodeFrame decodes a bitstream using repetition-3 majority voting
func (r *Repetition3) DecodeFrame(bits []byte) (*Result, error) {
	tripleCount := len(bits) / 3
	if tripleCount == 0 {
		return nil, ErrInsufficientBits
	}
	if err := bitstream.Validate(bits); err != nil {
		return nil, err
	}

	result := &Result{Blocks: tripleCount}
	decodedBits := make([]byte, tripleCount)
	for i := 0; i < tripleCount; i++ {
		offset := i * 3
		ones := bits[offset] + bits[offset+1] + bits[offset+2]
		if ones >= 2 {
			decodedBits[i] = 1
		}
		if ones == 1 || ones == 2 {
			result.Corrected = append(result.Corrected, i)
		}
	}

	frame, err := bitstream.BitsToBytes(decodedBits)
	if err != nil {
		return nil, fmt.Errorf("failed to pack decoded bits: %w", err)
	}
	result.Frame = frame
	return result, nil
}
