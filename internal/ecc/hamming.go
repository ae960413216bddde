package ecc

import (
	"fmt"

	"github.com/tuomas-lb/hamming74/internal/bitstream"
	"github.com/tuomas-lb/hamming74/internal/codecerr"
	"github.com/tuomas-lb/hamming74/internal/framing"
)

// ErrPartialByte indicates a decoded Hamming stream does not hold whole bytes
var ErrPartialByte = fmt.Errorf("%w: decoded bits do not form whole bytes", codecerr.ErrMalformedStream)

// Hamming74 encodes frames as a padded, byte-aligned Hamming(7,4) stream
type Hamming74 struct {
	// Workers is passed to the stream framer
	Workers int
}

// EncodeFrame encodes a frame into a Hamming(7,4) stream
func (h *Hamming74) EncodeFrame(frame []byte) ([]byte, error) {
	return framing.Framer{Workers: h.Workers}.Encode(bitstream.BytesToBits(frame))
}

// DecodeFrame decodes a Hamming(7,4) stream, correcting one bit per codeword
func (h *Hamming74) DecodeFrame(bits []byte) (*Result, error) {
	dataBits, report, err := framing.Framer{Workers: h.Workers}.DecodeReport(bits)
	if err != nil {
		return nil, err
	}
	if len(dataBits)%8 != 0 {
		return nil, fmt.Errorf("%w: got %d bits", ErrPartialByte, len(dataBits))
	}
	frame, err := bitstream.BitsToBytes(dataBits)
	if err != nil {
		return nil, fmt.Errorf("failed to pack decoded bits: %w", err)
	}
	return &Result{
		Frame:     frame,
		Blocks:    report.Blocks,
		Corrected: report.Corrected,
	}, nil
}
