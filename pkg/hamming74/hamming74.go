// Package hamming74 encodes bit strings and byte frames with a Hamming(7,4)
// code that corrects any single-bit error per 7-bit codeword.
//
// An encoded stream is the concatenated codewords, a 4-bit padding marker
// (3 bits of chunk padding length followed by a sentinel 1) and zeros up to
// the next byte boundary. Two flipped bits in one codeword are silently
// miscorrected; Hamming(7,4) cannot detect them.
package hamming74

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tuomas-lb/hamming74/internal/bitstream"
	"github.com/tuomas-lb/hamming74/internal/codecerr"
	"github.com/tuomas-lb/hamming74/internal/ecc"
	"github.com/tuomas-lb/hamming74/internal/framing"
	"github.com/tuomas-lb/hamming74/internal/logging"
)

var (
	// ErrInvalidInput indicates a non-binary character, a bad block length,
	// or a bit string that cannot be packed into whole bytes
	ErrInvalidInput = codecerr.ErrInvalidInput
	// ErrMalformedStream indicates the input was not produced by the encoder
	// or was truncated
	ErrMalformedStream = codecerr.ErrMalformedStream
)

// ECCScheme selects how EncodeBytes protects a frame
type ECCScheme = ecc.ECCScheme

const (
	// ECCSchemeHamming74 uses the framed Hamming(7,4) stream
	ECCSchemeHamming74 = ecc.ECCSchemeHamming74
	// ECCSchemeRepetition3 repeats every bit three times
	ECCSchemeRepetition3 = ecc.ECCSchemeRepetition3
)

// Options configures a Codec
type Options struct {
	// Workers bounds the goroutines used to code blocks. Values below 2
	// keep the work on the calling goroutine.
	Workers int
	// Scheme is used by EncodeBytes and DecodeBytes
	Scheme ECCScheme
	// Logger receives codec events; nil disables logging
	Logger *zerolog.Logger
}

// DefaultOptions returns sequential Hamming(7,4) options without logging
func DefaultOptions() Options {
	return Options{
		Workers: 1,
		Scheme:  ECCSchemeHamming74,
	}
}

// Codec encodes and decodes streams. It holds no mutable state and is safe
// for concurrent use.
type Codec struct {
	framer framing.Framer
	scheme ecc.Scheme
	log    zerolog.Logger
}

// NewCodec creates a Codec from opts
func NewCodec(opts Options) (*Codec, error) {
	scheme, err := ecc.GetScheme(opts.Scheme, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to get ECC scheme: %w", err)
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Codec{
		framer: framing.Framer{Workers: opts.Workers},
		scheme: scheme,
		log:    log.With().Str(logging.Scheme, opts.Scheme.String()).Logger(),
	}, nil
}

var defaultCodec = func() *Codec {
	c, err := NewCodec(DefaultOptions())
	if err != nil {
		panic(err)
	}
	return c
}()

// EncodeStream encodes a string of '0'/'1' characters.
// The result length is a multiple of 8.
func (c *Codec) EncodeStream(bits string) (string, error) {
	raw, err := bitstream.Parse(bits)
	if err != nil {
		return "", err
	}
	stream, err := c.framer.Encode(raw)
	if err != nil {
		return "", err
	}
	c.log.Debug().Int(logging.Bits, len(raw)).Int(logging.Blocks, (len(raw)+3)/4).Msg("stream encoded")
	return bitstream.Format(stream), nil
}

// DecodeStream decodes a string produced by EncodeStream, correcting up to
// one flipped bit per codeword.
func (c *Codec) DecodeStream(encoded string) (string, error) {
	raw, err := bitstream.Parse(encoded)
	if err != nil {
		return "", err
	}
	bits, report, err := c.framer.DecodeReport(raw)
	if err != nil {
		return "", err
	}
	c.logDecode(report.Blocks, report.Corrected)
	return bitstream.Format(bits), nil
}

// EncodeBytes protects data with the configured scheme and packs the
// resulting bits into bytes.
func (c *Codec) EncodeBytes(data []byte) ([]byte, error) {
	bits, err := c.scheme.EncodeFrame(data)
	if err != nil {
		return nil, fmt.Errorf("failed to ECC encode: %w", err)
	}
	out, err := bitstream.BitsToBytes(bits)
	if err != nil {
		return nil, fmt.Errorf("failed to pack encoded bits: %w", err)
	}
	c.log.Debug().Int(logging.Bits, len(bits)).Msg("frame encoded")
	return out, nil
}

// DecodeBytes reverses EncodeBytes.
func (c *Codec) DecodeBytes(encoded []byte) ([]byte, error) {
	res, err := c.scheme.DecodeFrame(bitstream.BytesToBits(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to ECC decode: %w", err)
	}
	c.logDecode(res.Blocks, res.Corrected)
	return res.Frame, nil
}

func (c *Codec) logDecode(blocks int, corrected []int) {
	if len(corrected) > 0 {
		c.log.Info().Int(logging.Blocks, blocks).Ints(logging.Corrected, corrected).Msg("corrected bit errors")
		return
	}
	c.log.Debug().Int(logging.Blocks, blocks).Msg("stream decoded")
}

// EncodeStream encodes a string of '0'/'1' characters with the default codec.
func EncodeStream(bits string) (string, error) {
	return defaultCodec.EncodeStream(bits)
}

// DecodeStream decodes a string produced by EncodeStream with the default codec.
func DecodeStream(encoded string) (string, error) {
	return defaultCodec.DecodeStream(encoded)
}

// EncodeBytes encodes data as a byte-aligned Hamming(7,4) stream.
func EncodeBytes(data []byte) ([]byte, error) {
	return defaultCodec.EncodeBytes(data)
}

// DecodeBytes decodes bytes produced by EncodeBytes.
func DecodeBytes(encoded []byte) ([]byte, error) {
	return defaultCodec.DecodeBytes(encoded)
}

// BytesToBits renders data as '0'/'1' characters, 8 per byte, MSB first.
func BytesToBits(data []byte) string {
	return bitstream.Format(bitstream.BytesToBits(data))
}

// BitsToBytes packs a string of '0'/'1' characters into bytes.
// The length must be a multiple of 8.
func BitsToBytes(bits string) ([]byte, error) {
	raw, err := bitstream.Parse(bits)
	if err != nil {
		return nil, err
	}
	return bitstream.BitsToBytes(raw)
}
