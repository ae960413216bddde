package framing

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/tuomas-lb/hamming74/internal/bitstream"
	"github.com/tuomas-lb/hamming74/internal/codecerr"
	"github.com/tuomas-lb/hamming74/internal/hamming"
)

const (
	// MarkerBits is the size of the padding marker trailer
	MarkerBits = 4
	// padFieldBits is the width of the padding-length field inside the marker
	padFieldBits = 3
	// maxChunkPad is the largest padding a 4-bit chunk can need
	maxChunkPad = hamming.DataBits - 1
	// batchBlocks is the number of blocks handed to one worker at a time
	batchBlocks = 512
)

var (
	// ErrNoSentinel indicates the stream has no 1-bit, so no marker can be located
	ErrNoSentinel = fmt.Errorf("%w: no sentinel bit", codecerr.ErrMalformedStream)
	// ErrMarkerTruncated indicates fewer than 3 bits precede the sentinel
	ErrMarkerTruncated = fmt.Errorf("%w: padding marker truncated", codecerr.ErrMalformedStream)
	// ErrBlockAlignment indicates the codeword area is not a whole number of blocks
	ErrBlockAlignment = fmt.Errorf("%w: codeword area not a multiple of 7 bits", codecerr.ErrMalformedStream)
	// ErrPaddingOverflow indicates the marker declares more padding than is possible
	ErrPaddingOverflow = fmt.Errorf("%w: invalid padding length", codecerr.ErrMalformedStream)
)

// Report describes what a decode had to repair.
type Report struct {
	// Blocks is the number of codewords decoded
	Blocks int
	// Corrected holds the indices of the codewords that had a bit flipped
	Corrected []int
}

// Framer turns bit strings into byte-aligned Hamming(7,4) streams and back.
// The zero value works on a single goroutine.
type Framer struct {
	// Workers bounds the number of goroutines coding blocks; values below 2
	// keep all work on the calling goroutine
	Workers int
}

// EncodeStream encodes bits with a sequential Framer.
func EncodeStream(bits []byte) ([]byte, error) {
	return Framer{}.Encode(bits)
}

// DecodeStream decodes a stream with a sequential Framer.
func DecodeStream(stream []byte) ([]byte, error) {
	return Framer{}.Decode(stream)
}

// Encode pads bits to whole 4-bit chunks, encodes every chunk, and appends
// the padding marker followed by zeros up to the next byte boundary.
//
// Stream layout:
//
//	codewords (7 bits each) || pad (3 bits) || 1 || 0...0
func (f Framer) Encode(bits []byte) ([]byte, error) {
	if err := bitstream.Validate(bits); err != nil {
		return nil, err
	}

	pad := (hamming.DataBits - len(bits)%hamming.DataBits) % hamming.DataBits
	blocks := (len(bits) + pad) / hamming.DataBits

	codeLen := blocks * hamming.BlockBits
	total := codeLen + MarkerBits
	total += (8 - total%8) % 8

	// Zero-filled, so tail padding needs no explicit writes.
	stream := make([]byte, total)

	err := f.forEachBatch(blocks, func(lo, hi int) error {
		chunk := make([]byte, hamming.DataBits)
		for i := lo; i < hi; i++ {
			// Bits past the input stay zero; that is the chunk padding.
			clear(chunk)
			copy(chunk, bits[i*hamming.DataBits:min(len(bits), (i+1)*hamming.DataBits)])
			word, err := hamming.EncodeBlock(chunk)
			if err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
			copy(stream[i*hamming.BlockBits:], word)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	marker := stream[codeLen : codeLen+MarkerBits]
	for k := 0; k < padFieldBits; k++ {
		marker[k] = byte(pad>>(padFieldBits-1-k)) & 1
	}
	marker[padFieldBits] = 1

	return stream, nil
}

// Decode reverses Encode, correcting up to one bit error per codeword.
func (f Framer) Decode(stream []byte) ([]byte, error) {
	bits, _, err := f.DecodeReport(stream)
	return bits, err
}

// DecodeReport is Decode that also reports which codewords were corrected.
func (f Framer) DecodeReport(stream []byte) ([]byte, *Report, error) {
	if err := bitstream.Validate(stream); err != nil {
		return nil, nil, err
	}

	sentinel := -1
	for i := len(stream) - 1; i >= 0; i-- {
		if stream[i] == 1 {
			sentinel = i
			break
		}
	}
	if sentinel < 0 {
		return nil, nil, ErrNoSentinel
	}
	if sentinel < padFieldBits {
		return nil, nil, fmt.Errorf("%w: sentinel at index %d", ErrMarkerTruncated, sentinel)
	}

	pad := 0
	for _, b := range stream[sentinel-padFieldBits : sentinel] {
		pad = pad<<1 | int(b)
	}

	code := stream[:sentinel-padFieldBits]
	if len(code)%hamming.BlockBits != 0 {
		return nil, nil, fmt.Errorf("%w: %d bits", ErrBlockAlignment, len(code))
	}
	blocks := len(code) / hamming.BlockBits
	dataLen := blocks * hamming.DataBits
	if pad > maxChunkPad || pad > dataLen {
		return nil, nil, fmt.Errorf("%w: %d padding bits for %d data bits", ErrPaddingOverflow, pad, dataLen)
	}

	data := make([]byte, dataLen)
	flipped := make([]bool, blocks)
	err := f.forEachBatch(blocks, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			chunk, pos, err := hamming.CorrectBlock(code[i*hamming.BlockBits : (i+1)*hamming.BlockBits])
			if err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
			copy(data[i*hamming.DataBits:], chunk)
			flipped[i] = pos != 0
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	report := &Report{Blocks: blocks}
	for i, ok := range flipped {
		if ok {
			report.Corrected = append(report.Corrected, i)
		}
	}

	return data[:dataLen-pad], report, nil
}

// forEachBatch calls fn over [0, n) split into contiguous ranges. With more
// than one worker the ranges run concurrently; fn must only touch state
// owned by its range.
func (f Framer) forEachBatch(n int, fn func(lo, hi int) error) error {
	if f.Workers < 2 || n <= batchBlocks {
		return fn(0, n)
	}

	ctx := context.Background()
	sem := semaphore.NewWeighted(int64(f.Workers))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for lo := 0; lo < n; lo += batchBlocks {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			defer sem.Release(1)
			if err := fn(lo, hi); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(lo, min(n, lo+batchBlocks))
	}
	wg.Wait()
	return firstErr
}
