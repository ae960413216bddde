// Package hamming implements the Hamming(7,4) block code.
//
// Positions are 1-based: parity bits sit at the power-of-two positions
// 1, 2 and 4, data bits at 3, 5, 6 and 7. The parity bit at position p
// covers every position whose index has bit p set.
package hamming

import (
	"fmt"

	"github.com/tuomas-lb/hamming74/internal/codecerr"
)

const (
	// DataBits is the number of data bits carried by one codeword
	DataBits = 4
	// BlockBits is the length of one codeword
	BlockBits = 7
)

// parityPositions are the 1-based positions holding parity bits.
var parityPositions = [...]int{1, 2, 4}

var (
	// ErrBlockLength indicates a data chunk or codeword of the wrong size
	ErrBlockLength = fmt.Errorf("%w: wrong block length", codecerr.ErrInvalidInput)
	// ErrNotBinary indicates a bit value other than 0 or 1
	ErrNotBinary = fmt.Errorf("%w: bit must be 0 or 1", codecerr.ErrInvalidInput)
)

func isParityPosition(pos int) bool {
	return pos&(pos-1) == 0
}

func checkBits(bits []byte) error {
	for i, b := range bits {
		if b > 1 {
			return fmt.Errorf("%w: value %d at index %d", ErrNotBinary, b, i)
		}
	}
	return nil
}

// coverParity XORs every bit of word whose position shares a bit with p.
// word is 0-indexed, positions are 1-based.
func coverParity(word []byte, p int) byte {
	var parity byte
	for j := p; j <= BlockBits; j++ {
		if j&p != 0 {
			parity ^= word[j-1]
		}
	}
	return parity
}

// EncodeBlock builds a 7-bit codeword from 4 data bits.
func EncodeBlock(data []byte) ([]byte, error) {
	if len(data) != DataBits {
		return nil, fmt.Errorf("%w: got %d data bits, want %d", ErrBlockLength, len(data), DataBits)
	}
	if err := checkBits(data); err != nil {
		return nil, err
	}

	word := make([]byte, BlockBits)
	j := 0
	for pos := 1; pos <= BlockBits; pos++ {
		if isParityPosition(pos) {
			continue
		}
		word[pos-1] = data[j]
		j++
	}

	// Parity slots are still zero here, so they don't affect their own sums.
	for _, p := range parityPositions {
		word[p-1] = coverParity(word, p)
	}

	return word, nil
}

// Syndrome returns the 1-based position of the bit the parity checks blame,
// or 0 when all checks pass.
func Syndrome(word []byte) (int, error) {
	if len(word) != BlockBits {
		return 0, fmt.Errorf("%w: got %d codeword bits, want %d", ErrBlockLength, len(word), BlockBits)
	}
	if err := checkBits(word); err != nil {
		return 0, err
	}

	errorPos := 0
	for _, p := range parityPositions {
		if coverParity(word, p) != 0 {
			errorPos += p
		}
	}
	return errorPos, nil
}

// CorrectBlock flips the bit named by the syndrome, if any, and returns the
// 4 data bits together with the flipped position (0 when nothing was flipped).
//
// Two flipped bits yield the syndrome of a third position, which then gets
// flipped as well. Hamming(7,4) cannot tell the two cases apart.
func CorrectBlock(word []byte) ([]byte, int, error) {
	errorPos, err := Syndrome(word)
	if err != nil {
		return nil, 0, err
	}

	fixed := word
	if errorPos != 0 {
		fixed = make([]byte, BlockBits)
		copy(fixed, word)
		fixed[errorPos-1] ^= 1
	}

	data := make([]byte, 0, DataBits)
	for pos := 1; pos <= BlockBits; pos++ {
		if !isParityPosition(pos) {
			data = append(data, fixed[pos-1])
		}
	}
	return data, errorPos, nil
}

// DecodeBlock corrects at most one bit error in a 7-bit codeword and returns
// its 4 data bits.
func DecodeBlock(word []byte) ([]byte, error) {
	data, _, err := CorrectBlock(word)
	return data, err
}
