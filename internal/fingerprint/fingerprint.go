// Package fingerprint implements the bitset encoding shared by the search
// index builder and the query engine.
//
// Bit i lives in byte i/8 under mask 1<<(i%8). A fingerprint never ends in a
// zero byte; the empty fingerprint has no set bits.
package fingerprint

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrTrailingZero is returned when decoding a fingerprint whose last byte is 0
	ErrTrailingZero = errors.New("fingerprint has trailing zero byte")

	// ErrByteRange is returned when a decoded element does not fit in a byte
	ErrByteRange = errors.New("fingerprint element out of byte range")
)

// Fingerprint is a little-endian bitset over n-gram bit positions
type Fingerprint []byte

// FromPositions builds the minimal fingerprint with the given bits set.
// Negative positions are ignored.
func FromPositions(positions []int) Fingerprint {
	highest := -1
	for _, p := range positions {
		if p > highest {
			highest = p
		}
	}
	if highest < 0 {
		return Fingerprint{}
	}

	fp := make(Fingerprint, highest/8+1)
	for _, p := range positions {
		if p < 0 {
			continue
		}
		fp[p/8] |= 1 << (p % 8)
	}
	return fp
}

// Has reports whether bit pos is set
func (f Fingerprint) Has(pos int) bool {
	i := pos >> 3
	if pos < 0 || i >= len(f) {
		return false
	}
	return f[i]&(1<<(pos&7)) != 0
}

// Positions returns the set bit positions in ascending order
func (f Fingerprint) Positions() []int {
	positions := make([]int, 0, len(f)*2)
	for i, b := range f {
		for bit := 0; bit < 8; bit++ {
			if b&(1<<bit) != 0 {
				positions = append(positions, i*8+bit)
			}
		}
	}
	return positions
}

// MaxPosition returns the highest set bit, or -1 for an empty fingerprint
func (f Fingerprint) MaxPosition() int {
	if len(f) == 0 {
		return -1
	}
	last := f[len(f)-1]
	for bit := 7; bit >= 0; bit-- {
		if last&(1<<bit) != 0 {
			return (len(f)-1)*8 + bit
		}
	}
	return -1
}

// Validate checks the no-trailing-zero invariant
func (f Fingerprint) Validate() error {
	if len(f) > 0 && f[len(f)-1] == 0 {
		return ErrTrailingZero
	}
	return nil
}

// MarshalJSON encodes the fingerprint as an array of integers so it stays
// readable as a plain byte sequence by script consumers.
func (f Fingerprint) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(f))
	for i, b := range f {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON decodes an integer array produced by MarshalJSON
func (f *Fingerprint) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("decode fingerprint: %w", err)
	}

	fp := make(Fingerprint, len(ints))
	for i, v := range ints {
		if v < 0 || v > 0xFF {
			return fmt.Errorf("%w: element %d is %d", ErrByteRange, i, v)
		}
		fp[i] = byte(v)
	}
	if err := fp.Validate(); err != nil {
		return err
	}

	*f = fp
	return nil
}
