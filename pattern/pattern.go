// Package pattern contains the magic pixel pattern that test pages draw on screen and the
// hex codec used to pass it in query strings.
package pattern

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
)

const (
	// Pixels is the number of pixels in a magic pattern.
	Pixels = 4

	// BytesPerPixel is the number of color bytes stored for each pixel (RGB).
	BytesPerPixel = 3

	// Size is the length in bytes of a MagicPattern.
	Size = Pixels * BytesPerPixel

	// HexLength is the length of the hexadecimal form of a MagicPattern.
	HexLength = Size * 2
)

// ErrInvalidPatternFormat is returned (wrapped) by Decode for any string that is not exactly
// HexLength hex digits.
var ErrInvalidPatternFormat = errors.New("invalid magic pattern format")

// MagicPattern is the pixel signature a test page paints so that screen captures can detect it.
type MagicPattern [Size]byte

// Decode parses the hexadecimal form of a pattern, such as "8a36052d02c596dfa4c80711".
// Either every byte is decoded or an error is returned.
func Decode(s string) (MagicPattern, error) {
	var p MagicPattern
	if len(s) != HexLength {
		return p, fmt.Errorf("%w: expected %d hex digits, got %d characters", ErrInvalidPatternFormat,
			HexLength, len(s))
	}
	var decoded [Size]byte
	if _, err := hex.Decode(decoded[:], []byte(s)); err != nil {
		return p, fmt.Errorf("%w: %s", ErrInvalidPatternFormat, err)
	}
	p = decoded
	return p, nil
}

// Random returns a pattern of pseudo-random bytes. It is not suitable for anything that needs
// unpredictability; it only has to produce distinguishable pixels.
func Random() MagicPattern {
	var p MagicPattern
	for i := range p {
		p[i] = byte(rand.UintN(256))
	}
	return p
}

// String returns the lowercase hexadecimal form accepted by Decode.
func (p MagicPattern) String() string {
	return hex.EncodeToString(p[:])
}
