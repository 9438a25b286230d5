// Package encoder converts selector ordinals into the shortest identifier
// that is legal over a user-supplied alphabet.
//
// CSS identifiers may not begin with a digit, "-" or "_", so the encoder
// treats the alphabet as two overlapping sets: the full set usable for any
// position, and the subset usable for the first position. Ordinals map onto
// names of increasing length, skipping every name whose first character
// would be illegal.
package encoder

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDegenerateAlphabet is reported when the sanitised alphabet cannot
// produce a single valid identifier.
var ErrDegenerateAlphabet = errors.New("alphabet has no valid leading characters")

// AlphabetSet is a sanitised character pool paired with the positions in it
// that may not start an identifier. Both halves are derived deterministically
// from the input string by NewAlphabetSet.
type AlphabetSet struct {
	Chars        []rune
	InvalidFirst []int
}

// Characters that may not lead a CSS identifier.
const invalidFirstCharacters = "0123456789-_"

// isInvalidCSSChar reports whether c can never appear in a selector name.
// The excluded ranges are null through comma, period, slash, colon through
// at sign, left square bracket through caret, backtick, and left brace
// through delete.
func isInvalidCSSChar(c rune) bool {
	switch {
	case c <= ',':
		return true
	case c == '.' || c == '/':
		return true
	case c >= ':' && c <= '@':
		return true
	case c >= '[' && c <= '^':
		return true
	case c == '`':
		return true
	case c >= '{' && c <= 0x7F:
		return true
	}
	return false
}

// NewAlphabetSet sanitises an arbitrary string into an alphabet. Characters
// that are invalid anywhere in a selector name are dropped, duplicates are
// removed keeping the first occurrence, and the positions of characters that
// cannot lead an identifier are recorded in ascending order.
func NewAlphabetSet(alphabet string) AlphabetSet {
	var set AlphabetSet
	seen := make(map[rune]bool)

	for _, c := range alphabet {
		if isInvalidCSSChar(c) || seen[c] {
			continue
		}
		seen[c] = true
		set.Chars = append(set.Chars, c)
	}

	for i, c := range set.Chars {
		if strings.ContainsRune(invalidFirstCharacters, c) {
			set.InvalidFirst = append(set.InvalidFirst, i)
		}
	}

	return set
}

// Validate reports whether the alphabet can encode at least one name.
func (a AlphabetSet) Validate() error {
	if len(a.Chars) == 0 {
		return fmt.Errorf("%w: empty after sanitising", ErrDegenerateAlphabet)
	}
	if len(a.InvalidFirst) == len(a.Chars) {
		return fmt.Errorf("%w: every character is a digit, dash or underscore", ErrDegenerateAlphabet)
	}
	return nil
}

// ToRadix encodes a zero-based ordinal as the shortest valid name over the
// alphabet. The mapping is injective for a fixed alphabet: consecutive
// ordinals walk all one-character names whose leading character is legal,
// then all two-character names, and so on.
//
// The alphabet must have been validated; calling with a degenerate alphabet
// is a programmer error.
func ToRadix(ordinal int, alphabet AlphabetSet) string {
	base := len(alphabet.Chars)
	subset := base - len(alphabet.InvalidFirst)
	if subset <= 0 {
		panic("encoder: degenerate alphabet")
	}

	// Work out how many places the encoded ordinal takes up. carry
	// accumulates the count of all shorter names.
	carry := 0
	exponent := 0
	floor := 1 // base ^ exponent
	for ordinal >= subset*floor+carry {
		carry += subset * floor
		exponent++
		floor *= base
	}

	// The leading digit, counted over the subset of legal first characters.
	// Shift it past any invalid positions that sit at or below it so the
	// full-base digit value lands on a legal character.
	modulo := (ordinal - carry) / floor
	offset := 0
	for i, position := range alphabet.InvalidFirst {
		if modulo+i < position {
			break
		}
		offset++
	}

	assigned := offset*floor + ordinal - carry

	// Convert the assigned index into the alphabet, right to left.
	out := make([]rune, exponent+1)
	for i := exponent; i >= 0; i-- {
		out[i] = alphabet.Chars[assigned%base]
		assigned /= base
	}

	return string(out)
}
