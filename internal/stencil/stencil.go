// Package stencil implements the Stencil Encoder (component A): translating
// a 12-word stencil — four known words, four wildcards, four known words —
// into the packed 128-bit entropy and nominal checksum nibble the filter and
// derivation GPU passes operate on.
package stencil

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"github.com/Asylian21/mnemonic-stencil-recover/internal/mnemonicmath"
)

// Wildcard is the stencil token marking a position as unknown.
const Wildcard = "_"

// paddingWord fills wildcard positions before BIP-39 bit decoding. Any valid
// BIP-39 word works here since the resulting checksum is never validated —
// only its bit pattern is read back out, and the wildcard bits get
// overwritten per-candidate by the filter kernel before the checksum is
// recomputed in hardware.
const paddingWord = "abandon"

// wildcardStart/wildcardEnd are the fixed stencil positions (4..8) that must
// be wildcards; see spec Non-goals (no other wildcard layout is supported).
const (
	wildcardStart = 4
	wildcardEnd   = 8
)

// Stencil is a validated 12-token pattern: positions 0-3 and 8-11 are known
// BIP-39 words, positions 4-7 are Wildcard.
type Stencil [mnemonicmath.WordCount]string

// Parse validates tokens against the BIP-39 English wordlist and the fixed
// wildcard layout, returning a Stencil ready for Encode.
func Parse(tokens []string) (Stencil, error) {
	var s Stencil
	if len(tokens) != mnemonicmath.WordCount {
		return s, fmt.Errorf("stencil: expected %d tokens, got %d", mnemonicmath.WordCount, len(tokens))
	}

	for i, tok := range tokens {
		isWildcardPos := i >= wildcardStart && i < wildcardEnd
		switch {
		case isWildcardPos && tok != Wildcard:
			return s, fmt.Errorf("stencil: position %d must be %q, got %q", i, Wildcard, tok)
		case !isWildcardPos && tok == Wildcard:
			return s, fmt.Errorf("stencil: position %d must be a known word, got wildcard", i)
		case !isWildcardPos:
			if _, ok := bip39.GetWordIndex(tok); !ok {
				return s, fmt.Errorf("stencil: unknown BIP-39 word %q at position %d", tok, i)
			}
		}
		s[i] = tok
	}

	return s, nil
}

// String renders the stencil back into space-separated tokens.
func (s Stencil) String() string {
	return strings.Join(s[:], " ")
}

// Encoded is the output of the Stencil Encoder: packed 128-bit entropy (as
// four BIP-39-bit-numbered 32-bit words) and the nominal checksum nibble.
type Encoded struct {
	Words    [4]uint32
	Checksum uint8
}

// Encode substitutes every wildcard with paddingWord, parses the resulting
// 12-word string without checksum validation, and extracts the packed
// entropy words plus nominal checksum (spec §4.A).
func Encode(s Stencil) (Encoded, error) {
	wordlist := bip39.GetWordList()
	indexOf := make(map[string]int, len(wordlist))
	for i, w := range wordlist {
		indexOf[w] = i
	}

	var words [mnemonicmath.WordCount]string
	for i, tok := range s {
		if tok == Wildcard {
			words[i] = paddingWord
		} else {
			words[i] = tok
		}
	}

	entropy, checksum, err := mnemonicmath.WordsToEntropy(words, indexOf)
	if err != nil {
		// Every non-wildcard token was already validated by Parse, and
		// paddingWord is a real BIP-39 word, so this can only happen if
		// Encode is called on a Stencil built by hand rather than Parse.
		return Encoded{}, fmt.Errorf("stencil: encode: %w", err)
	}

	return Encoded{
		Words:    mnemonicmath.EntropyWords(entropy),
		Checksum: checksum,
	}, nil
}

// Decode reconstructs the full 12-word mnemonic text from entropy words and
// a checksum nibble (used to verify the round-trip property, and by the
// result worker to render `Mnemonic = "..."` in the output file).
func Decode(words [4]uint32, checksum uint8) (string, error) {
	entropy := mnemonicmath.WordsToEntropyBytes(words)
	decoded, err := mnemonicmath.EntropyToWords(entropy, checksum, bip39.GetWordList())
	if err != nil {
		return "", fmt.Errorf("stencil: decode: %w", err)
	}
	return strings.Join(decoded[:], " "), nil
}
