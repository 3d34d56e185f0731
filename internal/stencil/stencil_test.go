package stencil

import (
	"strings"
	"testing"
)

func knownStencilTokens() []string {
	return []string{
		"abandon", "abandon", "abandon", "abandon",
		"_", "_", "_", "_",
		"abandon", "abandon", "abandon", "about",
	}
}

func TestParseValid(t *testing.T) {
	s, err := Parse(knownStencilTokens())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i := 4; i < 8; i++ {
		if s[i] != Wildcard {
			t.Fatalf("position %d: expected wildcard, got %q", i, s[i])
		}
	}
}

func TestParseWrongLength(t *testing.T) {
	if _, err := Parse(knownStencilTokens()[:11]); err == nil {
		t.Fatal("expected error for short token list")
	}
}

func TestParseWildcardInKnownPosition(t *testing.T) {
	tokens := knownStencilTokens()
	tokens[0] = "_"
	if _, err := Parse(tokens); err == nil {
		t.Fatal("expected error for wildcard at a known-word position")
	}
}

func TestParseKnownWordInWildcardPosition(t *testing.T) {
	tokens := knownStencilTokens()
	tokens[4] = "abandon"
	if _, err := Parse(tokens); err == nil {
		t.Fatal("expected error for a filled-in wildcard position")
	}
}

func TestParseUnknownWord(t *testing.T) {
	tokens := knownStencilTokens()
	tokens[0] = "notaword"
	if _, err := Parse(tokens); err == nil {
		t.Fatal("expected error for unknown word")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s, err := Parse(knownStencilTokens())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	enc, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(enc.Words, enc.Checksum)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := strings.ReplaceAll(s.String(), "_", "abandon")
	if decoded != want {
		t.Fatalf("round trip mismatch: want %q got %q", want, decoded)
	}
}

func TestStringRendersTokensInOrder(t *testing.T) {
	s, err := Parse(knownStencilTokens())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.String() != strings.Join(knownStencilTokens(), " ") {
		t.Fatalf("String() mismatch: got %q", s.String())
	}
}
