package gpu

import (
	"bytes"
	"testing"

	"github.com/tyler-smith/go-bip39"
)

// property 2: short256 checksum nibble must agree with a known valid
// mnemonic's checksum; a one-bit change of the entropy is also hashed, and an
// unchanged nibble is logged rather than failed.
func TestShort256ChecksumNibble(t *testing.T) {
	var allAbandon [16]byte // entropy for "abandon"x11 + "about"
	nibble := Short256ChecksumNibble(allAbandon)

	mnemonic, err := bip39.NewMnemonic(allAbandon[:], bip39.English)
	if err != nil {
		t.Fatalf("NewMnemonic: %v", err)
	}
	if mnemonic != "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about" {
		t.Fatalf("unexpected mnemonic for zero entropy: %q", mnemonic)
	}

	// The checksum is the low 4 bits of the last word's 11-bit index.
	lastIdx, ok := bip39.GetWordIndex("about")
	if !ok {
		t.Fatal("GetWordIndex: \"about\" not in the word list")
	}
	if want := uint8(lastIdx & 0x0F); nibble != want {
		t.Fatalf("checksum nibble mismatch: want %d got %d", want, nibble)
	}

	other := allAbandon
	other[15] ^= 0x01
	if Short256ChecksumNibble(other) == nibble {
		// Not guaranteed to differ for every flipped bit: a 4-bit checksum
		// is unchanged for about 1 in 16 entropy changes.
		t.Logf("checksum nibble unchanged after flipping entropy's low bit (possible, not asserted as an error)")
	}
}

// property 3: PBKDF2-HMAC-SHA512 derivation must agree with the reference
// BIP-39 library's own seed derivation (NewSeed uses the same salt, empty
// passphrase, convention).
func TestPbkdf2HmacSha512SeedMatchesLibrary(t *testing.T) {
	mnemonic := "setup arrange elevator foam jelly word wire either other oblige cupboard almost"

	got := Pbkdf2HmacSha512Seed(mnemonic)
	want := bip39.NewSeed(mnemonic, "")

	if !bytes.Equal(got[:], want) {
		t.Fatalf("seed mismatch:\n got  %x\n want %x", got, want)
	}
}

func TestPbkdf2HmacSha512SeedIsDeterministic(t *testing.T) {
	mnemonic := "legal winner thank year wave sausage worth useful legal winner thank yellow"
	a := Pbkdf2HmacSha512Seed(mnemonic)
	b := Pbkdf2HmacSha512Seed(mnemonic)
	if a != b {
		t.Fatal("expected deterministic seed derivation")
	}
}

func TestBitcoinSeedMasterKeyIsDeterministicAndKeyed(t *testing.T) {
	var seed [64]byte
	for i := range seed {
		seed[i] = byte(i)
	}

	master := BitcoinSeedMasterKey(seed)
	again := BitcoinSeedMasterKey(seed)
	if master != again {
		t.Fatal("expected deterministic master key derivation")
	}

	var otherSeed [64]byte
	copy(otherSeed[:], seed[:])
	otherSeed[0] ^= 0xFF
	if BitcoinSeedMasterKey(otherSeed) == master {
		t.Fatal("expected different seeds to produce different master keys")
	}
}
