// Package bench benchmarks the hot paths of the filter/derivation pipeline's
// CPU-side twins: the checksum predicate every filter-pass candidate runs
// through, and the PBKDF2/HMAC/BIP-32/P2PKH chain every filter match's
// derivation pass runs through. These mirror what the OpenCL kernels do
// per-thread, so their allocation and latency profile is a proxy for kernel
// cost before a device is available to benchmark directly.
package bench

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil"
	"github.com/btcsuite/btcutil/base58"
	"github.com/btcsuite/btcutil/hdkeychain"

	"github.com/Asylian21/mnemonic-stencil-recover/internal/gpu"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/mnemonicmath"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/solver"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/stencil"
)

var derivationPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 0,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

func encodedStencil(tb testing.TB) stencil.Encoded {
	tb.Helper()
	tokens := []string{
		"abandon", "abandon", "abandon", "abandon",
		"_", "_", "_", "_",
		"abandon", "abandon", "abandon", "about",
	}
	parsed, err := stencil.Parse(tokens)
	if err != nil {
		tb.Fatal(err)
	}
	encoded, err := stencil.Encode(parsed)
	if err != nil {
		tb.Fatal(err)
	}
	return encoded
}

// BenchmarkFilterPredicate benchmarks one filter-pass candidate: entropy
// reassembly plus the SHA-256 checksum check, run solver.ChunkSize times in
// a real kernel dispatch.
func BenchmarkFilterPredicate(b *testing.B) {
	encoded := encodedStencil(b)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = solver.FilterPredicate(encoded.Words, encoded.Checksum, uint32(i))
	}
}

// BenchmarkDerivationChain benchmarks one derivation-pass match: PBKDF2-HMAC-
// SHA512 mnemonic-to-seed, the "Bitcoin seed" HMAC master key, BIP-32
// derivation along m/44'/0'/0'/0/0, and the resulting P2PKH hash160 — the
// derivation kernel's PBKDF2/HMAC steps followed by the BIP-32/hash160 steps
// internal/resultworker.Worker.checkMatch runs per match.
func BenchmarkDerivationChain(b *testing.B) {
	encoded := encodedStencil(b)
	entropy := mnemonicmath.WordsToEntropyBytes(encoded.Words)
	words, err := mnemonicmath.EntropyToWords(entropy, encoded.Checksum, testWordlist())
	if err != nil {
		b.Fatal(err)
	}
	mnemonic := ""
	for i, w := range words {
		if i > 0 {
			mnemonic += " "
		}
		mnemonic += w
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		seed := gpu.Pbkdf2HmacSha512Seed(mnemonic)
		master := gpu.BitcoinSeedMasterKey(seed)

		key := hdkeychain.NewExtendedKey(
			chaincfg.MainNetParams.HDPrivateKeyID[:],
			master[:32], master[32:], []byte{0, 0, 0, 0}, 0,
			hdkeychain.HardenedKeyStart, true,
		)
		for _, idx := range derivationPath {
			key, err = key.Derive(idx)
			if err != nil {
				b.Fatal(err)
			}
		}
		pubKey, err := key.ECPubKey()
		if err != nil {
			b.Fatal(err)
		}
		_ = btcutil.Hash160(pubKey.SerializeCompressed())
	}
}

// BenchmarkBase58CheckEncode benchmarks encoding a P2PKH hash160 into its
// address string, the last step of a derivation-pass hit.
func BenchmarkBase58CheckEncode(b *testing.B) {
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		b.Fatal(err)
	}
	hash160 := btcutil.Hash160(privateKey.PubKey().SerializeCompressed())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = base58.CheckEncode(hash160, 0x00)
	}
}

func testWordlist() []string {
	words := make([]string, 2048)
	// Only "abandon" (index 0) and "about" (index 3) are ever read back by
	// this benchmark's fixed stencil, but EntropyToWords indexes into the
	// full 2048-word table, so every slot must be populated.
	for i := range words {
		words[i] = "abandon"
	}
	words[3] = "about"
	return words
}
