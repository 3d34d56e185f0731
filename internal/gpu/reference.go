// Package gpu hosts the OpenCL device backend (filter/derivation/reset
// passes, //go:build opencl) and, in this file, the CPU-native reference
// implementations of the same primitives the kernels compute in hardware.
// The reference functions exist so the filter predicate, PBKDF2 derivation,
// and BIP-32 seed expansion have a tag-free, host-checkable twin: the
// tag-free tests of this package, internal/solver and internal/resultworker
// assert against these.
package gpu

import (
	"crypto/hmac"
	"crypto/sha512"

	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/pbkdf2"
)

// Short256ChecksumNibble reproduces the filter kernel's "short256"
// specialization: a full SHA-256 of 16-byte entropy, keeping only the top 4
// bits of the first output byte as a right-aligned nibble. Named distinctly
// from mnemonicmath.ComputeChecksumNibble (which it is numerically identical
// to) because this one lives beside the rest of the device-primitive
// reference twins rather than the bit-swizzle package.
func Short256ChecksumNibble(entropy [16]byte) uint8 {
	sum := sha256.Sum256(entropy[:])
	return sum[0] >> 4
}

// Pbkdf2HmacSha512Seed reproduces the derivation kernel's seed expansion:
// PBKDF2-HMAC-SHA512(password = mnemonic, salt = "mnemonic", iterations =
// 2048, dkLen = 64).
func Pbkdf2HmacSha512Seed(mnemonic string) [64]byte {
	derived := pbkdf2.Key([]byte(mnemonic), []byte("mnemonic"), 2048, 64, sha512.New)
	var out [64]byte
	copy(out[:], derived)
	return out
}

// BitcoinSeedMasterKey reproduces the derivation kernel's final step:
// HMAC-SHA512(key = "Bitcoin seed", message = seed), yielding the 64-byte
// master extended key (32-byte private key || 32-byte chain code).
func BitcoinSeedMasterKey(seed [64]byte) [64]byte {
	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed[:])
	sum := mac.Sum(nil)
	var out [64]byte
	copy(out[:], sum)
	return out
}
