// Package addressset loads a file of Bitcoin P2PKH addresses (one per line)
// into an immutable, read-only watch-set keyed by hash160, the comparison
// the result worker performs against every derived address.
package addressset

import (
	"bufio"
	"fmt"
	"os"

	"github.com/btcsuite/btcutil/base58"
)

const (
	p2pkhVersionMainnet = 0x00
	hash160Len          = 20
	checksumLen         = 4
	decodedLen          = 1 + hash160Len + checksumLen
)

// Set is an immutable, concurrency-safe-for-reads watch-set of P2PKH
// addresses, keyed by their 20-byte hash160 rather than address text — the
// result worker computes hash160 once per derived key and probes directly,
// skipping a Base58 re-encode per candidate.
type Set struct {
	byHash160 map[[hash160Len]byte]struct{}
}

// NewFromHashes builds a Set directly from already-decoded hash160 values,
// bypassing file parsing. Used by tests and by callers that already have a
// decoded watch-set (e.g. composing one programmatically).
func NewFromHashes(hashes [][hash160Len]byte) *Set {
	set := &Set{byHash160: make(map[[hash160Len]byte]struct{}, len(hashes))}
	for _, h := range hashes {
		set.byHash160[h] = struct{}{}
	}
	return set
}

// Len reports the number of distinct addresses loaded.
func (s *Set) Len() int { return len(s.byHash160) }

// Contains reports whether hash160 (the 20-byte RIPEMD160(SHA256(pubkey)))
// is in the watch-set.
func (s *Set) Contains(hash160 [hash160Len]byte) bool {
	_, ok := s.byHash160[hash160]
	return ok
}

// Load reads addresses from path, one per line, decoding each as Base58Check
// P2PKH (version 0x00, 20-byte hash160, 4-byte checksum) and building the
// watch-set. Malformed lines (bad Base58, wrong length, wrong version, bad
// checksum) are skipped with a returned count so the caller can log how many
// were rejected without aborting the whole load over one bad line.
func Load(path string) (*Set, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("addressset: open %s: %w", path, err)
	}
	defer f.Close()

	set := &Set{byHash160: make(map[[hash160Len]byte]struct{})}
	skipped := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		h, ok := decodeP2PKH(line)
		if !ok {
			skipped++
			continue
		}
		set.byHash160[h] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("addressset: read %s: %w", path, err)
	}

	return set, skipped, nil
}

// decodeP2PKH decodes a Base58Check-encoded mainnet P2PKH address into its
// 20-byte hash160, validating the checksum and version byte. base58.Decode
// returns raw bytes with no checksum validation, so that is performed here
// via base58.CheckDecode instead, which also strips the version byte.
func decodeP2PKH(address string) (hash [hash160Len]byte, ok bool) {
	decoded, version, err := base58.CheckDecode(address)
	if err != nil {
		return hash, false
	}
	if version != p2pkhVersionMainnet || len(decoded) != hash160Len {
		return hash, false
	}
	copy(hash[:], decoded)
	return hash, true
}
