// Package solver implements the orchestrator (component E): the chunk-
// stepping loop that drives the filter/derivation GPU passes and feeds
// results to the result worker. This file holds the pure arithmetic — chunk
// sizing, push-constant word updates, and a software model of the filter
// predicate — with no build tag, so completeness and uniqueness properties
// are checkable without a device.
package solver

import (
	"fmt"

	"github.com/Asylian21/mnemonic-stencil-recover/internal/gpu"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/gputypes"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/mnemonicmath"
)

// ChunkSize is the number of candidate entropies scanned per dispatch
// (workgroup size 256 over a (256, 256, 1) grid).
const ChunkSize = gputypes.ThreadsPerDispatch

// MaxRange is the upper bound of the 44-bit wildcard search space
// (2^20 entropy_nonce values × 2^24 global_id values).
const MaxRange = 1 << 44

// ValidateRange rejects the two fatal Configuration errors spec.md §7
// requires to be caught "at startup with a human-readable message": an
// inverted or empty range (end <= start), and a range reaching past
// MaxRange. A range above MaxRange would push EntropyNonce past the 20-bit
// field ApplyEntropyNonce packs it into, silently corrupting the high 12
// bits of words[1] that spec.md §3/§9 require stay untouched — so this must
// be checked before solver.Run ever steps a chunk, not discovered from its
// side effects.
func ValidateRange(start, end uint64) error {
	if end <= start {
		return fmt.Errorf("range end %d must be greater than range start %d", end, start)
	}
	if end > MaxRange {
		return fmt.Errorf("range end %d exceeds the maximum wildcard search space of %d (2^44)", end, uint64(MaxRange))
	}
	return nil
}

// Chunk describes one filter-pass dispatch: the step this chunk starts at,
// and how many of the chunk's ChunkSize threads are live (less than
// ChunkSize only for the final, residual chunk of a range).
type Chunk struct {
	Step   uint64
	Active uint32
}

// NextChunk computes the chunk starting at step within [start, end), or
// false if step has already reached end (the orchestrator's Done state).
// Active is clamped so the final chunk never scans past end, satisfying the
// "residual chunk" edge case in spec.md §4.C.
func NextChunk(step, end uint64) (Chunk, bool) {
	if step >= end {
		return Chunk{}, false
	}
	remaining := end - step
	active := uint64(ChunkSize)
	if remaining < active {
		active = remaining
	}
	return Chunk{Step: step, Active: uint32(active)}, true
}

// EntropyNonce computes entropy_nonce = step / ChunkSize (spec.md §4.E.1).
func EntropyNonce(step uint64) uint32 {
	return uint32(step / ChunkSize)
}

// ApplyEntropyNonce updates words[1]'s low 20 bits to carry entropy_nonce,
// preserving its high 12 bits (the OR form of the Open Question resolved in
// DESIGN.md: `words[1] = (words[1] & 0xFFF00000) | entropy_nonce`).
func ApplyEntropyNonce(words [4]uint32, step uint64) [4]uint32 {
	out := words
	out[1] = (out[1] & 0xFFF00000) | EntropyNonce(step)
	return out
}

// FilterPredicate is the software model of the filter kernel: given the
// chunk's push constants and a candidate global_id, reconstructs the
// 128-bit entropy and reports whether its checksum matches. It exists so
// filter completeness/uniqueness (spec.md §8 properties 5, 6) can be
// verified against small ranges without a device. The OpenCL kernel computes
// the same predicate; the `opencl`-tagged integration tests run the binary
// end to end and do not compare the kernel's output with this function.
func FilterPredicate(words [4]uint32, expectedChecksum uint8, globalID uint32) (word2 uint32, matched bool) {
	candidate := words
	candidate[2] = globalID

	entropy := mnemonicmath.WordsToEntropyBytes(candidate)
	got := gpu.Short256ChecksumNibble(entropy)
	if got != expectedChecksum&0x0F {
		return 0, false
	}
	return globalID, true
}

// ScanChunk runs FilterPredicate over every active thread in a chunk,
// returning the matched word2 values in ascending global_id order. A real
// filter pass's atomic counter assigns slots in no defined order, so the
// completeness/uniqueness tests compare cardinality and set-membership, not
// ordering.
func ScanChunk(words [4]uint32, expectedChecksum uint8, active uint32) []uint32 {
	var matches []uint32
	for gid := uint32(0); gid < active; gid++ {
		if word2, ok := FilterPredicate(words, expectedChecksum, gid); ok {
			matches = append(matches, word2)
		}
	}
	return matches
}
