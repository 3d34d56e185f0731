// Package gputypes defines the fixed-layout POD structures shared across the
// host and the OpenCL device: push constants for the filter and derivation
// kernels, and the word-list buffer entry the kernels index into. Layouts
// are serialized with encoding/binary rather than unsafe reinterpretation,
// matching the explicit byte-handling the kernels themselves require.
package gputypes

import (
	"encoding/binary"
	"fmt"
)

// ThreadsPerDispatch is the fixed filter-pass chunk size: workgroup size 256
// over a (256, 256, 1) dispatch grid.
const ThreadsPerDispatch = 1 << 24

// MaxResultsFound bounds the count/matches/derivation-output buffers. Fixed
// at ThreadsPerDispatch/8 (see DESIGN.md for the resolved Open Question).
const MaxResultsFound = ThreadsPerDispatch / 8

// DerivationWorkgroupSize is the fixed derivation-pass workgroup size.
const DerivationWorkgroupSize = 256

// MasterKeyWords is the 64-byte master extended key (32-byte private key ||
// 32-byte chain code) expanded into 64 u32 lanes, one byte in the low 8 bits
// of each, per
// the WebGPU byte-addressing convention the derivation kernel follows.
const MasterKeyWords = 64

// FilterPushConstants parameterizes one filter-pass dispatch: the four
// entropy words (with words[1]'s low 20 bits standing in for entropy_nonce)
// and the expected checksum nibble.
type FilterPushConstants struct {
	Words    [4]uint32
	Checksum uint32
}

// Bytes serializes the push constants little-endian for clEnqueueWriteBuffer
// / kernel-arg use.
func (pc FilterPushConstants) Bytes() []byte {
	buf := make([]byte, 5*4)
	for i, w := range pc.Words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	binary.LittleEndian.PutUint32(buf[16:], pc.Checksum)
	return buf
}

// DerivationPushConstants parameterizes one derivation-pass dispatch: the
// three words the matches-buffer `word2` value doesn't already carry
// (word0, word1, word3 — word2 comes from the matches buffer per-thread),
// the checksum, and the tiling window (Offset, Count) into the matches
// buffer for the non-indirect dispatch variant.
type DerivationPushConstants struct {
	Word0    uint32
	Word1    uint32
	Word3    uint32
	Checksum uint32
	Offset   uint32
	Count    uint32
}

// Bytes serializes the push constants little-endian.
func (pc DerivationPushConstants) Bytes() []byte {
	buf := make([]byte, 6*4)
	binary.LittleEndian.PutUint32(buf[0:], pc.Word0)
	binary.LittleEndian.PutUint32(buf[4:], pc.Word1)
	binary.LittleEndian.PutUint32(buf[8:], pc.Word3)
	binary.LittleEndian.PutUint32(buf[12:], pc.Checksum)
	binary.LittleEndian.PutUint32(buf[16:], pc.Offset)
	binary.LittleEndian.PutUint32(buf[20:], pc.Count)
	return buf
}

// Bip39WordEntry is one word-list buffer slot: a BIP-39 English word packed
// as up to 32 ASCII bytes (8 u32 lanes) plus its length. The derivation
// kernel reads these entries from the word-list buffer to assemble the
// mnemonic text on the device.
type Bip39WordEntry struct {
	Bytes  [8]uint32
	Length uint32
}

// NewBip39WordEntry packs an ASCII BIP-39 word (max 8 letters by the
// wordlist's own constraint, well under the 32-byte capacity here) into a
// Bip39WordEntry.
func NewBip39WordEntry(word string) (Bip39WordEntry, error) {
	var e Bip39WordEntry
	if len(word) > 32 {
		return e, fmt.Errorf("gputypes: word %q exceeds 32 bytes", word)
	}
	var packed [32]byte
	copy(packed[:], word)
	for i := 0; i < 8; i++ {
		e.Bytes[i] = binary.LittleEndian.Uint32(packed[i*4 : i*4+4])
	}
	e.Length = uint32(len(word))
	return e, nil
}

// DerivationOutputWords decodes one MasterKeyWords-length slot of the
// derivation output buffer (one byte in the low 8 bits of each u32 lane) back
// into the
// 64-byte master extended key.
func DerivationOutputWords(slot [MasterKeyWords]uint32) [64]byte {
	var out [64]byte
	for i, w := range slot {
		out[i] = byte(w)
	}
	return out
}
