// Package resultworker implements the result worker (component F): the
// dedicated CPU consumer of the orchestrator's bounded channel that turns a
// derivation-pass master extended key into a BIP-32 child key, a P2PKH
// address, and — on a watch-set hit — an appended output-file line.
//
// The goroutine shape (buffered channel consumer, atomic counters, an
// append-mode output file flushed per write, per-batch debug logging) is
// adapted from the teacher's matchWriter/statsReporter pair; the payload and
// comparison are BIP-32/P2PKH derivation instead of raw private-key scanning.
package resultworker

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil"
	"github.com/btcsuite/btcutil/base58"
	"github.com/btcsuite/btcutil/hdkeychain"

	"github.com/Asylian21/mnemonic-stencil-recover/internal/addressset"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/gputypes"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/solver"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/stencil"
)

// derivationPath is the fixed child-key path every master extended key is
// walked along: m/44'/0'/0'/0/0 (spec Non-goals: no other path supported).
var derivationPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 0,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

// Worker consumes solver.StageComputation values and reports watch-set hits.
type Worker struct {
	watchSet   *addressset.Set
	outputPath string
	log        *slog.Logger

	matchesChecked uint64
	hits           uint64
	transientErrs  uint64
}

// New constructs a Worker writing hits to outputPath (append-create, 0644).
func New(watchSet *addressset.Set, outputPath string, log *slog.Logger) *Worker {
	return &Worker{watchSet: watchSet, outputPath: outputPath, log: log}
}

// Stats summarizes a completed Run.
type Stats struct {
	MatchesChecked uint64
	Hits           uint64
	TransientErrs  uint64
}

// Run drains in until the channel is closed, deriving and checking every
// match it receives, and returns summary statistics. The channel is
// expected to have capacity solver.ChannelCapacity; Run logs a "severe
// bottleneck" warning whenever it observes the channel at or above
// solver.BackpressureThreshold on receipt, indicating the GPU is outpacing
// CPU derivation.
func (w *Worker) Run(in <-chan solver.StageComputation) (Stats, error) {
	f, err := os.OpenFile(w.outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return Stats{}, fmt.Errorf("resultworker: open output file %s: %w", w.outputPath, err)
	}
	defer f.Close()

	writer := bufio.NewWriter(f)
	defer writer.Flush()

	for batch := range in {
		start := time.Now()

		// +1 accounts for batch itself, already removed from the channel by
		// the range receive above; pending reflects the backlog as of the
		// moment this batch was pulled off the channel.
		if pending := len(in) + 1; pending >= solver.BackpressureThreshold {
			w.log.Warn("severe bottleneck: GPU outpacing CPU derivation",
				"channel_len", pending, "channel_cap", cap(in))
		}

		for _, match := range batch.Matches {
			atomic.AddUint64(&w.matchesChecked, 1)

			hit, line, err := w.checkMatch(batch, match)
			if err != nil {
				atomic.AddUint64(&w.transientErrs, 1)
				w.log.Warn("transient derivation error, skipping match",
					"step", batch.Step, "word2", match.Word2, "error", err)
				continue
			}
			if !hit {
				continue
			}

			atomic.AddUint64(&w.hits, 1)
			if _, err := writer.WriteString(line + "\n"); err != nil {
				w.log.Error("failed to write match to output file", "error", err)
				continue
			}
			if err := writer.Flush(); err != nil {
				w.log.Error("failed to flush output file", "error", err)
			}
			w.log.Info("match found", "line", line)
		}

		w.log.Debug("batch processed",
			"step", batch.Step, "batch_size", len(batch.Matches), "elapsed", time.Since(start))
	}

	return Stats{
		MatchesChecked: atomic.LoadUint64(&w.matchesChecked),
		Hits:           atomic.LoadUint64(&w.hits),
		TransientErrs:  atomic.LoadUint64(&w.transientErrs),
	}, nil
}

// checkMatch derives the compressed-pubkey hash160 for one match's master
// extended key, compares it against the watch-set, and — on a hit —
// formats the output-file line.
func (w *Worker) checkMatch(batch solver.StageComputation, match solver.Match) (hit bool, line string, err error) {
	privKey := match.MasterKey[:32]
	chainCode := match.MasterKey[32:]

	master := hdkeychain.NewExtendedKey(
		chaincfg.MainNetParams.HDPrivateKeyID[:],
		privKey,
		chainCode,
		[]byte{0, 0, 0, 0},
		0,
		hdkeychain.HardenedKeyStart,
		true,
	)

	child := master
	for _, idx := range derivationPath {
		child, err = child.Derive(idx)
		if err != nil {
			return false, "", fmt.Errorf("derive path: %w", err)
		}
	}

	pubKey, err := child.ECPubKey()
	if err != nil {
		return false, "", fmt.Errorf("ec pubkey: %w", err)
	}

	var hash160 [20]byte
	copy(hash160[:], btcutil.Hash160(pubKey.SerializeCompressed()))

	if !w.watchSet.Contains(hash160) {
		return false, "", nil
	}

	words := assembleWords(batch.Constants, match.Word2)
	mnemonic, err := stencil.Decode(words, uint8(batch.Constants.Checksum))
	if err != nil {
		return false, "", fmt.Errorf("decode mnemonic: %w", err)
	}

	address := base58CheckP2PKH(hash160)
	line = fmt.Sprintf("Mnemonic = %q, MasterExtendedKey = %q, P2PKH = %q",
		mnemonic, master.String(), address)
	return true, line, nil
}

// base58CheckP2PKH encodes a mainnet P2PKH hash160 as the address string
// recorded in the output file and compared against addressset.Load's
// decoding.
func base58CheckP2PKH(hash160 [20]byte) string {
	return base58.CheckEncode(hash160[:], 0x00)
}

// assembleWords reassembles the four entropy words from a derivation
// dispatch's push constants (word0, word1, word3) plus the matches buffer's
// word2, mirroring spec.md §4.D step 2-3.
func assembleWords(pc gputypes.DerivationPushConstants, word2 uint32) [4]uint32 {
	return [4]uint32{pc.Word0, pc.Word1, word2, pc.Word3}
}
