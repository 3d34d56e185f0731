//go:build opencl

package solver

import (
	"context"
	"fmt"

	"github.com/Asylian21/mnemonic-stencil-recover/internal/gpu"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/gputypes"
)

// RunOptions parameterizes one orchestrator run: the encoded stencil's fixed
// words and checksum, the [Start, End) range of the wildcard search space to
// scan, and the derivation-pass tiling factor (the `-d` flag; spec.md §1's
// non-indirect dispatch variant).
type RunOptions struct {
	Words            [4]uint32
	Checksum         uint8
	Start            uint64
	End              uint64
	DerivationTiling uint32
}

// Run drives the Idle -> Submitting -> AwaitingGpu -> ReadingCount ->
// (optional) ReadingHashes -> Delivering -> Idle chunk loop (spec.md §4.E),
// submitting one filter dispatch per chunk and tiling the derivation pass in
// windows of opts.DerivationTiling over however many matches the filter
// pass found, delivering each tile as a StageComputation on out.
//
// Run returns a fatal error and stops immediately if a filter dispatch's
// match count reaches gputypes.MaxResultsFound (spec.md §4.G: the matches
// buffer cannot distinguish "exactly full" from "overflowed and some
// matches were silently dropped", so this case is not recoverable). It also
// returns promptly, without running Reset/Filter again, when ctx is
// cancelled.
func Run(ctx context.Context, device *gpu.Device, opts RunOptions, out chan<- StageComputation) error {
	if err := ValidateRange(opts.Start, opts.End); err != nil {
		return fmt.Errorf("solver: %w", err)
	}

	step := opts.Start
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, ok := NextChunk(step, opts.End)
		if !ok {
			return nil
		}

		if err := device.Reset(); err != nil {
			return fmt.Errorf("solver: reset chunk at step %d: %w", chunk.Step, err)
		}

		chunkWords := ApplyEntropyNonce(opts.Words, chunk.Step)
		filterConstants := gputypes.FilterPushConstants{
			Words:    chunkWords,
			Checksum: uint32(opts.Checksum),
		}
		count, matches, err := device.Filter(filterConstants)
		if err != nil {
			return fmt.Errorf("solver: filter chunk at step %d: %w", chunk.Step, err)
		}
		if count >= gputypes.MaxResultsFound {
			return fmt.Errorf("solver: chunk at step %d found %d matches, at or beyond the %d-result buffer capacity — results may have been silently dropped, aborting", chunk.Step, count, uint32(gputypes.MaxResultsFound))
		}

		if err := deliverTiles(ctx, device, chunk, chunkWords, opts, count, matches, out); err != nil {
			return err
		}

		step = chunk.Step + uint64(chunk.Active)
	}
}

func deliverTiles(ctx context.Context, device *gpu.Device, chunk Chunk, chunkWords [4]uint32, opts RunOptions, count uint32, matches []uint32, out chan<- StageComputation) error {
	tiling := opts.DerivationTiling
	if tiling == 0 {
		tiling = 64
	}

	for offset := uint32(0); offset < count; offset += tiling {
		tileSize := tiling
		if remaining := count - offset; remaining < tileSize {
			tileSize = remaining
		}

		derivationConstants := gputypes.DerivationPushConstants{
			Word0:    chunkWords[0],
			Word1:    chunkWords[1],
			Word3:    chunkWords[3],
			Checksum: uint32(opts.Checksum),
			Offset:   offset,
			Count:    count,
		}
		masterKeys, err := device.Derivation(derivationConstants, tileSize)
		if err != nil {
			return fmt.Errorf("solver: derivation tile [%d,%d) at step %d: %w", offset, offset+tileSize, chunk.Step, err)
		}

		tileMatches := make([]Match, tileSize)
		for i := uint32(0); i < tileSize; i++ {
			tileMatches[i] = Match{
				Word2:     matches[offset+i],
				MasterKey: masterKeys[i],
			}
		}

		select {
		case out <- StageComputation{Step: chunk.Step, Constants: derivationConstants, Matches: tileMatches}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
