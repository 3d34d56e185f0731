//go:build opencl

// Command mnemonic-stencil-recover brute-forces the four wildcard words of a
// 12-word BIP-39 stencil against a watch-set of P2PKH addresses, using an
// OpenCL-accelerated filter/derivation pipeline (spec components A-G).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/tyler-smith/go-bip39"

	"github.com/Asylian21/mnemonic-stencil-recover/internal/addressset"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/applog"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/gpu"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/gputypes"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/resultworker"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/solver"
	"github.com/Asylian21/mnemonic-stencil-recover/internal/stencil"
)

// scanRange is the half-open [Start, End) wildcard search range, parsed from
// the single combined "-p start/end" flag spec.md §6 specifies.
type scanRange struct {
	Start uint64
	End   uint64
}

// UnmarshalText implements encoding.TextUnmarshaler, which kong uses
// automatically to decode -p's "start/end" value into a scanRange.
func (r *scanRange) UnmarshalText(text []byte) error {
	raw := string(text)
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return fmt.Errorf(`range must be "start/end", got %q`, raw)
	}
	start, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid range start %q: %w", parts[0], err)
	}
	end, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid range end %q: %w", parts[1], err)
	}
	r.Start, r.End = start, end
	return nil
}

// cli is the kong command definition: twelve positional stencil tokens plus
// the range, watch-set, output, tiling, and verbosity flags (spec.md §6).
var cli struct {
	Stencil []string `arg:"" help:"Twelve space-separated BIP-39 words; positions 5-8 must be '_' wildcards."`

	Range scanRange `short:"p" default:"0/17592186044416" help:"Half-open wildcard search range as start/end; defaults to the full 2^44 space."`

	Addresses string `short:"a" default:"addresses.txt" help:"Path to the watch-set file: one P2PKH address per line."`
	Found     string `short:"f" default:"found.txt" help:"Path to append matches to."`

	DerivationTiling uint32 `short:"d" default:"64" help:"Derivation-pass dispatch tiling factor over a chunk's matches."`

	Verbose int `short:"v" type:"counter" help:"Increase log verbosity (-v info, -vv debug)."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("mnemonic-stencil-recover"),
		kong.Description("Recover a BIP-39 mnemonic's wildcard words against a watch-set of P2PKH addresses."),
	)

	log := applog.NewForVerbosity(cli.Verbose)

	if err := run(); err != nil {
		log.Error("fatal", "error", err)
		kctx.Exit(1)
	}
}

func run() error {
	log := applog.NewForVerbosity(cli.Verbose)

	if err := solver.ValidateRange(cli.Range.Start, cli.Range.End); err != nil {
		return fmt.Errorf("invalid range: %w", err)
	}

	parsed, err := stencil.Parse(cli.Stencil)
	if err != nil {
		return fmt.Errorf("invalid stencil: %w", err)
	}
	encoded, err := stencil.Encode(parsed)
	if err != nil {
		return fmt.Errorf("encode stencil: %w", err)
	}
	log.Info("stencil encoded", "stencil", parsed.String(), "checksum", encoded.Checksum)

	watchSet, skipped, err := addressset.Load(cli.Addresses)
	if err != nil {
		return fmt.Errorf("load watch-set: %w", err)
	}
	log.Info("watch-set loaded", "addresses", watchSet.Len(), "skipped_malformed", skipped)
	if watchSet.Len() == 0 {
		log.Warn("watch-set is empty; every derived address will be a miss")
	}

	wordlist, err := deviceWordlist()
	if err != nil {
		return fmt.Errorf("prepare device word list: %w", err)
	}

	device, err := gpu.Open(wordlist)
	if err != nil {
		return fmt.Errorf("open OpenCL device: %w", err)
	}
	defer device.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ch := make(chan solver.StageComputation, solver.ChannelCapacity)
	worker := resultworker.New(watchSet, cli.Found, log)

	workerErrCh := make(chan error, 1)
	go func() {
		_, err := worker.Run(ch)
		workerErrCh <- err
	}()

	opts := solver.RunOptions{
		Words:            encoded.Words,
		Checksum:         encoded.Checksum,
		Start:            cli.Range.Start,
		End:              cli.Range.End,
		DerivationTiling: cli.DerivationTiling,
	}
	runErr := solver.Run(ctx, device, opts, ch)
	close(ch)

	if workerErr := <-workerErrCh; workerErr != nil {
		return fmt.Errorf("result worker: %w", workerErr)
	}
	if runErr != nil {
		return fmt.Errorf("solve: %w", runErr)
	}

	log.Info("scan complete", "range_start", cli.Range.Start, "range_end", cli.Range.End)
	return nil
}

// deviceWordlist packs the BIP-39 English wordlist into the fixed-layout
// buffer entries the derivation kernel indexes into.
func deviceWordlist() ([]gputypes.Bip39WordEntry, error) {
	words := bip39.GetWordList()
	entries := make([]gputypes.Bip39WordEntry, len(words))
	for i, w := range words {
		entry, err := gputypes.NewBip39WordEntry(w)
		if err != nil {
			return nil, fmt.Errorf("word %d (%q): %w", i, w, err)
		}
		entries[i] = entry
	}
	return entries, nil
}
