package solver

import "github.com/Asylian21/mnemonic-stencil-recover/internal/gputypes"

// ChannelCapacity is the bounded channel size between the orchestrator and
// the result worker (spec.md §5/§9: "capacity 64 is a good default").
const ChannelCapacity = 64

// BackpressureThreshold is the channel-length at which the result worker
// logs a "severe bottleneck" warning — the GPU is outpacing CPU derivation
// (spec.md §4.F).
const BackpressureThreshold = 64

// StageComputation is one chunk's worth of derivation results handed from
// the orchestrator to the result worker: the step the chunk started at, the
// push constants that produced it (word0/word1/word3/checksum, with word1
// already carrying this chunk's entropy_nonce), and the decoded master
// extended keys for every match the derivation pass emitted.
type StageComputation struct {
	Step      uint64
	Constants gputypes.DerivationPushConstants
	Matches   []Match
}

// Match pairs one filter-pass word2 value with its derivation-pass master
// extended key, mirroring the matches-buffer/derivation-output-buffer
// index correspondence spec.md §3 requires ("every derivation output at
// index i corresponds to the match at index i in the matches buffer").
type Match struct {
	Word2     uint32
	MasterKey [64]byte
}
