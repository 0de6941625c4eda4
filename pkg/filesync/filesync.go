// Package filesync implements the FileSync Service contract of
// SPEC_FULL §4.11: BuildKit's session-local bidirectional DiffCopy
// transfer. The production transport is BuildKit's own
// github.com/moby/buildkit/session/filesync package atop
// github.com/tonistiigi/fsutil (no pack example implements FileSync
// directly); this package wires that real transport as a
// session.Attachable and models the packet state machine the
// transfer follows, so the pipeline's cancellation/ordering
// invariants can be reasoned about and tested independently of a live
// gRPC connection.
package filesync

import (
	"fmt"

	"github.com/moby/buildkit/session"
	"github.com/moby/buildkit/session/filesync"
	"github.com/tonistiigi/fsutil"
)

// State is one point in the per-directory transfer state machine of
// SPEC_FULL §4.11.
type State string

const (
	StateIdle             State = "idle"
	StateStatsAnnouncing   State = "stats_announcing"
	StateAwaitingRequests  State = "awaiting_requests"
	StateStreaming         State = "streaming"
	StateFinished          State = "finished"
	StateErrored           State = "errored"
)

// PacketKind enumerates the packet types the protocol exchanges.
type PacketKind string

const (
	PacketStat PacketKind = "STAT"
	PacketReq  PacketKind = "REQ"
	PacketData PacketKind = "DATA"
	PacketFin  PacketKind = "FIN"
	PacketErr  PacketKind = "ERR"
)

// Transfer tracks one directory transfer's position in the state
// machine and rejects out-of-order transitions, the state-machine
// counterpart of SPEC_FULL §4.11's invariant that stats are always
// announced before any data reply is accepted.
type Transfer struct {
	state State
}

// NewTransfer returns a Transfer in its initial Idle state.
func NewTransfer() *Transfer { return &Transfer{state: StateIdle} }

func (t *Transfer) State() State { return t.state }

var validTransitions = map[State][]State{
	StateIdle:            {StateStatsAnnouncing},
	StateStatsAnnouncing:  {StateAwaitingRequests, StateErrored},
	StateAwaitingRequests: {StateStreaming, StateErrored},
	StateStreaming:        {StateStreaming, StateFinished, StateErrored},
}

// Advance moves the transfer to next, returning an error if next is
// not reachable from the current state.
func (t *Transfer) Advance(next State) error {
	for _, allowed := range validTransitions[t.state] {
		if allowed == next {
			t.state = next
			return nil
		}
	}
	return fmt.Errorf("filesync: invalid transition %s -> %s", t.state, next)
}

// Done reports whether the transfer has reached a terminal state.
func (t *Transfer) Done() bool {
	return t.state == StateFinished || t.state == StateErrored
}

// Provider wires the repository's source tree (filtered by includes,
// normally derived from the LLB graph's COPY froms to minimize
// transferred bytes) as a session.Attachable FileSync source, ready to
// pass to buildkitclient.Solve's attachables.
func Provider(root string, includes []string) session.Attachable {
	opt := fsutil.WalkOpt{}
	if len(includes) > 0 {
		opt.IncludePatterns = includes
	}
	return filesync.NewFSSyncProvider(filesync.StaticDirSource{
		"context": fsutil.NewFS(root, &opt),
	})
}
