// Package capture runs the serial capture session: a single pull cycle that
// reads chunks from the line, timestamps them, encodes them as PCAP records,
// and writes them to the output sink.
package capture

import (
	"context"
	"errors"
	"time"
)

// ErrReadTimeout is returned by a LineSource when a read interval elapsed
// with no data. It marks a frame boundary with nothing in it, not a failure;
// the loop simply polls again.
var ErrReadTimeout = errors.New("capture: read timed out with no data")

// ErrLineClosed is returned by a LineSource when the line disappeared
// (device unplugged or closed). A capture session legitimately ends when
// the line does, so this is a normal termination, not an error.
var ErrLineClosed = errors.New("capture: line closed")

// LineSource supplies chunks from an already-opened communication line.
// The core never opens or configures the line; it only pulls bytes.
//
// ReadChunk blocks until a chunk is available, the frame gap elapses
// (ErrReadTimeout), or the line disappears (ErrLineClosed). When ctx is
// cancelled mid-read, implementations should return whatever has been
// accumulated so far so the loop can drain it into the file.
type LineSource interface {
	ReadChunk(ctx context.Context) ([]byte, error)
}

// Clock supplies capture timestamps. It must be monotonically
// non-decreasing across calls within one process; record ordering in the
// output file depends on it. Passed explicitly so tests can inject a
// deterministic clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock. Go's time.Now carries a monotonic
// reading, so timestamps taken from it never go backwards.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// State is the capture session lifecycle state.
type State int

const (
	// StateIdle is the state before the session has started running.
	StateIdle State = iota
	// StateRunning is the steady-state read/encode/write cycle.
	StateRunning
	// StateDraining means cancellation was observed and the session is
	// finishing up before closing the sink.
	StateDraining
	// StateClosed is terminal; the sink has been closed.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Summary describes a completed capture session.
type Summary struct {
	// Records is the number of records written to the file.
	Records int64
	// Bytes is the number of payload bytes read from the line.
	Bytes int64
	// StartTime is when the session began.
	StartTime time.Time
	// EndTime is when the session ended.
	EndTime time.Time
}
