package capture

import (
	"context"
	"errors"
	"fmt"

	"serialpcap/internal/logger"
	"serialpcap/internal/pcap"
)

// Session drives one capture: LineSource -> Clock -> Encoder -> Sink,
// repeating until cancellation, line closure, or a fatal error. A Session
// owns the sink for its lifetime and closes it on every exit path; it is
// single-use.
type Session struct {
	source  LineSource
	clock   Clock
	encoder *pcap.Encoder
	sink    *pcap.Sink
	log     *logger.Logger
	state   State
}

// NewSession assembles a session around an opened line source and sink.
func NewSession(source LineSource, clock Clock, encoder *pcap.Encoder, sink *pcap.Sink, log *logger.Logger) *Session {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Session{
		source:  source,
		clock:   clock,
		encoder: encoder,
		sink:    sink,
		log:     log,
		state:   StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Run executes the capture cycle until ctx is cancelled, the line closes,
// or a fatal error occurs. The sink is flushed and closed before Run
// returns, on every path, so the output file is always a valid PCAP prefix.
//
// Cancellation is cooperative: it is observed at the top of each iteration,
// never between a completed read and its write, so an in-flight chunk is
// always written whole. Line closure and cancellation are clean ends and
// return a nil error; encoding and sink failures are fatal and returned.
func (s *Session) Run(ctx context.Context) (summary Summary, err error) {
	if s.state != StateIdle {
		return Summary{}, fmt.Errorf("capture: session already ran (state %s)", s.state)
	}
	s.state = StateRunning
	summary.StartTime = s.clock.Now()
	s.log.Info("capture session started (snaplen=%d, link type=%d)", s.encoder.SnapLen(), s.encoder.LinkType())

	defer func() {
		summary.EndTime = s.clock.Now()
		s.state = StateClosed
		if cerr := s.sink.Close(); cerr != nil {
			s.log.Error("closing sink: %v", cerr)
			if err == nil {
				err = fmt.Errorf("capture: %w", cerr)
			}
		}
		s.log.Info("capture session ended: %d records, %d bytes", summary.Records, summary.Bytes)
	}()

	for {
		if ctx.Err() != nil {
			s.state = StateDraining
			s.log.Info("cancellation received, draining")
			return summary, nil
		}

		data, rerr := s.source.ReadChunk(ctx)
		ts := s.clock.Now()
		switch {
		case errors.Is(rerr, ErrReadTimeout):
			// Liveness tick with no data; keep polling.
			continue
		case errors.Is(rerr, ErrLineClosed):
			s.log.Info("line closed, ending session")
			return summary, nil
		case rerr != nil:
			return summary, fmt.Errorf("capture: reading line: %w", rerr)
		}
		if len(data) == 0 {
			continue
		}

		rec, eerr := s.encoder.Record(ts, data)
		if eerr != nil {
			return summary, fmt.Errorf("capture: encoding record: %w", eerr)
		}
		if werr := s.sink.WriteRecord(rec); werr != nil {
			// Writes are never retried: a retry risks duplicate or
			// reordered records. A fresh session is the caller's call.
			return summary, fmt.Errorf("capture: sink failure: %w", werr)
		}
		summary.Records++
		summary.Bytes += int64(len(data))
		s.log.Debug("wrote record %d (%d bytes)", summary.Records, len(data))
	}
}
