package pcap

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrSinkClosed is returned by WriteRecord after the sink has been closed.
var ErrSinkClosed = errors.New("pcap: sink is closed")

// FlushPolicy controls when buffered records reach the file. The zero value
// is normalized to flushing after every record, which favors durability:
// dropped capture data cannot be re-read from the line.
type FlushPolicy struct {
	// EveryRecords flushes once this many records have been buffered.
	// 1 flushes after every record.
	EveryRecords int
	// MaxDelay, when non-zero, flushes a buffered record at the next write
	// once this much time has passed since the last flush.
	MaxDelay time.Duration
}

// FlushEveryRecord is the default, durability-first policy.
func FlushEveryRecord() FlushPolicy { return FlushPolicy{EveryRecords: 1} }

// Sink is the sole writer of one capture output file. It writes the global
// header at open time, buffers encoded records, and guarantees ordered
// writes with a final flush on Close. A Sink is not safe for concurrent
// use; the capture loop is strictly sequential.
type Sink struct {
	file      *os.File
	buf       *bufio.Writer
	policy    FlushPolicy
	pending   int
	lastFlush time.Time
	closed    bool
}

// OpenSink creates or truncates path, writes the global header, and flushes
// it so even an immediately-aborted session leaves a valid PCAP prefix.
func OpenSink(path string, header []byte, policy FlushPolicy) (*Sink, error) {
	if policy.EveryRecords <= 0 {
		policy.EveryRecords = 1
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	s := &Sink{
		file:      file,
		buf:       bufio.NewWriter(file),
		policy:    policy,
		lastFlush: time.Now(),
	}
	if _, err := s.buf.Write(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("writing file header: %w", err)
	}
	if err := s.buf.Flush(); err != nil {
		file.Close()
		return nil, fmt.Errorf("flushing file header: %w", err)
	}
	return s, nil
}

// WriteRecord appends one encoded record and flushes according to the
// configured policy. A failed write is not retried or repaired; the caller
// must treat it as fatal for the session.
func (s *Sink) WriteRecord(rec []byte) error {
	if s.closed {
		return ErrSinkClosed
	}
	if _, err := s.buf.Write(rec); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	s.pending++
	if s.pending >= s.policy.EveryRecords ||
		(s.policy.MaxDelay > 0 && time.Since(s.lastFlush) >= s.policy.MaxDelay) {
		return s.Flush()
	}
	return nil
}

// Flush forces buffered records to the file.
func (s *Sink) Flush() error {
	if s.closed {
		return ErrSinkClosed
	}
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("flushing records: %w", err)
	}
	s.pending = 0
	s.lastFlush = time.Now()
	return nil
}

// Close performs a final flush and releases the file handle. It is
// idempotent; the second and later calls are no-ops. The file handle is
// released even when the final flush fails.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.buf.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("final flush: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing output file: %w", closeErr)
	}
	return nil
}
