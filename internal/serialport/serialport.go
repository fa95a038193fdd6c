// Package serialport adapts a real serial port to the capture.LineSource
// contract. The inter-frame gap is implemented as the port read timeout:
// bytes arriving back-to-back accumulate into one chunk, and a quiet gap
// (or a full buffer) marks the chunk boundary.
package serialport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"serialpcap/internal/capture"
)

// Config describes how to open the line.
type Config struct {
	// Name is the port name, e.g. "/dev/ttyUSB0" or "COM3".
	Name string
	// BaudRate in bits per second.
	BaudRate int
	// Parity is 'n' (none), 'e' (even) or 'o' (odd).
	Parity byte
	// StopBits is 1 or 2.
	StopBits int
	// FrameGap is the quiet interval that ends a chunk.
	FrameGap time.Duration
	// MaxChunkSize caps the bytes accumulated into one chunk.
	MaxChunkSize int
}

// Port is an opened serial line implementing capture.LineSource.
type Port struct {
	port serial.Port
	max  int
}

// Open opens and configures the serial line. The returned Port is ready
// for ReadChunk calls.
func Open(cfg Config) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
	}
	switch cfg.Parity {
	case 'e':
		mode.Parity = serial.EvenParity
	case 'o':
		mode.Parity = serial.OddParity
	default:
		mode.Parity = serial.NoParity
	}
	if cfg.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	} else {
		mode.StopBits = serial.OneStopBit
	}

	port, err := serial.Open(cfg.Name, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", cfg.Name, err)
	}
	if err := port.SetReadTimeout(cfg.FrameGap); err != nil {
		port.Close()
		return nil, fmt.Errorf("setting read timeout on %s: %w", cfg.Name, err)
	}
	return &Port{port: port, max: cfg.MaxChunkSize}, nil
}

// NewPort wraps an already-opened serial.Port. The port must have a read
// timeout configured; it is used as the frame gap.
func NewPort(port serial.Port, maxChunkSize int) *Port {
	return &Port{port: port, max: maxChunkSize}
}

// ReadChunk accumulates bytes until the frame gap elapses or the chunk
// buffer fills. An interval with no data at all reports
// capture.ErrReadTimeout; a vanished device reports capture.ErrLineClosed.
// On cancellation mid-read the accumulated bytes are handed back so the
// capture loop can drain them.
func (p *Port) ReadChunk(ctx context.Context) ([]byte, error) {
	buf := make([]byte, p.max)
	n := 0
	for n < len(buf) {
		if ctx.Err() != nil {
			break
		}
		r, err := p.port.Read(buf[n:])
		n += r
		if err != nil {
			if n > 0 {
				// Hand back what we have; the next read reports the error.
				return buf[:n], nil
			}
			if errors.Is(err, io.EOF) || isPortError(err) {
				return nil, capture.ErrLineClosed
			}
			return nil, fmt.Errorf("reading serial port: %w", err)
		}
		if r == 0 {
			// Read timeout: the frame gap elapsed.
			break
		}
	}
	if n == 0 {
		return nil, capture.ErrReadTimeout
	}
	return buf[:n], nil
}

// Close releases the underlying port.
func (p *Port) Close() error {
	return p.port.Close()
}

func isPortError(err error) bool {
	var perr *serial.PortError
	return errors.As(err, &perr)
}
