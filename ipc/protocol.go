package ipc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxFrameSize caps how much of a single line is buffered. Late-game turn
// states with a full board are well under this.
const maxFrameSize = 4 << 20

var ErrFrameTooLarge = errors.New("frame too large")

// NewFrameScanner splits r into lines, failing with ErrFrameTooLarge once a
// line would need more than limit bytes of buffer.
func NewFrameScanner(r io.Reader, limit int) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, min(64<<10, limit)), limit)
	return s
}

// ReadFrame returns the next non-blank line without its terminator. A final
// line without a newline is still returned; io.EOF follows on the next call.
func ReadFrame(s *bufio.Scanner) ([]byte, error) {
	for s.Scan() {
		// The scanner reuses its buffer on the next Scan.
		if line := bytes.TrimSpace(s.Bytes()); len(line) > 0 {
			return bytes.Clone(line), nil
		}
	}
	if err := s.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, ErrFrameTooLarge
		}
		return nil, err
	}
	return nil, io.EOF
}

// WriteFrame writes v as a single JSON line and flushes, since the engine
// blocks waiting for each line.
func WriteFrame(w *bufio.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}
