package logging

import (
	"bytes"
	"io"
)

// PrefixWriter wraps an io.Writer and adds a prefix to each complete line.
type PrefixWriter struct {
	prefix  []byte
	out     io.Writer
	pending bytes.Buffer
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		out:    w,
	}
}

// Write buffers p until a newline is seen, then emits each finished line
// with the prefix in front of it.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.pending.Write(p)

	for {
		idx := bytes.IndexByte(pw.pending.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := pw.pending.Next(idx + 1)
		if err := pw.emit(line); err != nil {
			return 0, err
		}
	}

	return n, nil
}

// Flush writes out a trailing partial line, if any.
func (pw *PrefixWriter) Flush() error {
	if pw.pending.Len() == 0 {
		return nil
	}
	line := pw.pending.Next(pw.pending.Len())
	return pw.emit(line)
}

func (pw *PrefixWriter) emit(line []byte) error {
	if _, err := pw.out.Write(pw.prefix); err != nil {
		return err
	}
	_, err := pw.out.Write(line)
	return err
}
