// Package linereader extracts newline-terminated lines from byte sources. See
// doc.go for docs.
package linereader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
)

// DefaultChunkSize is the number of bytes requested per underlying read
// when no explicit size is given.
const DefaultChunkSize = 4096

// maxConsecutiveEmptyReads bounds sources that keep returning (0, nil),
// same limit bufio uses.
const maxConsecutiveEmptyReads = 100

// ErrNilSource is returned by NextLine when the source is nil.
var ErrNilSource = errors.New("linereader: nil source")

// Reader extracts lines from one or more byte sources. Each source gets its
// own leftover buffer, created on first use, so sources can be read
// interleaved through a single Reader.
//
// A Reader is not safe for concurrent use. Sources are map keys and must be
// comparable; every common io.Reader (files, bytes.Reader, net.Conn) is a
// pointer and qualifies.
type Reader struct {
	chunkSize int
	pending   map[io.Reader][]byte
}

// New returns a Reader using DefaultChunkSize.
func New() *Reader {
	return NewSize(DefaultChunkSize)
}

// NewSize returns a Reader that requests chunkSize bytes per underlying
// read. A non-positive chunkSize falls back to DefaultChunkSize. The chunk
// size affects read-call overhead and worst-case memory for long lines,
// never where lines are split.
func NewSize(chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Reader{
		chunkSize: chunkSize,
		pending:   make(map[io.Reader][]byte),
	}
}

// ChunkSize reports the configured chunk size.
func (r *Reader) ChunkSize() int {
	return r.chunkSize
}

// NextLine returns the next line from src, including the trailing '\n' when
// the source contained one. The final line of a source may lack the
// terminator. Ownership of the returned slice transfers to the caller; the
// Reader keeps no reference to it.
//
// When src is exhausted and no leftover bytes remain, NextLine returns
// io.EOF. The signal is not latched: a source that produces more bytes
// later yields more lines on later calls.
//
// On a hard read error the leftover bytes buffered for src are discarded
// and the error is returned; src should be treated as unusable afterwards.
func (r *Reader) NextLine(src io.Reader) ([]byte, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	buf := r.pending[src]
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		return r.extract(src, buf, i), nil
	}

	chunk := make([]byte, r.chunkSize)
	empty := 0
	for {
		n, err := src.Read(chunk)
		if n > 0 {
			empty = 0
			start := len(buf)
			buf = append(buf, chunk[:n]...)
			// The prior leftover was already scanned, so only the newly
			// appended window can contain the terminator.
			if i := bytes.IndexByte(buf[start:], '\n'); i >= 0 {
				return r.extract(src, buf, start+i), nil
			}
			r.pending[src] = buf
		}
		switch {
		case err == io.EOF:
			delete(r.pending, src)
			if len(buf) > 0 {
				// Final line without terminator. The buffer left the map
				// above, so the caller owns it outright.
				return buf, nil
			}
			return nil, io.EOF
		case err != nil:
			delete(r.pending, src)
			return nil, fmt.Errorf("linereader: read: %w", err)
		case n == 0:
			empty++
			if empty >= maxConsecutiveEmptyReads {
				delete(r.pending, src)
				return nil, fmt.Errorf("linereader: read: %w", io.ErrNoProgress)
			}
		}
	}
}

// extract returns buf[:i+1] as a caller-owned line and retains the
// remainder for src. The remainder is copied to a fresh buffer so the
// returned slice shares no memory with Reader-owned state; its capacity is
// clipped so a caller append cannot reach the retained bytes either.
func (r *Reader) extract(src io.Reader, buf []byte, i int) []byte {
	line := buf[: i+1 : i+1]
	rest := buf[i+1:]
	if len(rest) == 0 {
		delete(r.pending, src)
	} else {
		r.pending[src] = append(make([]byte, 0, len(rest)), rest...)
	}
	return line
}

// Forget drops the leftover buffer for src, if any. Callers that stop
// reading a source before end of stream should call Forget so the Reader
// releases its state for that source.
func (r *Reader) Forget(src io.Reader) {
	delete(r.pending, src)
}

// Buffered reports how many bytes are buffered for src but not yet
// returned as part of a line.
func (r *Reader) Buffered(src io.Reader) int {
	return len(r.pending[src])
}

// Lines returns an iterator over the lines of src. Iteration stops at end
// of stream. A read error is yielded once, with a nil line, and ends the
// iteration.
func (r *Reader) Lines(src io.Reader) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			line, err := r.NextLine(src)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(line, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}
